package classify

import (
	"reflect"
	"testing"

	"github.com/JoseAndresM/LKND/internal/model"
)

func TestTags(t *testing.T) {
	c := New()
	tests := []struct {
		name string
		job  model.Job
		want []string
	}{
		{
			name: "single category from title",
			job:  model.Job{Title: "Mastering Engineer"},
			want: []string{"Production"},
		},
		{
			name: "case insensitive",
			job:  model.Job{Title: "SENIOR SOFTWARE DEVELOPER"},
			want: []string{"Technical"},
		},
		{
			name: "description contributes",
			job:  model.Job{Title: "Team Lead", Description: "running our recording studio"},
			want: []string{"Production"},
		},
		{
			name: "multiple categories in taxonomy order",
			job:  model.Job{Title: "Tour Manager", Description: "booking festival slots for our artists"},
			want: []string{"Performance", "Business", "Live Events"},
		},
		{
			name: "no match falls back",
			job:  model.Job{Title: "Receptionist", Description: "front desk duties"},
			want: []string{FallbackTag},
		},
		{
			name: "empty record falls back",
			job:  model.Job{},
			want: []string{FallbackTag},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Tags(tt.job)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tags = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTags_NeverEmpty(t *testing.T) {
	c := New()
	for _, job := range []model.Job{
		{Title: "zzz"},
		{Title: "Audio Producer"},
		{Title: "DJ", Description: "weekend residency"},
	} {
		if len(c.Tags(job)) == 0 {
			t.Errorf("Tags(%q) returned an empty set", job.Title)
		}
	}
}
