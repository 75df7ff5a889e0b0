// Package classify tags job records against the static music-industry taxonomy.
package classify

import (
	"strings"

	"github.com/JoseAndresM/LKND/internal/model"
)

// FallbackTag is assigned when no taxonomy keyword matches.
const FallbackTag = "Other"

type category struct {
	label    string
	keywords []string
}

// The taxonomy is evaluated in order; tags come out in this order too.
// Matching is case-insensitive substring containment, so short keywords
// ("dj", "tech") also catch compounds.
var taxonomy = []category{
	{"Production", []string{"producer", "engineer", "mixing", "mastering", "studio", "recording"}},
	{"Performance", []string{"musician", "artist", "performer", "dj", "singer", "band"}},
	{"Business", []string{"manager", "agent", "marketing", "promotion", "label", "a&r"}},
	{"Technical", []string{"developer", "programmer", "tech", "software", "streaming"}},
	{"Creative", []string{"composer", "songwriter", "arranger", "sound design"}},
	{"Education", []string{"teacher", "instructor", "professor", "tutor"}},
	{"Live Events", []string{"tour", "venue", "festival", "concert", "production"}},
	{"Media", []string{"journalist", "writer", "editor", "content", "social media"}},
}

// Classifier assigns category tags from the taxonomy.
type Classifier struct{}

var _ model.Tagger = (*Classifier)(nil)

func New() *Classifier {
	return &Classifier{}
}

// Tags returns every category whose keyword list matches the record's title
// or description. The result is never empty; records matching nothing get
// the fallback tag.
func (c *Classifier) Tags(job model.Job) []string {
	text := strings.ToLower(job.Title + " " + job.Description)

	var tags []string
	for _, cat := range taxonomy {
		for _, kw := range cat.keywords {
			if strings.Contains(text, kw) {
				tags = append(tags, cat.label)
				break
			}
		}
	}
	if len(tags) == 0 {
		return []string{FallbackTag}
	}
	return tags
}
