package adapter

import "testing"

func TestExtractText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "entity-encoded feed description",
			input: "Tour manager wanted. &lt;p&gt;Immediate start.&lt;/p&gt;",
			want:  "Tour manager wanted. Immediate start.",
		},
		{
			name:  "nested tags and whitespace",
			input: "&lt;p&gt;Studio engineer.&lt;/p&gt;\n&lt;ul&gt;\n  &lt;li&gt;Pro Tools&lt;/li&gt;\n  &lt;li&gt;Mixing&lt;/li&gt;\n&lt;/ul&gt;",
			want:  "Studio engineer. Pro Tools Mixing",
		},
		{
			name:  "real HTML",
			input: "<div><b>Label</b> seeks A&amp;R assistant</div>",
			want:  "Label seeks A&R assistant",
		},
		{
			name:  "plain text with no HTML",
			input: "No tags here.",
			want:  "No tags here.",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := extractText(tc.input)
			if got != tc.want {
				t.Errorf("extractText(%q)\n got  %q\n want %q", tc.input, got, tc.want)
			}
		})
	}
}
