// Package richtext turns imported summaries and activity bodies into the
// sanitized HTML stored on courses and activities.
package richtext

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	htmlTag         = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9]*(\s[^<>]*)?/?>`)
	paragraphBreaks = regexp.MustCompile(`\r?\n\s*\r?\n`)
)

// Formatter sanitizes rich text. Input that carries no markup is treated as
// plain text: it is escaped and split into paragraphs.
type Formatter struct {
	policy *bluemonday.Policy
}

// NewFormatter creates a formatter using the user-generated content policy.
func NewFormatter() *Formatter {
	return &Formatter{policy: bluemonday.UGCPolicy()}
}

// Format returns the HTML form of text. Format is idempotent: formatting
// its own output returns the output unchanged.
func (f *Formatter) Format(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if !htmlTag.MatchString(text) {
		text = plainToHTML(text)
	}
	return strings.TrimSpace(f.policy.Sanitize(text))
}

func plainToHTML(text string) string {
	var sb strings.Builder
	for _, para := range paragraphBreaks.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		lines := strings.Split(para, "\n")
		for i, line := range lines {
			lines[i] = html.EscapeString(strings.TrimRight(line, "\r"))
		}
		sb.WriteString("<p>")
		sb.WriteString(strings.Join(lines, "<br>"))
		sb.WriteString("</p>")
	}
	return sb.String()
}
