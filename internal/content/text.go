package content

import (
	"html"
	"html/template"
	"math"
	"regexp"
	"strings"
)

const wordsPerMinute = 200

var (
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
	boldMarkup     = regexp.MustCompile(`\*\*(.*?)\*\*`)
)

// Paragraphs splits content on blank lines, dropping empty pieces.
func Paragraphs(content string) []string {
	parts := paragraphBreak.Split(strings.TrimSpace(content), -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FormatParagraph renders one paragraph as HTML. The text is escaped first,
// then single newlines become <br /> and **x** becomes <strong>x</strong>.
func FormatParagraph(p string) template.HTML {
	s := html.EscapeString(p)
	s = strings.ReplaceAll(s, "\n", "<br />")
	s = boldMarkup.ReplaceAllString(s, "<strong>$1</strong>")
	return template.HTML(s)
}

// ReadingTime is the estimated minutes to read content, never less than one.
func ReadingTime(content string) int {
	words := len(strings.Fields(content))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}
