// Package sanitize cleans user-supplied text. Post bodies are rendered from markdown
// into a small allow-listed HTML subset; plain fields lose all markup before storage.
package sanitize

import (
	"bytes"
	"html"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// maxStripPasses bounds the strip/unescape loop in StripHTML.
const maxStripPasses = 5

var (
	markdown = goldmark.New()

	strict = bluemonday.StrictPolicy()

	bodyPolicy = bluemonday.NewPolicy().AllowElements(
		"p", "br", "ul", "ol", "li",
		"strong", "em", "b", "i",
		"h1", "h2", "h3", "h4", "h5", "h6",
	)
)

// ToSafeHTML renders a markdown post body and filters the result down to the allowed tags,
// with every attribute removed.
func ToSafeHTML(source string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(bodyPolicy.SanitizeBytes(buf.Bytes()))
}

// StripHTML removes every tag and attribute from raw. Entities escaped by the policy are
// decoded back into plain characters so stored text is neither marked up nor double-escaped.
func StripHTML(raw string) string {
	out := raw
	for i := 0; i < maxStripPasses; i++ {
		next := html.UnescapeString(strict.Sanitize(out))
		if next == out {
			return out
		}
		out = next
	}
	// Still changing: keep the escaped form rather than risk decoded markup.
	return strict.Sanitize(out)
}
