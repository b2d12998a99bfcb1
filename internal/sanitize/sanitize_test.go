package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSafeHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "paragraph",
			input:    "Hello world",
			contains: []string{"<p>Hello world</p>"},
		},
		{
			name:     "emphasis and strong",
			input:    "*soft* and **loud**",
			contains: []string{"<em>soft</em>", "<strong>loud</strong>"},
		},
		{
			name:     "headings",
			input:    "# Title\n\n###### Small",
			contains: []string{"<h1>Title</h1>", "<h6>Small</h6>"},
		},
		{
			name:     "lists",
			input:    "- one\n- two\n\n1. first\n2. second",
			contains: []string{"<ul>", "<li>one</li>", "<ol>", "<li>second</li>"},
		},
		{
			name:     "script is removed",
			input:    "<script>alert(1)</script>",
			excludes: []string{"<script", "alert(1)</script>"},
		},
		{
			name:     "inline script is removed",
			input:    "hi <script>alert(1)</script> there",
			excludes: []string{"<script"},
		},
		{
			name:     "links lose tag and attributes",
			input:    "[click](javascript:alert(1))",
			contains: []string{"click"},
			excludes: []string{"<a", "href"},
		},
		{
			name:     "images are dropped",
			input:    "![x](http://example.com/x.png)",
			excludes: []string{"<img", "src="},
		},
		{
			name:     "code blocks are not allowed",
			input:    "```\ncode\n```",
			contains: []string{"code"},
			excludes: []string{"<pre", "<code"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(ToSafeHTML(tt.input))
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, got, unwanted)
			}
		})
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "Hello", "Hello"},
		{"tags removed", "<b>bold</b> text", "bold text"},
		{"attributes removed", `<a href="http://x" onclick="evil()">link</a>`, "link"},
		{"script removed entirely", "<script>alert(1)</script>", ""},
		{"ampersand kept plain", "fish & chips", "fish & chips"},
		{"markdown characters kept", "# Heading *em* **strong**", "# Heading *em* **strong**"},
		{"escaped tag does not come back", "&lt;script&gt;alert(1)&lt;/script&gt;", ""},
		{"lone angle bracket", "1 < 2", "1 < 2"},
		{"escaped markup is treated as markup", "&lt;b&gt;x&lt;/b&gt;", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.input))
		})
	}
}

func TestStripHTML_NeverLeavesTags(t *testing.T) {
	inputs := []string{
		"<div><p>nested <i>markup</i></p></div>",
		`<img src=x onerror="alert(1)">`,
		"&amp;lt;b&amp;gt;double&amp;lt;/b&amp;gt;",
		"<<script>script>alert(1)<</script>/script>",
	}
	for _, in := range inputs {
		out := StripHTML(in)
		assert.False(t, strings.Contains(out, "<script") || strings.Contains(out, "<b>") || strings.Contains(out, "<img"),
			"StripHTML(%q) = %q still has markup", in, out)
	}
}
