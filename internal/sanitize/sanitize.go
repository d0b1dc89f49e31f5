// Package sanitize turns user supplied markup into plain text before it is
// stored and echoed back by the bot.
package sanitize

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	blockTags  = regexp.MustCompile(`<br\s*/?>|</?p>|</?div>|</?pre>|</?h[1-6]>|</?li>`)
	blankLines = regexp.MustCompile(`\n\s*\n+`)
)

// Policy strips HTML and markdown from text.
type Policy struct {
	policy   *bluemonday.Policy
	markdown goldmark.Markdown
}

// NewPlainTextPolicy creates a Policy that keeps no markup at all.
func NewPlainTextPolicy() *Policy {
	return &Policy{
		policy:   bluemonday.StrictPolicy(),
		markdown: goldmark.New(),
	}
}

// Text renders text as markdown, drops every tag and returns the trimmed
// plain text. Input that fails to render is returned trimmed but otherwise
// untouched.
func (p *Policy) Text(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := p.markdown.Convert([]byte(text), &buf); err != nil {
		return text
	}

	plain := blockTags.ReplaceAllString(buf.String(), "\n")
	plain = p.policy.Sanitize(plain)
	plain = blankLines.ReplaceAllString(plain, "\n\n")
	return strings.TrimSpace(html.UnescapeString(plain))
}
