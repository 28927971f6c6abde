// Package feedback renders interviewer feedback, which the backend returns as markdown.
package feedback

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// md escapes raw HTML in the source; feedback is model output
var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML renders feedback markdown as an HTML fragment
func HTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("failed to render feedback: %w", err)
	}
	return buf.String(), nil
}

// Headings lists the section titles of the feedback in document order
func Headings(source string) []string {
	src := []byte(source)
	doc := md.Parser().Parse(text.NewReader(src))

	var out []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		var sb strings.Builder
		for c := h.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				sb.Write(t.Segment.Value(src))
			} else {
				sb.WriteString(string(c.Text(src)))
			}
		}
		if title := strings.TrimSpace(sb.String()); title != "" {
			out = append(out, title)
		}
		return ast.WalkSkipChildren, nil
	})
	return out
}
