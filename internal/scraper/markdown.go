package scraper

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

// extractMarkdown parses a markdown document and returns its title (the
// first heading, or "" if the document has none) and its body flattened to
// plain text.
func extractMarkdown(source []byte) (title, body string, err error) {
	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)

	reader := text.NewReader(source)
	doc := md.Parser().Parse(reader)

	tree, err := toc.Inspect(doc, source,
		toc.MinDepth(1),
		toc.MaxDepth(1),
		toc.Compact(true),
	)
	if err != nil {
		return "", "", fmt.Errorf("inspect headings: %w", err)
	}
	if len(tree.Items) > 0 {
		title = string(tree.Items[0].Title)
	}

	var sb strings.Builder
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(source))
			sb.WriteByte(' ')
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			// Code blocks carry no prose worth retrieving.
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("walk document: %w", err)
	}

	return title, strings.Join(strings.Fields(sb.String()), " "), nil
}
