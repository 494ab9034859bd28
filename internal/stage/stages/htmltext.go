package stages

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/stagehand/internal/artifact"
	"git.home.luguber.info/inful/stagehand/internal/stage"
)

// HTMLTextSpec extracts plain text from HTML fragments. Dict style.
func HTMLTextSpec() stage.Spec {
	return stage.Spec{
		Aliases: []string{"stagehand.htmltext", "htmltext"},
		Inputs:  []string{".html", ".htm"},
		Outputs: []string{".txt"},
		New:     func() stage.Processor { return &HTMLText{} },
	}
}

// HTMLText strips markup from each fragment, keeping text content only.
// Script and style bodies are dropped.
type HTMLText struct{}

// ProcessData extracts text per fragment, preserving IDs and order.
func (h *HTMLText) ProcessData(_ context.Context, input artifact.Data) (artifact.Data, error) {
	out := input.Clone()
	for i := range out {
		text, err := extractText(out[i].Content)
		if err != nil {
			return nil, fmt.Errorf("fragment %s: %w", out[i].ID, err)
		}
		out[i].Content = text
	}
	return out, nil
}

func extractText(fragment string) (string, error) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return b.String(), nil
}
