package api

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"neuromorph/adapters/stats/engine"
	"neuromorph/domain/comparison"
)

// BatchMarkdown joins the per-parameter markdown reports under one title
func BatchMarkdown(title string, batch *comparison.BatchReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if len(batch.Parameters) == 0 {
		b.WriteString("No parameter could be compared.\n\n")
	}
	for _, p := range batch.Parameters {
		b.WriteString(engine.FormatMarkdown(batch.Reports[p]))
		b.WriteString("\n\n")
	}
	if len(batch.Skipped) > 0 {
		fmt.Fprintf(&b, "Skipped (no data): %s\n\n", strings.Join(batch.Skipped, ", "))
	}
	for _, f := range batch.Failures {
		fmt.Fprintf(&b, "- **%s** failed: %v\n", f.Parameter, f.Err)
	}
	return b.String()
}

// RenderHTML renders a batch as a standalone HTML page
func RenderHTML(title string, batch *comparison.BatchReport) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML([]byte(BatchMarkdown(title, batch)), p, r)
}
