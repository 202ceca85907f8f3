package comparison

import (
	"fmt"
	"io"
	"strings"

	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/currency"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdownCellEscaper = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"<", `\<`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"\n", " ",
	"\r", " ",
)

// Markdown renders the comparison table as a GitHub-flavoured markdown table.
func (t Table) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Scenario Comparison (%s)\n\n", t.Currency.Code)

	header := t.Header()
	writeMarkdownRow(&b, header)
	b.WriteString("|")
	for i := range header {
		if i == 0 {
			b.WriteString(" --- |")
		} else {
			b.WriteString(" ---: |")
		}
	}
	b.WriteString("\n")
	for _, row := range t.Rows {
		writeMarkdownRow(&b, append([]string{row.Metric.Label}, row.Cells...))
	}
	return b.String()
}

func writeMarkdownRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, cell := range cells {
		b.WriteString(" ")
		b.WriteString(markdownCellEscaper.Replace(cell))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

// RenderHTML writes the comparison table as an HTML fragment.
func (e *Engine) RenderHTML(w io.Writer, c currency.Currency) error {
	t, err := e.Table(c)
	if err != nil {
		return err
	}
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(t.Markdown()), w); err != nil {
		return fmt.Errorf("markdown convert: %w", err)
	}
	return nil
}
