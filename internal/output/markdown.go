package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/spiffcs/contribs/internal/format"
)

// MarkdownFormatter formats output as a Markdown bullet list
type MarkdownFormatter struct {
	// Subject, when non-empty, is titled in a level-two heading.
	Subject string
}

// Format outputs rows as Markdown
func (f *MarkdownFormatter) Format(rows []format.DisplayRow, w io.Writer) error {
	summary := inAppCopy(f.Subject, rows)
	if f.Subject != "" {
		if _, err := fmt.Fprintf(w, "## %s\n\n", escapeMarkdown(summary.Title)); err != nil {
			return err
		}
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintf(w, "_%s_\n", escapeMarkdown(summary.BodyText))
		return err
	}

	for _, row := range rows {
		label := escapeMarkdown(row.Label)
		if row.IsSummary {
			label = "_" + label + "_"
		}
		if _, err := fmt.Fprintf(w, "- %s\n", label); err != nil {
			return err
		}
	}
	return nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
