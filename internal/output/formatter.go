package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/spiffcs/contribs/internal/format"
	"github.com/spiffcs/contribs/internal/render"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Format represents the output format
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// Formatter defines the interface for output formatters
type Formatter interface {
	Format(rows []format.DisplayRow, w io.Writer) error
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatMarkdown, FormatText:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json, markdown or text)", s)
	}
}

// NewFormatter creates a formatter for the specified format.
// subject names what the contributors contributed to, usually a repository.
func NewFormatter(f Format, subject string) Formatter {
	switch f {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	case FormatMarkdown:
		return &MarkdownFormatter{Subject: subject}
	case FormatText:
		return &TextFormatter{Subject: subject}
	default:
		return &TableFormatter{Subject: subject}
	}
}

// inAppCopy renders the terminal copy shared by the table, markdown and text formats.
func inAppCopy(subject string, rows []format.DisplayRow) render.Output {
	return render.Render(message.NewPrinter(language.English), render.Input{
		Subject: subject,
		Rows:    rows,
		Channel: render.ChannelInApp,
	})
}
