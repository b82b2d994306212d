package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spiffcs/contribs/internal/constants"
	"github.com/spiffcs/contribs/internal/format"
)

// TableFormatter formats output as a terminal table
type TableFormatter struct {
	Subject string
}

// Format outputs rows as a table
func (f *TableFormatter) Format(rows []format.DisplayRow, w io.Writer) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, inAppCopy(f.Subject, nil).BodyText)
		return err
	}

	// Column widths
	const (
		colIndex = 4
		colLabel = constants.LabelColumnWidth
	)
	colID := idColumnWidth(rows)

	// Header
	fmt.Fprintf(w, "%-*s  %-*s  %s\n",
		colIndex, "#",
		colLabel, "Contributor",
		"ID")
	fmt.Fprintln(w, strings.Repeat("-", colIndex+colLabel+colID+4))

	for i, row := range rows {
		index := strconv.Itoa(i + 1)
		label, labelWidth := format.TruncateToWidth(row.Label, colLabel)
		id := row.ID

		if row.IsSummary {
			// The summary row has no position or identity of its own
			index = ""
			id = ""
			label = color.New(color.Faint, color.Italic).Sprint(label)
		}

		fmt.Fprintf(w, "%-*s  %s  %s\n",
			colIndex, index,
			format.PadRight(label, labelWidth, colLabel),
			id,
		)
	}

	printFooter(rows, w)

	return nil
}

func idColumnWidth(rows []format.DisplayRow) int {
	width := len("ID")
	for _, row := range rows {
		if w := format.DisplayWidth(row.ID); w > width {
			width = w
		}
	}
	return width
}

// printFooter prints the shown/collapsed counts under the table
func printFooter(rows []format.DisplayRow, w io.Writer) {
	shown, collapsed := format.CountRows(rows)

	fmt.Fprintln(w)
	if collapsed == 0 {
		fmt.Fprintf(w, "%d contributors\n", shown)
		return
	}
	fmt.Fprintf(w, "%d contributors (%d shown, %s collapsed)\n",
		shown+collapsed, shown, color.YellowString("%d", collapsed))
}
