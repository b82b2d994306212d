package output

import (
	"encoding/json"
	"io"

	"github.com/spiffcs/contribs/internal/format"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

// JSONOutput wraps the rows with counts for JSON output
type JSONOutput struct {
	Rows      []format.DisplayRow `json:"rows"`
	Shown     int                 `json:"shown"`
	Collapsed int                 `json:"collapsed"`
	Total     int                 `json:"total"`
}

// Format outputs rows and their counts as a single JSON object
func (f *JSONFormatter) Format(rows []format.DisplayRow, w io.Writer) error {
	shown, collapsed := format.CountRows(rows)
	if rows == nil {
		rows = []format.DisplayRow{}
	}

	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(JSONOutput{
		Rows:      rows,
		Shown:     shown,
		Collapsed: collapsed,
		Total:     shown + collapsed,
	})
}
