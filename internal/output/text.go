package output

import (
	"fmt"
	"io"

	"github.com/spiffcs/contribs/internal/format"
)

// TextFormatter writes the rows as one English sentence,
// e.g. "Ada, Grace, and 7 others contributed to owner/repo."
type TextFormatter struct {
	Subject string
}

// Format outputs rows as a single line of in-app copy
func (f *TextFormatter) Format(rows []format.DisplayRow, w io.Writer) error {
	_, err := fmt.Fprintln(w, inAppCopy(f.Subject, rows).BodyText)
	return err
}
