package format

import (
	"errors"
	"fmt"

	"github.com/spiffcs/contribs/internal/model"
)

var (
	// ErrInvalidCap is returned when the display cap is negative.
	ErrInvalidCap = errors.New("invalid display cap")

	// ErrMalformedContributor is returned when a shown contributor has no usable label.
	ErrMalformedContributor = errors.New("malformed contributor")
)

// DisplayRow is one rendered entry of a contributor list.
type DisplayRow struct {
	// ID is the contributor ID for shown rows. Empty for the summary row.
	ID string `json:"id,omitempty"`
	// Label is the text to render.
	Label string `json:"label"`
	// IsSummary marks the synthetic "N others" row.
	IsSummary bool `json:"isSummary"`
	// Count is the number of contributors the row stands for.
	Count int `json:"count"`
}

// ContributorOption configures Contributors.
type ContributorOption func(*contributorOptions)

type contributorOptions struct {
	labelSource LabelSource
}

// WithLabelSource designates which contributor field is authoritative for labels.
func WithLabelSource(src LabelSource) ContributorOption {
	return func(o *contributorOptions) {
		o.labelSource = src
	}
}

// Contributors turns an ordered contributor list into at most maxShown+1 display rows.
//
// Contributors are shown in input order. When more than maxShown+1 contributors
// exist, the first maxShown are shown and the rest collapse into a single trailing
// summary row. When exactly maxShown+1 exist, all are shown: naming the last
// contributor beats a "1 other" row.
func Contributors(contributors []model.Contributor, maxShown int, opts ...ContributorOption) ([]DisplayRow, error) {
	if maxShown < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCap, maxShown)
	}

	var o contributorOptions
	for _, opt := range opts {
		opt(&o)
	}

	shown := VisibleCount(len(contributors), maxShown)
	rows := make([]DisplayRow, 0, shown+1)
	for i, c := range contributors[:shown] {
		label, err := ContributorLabel(c, o.labelSource)
		if err != nil {
			return nil, fmt.Errorf("contributor %d: %w", i, err)
		}
		rows = append(rows, DisplayRow{ID: c.ID, Label: label, Count: 1})
	}

	if hidden := len(contributors) - shown; hidden > 0 {
		rows = append(rows, SummaryRow(hidden))
	}

	return rows, nil
}

// VisibleCount returns how many of n contributors are shown individually under maxShown.
func VisibleCount(n, maxShown int) int {
	// n-1 avoids overflowing maxShown+1 for very large caps
	if n-1 <= maxShown {
		return n
	}
	return maxShown
}

// SummaryRow builds the synthetic row standing for hidden contributors.
func SummaryRow(hidden int) DisplayRow {
	return DisplayRow{
		Label:     SummaryLabel(hidden),
		IsSummary: true,
		Count:     hidden,
	}
}

// SummaryLabel returns the label for a summary row, e.g. "7 others".
func SummaryLabel(hidden int) string {
	return fmt.Sprintf("%d others", hidden)
}

// CountRows returns the number of individually shown rows and the number of
// contributors collapsed into the summary row.
func CountRows(rows []DisplayRow) (shown, collapsed int) {
	for _, r := range rows {
		if r.IsSummary {
			collapsed += r.Count
			continue
		}
		shown++
	}
	return shown, collapsed
}
