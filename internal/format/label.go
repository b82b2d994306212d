package format

import (
	"fmt"
	"strings"

	"github.com/spiffcs/contribs/internal/model"
)

// LabelSource selects which contributor field is authoritative for its label.
type LabelSource int

const (
	// LabelName uses the registered name, falling back to the unregistered name.
	LabelName LabelSource = iota
	// LabelUnregisteredName uses the unregistered name, falling back to the registered name.
	LabelUnregisteredName
)

// String returns the config spelling of the label source.
func (s LabelSource) String() string {
	switch s {
	case LabelUnregisteredName:
		return "unregistered_name"
	default:
		return "name"
	}
}

// ParseLabelSource parses a config value into a LabelSource.
// An empty value selects LabelName.
func ParseLabelSource(s string) (LabelSource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "name":
		return LabelName, nil
	case "unregistered_name", "unregistered":
		return LabelUnregisteredName, nil
	default:
		return LabelName, fmt.Errorf("invalid label source: %s (must be name or unregistered_name)", s)
	}
}

// ContributorLabel returns the display label for a contributor.
// Returns ErrMalformedContributor when both name fields are blank.
func ContributorLabel(c model.Contributor, src LabelSource) (string, error) {
	primary := strings.TrimSpace(c.Name)
	fallback := strings.TrimSpace(c.UnregisteredName)
	if src == LabelUnregisteredName {
		primary, fallback = fallback, primary
	}

	if primary != "" {
		return primary, nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", fmt.Errorf("%w: id %q has neither name nor unregistered name", ErrMalformedContributor, c.ID)
}
