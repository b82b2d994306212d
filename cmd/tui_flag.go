package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spiffcs/contribs/internal/tui"
)

// autoBool is a pflag.Value for a bool that can be left to auto-detection.
// A nil target means "auto"; a bare --flag means true.
type autoBool struct {
	target **bool
}

func newAutoBool(target **bool) *autoBool {
	return &autoBool{target: target}
}

func (f *autoBool) String() string {
	if f.target == nil || *f.target == nil {
		return "auto"
	}
	return strconv.FormatBool(**f.target)
}

func (f *autoBool) Set(s string) error {
	if strings.EqualFold(s, "auto") {
		*f.target = nil
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid value %q: use true, false, or auto", s)
	}
	*f.target = &v
	return nil
}

func (f *autoBool) Type() string {
	return "bool"
}

func (f *autoBool) IsBoolFlag() bool {
	return true
}

// shouldUseTUI reports whether the progress display runs for this invocation.
// Verbose logging wins over the display so log lines stay visible.
func shouldUseTUI(opts *Options) bool {
	if opts.Verbosity > 0 {
		return false
	}
	if opts.TUI != nil {
		return *opts.TUI
	}
	return tui.ShouldUseTUI()
}
