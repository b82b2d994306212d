package cmd

import "github.com/spiffcs/contribs/internal/constants"

// Options holds the shared command-line options for the contribs CLI.
type Options struct {
	Format      string
	Files       []string
	Repos       []string
	MaxShown    int
	maxShownSet bool // --max was given explicitly
	LabelSource string
	Workers     int
	NoCache     bool
	Verbosity   int
	TUI         *bool // nil = auto-detect, true = force TUI, false = disable TUI
}

// NotifyOptions holds the options specific to the notify command.
type NotifyOptions struct {
	To      string
	Bcc     []string
	Subject string
	DryRun  bool
	Force   bool
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options with defaults and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{
		MaxShown: constants.DefaultMaxShown,
		Workers:  constants.DefaultFetchWorkers,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFormat sets the output format (table, json, markdown, text).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithMaxShown sets the display cap, overriding the config file.
func WithMaxShown(n int) Option {
	return func(o *Options) {
		o.MaxShown = n
		o.maxShownSet = true
	}
}

// WithFiles sets contributor files to read.
func WithFiles(paths ...string) Option {
	return func(o *Options) {
		o.Files = paths
	}
}

// WithRepos sets the repositories to fetch contributors from.
func WithRepos(repos ...string) Option {
	return func(o *Options) {
		o.Repos = repos
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithTUI controls TUI mode (nil = auto-detect, true = force, false = disable).
func WithTUI(tui *bool) Option {
	return func(o *Options) {
		o.TUI = tui
	}
}
