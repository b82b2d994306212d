// Package constants provides a centralized location for configuration
// defaults and magic numbers used throughout contribs.
package constants

import "time"

// Display defaults
const (
	// DefaultMaxShown is the number of contributors named individually
	// before the rest collapse into an "N others" row.
	DefaultMaxShown = 3

	// DefaultFormat is the output format used when neither a flag nor the
	// config file picks one.
	DefaultFormat = "table"

	// LabelColumnWidth is the widest label the table formatter prints
	// before truncating.
	LabelColumnWidth = 40
)

// TUI constants
const (
	// TUIEventBuffer is the capacity of the TUI event channel.
	TUIEventBuffer = 100
)

// GitHub fetching constants
const (
	// RateLimitLowWatermark is the threshold below which rate limit
	// warnings are logged.
	RateLimitLowWatermark = 100

	// ContributorsPerPage is the page size requested from the
	// repository contributors endpoint (the API maximum).
	ContributorsPerPage = 100

	// DefaultFetchWorkers bounds concurrent repository fetches.
	DefaultFetchWorkers = 4
)

// Cache TTL constants
const (
	// ContributorListCacheTTL is the maximum age of a cached repository
	// contributor list before it is fetched again.
	ContributorListCacheTTL = 1 * time.Hour
)

// Mail constants
const (
	// DefaultMailRatePerSec bounds outgoing messages per second.
	DefaultMailRatePerSec = 5

	// DefaultResendAfter is how long an identical summary is suppressed
	// for the same recipient and subject.
	DefaultResendAfter = "1w"
)
