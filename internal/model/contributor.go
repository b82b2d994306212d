// Package model contains domain types for the contribs application.
// These types are independent of any external GitHub library.
package model

import "strings"

// Contributor is a person associated with a tracked item, registered or not.
// Records are treated as immutable once handed to a formatter.
type Contributor struct {
	// ID is an opaque identifier. It is passed through to display rows.
	ID string `json:"id" yaml:"id"`

	// Name is the registered display name. Empty for unregistered contributors.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Active distinguishes currently-active from inactive contributors.
	// It never affects ordering or filtering.
	Active bool `json:"active" yaml:"active"`

	// UnregisteredName is the fallback display string for contributors
	// without a registered account.
	UnregisteredName string `json:"unregistered_name,omitempty" yaml:"unregistered_name,omitempty"`
}

// Registered reports whether the contributor has a registered account name.
func (c Contributor) Registered() bool {
	return strings.TrimSpace(c.Name) != ""
}
