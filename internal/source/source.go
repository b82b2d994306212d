// Package source loads contributor lists from files and GitHub repositories.
package source

import (
	"context"

	"github.com/spiffcs/contribs/internal/model"
)

// Source yields an ordered contributor list.
type Source interface {
	// Name identifies the source in logs and progress output.
	Name() string
	Contributors(ctx context.Context) ([]model.Contributor, error)
}
