package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spiffcs/contribs/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeContributorFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

var wantFromFile = []model.Contributor{
	{ID: "u1", Name: "Ada", Active: true},
	{ID: "u2", UnregisteredName: "Grace H.", Active: false},
}

func TestFileSource(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "json list",
			file: "c.json",
			content: `[{"id":"u1","name":"Ada","active":true},
			           {"id":"u2","unregistered_name":"Grace H.","active":false}]`,
		},
		{
			name:    "json document",
			file:    "c.json",
			content: `{"contributors":[{"id":"u1","name":"Ada","active":true},{"id":"u2","unregistered_name":"Grace H."}]}`,
		},
		{
			name: "yaml list",
			file: "c.yaml",
			content: `- id: u1
  name: Ada
  active: true
- id: u2
  unregistered_name: Grace H.
`,
		},
		{
			name: "yml document",
			file: "c.yml",
			content: `contributors:
  - id: u1
    name: Ada
    active: true
  - id: u2
    unregistered_name: Grace H.
    active: false
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewFileSource(writeContributorFile(t, tt.file, tt.content))
			got, err := src.Contributors(context.Background())
			require.NoError(t, err)
			assert.Equal(t, wantFromFile, got)
		})
	}
}

func TestFileSourceEmptyYAML(t *testing.T) {
	src := NewFileSource(writeContributorFile(t, "empty.yaml", ""))
	got, err := src.Contributors(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileSourceErrors(t *testing.T) {
	t.Run("unsupported extension", func(t *testing.T) {
		src := NewFileSource(writeContributorFile(t, "c.csv", "id,name\n"))
		_, err := src.Contributors(context.Background())
		assert.ErrorIs(t, err, ErrUnsupportedFile)
	})

	t.Run("missing file", func(t *testing.T) {
		src := NewFileSource(filepath.Join(t.TempDir(), "nope.json"))
		_, err := src.Contributors(context.Background())
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed json", func(t *testing.T) {
		src := NewFileSource(writeContributorFile(t, "c.json", `[{"id":`))
		_, err := src.Contributors(context.Background())
		assert.Error(t, err)
	})
}
