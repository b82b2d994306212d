package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spiffcs/contribs/internal/model"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFile is returned for contributor files that are neither JSON nor YAML.
var ErrUnsupportedFile = errors.New("unsupported contributor file")

// FileSource reads contributors from a JSON or YAML file.
//
// The file holds either a bare list of contributors or a document with a
// top-level "contributors" list.
type FileSource struct {
	Path string
}

type contributorFile struct {
	Contributors []model.Contributor `json:"contributors" yaml:"contributors"`
}

// NewFileSource returns a FileSource for path
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Name returns the file path
func (s *FileSource) Name() string {
	return s.Path
}

// Contributors reads and decodes the file
func (s *FileSource) Contributors(_ context.Context) ([]model.Contributor, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read contributors: %w", err)
	}

	var out []model.Contributor
	switch ext := strings.ToLower(filepath.Ext(s.Path)); ext {
	case ".json":
		out, err = decodeJSON(data)
	case ".yaml", ".yml":
		out, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: %s (want .json, .yaml or .yml)", ErrUnsupportedFile, s.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.Path, err)
	}
	return out, nil
}

func decodeJSON(data []byte) ([]model.Contributor, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []model.Contributor
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var doc contributorFile
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	return doc.Contributors, nil
}

func decodeYAML(data []byte) ([]model.Contributor, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	if root.Content[0].Kind == yaml.SequenceNode {
		var list []model.Contributor
		if err := root.Content[0].Decode(&list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var doc contributorFile
	if err := root.Content[0].Decode(&doc); err != nil {
		return nil, err
	}
	return doc.Contributors, nil
}
