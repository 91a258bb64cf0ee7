package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Document is the single-file form of an export, shared by JSON and YAML.
// Missing values are null.
type Document struct {
	Meta   Meta            `json:"meta" yaml:"meta"`
	Tables []TableDocument `json:"tables" yaml:"tables"`
}

// TableDocument is one frame in row-major form.
type TableDocument struct {
	Name    string   `json:"name" yaml:"name"`
	Title   string   `json:"title" yaml:"title"`
	Columns []string `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
}

// NewDocument converts frames into a Document.
func NewDocument(frames []Frame, meta Meta) Document {
	doc := Document{Meta: meta, Tables: make([]TableDocument, 0, len(frames))}
	for _, f := range frames {
		td := TableDocument{
			Name:    f.Name,
			Title:   f.Title,
			Columns: f.Headers(),
			Rows:    make([][]any, 0, f.Len()),
		}
		for i := 0; i < f.Len(); i++ {
			row := make([]any, len(f.Columns))
			for j := range f.Columns {
				row[j] = f.Columns[j].Value(i)
			}
			td.Rows = append(td.Rows, row)
		}
		doc.Tables = append(doc.Tables, td)
	}
	return doc
}

func writeJSON(dir string, frames []Frame, meta Meta) ([]string, error) {
	data, err := json.MarshalIndent(NewDocument(frames, meta), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode json: %w", err)
	}
	path := filepath.Join(dir, "doped.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func writeYAML(dir string, frames []Frame, meta Meta) ([]string, error) {
	data, err := yaml.Marshal(NewDocument(frames, meta))
	if err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}
	path := filepath.Join(dir, "doped.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, err
	}
	return []string{path}, nil
}
