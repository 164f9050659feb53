package feature

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Template describes a reusable feature annotation, e.g. a standard promoter
// or tag, that can be stamped onto any range.
type Template struct {
	Name     string            `yaml:"name"`
	Type     string            `yaml:"type"`
	Strand   int               `yaml:"strand"`
	Color    string            `yaml:"color"`
	Metadata map[string]string `yaml:"metadata"`
}

// Instantiate creates a feature from the template over [start, end).
func (t Template) Instantiate(start, end int) (Feature, error) {
	typ, err := ParseType(t.Type)
	if err != nil {
		return Feature{}, fmt.Errorf("template %q: %w", t.Name, err)
	}
	f := New(t.Name, typ, start, end, Strand(t.Strand))
	if f.Strand != Forward && f.Strand != Reverse {
		return Feature{}, fmt.Errorf("template %q: invalid strand %d", t.Name, t.Strand)
	}
	if t.Color != "" {
		f.Color = t.Color
	}
	if len(t.Metadata) > 0 {
		f.Metadata = make(map[string]string, len(t.Metadata))
		for k, v := range t.Metadata {
			f.Metadata[k] = v
		}
	}
	return f, nil
}

// Library is a set of templates keyed by name.
type Library map[string]Template

// ReadTemplates decodes a YAML list of templates.
func ReadTemplates(r io.Reader) (Library, error) {
	var list []Template
	if err := yaml.NewDecoder(r).Decode(&list); err != nil {
		if err == io.EOF {
			return Library{}, nil
		}
		return nil, fmt.Errorf("decode templates: %w", err)
	}

	lib := make(Library, len(list))
	for _, t := range list {
		if t.Name == "" {
			return nil, fmt.Errorf("decode templates: template without name")
		}
		if _, err := ParseType(t.Type); err != nil {
			return nil, fmt.Errorf("decode templates: %w", err)
		}
		lib[t.Name] = t
	}
	return lib, nil
}

// LoadTemplates reads a YAML template file.
func LoadTemplates(path string) (Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open templates: %w", err)
	}
	defer f.Close()
	return ReadTemplates(f)
}
