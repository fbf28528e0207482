// ABOUTME: YAML import and export of template packs
// ABOUTME: Validates imported templates and merges them over the current set
package templates

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/harperreed/warmpath/models"
)

var ErrInvalidPack = errors.New("invalid template pack")

type pack struct {
	Templates []models.Template `yaml:"templates"`
}

// LoadYAML reads a template pack. Every template needs an id and a body, and
// ids must be unique within the pack. A missing type defaults to "custom".
func LoadYAML(r io.Reader) ([]models.Template, error) {
	var p pack
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidPack)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPack, err)
	}

	seen := make(map[string]bool, len(p.Templates))
	for i := range p.Templates {
		t := &p.Templates[i]
		if t.ID == "" {
			return nil, fmt.Errorf("%w: template %d has no id", ErrInvalidPack, i+1)
		}
		if t.Body == "" {
			return nil, fmt.Errorf("%w: template %q has no body", ErrInvalidPack, t.ID)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidPack, t.ID)
		}
		seen[t.ID] = true
		if t.Name == "" {
			t.Name = t.ID
		}
		if t.Type == "" {
			t.Type = "custom"
		}
	}
	return p.Templates, nil
}

// WriteYAML writes list as a template pack readable by LoadYAML.
func WriteYAML(w io.Writer, list []models.Template) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(pack{Templates: list}); err != nil {
		return fmt.Errorf("failed to encode templates: %w", err)
	}
	return enc.Close()
}

// Merge overlays imported onto current: templates with a known id are
// replaced in place, new ids are appended in import order.
func Merge(current, imported []models.Template) (merged []models.Template, added, replaced int) {
	merged = make([]models.Template, len(current))
	copy(merged, current)

	index := make(map[string]int, len(merged))
	for i, t := range merged {
		index[t.ID] = i
	}
	for _, t := range imported {
		if i, ok := index[t.ID]; ok {
			merged[i] = t
			replaced++
			continue
		}
		index[t.ID] = len(merged)
		merged = append(merged, t)
		added++
	}
	return merged, added, replaced
}
