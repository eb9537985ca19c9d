// Package personas holds the built-in persona directory.
package personas

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ronnydonkey/scatterbrain-ai/internal/model"
)

//go:embed personas.yaml
var catalog []byte

// CategoryAll selects every persona when listing by category.
const CategoryAll = "All"

type document struct {
	Categories []string              `yaml:"categories"`
	Personas   []model.Persona       `yaml:"personas"`
	Templates  []model.BoardTemplate `yaml:"templates"`
}

// Directory is an immutable, read-only persona catalog.
type Directory struct {
	personas   []model.Persona
	byID       map[string]int
	categories []string
	templates  []model.BoardTemplate
}

// Load parses the embedded catalog.
func Load() (*Directory, error) {
	return Parse(catalog)
}

// MustLoad is Load for callers that cannot proceed without the catalog.
func MustLoad() *Directory {
	d, err := Load()
	if err != nil {
		panic(err)
	}
	return d
}

// Parse builds a Directory from a YAML document and validates it.
func Parse(data []byte) (*Directory, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse persona catalog: %w", err)
	}

	known := make(map[string]bool, len(doc.Categories))
	for _, c := range doc.Categories {
		known[c] = true
	}

	d := &Directory{
		personas:   doc.Personas,
		byID:       make(map[string]int, len(doc.Personas)),
		categories: doc.Categories,
	}
	for i, p := range doc.Personas {
		switch {
		case p.ID == "" || p.Name == "":
			return nil, fmt.Errorf("persona %d: id and name are required", i)
		case strings.HasPrefix(p.ID, model.CustomIDPrefix):
			return nil, fmt.Errorf("persona %q: reserved id prefix", p.ID)
		case !p.Tier.Valid():
			return nil, fmt.Errorf("persona %q: unknown tier %q", p.ID, p.Tier)
		case !known[p.Category]:
			return nil, fmt.Errorf("persona %q: unknown category %q", p.ID, p.Category)
		}
		if _, dup := d.byID[p.ID]; dup {
			return nil, fmt.Errorf("persona %q: duplicate id", p.ID)
		}
		d.byID[p.ID] = i
	}

	for _, t := range doc.Templates {
		for _, id := range t.AdvisorIDs {
			if _, ok := d.byID[id]; !ok {
				return nil, fmt.Errorf("template %q: unknown persona %q", t.ID, id)
			}
		}
		if len(t.AdvisorIDs) > model.MaxBoardSize {
			return nil, fmt.Errorf("template %q: more than %d personas", t.ID, model.MaxBoardSize)
		}
		t.IsPublic = true
		d.templates = append(d.templates, t)
	}
	return d, nil
}

// All returns every persona in catalog order.
func (d *Directory) All() []model.Persona {
	out := make([]model.Persona, len(d.personas))
	copy(out, d.personas)
	return out
}

// Get looks up a persona by id.
func (d *Directory) Get(id string) (model.Persona, bool) {
	i, ok := d.byID[id]
	if !ok {
		return model.Persona{}, false
	}
	return d.personas[i], true
}

// ByCategory lists personas in category; "" or "All" lists everything.
func (d *Directory) ByCategory(category string) []model.Persona {
	if category == "" || category == CategoryAll {
		return d.All()
	}
	out := []model.Persona{}
	for _, p := range d.personas {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// Categories returns the category vocabulary without the "All" pseudo-category.
func (d *Directory) Categories() []string {
	out := make([]string, len(d.categories))
	copy(out, d.categories)
	return out
}

// Resolve maps ids to personas in order, dropping unknown ids.
func (d *Directory) Resolve(ids []string) []model.Persona {
	out := make([]model.Persona, 0, len(ids))
	for _, id := range ids {
		if p, ok := d.Get(id); ok {
			out = append(out, p)
		}
	}
	return out
}

// Templates returns the seed board templates.
func (d *Directory) Templates() []model.BoardTemplate {
	out := make([]model.BoardTemplate, len(d.templates))
	copy(out, d.templates)
	return out
}
