package catalog

import (
	"fmt"
)

// Library is the read-only set of templates, safe to share after construction
type Library struct {
	templates []*Template
	byID      map[string]*Template
}

// NewLibrary indexes templates in the given order
// Fails on an empty set since no road can be built from it
func NewLibrary(templates []*Template) (*Library, error) {
	if len(templates) == 0 {
		return nil, ErrEmptyCatalog
	}

	lib := &Library{
		templates: make([]*Template, 0, len(templates)),
		byID:      make(map[string]*Template, len(templates)),
	}
	for _, t := range templates {
		if t == nil {
			return nil, fmt.Errorf("%w: nil template", ErrInvalidTemplate)
		}
		if _, dup := lib.byID[t.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTemplate, t.ID)
		}
		lib.byID[t.ID] = t
		lib.templates = append(lib.templates, t)
	}
	return lib, nil
}

// Get looks up a template by id
func (l *Library) Get(id string) (*Template, error) {
	t, ok := l.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}
	return t, nil
}

// PickRandom selects uniformly over the catalog in load order
func (l *Library) PickRandom(rng RandomSource) *Template {
	return l.templates[rng.IntN(len(l.templates))]
}

// Len returns the template count
func (l *Library) Len() int {
	return len(l.templates)
}

// IDs returns template ids in load order
func (l *Library) IDs() []string {
	ids := make([]string, len(l.templates))
	for i, t := range l.templates {
		ids[i] = t.ID
	}
	return ids
}
