package badge

import (
	"context"
	"fmt"
	"sort"
)

// Catalog is the immutable set of badge definitions loaded at startup
type Catalog struct {
	defs []*Definition
	byID map[string]*Definition
}

// NewCatalog builds a catalog ordered by sort order then id
func NewCatalog(defs []*Definition) (*Catalog, error) {
	sorted := make([]*Definition, 0, len(defs))
	byID := make(map[string]*Definition, len(defs))
	for _, d := range defs {
		if !d.RequirementType.Valid() {
			return nil, fmt.Errorf("badge %s: unknown requirement type %q", d.ID, d.RequirementType)
		}
		if d.RequirementValue < 0 {
			return nil, fmt.Errorf("badge %s: negative requirement value", d.ID)
		}
		if _, dup := byID[d.ID]; dup {
			return nil, fmt.Errorf("badge %s: duplicate id", d.ID)
		}
		cp := *d
		sorted = append(sorted, &cp)
		byID[cp.ID] = &cp
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].SortOrder != sorted[j].SortOrder {
			return sorted[i].SortOrder < sorted[j].SortOrder
		}
		return sorted[i].ID < sorted[j].ID
	})

	return &Catalog{defs: sorted, byID: byID}, nil
}

// LoadCatalog reads definitions from the repository
func LoadCatalog(ctx context.Context, repo Repository) (*Catalog, error) {
	defs, err := repo.ListDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load badge catalog: %w", err)
	}
	if len(defs) == 0 {
		return nil, ErrEmptyCatalog
	}
	return NewCatalog(defs)
}

// All returns definitions in display order
func (c *Catalog) All() []*Definition {
	return c.defs
}

// Get returns a definition by id
func (c *Catalog) Get(id string) (*Definition, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// RequirementTypes returns the distinct requirement types in use
func (c *Catalog) RequirementTypes() []RequirementType {
	seen := map[RequirementType]bool{}
	var out []RequirementType
	for _, d := range c.defs {
		if !seen[d.RequirementType] {
			seen[d.RequirementType] = true
			out = append(out, d.RequirementType)
		}
	}
	return out
}
