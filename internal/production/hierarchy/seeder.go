package hierarchy

import (
	"fmt"
	"sort"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
)

// CategorySpec is one entry of the material-category catalog.
type CategorySpec struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	IsDefault   bool   `json:"is_default"`
	IsAccessory bool   `json:"is_accessory"`
	SortOrder   int    `json:"sort_order"`
}

// ForcesUnitQuantity reports whether material lines under the category
// always store a quantity of 1.
func (c CategorySpec) ForcesUnitQuantity() bool {
	return c.IsDefault && !c.IsAccessory
}

// Seeder derives the mandatory default categories from the catalog and
// enforces quantity forcing.
type Seeder struct {
	byID     map[uint64]CategorySpec
	defaults []CategorySpec
}

// NewSeeder indexes the catalog. Defaults keep catalog order (sort order,
// then id).
func NewSeeder(catalog []CategorySpec) *Seeder {
	s := &Seeder{byID: make(map[uint64]CategorySpec, len(catalog))}
	for _, c := range catalog {
		s.byID[c.ID] = c
		if c.IsDefault {
			s.defaults = append(s.defaults, c)
		}
	}
	sort.SliceStable(s.defaults, func(i, j int) bool {
		if s.defaults[i].SortOrder != s.defaults[j].SortOrder {
			return s.defaults[i].SortOrder < s.defaults[j].SortOrder
		}
		return s.defaults[i].ID < s.defaults[j].ID
	})
	return s
}

// SeederFromCatalog builds a Seeder from persisted catalog rows.
func SeederFromCatalog(rows []entity.JenisItem) *Seeder {
	specs := make([]CategorySpec, 0, len(rows))
	for _, r := range rows {
		specs = append(specs, CategorySpec{
			ID:          r.ID,
			Name:        r.Name,
			IsDefault:   r.IsDefault,
			IsAccessory: r.IsAccessory,
			SortOrder:   r.SortOrder,
		})
	}
	return NewSeeder(specs)
}

// Defaults returns a copy of the default categories in catalog order.
func (s *Seeder) Defaults() []CategorySpec {
	out := make([]CategorySpec, len(s.defaults))
	copy(out, s.defaults)
	return out
}

func (s *Seeder) Lookup(id uint64) (CategorySpec, bool) {
	c, ok := s.byID[id]
	return c, ok
}

func (s *Seeder) IsDefault(id uint64) bool {
	return s.byID[id].IsDefault
}

// SeedCategories returns fresh, empty default categories for a new product.
func (s *Seeder) SeedCategories() []*Category {
	out := make([]*Category, 0, len(s.defaults))
	for _, d := range s.defaults {
		out = append(out, &Category{
			ID:         entity.NewDraftID(),
			CatalogRef: d.ID,
			Name:       d.Name,
			Default:    true,
			Lines:      []*MaterialLine{},
		})
	}
	return out
}

// EffectiveQuantity applies quantity forcing. Forced categories silently
// store 1; every other category requires requested >= 1.
func (s *Seeder) EffectiveQuantity(categoryRef uint64, requested int) (int, error) {
	c, ok := s.byID[categoryRef]
	if !ok {
		return 0, entity.Fail(entity.ErrUnknownCategory, fmt.Sprintf("catalog category %d", categoryRef))
	}
	if c.ForcesUnitQuantity() {
		return 1, nil
	}
	if requested < 1 {
		return 0, entity.Fail(entity.ErrInvalidQuantity, fmt.Sprintf("quantity %d must be at least 1", requested)).
			WithCategory(c.Name)
	}
	return requested, nil
}
