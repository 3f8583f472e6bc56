package hierarchy

import (
	"fmt"
	"strings"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
)

// Replace reconciles the store with a full client-side copy of the tree.
// Rows carrying a persisted id are updated in place; rows carrying a draft
// (or no) id are added; persisted rows the client dropped are removed.
// Default categories can't be dropped. Nothing changes unless the whole
// document is valid.
func (s *Store) Replace(incoming []*Product) error {
	existing := make(map[entity.RowID]*Product, len(s.doc.Products))
	for _, p := range s.doc.Products {
		existing[p.ID] = p
	}

	next := make([]*Product, 0, len(incoming))
	seen := make(map[entity.RowID]struct{}, len(incoming))
	for _, in := range incoming {
		if in == nil {
			continue
		}
		var base *Product
		if _, ok := in.ID.Value(); ok {
			base = existing[in.ID]
			if base == nil {
				return entity.Fail(entity.ErrUnknownProduct, "").WithProduct(in.ID.String())
			}
		}
		p, err := s.reconcileProduct(base, in)
		if err != nil {
			return err
		}
		if _, dup := seen[p.ID]; dup {
			return entity.Fail(entity.ErrUnknownProduct, "product listed twice").WithProduct(p.ID.String())
		}
		seen[p.ID] = struct{}{}
		next = append(next, p)
	}

	s.doc.Products = next
	return nil
}

// reconcileProduct builds the new state of one product without touching base.
func (s *Store) reconcileProduct(base, in *Product) (*Product, error) {
	input := ProductInput{
		CatalogRef: in.CatalogRef,
		RoomLabel:  in.RoomLabel,
		Quantity:   in.Quantity,
		Dimensions: in.Dimensions,
	}
	id := in.ID
	var current []*Category
	if base != nil {
		current = base.Categories
	} else {
		if id.IsZero() {
			id = entity.NewDraftID()
		}
		current = s.seeder.SeedCategories()
	}
	p := &Product{
		ID:         id,
		CatalogRef: input.CatalogRef,
		RoomLabel:  strings.TrimSpace(input.RoomLabel),
		Quantity:   input.Quantity,
		Dimensions: input.Dimensions,
		BahanBaku:  normalizeSelection(in.BahanBaku),
	}
	if err := input.validate(); err != nil {
		return nil, withProduct(err, p)
	}

	byID := make(map[entity.RowID]*Category, len(current))
	byRef := make(map[uint64]*Category, len(current))
	for _, c := range current {
		byID[c.ID] = c
		byRef[c.CatalogRef] = c
	}

	used := make(map[entity.RowID]struct{}, len(in.Categories))
	refs := make(map[uint64]struct{}, len(in.Categories))
	adopted := make(map[entity.RowID]*Category, len(in.Categories))
	for _, ic := range in.Categories {
		if ic == nil {
			continue
		}
		var prev *Category
		if _, ok := ic.ID.Value(); ok {
			prev = byID[ic.ID]
			if prev == nil {
				return nil, entity.Fail(entity.ErrUnknownCategory, "").WithProduct(p.Label()).WithCategory(ic.ID.String())
			}
		} else if d := byRef[ic.CatalogRef]; d != nil && d.Default {
			// a client copy of a freshly seeded default
			prev = d
		}

		var c *Category
		if prev != nil {
			if _, dup := used[prev.ID]; dup {
				return nil, entity.Fail(entity.ErrDuplicateCategory, "").WithProduct(p.Label()).WithCategory(prev.Name)
			}
			c = &Category{ID: prev.ID, CatalogRef: prev.CatalogRef, Name: prev.Name, Default: prev.Default}
			if prev.ID.IsDraft() && ic.ID.IsDraft() {
				c.ID = ic.ID
			}
		} else {
			spec, ok := s.seeder.Lookup(ic.CatalogRef)
			if !ok {
				return nil, entity.Fail(entity.ErrUnknownCategory, fmt.Sprintf("catalog category %d", ic.CatalogRef)).
					WithProduct(p.Label())
			}
			if spec.IsDefault {
				return nil, entity.Fail(entity.ErrDuplicateCategory, "default categories are attached automatically").
					WithProduct(p.Label()).WithCategory(spec.Name)
			}
			cid := ic.ID
			if cid.IsZero() {
				cid = entity.NewDraftID()
			}
			c = &Category{ID: cid, CatalogRef: spec.ID, Name: spec.Name}
		}
		if _, dup := refs[c.CatalogRef]; dup {
			return nil, entity.Fail(entity.ErrDuplicateCategory, "").WithProduct(p.Label()).WithCategory(c.Name)
		}
		if prev != nil {
			used[prev.ID] = struct{}{}
			adopted[prev.ID] = c
		}
		refs[c.CatalogRef] = struct{}{}

		var baseLines []*MaterialLine
		if prev != nil {
			baseLines = prev.Lines
		}
		lines, err := s.reconcileLines(p, c, baseLines, ic.Lines)
		if err != nil {
			return nil, err
		}
		c.Lines = lines
		p.Categories = append(p.Categories, c)
	}

	if base == nil {
		p.Categories = withDefaults(current, adopted, p.Categories)
		return p, nil
	}

	// dropped defaults are protected
	for _, c := range current {
		if _, ok := used[c.ID]; ok {
			continue
		}
		if c.Default || s.seeder.IsDefault(c.CatalogRef) {
			return nil, entity.Fail(entity.ErrProtectedCategory, "default categories cannot be removed").
				WithProduct(p.Label()).WithCategory(c.Name)
		}
	}
	if p.Categories == nil {
		p.Categories = []*Category{}
	}
	return p, nil
}

func (s *Store) reconcileLines(p *Product, c *Category, current, incoming []*MaterialLine) ([]*MaterialLine, error) {
	byID := make(map[entity.RowID]struct{}, len(current))
	for _, l := range current {
		byID[l.ID] = struct{}{}
	}
	out := make([]*MaterialLine, 0, len(incoming))
	seen := make(map[entity.RowID]struct{}, len(incoming))
	for _, il := range incoming {
		if il == nil {
			continue
		}
		id := il.ID
		if _, ok := id.Value(); ok {
			if _, known := byID[id]; !known {
				return nil, entity.Fail(entity.ErrUnknownLine, id.String()).WithProduct(p.Label()).WithCategory(c.Name)
			}
		} else if id.IsZero() {
			id = entity.NewDraftID()
		}
		if _, dup := seen[id]; dup {
			return nil, entity.Fail(entity.ErrUnknownLine, "line listed twice: "+id.String()).
				WithProduct(p.Label()).WithCategory(c.Name)
		}
		seen[id] = struct{}{}
		qty, err := s.seeder.EffectiveQuantity(c.CatalogRef, il.Quantity)
		if err != nil {
			return nil, withProduct(err, p)
		}
		out = append(out, &MaterialLine{ID: id, MaterialRef: il.MaterialRef, Quantity: qty, Note: il.Note})
	}
	return out, nil
}

// withDefaults orders the categories of a new product: every seeded
// default in catalog order, the client's copy where one was sent, then
// the remaining categories as sent.
func withDefaults(seeded []*Category, adopted map[entity.RowID]*Category, sent []*Category) []*Category {
	out := make([]*Category, 0, len(seeded)+len(sent))
	taken := make(map[*Category]struct{}, len(adopted))
	for _, d := range seeded {
		if c, ok := adopted[d.ID]; ok {
			out = append(out, c)
			taken[c] = struct{}{}
			continue
		}
		out = append(out, d)
	}
	for _, c := range sent {
		if _, ok := taken[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}
