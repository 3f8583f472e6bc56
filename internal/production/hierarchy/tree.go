package hierarchy

import (
	"fmt"
	"sort"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"github.com/shopspring/decimal"
)

// SaveMode selects how a document is persisted.
type SaveMode string

const (
	ModeDraft   SaveMode = "draft"
	ModePublish SaveMode = "publish"
)

func (m SaveMode) Valid() bool {
	return m == ModeDraft || m == ModePublish
}

// Dimensions are optional and non-negative.
type Dimensions struct {
	Length *decimal.Decimal `json:"panjang,omitempty"`
	Width  *decimal.Decimal `json:"lebar,omitempty"`
	Height *decimal.Decimal `json:"tinggi,omitempty"`
}

func (d Dimensions) validate() error {
	fields := []struct {
		name  string
		value *decimal.Decimal
	}{
		{"panjang", d.Length},
		{"lebar", d.Width},
		{"tinggi", d.Height},
	}
	for _, f := range fields {
		if f.value != nil && f.value.IsNegative() {
			return entity.Fail(entity.ErrInvalidDimension, f.name+" must not be negative").WithField(f.name)
		}
	}
	return nil
}

type MaterialLine struct {
	ID          entity.RowID `json:"id"`
	MaterialRef uint64       `json:"item_id"`
	Quantity    int          `json:"quantity"`
	Note        string       `json:"notes,omitempty"`
}

type Category struct {
	ID         entity.RowID    `json:"id"`
	CatalogRef uint64          `json:"jenis_item_id"`
	Name       string          `json:"name"`
	Default    bool            `json:"is_default"`
	Lines      []*MaterialLine `json:"lines"`
}

func (c *Category) line(id entity.RowID) (int, *MaterialLine) {
	for i, l := range c.Lines {
		if l.ID == id {
			return i, l
		}
	}
	return -1, nil
}

type Product struct {
	ID         entity.RowID `json:"id"`
	CatalogRef *uint64      `json:"produk_id"`
	RoomLabel  string       `json:"nama_ruangan"`
	Quantity   int          `json:"quantity"`
	Dimensions
	Categories []*Category `json:"categories"`
	BahanBaku  []uint64    `json:"selected_bahan_baku"`
}

// Label names the product in error messages.
func (p *Product) Label() string {
	if p.CatalogRef != nil {
		return fmt.Sprintf("%s (produk %d)", p.ID, *p.CatalogRef)
	}
	return p.ID.String()
}

func (p *Product) category(id entity.RowID) (int, *Category) {
	for i, c := range p.Categories {
		if c.ID == id {
			return i, c
		}
	}
	return -1, nil
}

func (p *Product) categoryByRef(ref uint64) *Category {
	for _, c := range p.Categories {
		if c.CatalogRef == ref {
			return c
		}
	}
	return nil
}

// Document is the full Room -> Product -> Category -> MaterialLine tree of
// one work item.
type Document struct {
	WorkItemID uint64     `json:"work_item_id"`
	OrderID    uint64     `json:"order_id"`
	Status     string     `json:"status"`
	Version    int        `json:"version"`
	Products   []*Product `json:"products"`
}

// normalizeSelection sorts and deduplicates a raw-material selection.
func normalizeSelection(ids []uint64) []uint64 {
	if len(ids) == 0 {
		return []uint64{}
	}
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
