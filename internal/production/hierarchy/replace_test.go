package hierarchy

import (
	"errors"
	"reflect"
	"testing"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
)

// persistedStore returns a store holding one persisted product with ids
// 1 (product), 11..13 (defaults), 14 (Hardware) and 21 (line under Hardware).
func persistedStore() *Store {
	ref := uint64(10)
	doc := &Document{
		WorkItemID: 7,
		Status:     entity.WorkItemStatusDraft,
		Version:    1,
		Products: []*Product{{
			ID:         entity.Persisted(1),
			CatalogRef: &ref,
			RoomLabel:  "Dapur",
			Quantity:   1,
			Categories: []*Category{
				{ID: entity.Persisted(11), CatalogRef: catBahanBaku, Name: "Bahan Baku", Default: true, Lines: []*MaterialLine{}},
				{ID: entity.Persisted(12), CatalogRef: catFinishingLuar, Name: "Finishing Luar", Default: true, Lines: []*MaterialLine{}},
				{ID: entity.Persisted(13), CatalogRef: catFinishingDalam, Name: "Finishing Dalam", Default: true, Lines: []*MaterialLine{}},
				{ID: entity.Persisted(14), CatalogRef: catHardware, Name: "Hardware", Lines: []*MaterialLine{
					{ID: entity.Persisted(21), MaterialRef: 500, Quantity: 4},
				}},
			},
			BahanBaku: []uint64{},
		}},
	}
	return NewStore(NewSeeder(testCatalog()), doc)
}

func cloneForClient(p *Product) *Product {
	out := *p
	out.Categories = nil
	for _, c := range p.Categories {
		cc := *c
		cc.Lines = nil
		for _, l := range c.Lines {
			ll := *l
			cc.Lines = append(cc.Lines, &ll)
		}
		out.Categories = append(out.Categories, &cc)
	}
	return &out
}

func TestReplacePreservesIdentity(t *testing.T) {
	s := persistedStore()
	client := cloneForClient(s.Document().Products[0])
	client.Quantity = 3
	client.Categories[3].Lines[0].Quantity = 9
	client.Categories[0].Lines = append(client.Categories[0].Lines, &MaterialLine{MaterialRef: 600, Quantity: 8})

	fresh := &Product{Quantity: 1, RoomLabel: "Kamar"}

	if err := s.Replace([]*Product{client, fresh}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	products := s.Document().Products
	if len(products) != 2 {
		t.Fatalf("products = %d, want 2", len(products))
	}
	p := products[0]
	if p.ID != entity.Persisted(1) || p.Quantity != 3 {
		t.Fatalf("product = %s qty %d", p.ID, p.Quantity)
	}
	if p.Categories[3].ID != entity.Persisted(14) || p.Categories[3].Lines[0].ID != entity.Persisted(21) {
		t.Fatalf("persisted ids not preserved")
	}
	if p.Categories[3].Lines[0].Quantity != 9 {
		t.Errorf("hardware line qty = %d, want 9", p.Categories[3].Lines[0].Quantity)
	}
	added := p.Categories[0].Lines[0]
	if !added.ID.IsDraft() || added.Quantity != 1 {
		t.Errorf("new bahan baku line = %+v, want draft id and qty 1", added)
	}
	if !products[1].ID.IsDraft() || len(products[1].Categories) != 3 {
		t.Errorf("fresh product should be seeded with defaults, got %d categories", len(products[1].Categories))
	}
}

func TestReplaceAdoptsClientSeededDefaults(t *testing.T) {
	s := persistedStore()
	draft := entity.NewDraftID()
	fresh := &Product{
		ID:       draft,
		Quantity: 1,
		Categories: []*Category{
			{ID: entity.NewDraftID(), CatalogRef: catBahanBaku, Lines: []*MaterialLine{{MaterialRef: 1, Quantity: 6}}},
			{ID: entity.NewDraftID(), CatalogRef: catFinishingLuar},
			{ID: entity.NewDraftID(), CatalogRef: catFinishingDalam},
			{ID: entity.NewDraftID(), CatalogRef: catAksesoris, Lines: []*MaterialLine{{MaterialRef: 2, Quantity: 6}}},
		},
	}
	existing := cloneForClient(s.Document().Products[0])
	if err := s.Replace([]*Product{existing, fresh}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	p := s.Document().Products[1]
	if p.ID != draft {
		t.Fatalf("client draft id not kept: %s", p.ID)
	}
	if len(p.Categories) != 4 {
		t.Fatalf("categories = %d, want 4", len(p.Categories))
	}
	if q := p.Categories[0].Lines[0].Quantity; q != 1 {
		t.Errorf("bahan baku qty = %d, want 1", q)
	}
	if q := p.Categories[3].Lines[0].Quantity; q != 6 {
		t.Errorf("aksesoris qty = %d, want 6", q)
	}
}

func TestReplaceSeedsDefaultsForNewProduct(t *testing.T) {
	defaults := []uint64{catBahanBaku, catFinishingLuar, catFinishingDalam}
	withAksesoris := append(append([]uint64{}, defaults...), catAksesoris)
	cases := []struct {
		name string
		sent []*Category
		want []uint64
	}{
		{"no categories", nil, defaults},
		{"only aksesoris", []*Category{{CatalogRef: catAksesoris}}, withAksesoris},
		{"defaults out of order", []*Category{
			{CatalogRef: catAksesoris}, {CatalogRef: catFinishingDalam}, {CatalogRef: catBahanBaku},
		}, withAksesoris},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := persistedStore()
			existing := cloneForClient(s.Document().Products[0])
			fresh := &Product{Quantity: 1, RoomLabel: "Kamar", Categories: tc.sent}
			if err := s.Replace([]*Product{existing, fresh}); err != nil {
				t.Fatalf("Replace: %v", err)
			}
			p := s.Document().Products[1]
			if got := categoryRefs(p); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("categories = %v, want %v", got, tc.want)
			}
			for _, c := range p.Categories[:3] {
				if !c.Default {
					t.Errorf("%s not marked default", c.Name)
				}
			}
		})
	}
}

func TestReplaceRejectsWithoutChanges(t *testing.T) {
	cases := []struct {
		name string
		edit func(p *Product) []*Product
		want error
	}{
		{"drop default", func(p *Product) []*Product {
			p.Categories = p.Categories[1:]
			return []*Product{p}
		}, entity.ErrProtectedCategory},
		{"unknown product", func(p *Product) []*Product {
			p.ID = entity.Persisted(99)
			return []*Product{p}
		}, entity.ErrUnknownProduct},
		{"unknown category", func(p *Product) []*Product {
			p.Categories[3].ID = entity.Persisted(99)
			return []*Product{p}
		}, entity.ErrUnknownCategory},
		{"duplicate user category", func(p *Product) []*Product {
			p.Categories = append(p.Categories, &Category{CatalogRef: catHardware})
			return []*Product{p}
		}, entity.ErrDuplicateCategory},
		{"unknown line", func(p *Product) []*Product {
			p.Categories[3].Lines[0].ID = entity.Persisted(77)
			return []*Product{p}
		}, entity.ErrUnknownLine},
		{"zero quantity line", func(p *Product) []*Product {
			p.Categories[3].Lines[0].Quantity = 0
			return []*Product{p}
		}, entity.ErrInvalidQuantity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := persistedStore()
			client := cloneForClient(s.Document().Products[0])
			err := s.Replace(tc.edit(client))
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			p := s.Document().Products[0]
			if len(p.Categories) != 4 || p.Categories[3].Lines[0].Quantity != 4 {
				t.Fatalf("store mutated by rejected replace")
			}
		})
	}
}

func TestReplaceRemovesDroppedRows(t *testing.T) {
	s := persistedStore()
	client := cloneForClient(s.Document().Products[0])
	client.Categories = client.Categories[:3]
	if err := s.Replace([]*Product{client}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if n := len(s.Document().Products[0].Categories); n != 3 {
		t.Fatalf("categories = %d, want 3", n)
	}
	if err := s.Replace(nil); err != nil {
		t.Fatalf("Replace(nil): %v", err)
	}
	if n := len(s.Document().Products); n != 0 {
		t.Fatalf("products = %d, want 0", n)
	}
}
