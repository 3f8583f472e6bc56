package service

import (
	"testing"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/hierarchy"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

func testSeeder() *hierarchy.Seeder {
	return hierarchy.NewSeeder([]hierarchy.CategorySpec{
		{ID: 1, Name: "Bahan Baku", IsDefault: true, SortOrder: 1},
		{ID: 2, Name: "Finishing Luar", IsDefault: true, SortOrder: 2},
		{ID: 4, Name: "Aksesoris", IsAccessory: true, SortOrder: 4},
	})
}

func storedItem() *entity.WorkItem {
	produk := uint64(7)
	length := decimal.NewFromFloat(120.5)
	return &entity.WorkItem{
		ID:      10,
		OrderID: 3,
		Status:  entity.WorkItemStatusDraft,
		Version: 4,
		Products: []entity.WorkItemProduct{{
			ID:                20,
			WorkItemID:        10,
			ProdukID:          &produk,
			NamaRuangan:       "Dapur",
			Quantity:          2,
			Panjang:           &length,
			SelectedBahanBaku: pq.Int64Array{5, 3},
			Categories: []entity.WorkItemCategory{
				{ID: 30, JenisItemID: 1, Lines: []entity.WorkItemMaterial{{ID: 40, ItemID: 100, Quantity: 1}}},
				{ID: 31, JenisItemID: 4, JenisItem: &entity.JenisItem{Name: "Aksesoris"}},
			},
		}},
	}
}

func TestToDocument(t *testing.T) {
	doc := toDocument(storedItem(), testSeeder())
	if doc.WorkItemID != 10 || doc.Version != 4 || len(doc.Products) != 1 {
		t.Fatalf("doc = %+v", doc)
	}
	p := doc.Products[0]
	if p.ID != entity.Persisted(20) || p.RoomLabel != "Dapur" || p.Length == nil || !p.Length.Equal(decimal.NewFromFloat(120.5)) {
		t.Fatalf("product = %+v", p)
	}
	if len(p.BahanBaku) != 2 {
		t.Errorf("bahan baku = %v", p.BahanBaku)
	}
	if c := p.Categories[0]; !c.Default || c.Name != "Bahan Baku" || c.Lines[0].ID != entity.Persisted(40) {
		t.Errorf("default category = %+v", c)
	}
	if c := p.Categories[1]; c.Default || c.Name != "Aksesoris" {
		t.Errorf("user category = %+v", c)
	}
}

func TestApplyDocumentAndResolve(t *testing.T) {
	item := storedItem()
	store := hierarchy.NewStore(testSeeder(), toDocument(item, testSeeder()))
	added, err := store.CreateProduct(hierarchy.ProductInput{RoomLabel: "Kamar", Quantity: 1})
	if err != nil {
		t.Fatal(err)
	}
	line, err := store.AddMaterialLine(added.ID, added.Categories[0].ID, 100, 9, "")
	if err != nil {
		t.Fatal(err)
	}

	doc := store.Document()
	applyDocument(item, doc)
	if len(item.Products) != 2 || item.Products[0].ID != 20 || item.Products[1].ID != 0 {
		t.Fatalf("products = %+v", item.Products)
	}
	if item.Products[1].Categories[0].Lines[0].Quantity != 1 {
		t.Errorf("forced quantity lost")
	}

	// the repository assigns ids in place
	item.Products[1].ID = 21
	for i := range item.Products[1].Categories {
		item.Products[1].Categories[i].ID = uint64(50 + i)
	}
	item.Products[1].Categories[0].Lines[0].ID = 60

	resolved := resolvedIDs(doc, item)
	if resolved[added.ID.String()] != 21 || resolved[line.ID.String()] != 60 {
		t.Fatalf("resolved = %v", resolved)
	}
	if _, ok := resolved["20"]; ok {
		t.Errorf("persisted ids must not be listed")
	}
}

func TestToPlanSortsAndDerives(t *testing.T) {
	start := datatypes.Date(entity.Day(mustDay("2025-01-01")))
	end := datatypes.Date(entity.Day(mustDay("2025-01-31")))
	s1 := datatypes.Date(mustDay("2025-01-05"))
	e1 := datatypes.Date(mustDay("2025-01-07"))
	item := &entity.WorkItem{ID: 1, TimelineStart: &start, TimelineEnd: &end}
	products := []entity.WorkItemProduct{{ID: 2, NamaRuangan: "Dapur", Produk: &entity.Produk{Name: "Kitchen Set"}}}
	stages := []entity.WorkplanItem{
		{WorkItemProductID: 2, Urutan: 2, NamaTahapan: "Rangkai", Status: entity.StageStatusPlanned},
		{WorkItemProductID: 2, Urutan: 1, NamaTahapan: "Potong", StartDate: &s1, EndDate: &e1, Status: entity.StageStatusDone},
	}

	plan := toPlan(item, products, stages)
	if plan.Window == nil || plan.Window.TotalDays() != 31 {
		t.Fatalf("window = %v", plan.Window)
	}
	pp := plan.Products[0]
	if pp.Name != "Kitchen Set" || pp.Stages[0].Name != "Potong" || *pp.Stages[0].Duration != 3 {
		t.Fatalf("plan product = %+v", pp)
	}

	rows := stageRows(1, pp)
	if len(rows) != 2 || rows[0].Urutan != 1 || *rows[0].DurationDays != 3 || rows[1].StartDate != nil {
		t.Errorf("rows = %+v", rows)
	}
}
