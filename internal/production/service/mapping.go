package service

import (
	"sort"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/hierarchy"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/timeline"
	"github.com/lib/pq"
)

// toDocument converts a loaded work item tree to the editable document.
func toDocument(item *entity.WorkItem, seeder *hierarchy.Seeder) *hierarchy.Document {
	doc := &hierarchy.Document{
		WorkItemID: item.ID,
		OrderID:    item.OrderID,
		Status:     item.Status,
		Version:    item.Version,
		Products:   make([]*hierarchy.Product, 0, len(item.Products)),
	}
	for _, p := range item.Products {
		prod := &hierarchy.Product{
			ID:         entity.Persisted(p.ID),
			CatalogRef: p.ProdukID,
			RoomLabel:  p.NamaRuangan,
			Quantity:   p.Quantity,
			Dimensions: hierarchy.Dimensions{Length: p.Panjang, Width: p.Lebar, Height: p.Tinggi},
			Categories: make([]*hierarchy.Category, 0, len(p.Categories)),
			BahanBaku:  fromInt64s(p.SelectedBahanBaku),
		}
		for _, c := range p.Categories {
			cat := &hierarchy.Category{
				ID:         entity.Persisted(c.ID),
				CatalogRef: c.JenisItemID,
				Default:    seeder.IsDefault(c.JenisItemID),
				Lines:      make([]*hierarchy.MaterialLine, 0, len(c.Lines)),
			}
			if c.JenisItem != nil {
				cat.Name = c.JenisItem.Name
			} else if spec, ok := seeder.Lookup(c.JenisItemID); ok {
				cat.Name = spec.Name
			}
			for _, l := range c.Lines {
				cat.Lines = append(cat.Lines, &hierarchy.MaterialLine{
					ID:          entity.Persisted(l.ID),
					MaterialRef: l.ItemID,
					Quantity:    l.Quantity,
					Note:        l.Notes,
				})
			}
			prod.Categories = append(prod.Categories, cat)
		}
		doc.Products = append(doc.Products, prod)
	}
	return doc
}

// applyDocument writes the document back onto item. Draft ids become 0 so
// the repository inserts them.
func applyDocument(item *entity.WorkItem, doc *hierarchy.Document) {
	item.Status = doc.Status
	item.Products = make([]entity.WorkItemProduct, 0, len(doc.Products))
	for _, p := range doc.Products {
		row := entity.WorkItemProduct{
			ID:                rowID(p.ID),
			WorkItemID:        item.ID,
			ProdukID:          p.CatalogRef,
			NamaRuangan:       p.RoomLabel,
			Quantity:          p.Quantity,
			Panjang:           p.Length,
			Lebar:             p.Width,
			Tinggi:            p.Height,
			SelectedBahanBaku: toInt64s(p.BahanBaku),
			Categories:        make([]entity.WorkItemCategory, 0, len(p.Categories)),
		}
		for _, c := range p.Categories {
			cat := entity.WorkItemCategory{
				ID:          rowID(c.ID),
				JenisItemID: c.CatalogRef,
				Lines:       make([]entity.WorkItemMaterial, 0, len(c.Lines)),
			}
			for _, l := range c.Lines {
				cat.Lines = append(cat.Lines, entity.WorkItemMaterial{
					ID:       rowID(l.ID),
					ItemID:   l.MaterialRef,
					Quantity: l.Quantity,
					Notes:    l.Note,
				})
			}
			row.Categories = append(row.Categories, cat)
		}
		item.Products = append(item.Products, row)
	}
}

// resolvedIDs pairs every draft id of doc with the id the repository gave
// the same row. doc and item must be in the order applyDocument produced.
func resolvedIDs(doc *hierarchy.Document, item *entity.WorkItem) map[string]uint64 {
	out := make(map[string]uint64)
	for i, p := range doc.Products {
		if i >= len(item.Products) {
			break
		}
		row := item.Products[i]
		if p.ID.IsDraft() {
			out[p.ID.String()] = row.ID
		}
		for j, c := range p.Categories {
			if j >= len(row.Categories) {
				break
			}
			cat := row.Categories[j]
			if c.ID.IsDraft() {
				out[c.ID.String()] = cat.ID
			}
			for k, l := range c.Lines {
				if k < len(cat.Lines) && l.ID.IsDraft() {
					out[l.ID.String()] = cat.Lines[k].ID
				}
			}
		}
	}
	return out
}

func rowID(id entity.RowID) uint64 {
	v, _ := id.Value()
	return v
}

func fromInt64s(a pq.Int64Array) []uint64 {
	out := make([]uint64, 0, len(a))
	for _, v := range a {
		if v > 0 {
			out = append(out, uint64(v))
		}
	}
	return out
}

func toInt64s(ids []uint64) pq.Int64Array {
	out := make(pq.Int64Array, 0, len(ids))
	for _, v := range ids {
		out = append(out, int64(v))
	}
	return out
}

// toPlan builds the schedule document of one work item from its rows.
func toPlan(item *entity.WorkItem, products []entity.WorkItemProduct, stages []entity.WorkplanItem) *timeline.Plan {
	plan := &timeline.Plan{WorkItemID: item.ID, Products: make([]*timeline.ProductPlan, 0, len(products))}
	if start, end := entity.FromDate(item.TimelineStart), entity.FromDate(item.TimelineEnd); start != nil && end != nil {
		if w, err := timeline.NewWindow(*start, *end); err == nil {
			plan.Window = &w
		}
	}

	byProduct := make(map[uint64][]entity.WorkplanItem)
	for _, st := range stages {
		byProduct[st.WorkItemProductID] = append(byProduct[st.WorkItemProductID], st)
	}
	for _, p := range products {
		pp := &timeline.ProductPlan{ProductID: p.ID, RoomLabel: p.NamaRuangan, Stages: []*timeline.Stage{}}
		if p.Produk != nil {
			pp.Name = p.Produk.Name
		}
		rows := byProduct[p.ID]
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Urutan < rows[j].Urutan })
		for _, r := range rows {
			st, err := timeline.BuildStage(r.Urutan, r.NamaTahapan, entity.FromDate(r.StartDate), entity.FromDate(r.EndDate), r.Status, r.Catatan)
			if err != nil {
				st = timeline.NewStage(r.Urutan, r.NamaTahapan)
				st.Note = r.Catatan
			}
			pp.Stages = append(pp.Stages, st)
		}
		plan.Products = append(plan.Products, pp)
	}
	return plan
}

// stageRows converts one product's stages to rows for ReplaceForProduct.
func stageRows(workItemID uint64, p *timeline.ProductPlan) []entity.WorkplanItem {
	rows := make([]entity.WorkplanItem, 0, len(p.Stages))
	for _, st := range p.Stages {
		rows = append(rows, entity.WorkplanItem{
			WorkItemID:        workItemID,
			WorkItemProductID: p.ProductID,
			Urutan:            st.Urutan,
			NamaTahapan:       st.Name,
			StartDate:         entity.ToDate(st.Start),
			EndDate:           entity.ToDate(st.End),
			DurationDays:      st.Duration,
			Status:            st.Status,
			Catatan:           st.Note,
		})
	}
	return rows
}
