package hierarchy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
)

// ProductInput carries the editable scalar fields of a product.
type ProductInput struct {
	CatalogRef *uint64
	RoomLabel  string
	Quantity   int
	Dimensions Dimensions
}

func (in ProductInput) validate() error {
	if in.Quantity < 1 {
		return entity.Fail(entity.ErrInvalidQuantity, fmt.Sprintf("product quantity %d must be at least 1", in.Quantity))
	}
	return in.Dimensions.validate()
}

// Store is an in-memory structural editor for one work item's tree.
// Persisted rows keep their ids across edits; new rows get draft ids.
// Every operation validates before it mutates.
type Store struct {
	seeder *Seeder
	doc    *Document
}

func NewStore(seeder *Seeder, doc *Document) *Store {
	if doc == nil {
		doc = &Document{Status: entity.WorkItemStatusDraft}
	}
	if doc.Products == nil {
		doc.Products = []*Product{}
	}
	return &Store{seeder: seeder, doc: doc}
}

func (s *Store) Document() *Document { return s.doc }

func (s *Store) Seeder() *Seeder { return s.seeder }

// Product finds a product by id.
func (s *Store) Product(id entity.RowID) (*Product, error) {
	_, p, err := s.product(id)
	return p, err
}

func (s *Store) product(id entity.RowID) (int, *Product, error) {
	for i, p := range s.doc.Products {
		if p.ID == id {
			return i, p, nil
		}
	}
	return -1, nil, entity.Fail(entity.ErrUnknownProduct, "").WithProduct(id.String())
}

func (s *Store) categoryOf(productID, categoryID entity.RowID) (*Product, int, *Category, error) {
	p, err := s.Product(productID)
	if err != nil {
		return nil, -1, nil, err
	}
	i, c := p.category(categoryID)
	if c == nil {
		return nil, -1, nil, entity.Fail(entity.ErrUnknownCategory, "").
			WithProduct(p.Label()).WithCategory(categoryID.String())
	}
	return p, i, c, nil
}

// CreateProduct appends a product seeded with the default categories.
func (s *Store) CreateProduct(in ProductInput) (*Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := &Product{
		ID:         entity.NewDraftID(),
		CatalogRef: in.CatalogRef,
		RoomLabel:  strings.TrimSpace(in.RoomLabel),
		Quantity:   in.Quantity,
		Dimensions: in.Dimensions,
		Categories: s.seeder.SeedCategories(),
		BahanBaku:  []uint64{},
	}
	s.doc.Products = append(s.doc.Products, p)
	return p, nil
}

// UpdateProduct rewrites the scalar fields in place.
func (s *Store) UpdateProduct(id entity.RowID, in ProductInput) error {
	p, err := s.Product(id)
	if err != nil {
		return err
	}
	if err := in.validate(); err != nil {
		return withProduct(err, p)
	}
	p.CatalogRef = in.CatalogRef
	p.RoomLabel = strings.TrimSpace(in.RoomLabel)
	p.Quantity = in.Quantity
	p.Dimensions = in.Dimensions
	return nil
}

func (s *Store) RemoveProduct(id entity.RowID) error {
	i, _, err := s.product(id)
	if err != nil {
		return err
	}
	s.doc.Products = append(s.doc.Products[:i], s.doc.Products[i+1:]...)
	return nil
}

// AddCategory attaches a user-added category. Defaults are seeded, never
// added, so they count as duplicates here.
func (s *Store) AddCategory(productID entity.RowID, catalogRef uint64) (*Category, error) {
	p, err := s.Product(productID)
	if err != nil {
		return nil, err
	}
	spec, ok := s.seeder.Lookup(catalogRef)
	if !ok {
		return nil, entity.Fail(entity.ErrUnknownCategory, fmt.Sprintf("catalog category %d", catalogRef)).
			WithProduct(p.Label())
	}
	if spec.IsDefault {
		return nil, entity.Fail(entity.ErrDuplicateCategory, "default categories are attached automatically").
			WithProduct(p.Label()).WithCategory(spec.Name)
	}
	if p.categoryByRef(catalogRef) != nil {
		return nil, entity.Fail(entity.ErrDuplicateCategory, "").
			WithProduct(p.Label()).WithCategory(spec.Name)
	}
	c := &Category{
		ID:         entity.NewDraftID(),
		CatalogRef: spec.ID,
		Name:       spec.Name,
		Lines:      []*MaterialLine{},
	}
	p.Categories = append(p.Categories, c)
	return c, nil
}

func (s *Store) RemoveCategory(productID, categoryID entity.RowID) error {
	p, i, c, err := s.categoryOf(productID, categoryID)
	if err != nil {
		return err
	}
	if c.Default || s.seeder.IsDefault(c.CatalogRef) {
		return entity.Fail(entity.ErrProtectedCategory, "default categories cannot be removed").
			WithProduct(p.Label()).WithCategory(c.Name)
	}
	p.Categories = append(p.Categories[:i], p.Categories[i+1:]...)
	return nil
}

// AddMaterialLine appends a line; the stored quantity follows
// Seeder.EffectiveQuantity.
func (s *Store) AddMaterialLine(productID, categoryID entity.RowID, materialRef uint64, qty int, note string) (*MaterialLine, error) {
	p, _, c, err := s.categoryOf(productID, categoryID)
	if err != nil {
		return nil, err
	}
	effective, err := s.seeder.EffectiveQuantity(c.CatalogRef, qty)
	if err != nil {
		return nil, withProduct(err, p)
	}
	l := &MaterialLine{
		ID:          entity.NewDraftID(),
		MaterialRef: materialRef,
		Quantity:    effective,
		Note:        note,
	}
	c.Lines = append(c.Lines, l)
	return l, nil
}

func (s *Store) UpdateMaterialLine(productID, categoryID, lineID entity.RowID, materialRef uint64, qty int, note string) error {
	p, _, c, err := s.categoryOf(productID, categoryID)
	if err != nil {
		return err
	}
	_, l := c.line(lineID)
	if l == nil {
		return entity.Fail(entity.ErrUnknownLine, lineID.String()).WithProduct(p.Label()).WithCategory(c.Name)
	}
	effective, err := s.seeder.EffectiveQuantity(c.CatalogRef, qty)
	if err != nil {
		return withProduct(err, p)
	}
	l.MaterialRef = materialRef
	l.Quantity = effective
	l.Note = note
	return nil
}

func (s *Store) RemoveMaterialLine(productID, categoryID, lineID entity.RowID) error {
	p, _, c, err := s.categoryOf(productID, categoryID)
	if err != nil {
		return err
	}
	i, l := c.line(lineID)
	if l == nil {
		return entity.Fail(entity.ErrUnknownLine, lineID.String()).WithProduct(p.Label()).WithCategory(c.Name)
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return nil
}

// ToggleBahanBaku flips one raw material in the product's selection.
func (s *Store) ToggleBahanBaku(productID entity.RowID, materialID uint64) error {
	p, err := s.Product(productID)
	if err != nil {
		return err
	}
	next := make([]uint64, 0, len(p.BahanBaku)+1)
	found := false
	for _, id := range p.BahanBaku {
		if id == materialID {
			found = true
			continue
		}
		next = append(next, id)
	}
	if !found {
		next = append(next, materialID)
	}
	p.BahanBaku = normalizeSelection(next)
	return nil
}

// SelectAllBahanBaku replaces the selection with every available id.
func (s *Store) SelectAllBahanBaku(productID entity.RowID, available []uint64) error {
	p, err := s.Product(productID)
	if err != nil {
		return err
	}
	p.BahanBaku = normalizeSelection(available)
	return nil
}

func (s *Store) ClearAllBahanBaku(productID entity.RowID) error {
	p, err := s.Product(productID)
	if err != nil {
		return err
	}
	p.BahanBaku = []uint64{}
	return nil
}

// Prepare validates the document for the given save mode and sets its
// status. Publishing requires every product to reference the catalog.
func (s *Store) Prepare(mode SaveMode) error {
	if !mode.Valid() {
		return entity.Fail(entity.ErrInvalidStatus, fmt.Sprintf("unknown save mode %q", mode))
	}
	if mode == ModePublish {
		for _, p := range s.doc.Products {
			if p.CatalogRef == nil || *p.CatalogRef == 0 {
				return entity.Fail(entity.ErrIncompleteProduct, "product has no catalog reference").WithProduct(p.Label())
			}
		}
		s.doc.Status = entity.WorkItemStatusPublished
		return nil
	}
	// 已发布的工单不能退回草稿
	if s.doc.Status == entity.WorkItemStatusPublished {
		return entity.Fail(entity.ErrInvalidStatus, "published work item cannot return to draft")
	}
	s.doc.Status = entity.WorkItemStatusDraft
	return nil
}

// withProduct names p on the domain error inside err, wrapped or not.
func withProduct(err error, p *Product) error {
	var de *entity.DomainError
	if errors.As(err, &de) {
		de.WithProduct(p.Label())
	}
	return err
}
