package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/approval"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/hierarchy"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/repository"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/sse"
)

// StageItemPekerjaan is the workflow stage whose regular track is answered
// by creating the work item.
const StageItemPekerjaan = "item_pekerjaan"

// WorkItemService 工作项服务：加载树 -> 编辑 -> 整树保存
type WorkItemService struct {
	repos   *repository.Repositories
	catalog *CatalogService
	hub     *sse.Hub
}

func NewWorkItemService(repos *repository.Repositories, catalog *CatalogService, hub *sse.Hub) *WorkItemService {
	return &WorkItemService{repos: repos, catalog: catalog, hub: hub}
}

// SaveResult is the saved document plus the persisted id of every draft
// id the caller sent.
type SaveResult struct {
	Document *hierarchy.Document `json:"document"`
	Resolved map[string]uint64   `json:"resolved_ids"`
}

// Respond creates the draft work item of (order, design approval) on
// behalf of author, and answers the regular item_pekerjaan track if open.
func (s *WorkItemService) Respond(ctx context.Context, orderID, designApprovalID uint64, author string) (*entity.WorkItem, error) {
	if _, err := s.repos.Order.FindByID(ctx, orderID); err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	da, err := s.repos.Order.FindDesignApproval(ctx, designApprovalID)
	if err != nil {
		return nil, fmt.Errorf("find design approval: %w", err)
	}
	if da.OrderID != orderID {
		return nil, fmt.Errorf("design approval %d of order %d: %w", designApprovalID, orderID, repository.ErrNotFound)
	}
	if _, err := s.repos.WorkItem.FindByOrderAndApproval(ctx, orderID, designApprovalID); err == nil {
		return nil, entity.ErrWorkItemExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("find work item: %w", err)
	}

	now := time.Now()
	item := &entity.WorkItem{
		OrderID:          orderID,
		DesignApprovalID: designApprovalID,
		Status:           entity.WorkItemStatusDraft,
		ResponseBy:       author,
		ResponseTime:     &now,
		Version:          1,
	}
	var answered bool
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.WorkItem.Create(ctx, item); err != nil {
			return err
		}
		tracks, err := tx.ResponseTrack.ListByOrderStage(ctx, orderID, StageItemPekerjaan)
		if err != nil {
			return fmt.Errorf("list tracks: %w", err)
		}
		board := approval.NewBoard(orderID, StageItemPekerjaan, tracks)
		if _, open := board[entity.TrackRegular]; !open || board.Responded(entity.TrackRegular) {
			return nil
		}
		t, err := board.Record(entity.TrackRegular, author, now)
		if err != nil {
			return err
		}
		answered = true
		return tx.ResponseTrack.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	s.hub.PublishWorkItemUpdate(orderID, item.ID, "created")
	if answered {
		s.hub.PublishResponseUpdate(orderID, StageItemPekerjaan, string(entity.TrackRegular), "responded")
	}
	return item, nil
}

// ListByOrder 查询订单下的工作项
func (s *WorkItemService) ListByOrder(ctx context.Context, orderID uint64) ([]entity.WorkItem, error) {
	return s.repos.WorkItem.ListByOrder(ctx, orderID)
}

// Get loads the hierarchy document of a work item.
func (s *WorkItemService) Get(ctx context.Context, id uint64) (*hierarchy.Document, error) {
	store, _, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return store.Document(), nil
}

// Rooms groups the products of a work item by room.
func (s *WorkItemService) Rooms(ctx context.Context, id uint64) ([]hierarchy.Room, error) {
	store, _, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return store.Rooms(), nil
}

func (s *WorkItemService) load(ctx context.Context, id uint64) (*hierarchy.Store, *entity.WorkItem, error) {
	item, err := s.repos.WorkItem.LoadTree(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("load work item: %w", err)
	}
	seeder, err := s.catalog.Seeder(ctx)
	if err != nil {
		return nil, nil, err
	}
	return hierarchy.NewStore(seeder, toDocument(item, seeder)), item, nil
}

// SaveInput is a full client copy of the tree.
type SaveInput struct {
	Version  int                  `json:"version"`
	Mode     hierarchy.SaveMode   `json:"mode"`
	Products []*hierarchy.Product `json:"products"`
}

// Save replaces the whole tree and persists it as draft or published.
func (s *WorkItemService) Save(ctx context.Context, id uint64, input SaveInput) (*SaveResult, error) {
	return s.edit(ctx, id, input.Version, input.Mode, func(store *hierarchy.Store) error {
		return store.Replace(input.Products)
	})
}

// edit loads the tree, applies fn, prepares it for mode and saves it in one
// transaction. version 0 skips the client version check; the stored
// version is still compared inside the save. An empty mode keeps the
// current status.
func (s *WorkItemService) edit(ctx context.Context, id uint64, version int, mode hierarchy.SaveMode, fn func(*hierarchy.Store) error) (*SaveResult, error) {
	store, item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if version != 0 && version != item.Version {
		return nil, entity.ErrStaleVersion
	}
	if mode == "" {
		mode = hierarchy.ModeDraft
		if item.Status == entity.WorkItemStatusPublished {
			mode = hierarchy.ModePublish
		}
	}
	if err := fn(store); err != nil {
		return nil, err
	}
	if err := store.Prepare(mode); err != nil {
		return nil, err
	}

	doc := store.Document()
	applyDocument(item, doc)
	if err := s.repos.WorkItem.SaveTree(ctx, item); err != nil {
		return nil, fmt.Errorf("save work item: %w", err)
	}
	resolved := resolvedIDs(doc, item)

	saved, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	action := "saved"
	if saved.Status == entity.WorkItemStatusPublished {
		action = "published"
	}
	s.hub.PublishWorkItemUpdate(item.OrderID, item.ID, action)
	return &SaveResult{Document: saved, Resolved: resolved}, nil
}

// ProductRequest 产品创建/更新请求
type ProductRequest struct {
	Version    int     `json:"version"`
	CatalogRef *uint64 `json:"produk_id"`
	RoomLabel  string  `json:"nama_ruangan"`
	Quantity   int     `json:"quantity"`
	hierarchy.Dimensions
}

func (r ProductRequest) input() hierarchy.ProductInput {
	return hierarchy.ProductInput{
		CatalogRef: r.CatalogRef,
		RoomLabel:  r.RoomLabel,
		Quantity:   r.Quantity,
		Dimensions: r.Dimensions,
	}
}

func (s *WorkItemService) CreateProduct(ctx context.Context, id uint64, req ProductRequest) (*SaveResult, error) {
	return s.edit(ctx, id, req.Version, "", func(store *hierarchy.Store) error {
		_, err := store.CreateProduct(req.input())
		return err
	})
}

func (s *WorkItemService) UpdateProduct(ctx context.Context, id uint64, productID entity.RowID, req ProductRequest) (*SaveResult, error) {
	return s.edit(ctx, id, req.Version, "", func(store *hierarchy.Store) error {
		return store.UpdateProduct(productID, req.input())
	})
}

func (s *WorkItemService) RemoveProduct(ctx context.Context, id uint64, productID entity.RowID, version int) (*SaveResult, error) {
	return s.edit(ctx, id, version, "", func(store *hierarchy.Store) error {
		return store.RemoveProduct(productID)
	})
}

func (s *WorkItemService) AddCategory(ctx context.Context, id uint64, productID entity.RowID, catalogRef uint64, version int) (*SaveResult, error) {
	return s.edit(ctx, id, version, "", func(store *hierarchy.Store) error {
		_, err := store.AddCategory(productID, catalogRef)
		return err
	})
}

func (s *WorkItemService) RemoveCategory(ctx context.Context, id uint64, productID, categoryID entity.RowID, version int) (*SaveResult, error) {
	return s.edit(ctx, id, version, "", func(store *hierarchy.Store) error {
		return store.RemoveCategory(productID, categoryID)
	})
}

// MaterialLineRequest 材料行请求
type MaterialLineRequest struct {
	Version     int    `json:"version"`
	MaterialRef uint64 `json:"item_id" binding:"required"`
	Quantity    int    `json:"quantity"`
	Note        string `json:"notes"`
}

func (s *WorkItemService) AddMaterialLine(ctx context.Context, id uint64, productID, categoryID entity.RowID, req MaterialLineRequest) (*SaveResult, error) {
	return s.edit(ctx, id, req.Version, "", func(store *hierarchy.Store) error {
		_, err := store.AddMaterialLine(productID, categoryID, req.MaterialRef, req.Quantity, req.Note)
		return err
	})
}

func (s *WorkItemService) UpdateMaterialLine(ctx context.Context, id uint64, productID, categoryID, lineID entity.RowID, req MaterialLineRequest) (*SaveResult, error) {
	return s.edit(ctx, id, req.Version, "", func(store *hierarchy.Store) error {
		return store.UpdateMaterialLine(productID, categoryID, lineID, req.MaterialRef, req.Quantity, req.Note)
	})
}

func (s *WorkItemService) RemoveMaterialLine(ctx context.Context, id uint64, productID, categoryID, lineID entity.RowID, version int) (*SaveResult, error) {
	return s.edit(ctx, id, version, "", func(store *hierarchy.Store) error {
		return store.RemoveMaterialLine(productID, categoryID, lineID)
	})
}

// BahanBaku selection actions.
const (
	BahanBakuToggle    = "toggle"
	BahanBakuSelectAll = "select_all"
	BahanBakuClearAll  = "clear_all"
)

// BahanBakuRequest 原材料选择请求
type BahanBakuRequest struct {
	Version    int    `json:"version"`
	Action     string `json:"action" binding:"required"`
	MaterialID uint64 `json:"material_id"`
}

// SelectBahanBaku edits the raw-material selection of one product.
// select_all uses the raw materials of the product's catalog entry.
func (s *WorkItemService) SelectBahanBaku(ctx context.Context, id uint64, productID entity.RowID, req BahanBakuRequest) (*SaveResult, error) {
	var available []uint64
	if req.Action == BahanBakuSelectAll {
		doc, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		store := hierarchy.NewStore(nil, doc)
		p, err := store.Product(productID)
		if err != nil {
			return nil, err
		}
		if p.CatalogRef != nil {
			produk, err := s.catalog.Produk(ctx, *p.CatalogRef)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("find produk: %w", err)
			}
			if produk != nil {
				available = fromInt64s(produk.BahanBakuIDs)
			}
		}
	}

	return s.edit(ctx, id, req.Version, "", func(store *hierarchy.Store) error {
		switch req.Action {
		case BahanBakuToggle:
			return store.ToggleBahanBaku(productID, req.MaterialID)
		case BahanBakuSelectAll:
			return store.SelectAllBahanBaku(productID, available)
		case BahanBakuClearAll:
			return store.ClearAllBahanBaku(productID)
		}
		return entity.Fail(entity.ErrInvalidStatus, fmt.Sprintf("unknown bahan baku action %q", req.Action))
	})
}

// RenameRoom relabels every product of a room in one save.
func (s *WorkItemService) RenameRoom(ctx context.Context, id uint64, room hierarchy.RoomID, label string, version int) (*SaveResult, error) {
	return s.edit(ctx, id, version, "", func(store *hierarchy.Store) error {
		_, err := store.RenameRoom(room, label)
		return err
	})
}
