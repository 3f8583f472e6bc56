package repository

import (
	"context"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExtensionRepository 延期申请仓库
type ExtensionRepository struct {
	db *gorm.DB
}

func NewExtensionRepository(db *gorm.DB) *ExtensionRepository {
	return &ExtensionRepository{db: db}
}

func (r *ExtensionRepository) Create(ctx context.Context, req *entity.ExtensionRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *ExtensionRepository) Update(ctx context.Context, req *entity.ExtensionRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *ExtensionRepository) FindByID(ctx context.Context, id uint64) (*entity.ExtensionRequest, error) {
	var req entity.ExtensionRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &req, nil
}

// FindByIDForUpdate locks the request row until the transaction ends.
func (r *ExtensionRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*entity.ExtensionRequest, error) {
	var req entity.ExtensionRequest
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &req, nil
}

// ListByOrder 查询订单下所有延期申请，最新在前
func (r *ExtensionRepository) ListByOrder(ctx context.Context, orderID uint64) ([]entity.ExtensionRequest, error) {
	var reqs []entity.ExtensionRequest
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC, id DESC").
		Find(&reqs).Error
	return reqs, err
}

// ListByWorkItems 查询多个工作项的延期申请
func (r *ExtensionRepository) ListByWorkItems(ctx context.Context, workItemIDs []uint64) ([]entity.ExtensionRequest, error) {
	var reqs []entity.ExtensionRequest
	if len(workItemIDs) == 0 {
		return reqs, nil
	}
	err := r.db.WithContext(ctx).
		Where("work_item_id IN ?", workItemIDs).
		Order("created_at DESC, id DESC").
		Find(&reqs).Error
	return reqs, err
}

// LatestByWorkItem returns the newest request of a work item.
func (r *ExtensionRepository) LatestByWorkItem(ctx context.Context, workItemID uint64) (*entity.ExtensionRequest, error) {
	var req entity.ExtensionRequest
	err := r.db.WithContext(ctx).
		Where("work_item_id = ?", workItemID).
		Order("created_at DESC, id DESC").
		First(&req).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &req, nil
}
