package repository

import (
	"context"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"gorm.io/gorm"
)

// EvidenceRepository 阶段证明文件仓库
type EvidenceRepository struct {
	db *gorm.DB
}

func NewEvidenceRepository(db *gorm.DB) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

func (r *EvidenceRepository) Create(ctx context.Context, e *entity.StageEvidence) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EvidenceRepository) ListByProduct(ctx context.Context, productID uint64) ([]entity.StageEvidence, error) {
	var list []entity.StageEvidence
	err := r.db.WithContext(ctx).
		Where("work_item_product_id = ?", productID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}
