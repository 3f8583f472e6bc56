package repository

import (
	"context"
	"fmt"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"gorm.io/gorm"
)

// WorkplanRepository 生产阶段仓库
type WorkplanRepository struct {
	db *gorm.DB
}

func NewWorkplanRepository(db *gorm.DB) *WorkplanRepository {
	return &WorkplanRepository{db: db}
}

// ListByWorkItems returns stages ordered by product then urutan.
func (r *WorkplanRepository) ListByWorkItems(ctx context.Context, workItemIDs []uint64) ([]entity.WorkplanItem, error) {
	var items []entity.WorkplanItem
	if len(workItemIDs) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).
		Where("work_item_id IN ?", workItemIDs).
		Order("work_item_product_id ASC, urutan ASC").
		Find(&items).Error
	return items, err
}

// ReplaceForProduct deletes and recreates the stages of one product.
func (r *WorkplanRepository) ReplaceForProduct(ctx context.Context, productID uint64, stages []entity.WorkplanItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("work_item_product_id = ?", productID).Delete(&entity.WorkplanItem{}).Error; err != nil {
			return fmt.Errorf("delete stages: %w", err)
		}
		if len(stages) == 0 {
			return nil
		}
		for i := range stages {
			stages[i].ID = 0
			stages[i].WorkItemProductID = productID
		}
		if err := tx.Create(&stages).Error; err != nil {
			return fmt.Errorf("create stages: %w", err)
		}
		return nil
	})
}

// UpdateStatus 更新阶段状态
func (r *WorkplanRepository) UpdateStatus(ctx context.Context, productID uint64, urutan int, status string) error {
	res := r.db.WithContext(ctx).Model(&entity.WorkplanItem{}).
		Where("work_item_product_id = ? AND urutan = ?", productID, urutan).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
