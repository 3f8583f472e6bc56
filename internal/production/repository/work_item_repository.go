package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WorkItemRepository 工作项仓库
type WorkItemRepository struct {
	db *gorm.DB
}

func NewWorkItemRepository(db *gorm.DB) *WorkItemRepository {
	return &WorkItemRepository{db: db}
}

// Create inserts a new work item. A second one for the same
// (order, design approval) is refused.
func (r *WorkItemRepository) Create(ctx context.Context, item *entity.WorkItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		if isUniqueViolation(err) {
			return entity.ErrWorkItemExists
		}
		return err
	}
	return nil
}

func (r *WorkItemRepository) FindByID(ctx context.Context, id uint64) (*entity.WorkItem, error) {
	var item entity.WorkItem
	err := r.db.WithContext(ctx).Preload("Order").First(&item, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *WorkItemRepository) FindByOrderAndApproval(ctx context.Context, orderID, designApprovalID uint64) (*entity.WorkItem, error) {
	var item entity.WorkItem
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND design_approval_id = ?", orderID, designApprovalID).
		First(&item).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// ListByOrder 查询订单下所有工作项
func (r *WorkItemRepository) ListByOrder(ctx context.Context, orderID uint64) ([]entity.WorkItem, error) {
	var items []entity.WorkItem
	err := r.db.WithContext(ctx).
		Preload("Order").
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

// ListIDsByOrder is the small read model the extension gate scans.
func (r *WorkItemRepository) ListIDsByOrder(ctx context.Context, orderID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&entity.WorkItem{}).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// ListPublished 查询已发布工作项（导出用）
func (r *WorkItemRepository) ListPublished(ctx context.Context) ([]entity.WorkItem, error) {
	var items []entity.WorkItem
	err := r.db.WithContext(ctx).
		Preload("Order").
		Preload("Products").
		Preload("Products.Stages").
		Where("status = ?", entity.WorkItemStatusPublished).
		Order("order_id ASC, id ASC").
		Find(&items).Error
	return items, err
}

// LoadTree loads a work item with its full product tree in display order.
func (r *WorkItemRepository) LoadTree(ctx context.Context, id uint64) (*entity.WorkItem, error) {
	var item entity.WorkItem
	err := r.db.WithContext(ctx).
		Preload("Order").
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC, id ASC")
		}).
		Preload("Products.Produk").
		Preload("Products.Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC, id ASC")
		}).
		Preload("Products.Categories.JenisItem").
		Preload("Products.Categories.Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC, id ASC")
		}).
		First(&item, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// FindProduct 查询工作项产品
func (r *WorkItemRepository) FindProduct(ctx context.Context, productID uint64) (*entity.WorkItemProduct, error) {
	var p entity.WorkItemProduct
	if err := r.db.WithContext(ctx).Preload("Produk").First(&p, productID).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// ListProducts returns the products of a work item without their tree.
func (r *WorkItemRepository) ListProducts(ctx context.Context, workItemID uint64) ([]entity.WorkItemProduct, error) {
	var products []entity.WorkItemProduct
	err := r.db.WithContext(ctx).
		Preload("Produk").
		Where("work_item_id = ?", workItemID).
		Order("sequence ASC, id ASC").
		Find(&products).Error
	return products, err
}

// UpdateCurrentStage 更新产品当前阶段
func (r *WorkItemRepository) UpdateCurrentStage(ctx context.Context, productID uint64, stage string) error {
	return r.db.WithContext(ctx).Model(&entity.WorkItemProduct{}).
		Where("id = ?", productID).
		Update("current_stage", stage).Error
}

// UpdateWindow 更新工作项时间窗口
func (r *WorkItemRepository) UpdateWindow(ctx context.Context, item *entity.WorkItem) error {
	return r.db.WithContext(ctx).Model(&entity.WorkItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"timeline_start": item.TimelineStart,
			"timeline_end":   item.TimelineEnd,
			"total_days":     item.TotalDays,
			"updated_at":     time.Now(),
		}).Error
}

// SaveTree writes the whole product tree of item in one transaction.
// Rows with an id are updated in place, rows without one are inserted, and
// stored rows missing from item are deleted. The stored version must equal
// item.Version; it is bumped on success.
func (r *WorkItemRepository) SaveTree(ctx context.Context, item *entity.WorkItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current entity.WorkItem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, item.ID).Error; err != nil {
			return notFound(err)
		}
		if current.Version != item.Version {
			return entity.ErrStaleVersion
		}

		now := time.Now()
		if err := tx.Model(&entity.WorkItem{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
			"status":     item.Status,
			"version":    item.Version + 1,
			"updated_at": now,
		}).Error; err != nil {
			return fmt.Errorf("update work item: %w", err)
		}

		keepProducts := make([]uint64, 0, len(item.Products))
		for _, p := range item.Products {
			if p.ID != 0 {
				keepProducts = append(keepProducts, p.ID)
			}
		}
		if err := deleteProductsExcept(tx, item.ID, keepProducts); err != nil {
			return err
		}

		for i := range item.Products {
			p := &item.Products[i]
			p.WorkItemID = item.ID
			p.Sequence = i
			if err := saveProduct(tx, p); err != nil {
				return err
			}
		}

		item.Version++
		item.UpdatedAt = now
		return nil
	})
}

func saveProduct(tx *gorm.DB, p *entity.WorkItemProduct) error {
	categories := p.Categories
	if p.ID == 0 {
		if err := tx.Omit("Categories", "Stages", "Produk").Create(p).Error; err != nil {
			return fmt.Errorf("create product: %w", err)
		}
	} else {
		res := tx.Model(p).Select("produk_id", "nama_ruangan", "quantity", "panjang", "lebar", "tinggi",
			"selected_bahan_baku", "sequence", "updated_at").Updates(p)
		if res.Error != nil {
			return fmt.Errorf("update product %d: %w", p.ID, res.Error)
		}
	}

	keep := make([]uint64, 0, len(categories))
	for _, c := range categories {
		if c.ID != 0 {
			keep = append(keep, c.ID)
		}
	}
	if err := deleteCategoriesExcept(tx, p.ID, keep); err != nil {
		return err
	}

	for i := range categories {
		c := &categories[i]
		c.WorkItemProductID = p.ID
		c.Sequence = i
		if err := saveCategory(tx, c); err != nil {
			return err
		}
	}
	p.Categories = categories
	return nil
}

func saveCategory(tx *gorm.DB, c *entity.WorkItemCategory) error {
	lines := c.Lines
	if c.ID == 0 {
		if err := tx.Omit("Lines", "JenisItem").Create(c).Error; err != nil {
			if isUniqueViolation(err) {
				return entity.Fail(entity.ErrDuplicateCategory, fmt.Sprintf("jenis item %d", c.JenisItemID))
			}
			return fmt.Errorf("create category: %w", err)
		}
	} else {
		if err := tx.Model(c).Select("sequence", "updated_at").Updates(c).Error; err != nil {
			return fmt.Errorf("update category %d: %w", c.ID, err)
		}
	}

	keep := make([]uint64, 0, len(lines))
	for _, l := range lines {
		if l.ID != 0 {
			keep = append(keep, l.ID)
		}
	}
	del := tx.Where("work_item_category_id = ?", c.ID)
	if len(keep) > 0 {
		del = del.Where("id NOT IN ?", keep)
	}
	if err := del.Delete(&entity.WorkItemMaterial{}).Error; err != nil {
		return fmt.Errorf("delete lines: %w", err)
	}

	for i := range lines {
		l := &lines[i]
		l.WorkItemCategoryID = c.ID
		l.Sequence = i
		if l.ID == 0 {
			if err := tx.Omit("Item").Create(l).Error; err != nil {
				return fmt.Errorf("create line: %w", err)
			}
			continue
		}
		if err := tx.Model(l).Select("item_id", "quantity", "notes", "sequence", "updated_at").Updates(l).Error; err != nil {
			return fmt.Errorf("update line %d: %w", l.ID, err)
		}
	}
	c.Lines = lines
	return nil
}

func deleteProductsExcept(tx *gorm.DB, workItemID uint64, keep []uint64) error {
	var gone []uint64
	q := tx.Model(&entity.WorkItemProduct{}).Where("work_item_id = ?", workItemID)
	if len(keep) > 0 {
		q = q.Where("id NOT IN ?", keep)
	}
	if err := q.Pluck("id", &gone).Error; err != nil {
		return err
	}
	if len(gone) == 0 {
		return nil
	}
	if err := tx.Where("work_item_product_id IN ?", gone).Delete(&entity.WorkplanItem{}).Error; err != nil {
		return fmt.Errorf("delete stages: %w", err)
	}
	for _, id := range gone {
		if err := deleteCategoriesExcept(tx, id, nil); err != nil {
			return err
		}
	}
	if err := tx.Where("id IN ?", gone).Delete(&entity.WorkItemProduct{}).Error; err != nil {
		return fmt.Errorf("delete products: %w", err)
	}
	return nil
}

func deleteCategoriesExcept(tx *gorm.DB, productID uint64, keep []uint64) error {
	var gone []uint64
	q := tx.Model(&entity.WorkItemCategory{}).Where("work_item_product_id = ?", productID)
	if len(keep) > 0 {
		q = q.Where("id NOT IN ?", keep)
	}
	if err := q.Pluck("id", &gone).Error; err != nil {
		return err
	}
	if len(gone) == 0 {
		return nil
	}
	if err := tx.Where("work_item_category_id IN ?", gone).Delete(&entity.WorkItemMaterial{}).Error; err != nil {
		return fmt.Errorf("delete lines: %w", err)
	}
	if err := tx.Where("id IN ?", gone).Delete(&entity.WorkItemCategory{}).Error; err != nil {
		return fmt.Errorf("delete categories: %w", err)
	}
	return nil
}
