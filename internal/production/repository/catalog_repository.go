package repository

import (
	"context"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogRepository 目录仓库（产品、材料分类、材料）
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ListJenisItems(ctx context.Context) ([]entity.JenisItem, error) {
	var items []entity.JenisItem
	err := r.db.WithContext(ctx).Order("sort_order ASC, id ASC").Find(&items).Error
	return items, err
}

// ListItems returns the material catalog, optionally scoped to one category.
func (r *CatalogRepository) ListItems(ctx context.Context, jenisItemID uint64) ([]entity.Item, error) {
	var items []entity.Item
	query := r.db.WithContext(ctx).Model(&entity.Item{})
	if jenisItemID != 0 {
		query = query.Where("jenis_item_id = ?", jenisItemID)
	}
	err := query.Order("name ASC").Find(&items).Error
	return items, err
}

func (r *CatalogRepository) ListProduks(ctx context.Context) ([]entity.Produk, error) {
	var produks []entity.Produk
	err := r.db.WithContext(ctx).Order("name ASC").Find(&produks).Error
	return produks, err
}

func (r *CatalogRepository) FindProduk(ctx context.Context, id uint64) (*entity.Produk, error) {
	var p entity.Produk
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// SeedJenisItems inserts categories that are not there yet, keyed by name.
func (r *CatalogRepository) SeedJenisItems(ctx context.Context, items []entity.JenisItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&items).Error
}

// SeedProduks inserts catalog products that are not there yet, keyed by name.
func (r *CatalogRepository) SeedProduks(ctx context.Context, produks []entity.Produk) error {
	if len(produks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&produks).Error
}

// CreateItem adds a material to the catalog.
func (r *CatalogRepository) CreateItem(ctx context.Context, item *entity.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// FindJenisItemByName 按名称查找分类
func (r *CatalogRepository) FindJenisItemByName(ctx context.Context, name string) (*entity.JenisItem, error) {
	var j entity.JenisItem
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&j).Error; err != nil {
		return nil, notFound(err)
	}
	return &j, nil
}

func (r *CatalogRepository) CountItems(ctx context.Context, jenisItemID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Item{}).Where("jenis_item_id = ?", jenisItemID).Count(&n).Error
	return n, err
}
