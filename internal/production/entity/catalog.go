package entity

import (
	"time"

	"github.com/lib/pq"
)

// JenisItem 材料分类目录 (material-category catalog)
type JenisItem struct {
	ID          uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"size:100;not null;uniqueIndex"`
	IsDefault   bool      `json:"is_default" gorm:"not null;default:false"`
	IsAccessory bool      `json:"is_accessory" gorm:"not null;default:false"`
	SortOrder   int       `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (JenisItem) TableName() string {
	return "jenis_items"
}

// ForcesUnitQuantity reports whether lines under this category always store 1.
func (j JenisItem) ForcesUnitQuantity() bool {
	return j.IsDefault && !j.IsAccessory
}

// Item 材料目录，按分类划分
type Item struct {
	ID          uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	JenisItemID uint64    `json:"jenis_item_id" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"size:200;not null"`
	Unit        string    `json:"unit" gorm:"size:20"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Item) TableName() string {
	return "items"
}

// Produk 产品目录; BahanBakuIDs lists the raw materials selectable for it.
type Produk struct {
	ID           uint64        `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string        `json:"name" gorm:"size:200;not null;uniqueIndex"`
	BahanBakuIDs pq.Int64Array `json:"bahan_baku_ids" gorm:"type:bigint[]"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (Produk) TableName() string {
	return "produks"
}
