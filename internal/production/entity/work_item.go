package entity

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// WorkItem 状态
const (
	WorkItemStatusDraft     = "draft"
	WorkItemStatusPublished = "published"
)

// WorkItem 工作项 (item pekerjaan): one per (order, design approval).
type WorkItem struct {
	ID               uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID          uint64          `json:"order_id" gorm:"not null;uniqueIndex:uk_work_item_order_approval"`
	DesignApprovalID uint64          `json:"design_approval_id" gorm:"not null;uniqueIndex:uk_work_item_order_approval"`
	Status           string          `json:"status" gorm:"size:20;not null;default:'draft'"`
	ResponseBy       string          `json:"response_by" gorm:"size:64"`
	ResponseTime     *time.Time      `json:"response_time"`
	TimelineStart    *datatypes.Date `json:"timeline_start" gorm:"type:date"`
	TimelineEnd      *datatypes.Date `json:"timeline_end" gorm:"type:date"`
	TotalDays        *int            `json:"total_days"`
	Version          int             `json:"version" gorm:"not null;default:1"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	Order    *Order            `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	Products []WorkItemProduct `json:"products,omitempty" gorm:"foreignKey:WorkItemID"`
}

func (WorkItem) TableName() string {
	return "work_items"
}

// WorkItemProduct 工作项下的产品
type WorkItemProduct struct {
	ID                uint64           `json:"id" gorm:"primaryKey;autoIncrement"`
	WorkItemID        uint64           `json:"work_item_id" gorm:"not null;index"`
	ProdukID          *uint64          `json:"produk_id"`
	NamaRuangan       string           `json:"nama_ruangan" gorm:"size:100"`
	Quantity          int              `json:"quantity" gorm:"not null;default:1"`
	Panjang           *decimal.Decimal `json:"panjang" gorm:"type:numeric(12,2)"`
	Lebar             *decimal.Decimal `json:"lebar" gorm:"type:numeric(12,2)"`
	Tinggi            *decimal.Decimal `json:"tinggi" gorm:"type:numeric(12,2)"`
	SelectedBahanBaku pq.Int64Array    `json:"selected_bahan_baku" gorm:"type:bigint[]"`
	CurrentStage      string           `json:"current_stage" gorm:"size:100"`
	Sequence          int              `json:"sequence" gorm:"not null;default:0"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`

	Produk     *Produk            `json:"produk,omitempty" gorm:"foreignKey:ProdukID"`
	Categories []WorkItemCategory `json:"categories,omitempty" gorm:"foreignKey:WorkItemProductID"`
	Stages     []WorkplanItem     `json:"stages,omitempty" gorm:"foreignKey:WorkItemProductID"`
}

func (WorkItemProduct) TableName() string {
	return "work_item_products"
}

// WorkItemCategory 产品下的材料分类 (jenis item); unique per product.
type WorkItemCategory struct {
	ID                uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	WorkItemProductID uint64    `json:"work_item_product_id" gorm:"not null;uniqueIndex:uk_product_jenis_item"`
	JenisItemID       uint64    `json:"jenis_item_id" gorm:"not null;uniqueIndex:uk_product_jenis_item"`
	Sequence          int       `json:"sequence" gorm:"not null;default:0"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	JenisItem *JenisItem         `json:"jenis_item,omitempty" gorm:"foreignKey:JenisItemID"`
	Lines     []WorkItemMaterial `json:"lines,omitempty" gorm:"foreignKey:WorkItemCategoryID"`
}

func (WorkItemCategory) TableName() string {
	return "work_item_categories"
}

// WorkItemMaterial 材料行
type WorkItemMaterial struct {
	ID                 uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	WorkItemCategoryID uint64    `json:"work_item_category_id" gorm:"not null;index"`
	ItemID             uint64    `json:"item_id" gorm:"not null"`
	Quantity           int       `json:"quantity" gorm:"not null;default:1"`
	Notes              string    `json:"notes" gorm:"type:text"`
	Sequence           int       `json:"sequence" gorm:"not null;default:0"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	Item *Item `json:"item,omitempty" gorm:"foreignKey:ItemID"`
}

func (WorkItemMaterial) TableName() string {
	return "work_item_materials"
}
