package entity

import "time"

// Order is inbound context owned by the ordering flow. Read-only here.
type Order struct {
	ID           uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	NamaProject  string    `json:"nama_project" gorm:"size:200"`
	CompanyName  string    `json:"company_name" gorm:"size:200"`
	CustomerName string    `json:"customer_name" gorm:"size:200"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// DesignApproval 设计审批（moodboard），WorkItem 以此为锚点创建
type DesignApproval struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   uint64    `json:"order_id" gorm:"not null;index"`
	Status    string    `json:"status" gorm:"size:20"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DesignApproval) TableName() string {
	return "design_approvals"
}
