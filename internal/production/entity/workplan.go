package entity

import (
	"time"

	"gorm.io/datatypes"
)

// WorkplanItem 状态
const (
	StageStatusPlanned    = "planned"
	StageStatusInProgress = "in_progress"
	StageStatusDone       = "done"
	StageStatusCancelled  = "cancelled"
)

// ValidStageStatus reports whether s is a known stage status.
func ValidStageStatus(s string) bool {
	switch s {
	case StageStatusPlanned, StageStatusInProgress, StageStatusDone, StageStatusCancelled:
		return true
	}
	return false
}

// WorkplanItem 生产阶段 (tahapan)
type WorkplanItem struct {
	ID                uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	WorkItemID        uint64          `json:"work_item_id" gorm:"not null;index"`
	WorkItemProductID uint64          `json:"work_item_product_id" gorm:"not null;index"`
	Urutan            int             `json:"urutan" gorm:"not null"`
	NamaTahapan       string          `json:"nama_tahapan" gorm:"size:100;not null"`
	StartDate         *datatypes.Date `json:"start_date" gorm:"type:date"`
	EndDate           *datatypes.Date `json:"end_date" gorm:"type:date"`
	DurationDays      *int            `json:"duration_days"`
	Status            string          `json:"status" gorm:"size:20;not null;default:'planned'"`
	Catatan           string          `json:"catatan" gorm:"type:text"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (WorkplanItem) TableName() string {
	return "workplan_items"
}

// StageEvidence 阶段证明文件，存储在对象存储中
type StageEvidence struct {
	ID                uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	WorkItemProductID uint64    `json:"work_item_product_id" gorm:"not null;index"`
	StageName         string    `json:"stage_name" gorm:"size:100;not null"`
	ObjectKey         string    `json:"object_key" gorm:"size:500;not null"`
	FileName          string    `json:"file_name" gorm:"size:255"`
	FileSize          int64     `json:"file_size"`
	ContentType       string    `json:"content_type" gorm:"size:100"`
	Notes             string    `json:"notes" gorm:"type:text"`
	UploadedBy        string    `json:"uploaded_by" gorm:"size:64"`
	CreatedAt         time.Time `json:"created_at"`
}

func (StageEvidence) TableName() string {
	return "stage_evidences"
}
