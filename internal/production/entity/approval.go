package entity

import "time"

// Track 响应轨道
type Track string

const (
	TrackRegular   Track = "regular"
	TrackMarketing Track = "marketing"
)

// Tracks lists every known track in display order.
var Tracks = []Track{TrackRegular, TrackMarketing}

func (t Track) Valid() bool {
	for _, k := range Tracks {
		if k == t {
			return true
		}
	}
	return false
}

// ResponseTrack 状态
const (
	ResponseStatusPending   = "pending"
	ResponseStatusResponded = "responded"
	ResponseStatusOverdue   = "overdue"
)

// ResponseTrack 响应记录，按 (order, stage, track) 唯一
type ResponseTrack struct {
	ID           uint64     `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID      uint64     `json:"order_id" gorm:"not null;uniqueIndex:uk_response_track"`
	Stage        string     `json:"stage" gorm:"size:100;not null;uniqueIndex:uk_response_track"`
	Track        Track      `json:"track" gorm:"size:20;not null;uniqueIndex:uk_response_track"`
	Status       string     `json:"status" gorm:"size:20;not null;default:'pending'"`
	ResponseBy   string     `json:"response_by" gorm:"size:64"`
	ResponseTime *time.Time `json:"response_time"`
	StartTime    time.Time  `json:"start_time"`
	Deadline     time.Time  `json:"deadline" gorm:"index"`
	DurationDays int        `json:"duration_days"`
	ExtendCount  int        `json:"extend_count" gorm:"not null;default:0"`
	ExtendReason string     `json:"extend_reason" gorm:"type:text"`
	RemindedAt   *time.Time `json:"reminded_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (ResponseTrack) TableName() string {
	return "response_tracks"
}

// ResponseTrackExtendLog 截止日期延长日志
type ResponseTrackExtendLog struct {
	ID              uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	ResponseTrackID uint64    `json:"response_track_id" gorm:"not null;index"`
	UserID          string    `json:"user_id" gorm:"size:64"`
	ExtendDays      int       `json:"extend_days"`
	ExtendReason    string    `json:"extend_reason" gorm:"type:text"`
	RequestTime     time.Time `json:"request_time"`
	CreatedAt       time.Time `json:"created_at"`
}

func (ResponseTrackExtendLog) TableName() string {
	return "response_track_extend_logs"
}

// ExtensionRequest 状态
const (
	ExtensionStatusNone     = "none"
	ExtensionStatusPending  = "pending"
	ExtensionStatusApproved = "approved"
	ExtensionStatusRejected = "rejected"
)

// ExtensionRequest 时间线延期申请 (pengajuan perpanjangan timeline)
type ExtensionRequest struct {
	ID          uint64     `json:"id" gorm:"primaryKey;autoIncrement"`
	WorkItemID  uint64     `json:"work_item_id" gorm:"not null;index"`
	OrderID     uint64     `json:"order_id" gorm:"not null;index"`
	Status      string     `json:"status" gorm:"size:20;not null;default:'none'"`
	Reason      *string    `json:"reason" gorm:"type:text"`
	RequestedBy string     `json:"requested_by" gorm:"size:64"`
	ResolvedBy  string     `json:"resolved_by" gorm:"size:64"`
	ResolvedAt  *time.Time `json:"resolved_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (ExtensionRequest) TableName() string {
	return "extension_requests"
}
