package repository

import (
	"context"
	"time"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResponseTrackRepository 响应轨道仓库
type ResponseTrackRepository struct {
	db *gorm.DB
}

func NewResponseTrackRepository(db *gorm.DB) *ResponseTrackRepository {
	return &ResponseTrackRepository{db: db}
}

// Create inserts a track; a second track for the same key is a conflict.
func (r *ResponseTrackRepository) Create(ctx context.Context, t *entity.ResponseTrack) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		if isUniqueViolation(err) {
			return entity.ErrTrackExists
		}
		return err
	}
	return nil
}

func (r *ResponseTrackRepository) Update(ctx context.Context, t *entity.ResponseTrack) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *ResponseTrackRepository) FindByID(ctx context.Context, id uint64) (*entity.ResponseTrack, error) {
	var t entity.ResponseTrack
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// ListByOrderStage locks and returns every track of one (order, stage).
func (r *ResponseTrackRepository) ListByOrderStage(ctx context.Context, orderID uint64, stage string) ([]entity.ResponseTrack, error) {
	var tracks []entity.ResponseTrack
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ? AND stage = ?", orderID, stage).
		Order("id ASC").
		Find(&tracks).Error
	return tracks, err
}

// ListByOrder 查询订单下所有响应轨道
func (r *ResponseTrackRepository) ListByOrder(ctx context.Context, orderID uint64) ([]entity.ResponseTrack, error) {
	var tracks []entity.ResponseTrack
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("stage ASC, track ASC").
		Find(&tracks).Error
	return tracks, err
}

// ListPendingBefore returns unanswered tracks with a deadline before t.
func (r *ResponseTrackRepository) ListPendingBefore(ctx context.Context, t time.Time) ([]entity.ResponseTrack, error) {
	var tracks []entity.ResponseTrack
	err := r.db.WithContext(ctx).
		Where("status = ? AND deadline < ?", entity.ResponseStatusPending, t).
		Order("deadline ASC").
		Find(&tracks).Error
	return tracks, err
}

func (r *ResponseTrackRepository) MarkStatus(ctx context.Context, ids []uint64, status string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.ResponseTrack{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
}

func (r *ResponseTrackRepository) MarkReminded(ctx context.Context, id uint64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.ResponseTrack{}).
		Where("id = ?", id).
		Update("reminded_at", at).Error
}

func (r *ResponseTrackRepository) CreateExtendLog(ctx context.Context, log *entity.ResponseTrackExtendLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *ResponseTrackRepository) ListExtendLogs(ctx context.Context, trackID uint64) ([]entity.ResponseTrackExtendLog, error) {
	var logs []entity.ResponseTrackExtendLog
	err := r.db.WithContext(ctx).
		Where("response_track_id = ?", trackID).
		Order("request_time ASC").
		Find(&logs).Error
	return logs, err
}
