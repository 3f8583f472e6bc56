package service

import (
	"context"
	"fmt"
	"time"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/config"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/approval"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/repository"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/sse"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/shared/notify"
	"go.uber.org/zap"
)

// ResponseService 双轨响应与截止日期
type ResponseService struct {
	repos    *repository.Repositories
	cfg      config.ProductionConfig
	notifier notify.Notifier
	hub      *sse.Hub
	logger   *zap.Logger
}

func NewResponseService(repos *repository.Repositories, cfg config.ProductionConfig, notifier notify.Notifier, hub *sse.Hub, logger *zap.Logger) *ResponseService {
	return &ResponseService{repos: repos, cfg: cfg, notifier: notifier, hub: hub, logger: logger}
}

// OpenTrackInput 打开响应轨道
type OpenTrackInput struct {
	OrderID      uint64       `json:"order_id" binding:"required"`
	Stage        string       `json:"stage" binding:"required"`
	Track        entity.Track `json:"track" binding:"required"`
	Start        *time.Time   `json:"start_time"`
	DurationDays int          `json:"duration_days"`
}

// Open starts an unanswered track. One track per (order, stage, track).
func (s *ResponseService) Open(ctx context.Context, in OpenTrackInput) (*entity.ResponseTrack, error) {
	if _, err := s.repos.Order.FindByID(ctx, in.OrderID); err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	start := time.Now()
	if in.Start != nil {
		start = *in.Start
	}
	t, err := approval.OpenTrack(in.OrderID, in.Stage, in.Track, start, in.DurationDays)
	if err != nil {
		return nil, err
	}
	if err := s.repos.ResponseTrack.Create(ctx, t); err != nil {
		return nil, err
	}
	s.hub.PublishResponseUpdate(t.OrderID, t.Stage, string(t.Track), "opened")
	return t, nil
}

// ListByOrder 查询订单的所有响应轨道
func (s *ResponseService) ListByOrder(ctx context.Context, orderID uint64) ([]entity.ResponseTrack, error) {
	return s.repos.ResponseTrack.ListByOrder(ctx, orderID)
}

// Respond records author's response on one track. The marketing track is
// answered only by the marketing approver.
func (s *ResponseService) Respond(ctx context.Context, orderID uint64, stage string, track entity.Track, author string, isApprover bool) (*entity.ResponseTrack, error) {
	if !track.Valid() {
		return nil, entity.Fail(entity.ErrInvalidStatus, fmt.Sprintf("unknown track %q", track))
	}
	if track == entity.TrackMarketing && !isApprover {
		return nil, entity.ErrNotApprover
	}
	var out *entity.ResponseTrack
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		tracks, err := tx.ResponseTrack.ListByOrderStage(ctx, orderID, stage)
		if err != nil {
			return fmt.Errorf("list tracks: %w", err)
		}
		out, err = approval.NewBoard(orderID, stage, tracks).Record(track, author, time.Now())
		if err != nil {
			return err
		}
		return tx.ResponseTrack.Update(ctx, out)
	})
	if err != nil {
		return nil, err
	}
	s.hub.PublishResponseUpdate(orderID, stage, string(track), "responded")
	notifyAsync(s.logger, s.notifier, notify.Message{
		Event:   notify.EventResponseRecorded,
		Title:   "Respon " + stage,
		OrderID: orderID,
		UserID:  author,
		Fields:  map[string]string{"track": string(track)},
	})
	return out, nil
}

// ExtendInput 延长截止日期
type ExtendInput struct {
	Days   int    `json:"days" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

// Extend moves the deadline of an unanswered track and logs it.
func (s *ResponseService) Extend(ctx context.Context, trackID uint64, in ExtendInput, userID string) (*entity.ResponseTrack, error) {
	var t *entity.ResponseTrack
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		t, err = tx.ResponseTrack.FindByID(ctx, trackID)
		if err != nil {
			return fmt.Errorf("find track: %w", err)
		}
		entry, err := approval.ExtendDeadline(t, userID, in.Days, s.cfg.MaxExtensionDays, in.Reason, time.Now())
		if err != nil {
			return err
		}
		if err := tx.ResponseTrack.Update(ctx, t); err != nil {
			return fmt.Errorf("update track: %w", err)
		}
		return tx.ResponseTrack.CreateExtendLog(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	s.hub.PublishResponseUpdate(t.OrderID, t.Stage, string(t.Track), "extended")
	return t, nil
}

// ExtendLogs 延期日志
func (s *ResponseService) ExtendLogs(ctx context.Context, trackID uint64) ([]entity.ResponseTrackExtendLog, error) {
	if _, err := s.repos.ResponseTrack.FindByID(ctx, trackID); err != nil {
		return nil, fmt.Errorf("find track: %w", err)
	}
	return s.repos.ResponseTrack.ListExtendLogs(ctx, trackID)
}

// SweepResult 截止检查结果
type SweepResult struct {
	Overdue  int `json:"overdue"`
	Reminded int `json:"reminded"`
}

// Sweep marks unanswered tracks past their deadline overdue and reminds
// the ones due within the reminder lead time. Notifications are sent
// synchronously; a failed reminder is retried by the next sweep.
func (s *ResponseService) Sweep(ctx context.Context, now time.Time) (SweepResult, error) {
	var res SweepResult

	late, err := s.repos.ResponseTrack.ListPendingBefore(ctx, now)
	if err != nil {
		return res, fmt.Errorf("list overdue tracks: %w", err)
	}
	var ids []uint64
	for i := range late {
		if approval.IsOverdue(&late[i], now) {
			ids = append(ids, late[i].ID)
		}
	}
	if err := s.repos.ResponseTrack.MarkStatus(ctx, ids, entity.ResponseStatusOverdue); err != nil {
		return res, fmt.Errorf("mark overdue: %w", err)
	}
	res.Overdue = len(ids)
	for i := range late {
		t := &late[i]
		if !approval.IsOverdue(t, now) {
			continue
		}
		s.hub.PublishResponseUpdate(t.OrderID, t.Stage, string(t.Track), "overdue")
		s.send(ctx, notify.Message{
			Event:   notify.EventDeadlineOverdue,
			Title:   "Deadline terlewat: " + t.Stage,
			OrderID: t.OrderID,
			Fields:  map[string]string{"track": string(t.Track), "deadline": t.Deadline.Format(time.RFC3339)},
		})
	}

	due, err := s.repos.ResponseTrack.ListPendingBefore(ctx, now.Add(s.cfg.ReminderLeadTime))
	if err != nil {
		return res, fmt.Errorf("list due tracks: %w", err)
	}
	for i := range due {
		t := &due[i]
		if !approval.DueForReminder(t, now, s.cfg.ReminderLeadTime) {
			continue
		}
		if !s.send(ctx, notify.Message{
			Event:   notify.EventDeadlineReminder,
			Title:   "Pengingat H-1: " + t.Stage,
			OrderID: t.OrderID,
			Fields:  map[string]string{"track": string(t.Track), "deadline": t.Deadline.Format(time.RFC3339)},
		}) {
			continue
		}
		if err := s.repos.ResponseTrack.MarkReminded(ctx, t.ID, now); err != nil {
			return res, fmt.Errorf("mark reminded: %w", err)
		}
		res.Reminded++
	}

	s.logger.Info("deadline sweep finished", zap.Int("overdue", res.Overdue), zap.Int("reminded", res.Reminded))
	return res, nil
}

func (s *ResponseService) send(ctx context.Context, msg notify.Message) bool {
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.logger.Warn("notification failed", zap.String("event", msg.Event), zap.Uint64("order_id", msg.OrderID), zap.Error(err))
		return false
	}
	return true
}
