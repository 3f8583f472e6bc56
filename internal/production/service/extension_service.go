package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/approval"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/repository"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/sse"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/shared/notify"
	"go.uber.org/zap"
)

// ExtensionService 时间线延期申请
type ExtensionService struct {
	repos    *repository.Repositories
	schedule *ScheduleService
	notifier notify.Notifier
	hub      *sse.Hub
	logger   *zap.Logger
}

func NewExtensionService(repos *repository.Repositories, schedule *ScheduleService, notifier notify.Notifier, hub *sse.Hub, logger *zap.Logger) *ExtensionService {
	return &ExtensionService{repos: repos, schedule: schedule, notifier: notifier, hub: hub, logger: logger}
}

// ListByOrder returns every request of an order, newest first.
func (s *ExtensionService) ListByOrder(ctx context.Context, orderID uint64) ([]entity.ExtensionRequest, error) {
	return s.repos.Extension.ListByOrder(ctx, orderID)
}

// Request opens a pending extension request for a work item.
func (s *ExtensionService) Request(ctx context.Context, workItemID uint64, reason, by string) (*entity.ExtensionRequest, error) {
	var req *entity.ExtensionRequest
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		item, err := tx.WorkItem.FindByID(ctx, workItemID)
		if err != nil {
			return fmt.Errorf("find work item: %w", err)
		}
		latest, err := tx.Extension.LatestByWorkItem(ctx, workItemID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("latest request: %w", err)
		}
		req, err = approval.RequestExtension(latest, item.ID, item.OrderID, reason, by, time.Now())
		if err != nil {
			return err
		}
		return tx.Extension.Create(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.hub.PublishExtensionUpdate(req.OrderID, req.ID, req.Status, false)
	notifyAsync(s.logger, s.notifier, notify.Message{
		Event:   notify.EventExtensionRequested,
		Title:   "Pengajuan perpanjangan timeline",
		Body:    *req.Reason,
		OrderID: req.OrderID,
		UserID:  by,
		Fields:  map[string]string{"work_item_id": fmt.Sprint(req.WorkItemID)},
	})
	return req, nil
}

// Resolve approves or rejects a pending request. Only the marketing
// approver may resolve.
func (s *ExtensionService) Resolve(ctx context.Context, requestID uint64, status, by string, isApprover bool) (*entity.ExtensionRequest, approval.GateView, error) {
	if !isApprover {
		return nil, approval.GateView{}, entity.ErrNotApprover
	}
	var req *entity.ExtensionRequest
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		req, err = tx.Extension.FindByIDForUpdate(ctx, requestID)
		if err != nil {
			return fmt.Errorf("find extension request: %w", err)
		}
		if err := approval.Resolve(req, status, by, time.Now()); err != nil {
			return err
		}
		return tx.Extension.Update(ctx, req)
	})
	if err != nil {
		return nil, approval.GateView{}, err
	}

	gate, err := s.schedule.Gate(ctx, req.OrderID)
	if err != nil {
		return req, approval.GateView{}, err
	}
	s.hub.PublishExtensionUpdate(req.OrderID, req.ID, req.Status, gate.Editable)
	notifyAsync(s.logger, s.notifier, notify.Message{
		Event:   notify.EventExtensionResolved,
		Title:   "Perpanjangan timeline " + req.Status,
		OrderID: req.OrderID,
		UserID:  req.RequestedBy,
		Fields:  map[string]string{"resolved_by": by},
	})
	return req, gate, nil
}
