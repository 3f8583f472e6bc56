package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/approval"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/hierarchy"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/repository"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/sse"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/timeline"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/shared/notify"
	"go.uber.org/zap"
)

// ScheduleService 生产时间线服务
type ScheduleService struct {
	repos         *repository.Repositories
	defaultStages []string
	notifier      notify.Notifier
	hub           *sse.Hub
	logger        *zap.Logger
}

func NewScheduleService(repos *repository.Repositories, defaultStages []string, notifier notify.Notifier, hub *sse.Hub, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{
		repos:         repos,
		defaultStages: defaultStages,
		notifier:      notifier,
		hub:           hub,
		logger:        logger,
	}
}

// PlanView is a work item schedule plus whether it may be edited now.
type PlanView struct {
	Plan     *timeline.Plan `json:"plan"`
	Status   string         `json:"status"`
	Editable bool           `json:"editable"`
}

// Gate evaluates the extension gate of an order.
func (s *ScheduleService) Gate(ctx context.Context, orderID uint64) (approval.GateView, error) {
	return gateOf(ctx, s.repos, orderID)
}

func gateOf(ctx context.Context, repos *repository.Repositories, orderID uint64) (approval.GateView, error) {
	ids, err := repos.WorkItem.ListIDsByOrder(ctx, orderID)
	if err != nil {
		return approval.GateView{}, fmt.Errorf("list work items: %w", err)
	}
	requests, err := repos.Extension.ListByWorkItems(ctx, ids)
	if err != nil {
		return approval.GateView{}, fmt.Errorf("list extension requests: %w", err)
	}
	return approval.Evaluate(ids, requests), nil
}

// loadPlan builds the plan of one work item. Products without stored
// stages get the default stages.
func loadPlan(ctx context.Context, repos *repository.Repositories, item *entity.WorkItem, defaults []string) (*timeline.Plan, error) {
	products, err := repos.WorkItem.ListProducts(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	stages, err := repos.Workplan.ListByWorkItems(ctx, []uint64{item.ID})
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	plan := toPlan(item, products, stages)
	timeline.NewScheduler(plan, false).SeedDefaults(defaults)
	return plan, nil
}

// GetPlan returns the schedule of a work item.
func (s *ScheduleService) GetPlan(ctx context.Context, workItemID uint64) (*PlanView, error) {
	item, err := s.repos.WorkItem.FindByID(ctx, workItemID)
	if err != nil {
		return nil, fmt.Errorf("find work item: %w", err)
	}
	plan, err := loadPlan(ctx, s.repos, item, s.defaultStages)
	if err != nil {
		return nil, err
	}
	gate, err := s.Gate(ctx, item.OrderID)
	if err != nil {
		return nil, err
	}
	return &PlanView{Plan: plan, Status: item.Status, Editable: gate.Editable}, nil
}

// persistPlan writes the window and every product's stages of plan.
func persistPlan(ctx context.Context, tx *repository.Repositories, item *entity.WorkItem, plan *timeline.Plan) error {
	if plan.Window != nil {
		start, end := plan.Window.Start, plan.Window.End
		item.TimelineStart = entity.ToDate(&start)
		item.TimelineEnd = entity.ToDate(&end)
	} else {
		item.TimelineStart, item.TimelineEnd = nil, nil
	}
	item.TotalDays = plan.TotalDays()
	if err := tx.WorkItem.UpdateWindow(ctx, item); err != nil {
		return fmt.Errorf("update window: %w", err)
	}
	for _, p := range plan.Products {
		if err := tx.Workplan.ReplaceForProduct(ctx, p.ProductID, stageRows(item.ID, p)); err != nil {
			return fmt.Errorf("save stages of product %d: %w", p.ProductID, err)
		}
	}
	return nil
}

// StageInput 阶段输入
type StageInput struct {
	Name   string     `json:"nama_tahapan"`
	Start  *time.Time `json:"start_date"`
	End    *time.Time `json:"end_date"`
	Status string     `json:"status"`
	Note   string     `json:"catatan"`
}

// ProductStagesInput replaces the stage list of one product.
type ProductStagesInput struct {
	ProductID uint64       `json:"product_id" binding:"required"`
	Stages    []StageInput `json:"stages"`
}

// ItemTimelineInput is the window and stages of one work item.
type ItemTimelineInput struct {
	WorkItemID uint64               `json:"work_item_id" binding:"required"`
	Start      time.Time            `json:"start_date" binding:"required"`
	End        time.Time            `json:"end_date" binding:"required"`
	Products   []ProductStagesInput `json:"products"`
}

// OrderTimelineInput 订单时间线提交
type OrderTimelineInput struct {
	Items []ItemTimelineInput `json:"items" binding:"required,dive"`
}

// SubmitOrderTimeline validates and saves the timeline of every listed
// work item of an order in one transaction. Each saved work item gets a
// fresh lock marker, so the order stays locked until an extension is
// approved. Products not listed keep their stages.
func (s *ScheduleService) SubmitOrderTimeline(ctx context.Context, orderID uint64, input OrderTimelineInput, by string) (approval.GateView, error) {
	now := time.Now()
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		gate, err := gateOf(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !gate.Editable {
			return entity.Fail(entity.ErrTimelineLocked, "an extension must be approved before the timeline can change")
		}

		type pending struct {
			item *entity.WorkItem
			plan *timeline.Plan
		}
		var work []pending
		for _, in := range input.Items {
			item, err := tx.WorkItem.FindByID(ctx, in.WorkItemID)
			if err != nil {
				return fmt.Errorf("find work item %d: %w", in.WorkItemID, err)
			}
			if item.OrderID != orderID {
				return fmt.Errorf("work item %d of order %d: %w", in.WorkItemID, orderID, repository.ErrNotFound)
			}
			if item.Status != entity.WorkItemStatusPublished {
				return entity.Fail(entity.ErrNotPublished, fmt.Sprintf("work item %d", item.ID))
			}
			plan, err := loadPlan(ctx, tx, item, s.defaultStages)
			if err != nil {
				return err
			}
			sched := timeline.NewScheduler(plan, true)
			submitted := make([]*timeline.ProductPlan, 0, len(in.Products))
			for _, pin := range in.Products {
				pp, err := productOf(plan, pin.ProductID)
				if err != nil {
					return err
				}
				stages := make([]*timeline.Stage, 0, len(pin.Stages))
				for i, st := range pin.Stages {
					built, err := timeline.BuildStage(i+1, st.Name, st.Start, st.End, st.Status, st.Note)
					if err != nil {
						return err
					}
					stages = append(stages, built)
				}
				pp.Stages = stages
				submitted = append(submitted, pp)
			}
			// window after stages, the stored dates are being replaced
			plan.Products = submitted
			if err := sched.SetItemWindow(in.Start, in.End); err != nil {
				return err
			}
			if err := sched.ValidateAll(); err != nil {
				return err
			}
			work = append(work, pending{item: item, plan: plan})
		}

		for _, w := range work {
			if err := persistPlan(ctx, tx, w.item, w.plan); err != nil {
				return err
			}
			if err := tx.Extension.Create(ctx, approval.LockMarker(w.item.ID, orderID, now)); err != nil {
				return fmt.Errorf("create lock marker: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return approval.GateView{}, err
	}

	s.hub.PublishTimelineUpdate(orderID, "submitted")
	notifyAsync(s.logger, s.notifier, notify.Message{
		Event:   notify.EventTimelineSubmitted,
		Title:   "Timeline produksi disimpan",
		Body:    fmt.Sprintf("Timeline order %d disimpan oleh %s", orderID, by),
		OrderID: orderID,
		UserID:  by,
	})
	return s.Gate(ctx, orderID)
}

func productOf(plan *timeline.Plan, productID uint64) (*timeline.ProductPlan, error) {
	for _, p := range plan.Products {
		if p.ProductID == productID {
			return p, nil
		}
	}
	return nil, entity.Fail(entity.ErrUnknownProduct, "").WithProduct(fmt.Sprint(productID))
}

// mutate loads the plan of a published work item behind the order gate,
// applies fn and persists the result in one transaction.
func (s *ScheduleService) mutate(ctx context.Context, workItemID uint64, fn func(*timeline.Scheduler) error) (*PlanView, error) {
	var (
		view    *PlanView
		orderID uint64
	)
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		item, err := tx.WorkItem.FindByID(ctx, workItemID)
		if err != nil {
			return fmt.Errorf("find work item: %w", err)
		}
		orderID = item.OrderID
		if item.Status != entity.WorkItemStatusPublished {
			return entity.Fail(entity.ErrNotPublished, fmt.Sprintf("work item %d", item.ID))
		}
		gate, err := gateOf(ctx, tx, item.OrderID)
		if err != nil {
			return err
		}
		plan, err := loadPlan(ctx, tx, item, s.defaultStages)
		if err != nil {
			return err
		}
		sched := timeline.NewScheduler(plan, gate.Editable)
		if err := fn(sched); err != nil {
			return err
		}
		if err := timeline.ValidateDates(plan); err != nil {
			return err
		}
		if err := persistPlan(ctx, tx, item, plan); err != nil {
			return err
		}
		view = &PlanView{Plan: plan, Status: item.Status, Editable: gate.Editable}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.hub.PublishTimelineUpdate(orderID, "updated")
	return view, nil
}

// WindowInput 工作项时间窗口
type WindowInput struct {
	Start time.Time `json:"start_date" binding:"required"`
	End   time.Time `json:"end_date" binding:"required"`
}

func (s *ScheduleService) SetWindow(ctx context.Context, workItemID uint64, in WindowInput) (*PlanView, error) {
	return s.mutate(ctx, workItemID, func(sched *timeline.Scheduler) error {
		return sched.SetItemWindow(in.Start, in.End)
	})
}

// StageDateInput sets or clears (nil value) one date of a stage.
type StageDateInput struct {
	Field timeline.Field `json:"field" binding:"required"`
	Value *time.Time     `json:"value"`
}

func (s *ScheduleService) SetStageDate(ctx context.Context, workItemID, productID uint64, urutan int, in StageDateInput) (*PlanView, error) {
	return s.mutate(ctx, workItemID, func(sched *timeline.Scheduler) error {
		return sched.SetStageDate(productID, urutan, in.Field, in.Value)
	})
}

// StageTextInput 阶段名称/备注
type StageTextInput struct {
	Name *string `json:"nama_tahapan"`
	Note *string `json:"catatan"`
}

func (s *ScheduleService) UpdateStageText(ctx context.Context, workItemID, productID uint64, urutan int, in StageTextInput) (*PlanView, error) {
	return s.mutate(ctx, workItemID, func(sched *timeline.Scheduler) error {
		if in.Name != nil {
			if err := sched.SetStageName(productID, urutan, *in.Name); err != nil {
				return err
			}
		}
		if in.Note != nil {
			return sched.SetStageNote(productID, urutan, *in.Note)
		}
		return nil
	})
}

func (s *ScheduleService) AddStage(ctx context.Context, workItemID, productID uint64) (*PlanView, error) {
	return s.mutate(ctx, workItemID, func(sched *timeline.Scheduler) error {
		_, err := sched.AddStage(productID)
		return err
	})
}

func (s *ScheduleService) RemoveStage(ctx context.Context, workItemID, productID uint64, urutan int) (*PlanView, error) {
	return s.mutate(ctx, workItemID, func(sched *timeline.Scheduler) error {
		return sched.RemoveStage(productID, urutan)
	})
}

// RoomTimelineInput 房间级时间线模板
type RoomTimelineInput struct {
	Room      hierarchy.RoomID `json:"room_id"`
	StageName string           `json:"nama_tahapan" binding:"required"`
	Start     time.Time        `json:"start_date" binding:"required"`
	End       time.Time        `json:"end_date" binding:"required"`
}

// ApplyRoomTimeline returns the plan and how many stages were updated.
func (s *ScheduleService) ApplyRoomTimeline(ctx context.Context, workItemID uint64, in RoomTimelineInput) (*PlanView, int, error) {
	var updated int
	view, err := s.mutate(ctx, workItemID, func(sched *timeline.Scheduler) error {
		n, err := sched.ApplyRoomTimeline(in.Room, in.StageName, in.Start, in.End)
		updated = n
		return err
	})
	return view, updated, err
}

// UpdateStageStatus records production progress of one stage. It is not
// gated by the extension workflow. A stage moving to in_progress becomes
// the product's current stage.
func (s *ScheduleService) UpdateStageStatus(ctx context.Context, productID uint64, urutan int, status string) error {
	product, err := s.repos.WorkItem.FindProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("find product: %w", err)
	}
	item, err := s.repos.WorkItem.FindByID(ctx, product.WorkItemID)
	if err != nil {
		return fmt.Errorf("find work item: %w", err)
	}
	plan, err := loadPlan(ctx, s.repos, item, s.defaultStages)
	if err != nil {
		return err
	}
	sched := timeline.NewScheduler(plan, false)
	if err := sched.SetStageStatus(productID, urutan, status); err != nil {
		return err
	}
	pp, err := productOf(plan, productID)
	if err != nil {
		return err
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		err := tx.Workplan.UpdateStatus(ctx, productID, urutan, status)
		if errors.Is(err, repository.ErrNotFound) {
			// stages were only seeded in memory so far
			err = tx.Workplan.ReplaceForProduct(ctx, productID, stageRows(item.ID, pp))
		}
		if err != nil {
			return fmt.Errorf("update stage status: %w", err)
		}
		if status == entity.StageStatusInProgress {
			for _, st := range pp.Stages {
				if st.Urutan == urutan {
					return tx.WorkItem.UpdateCurrentStage(ctx, productID, st.Name)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.hub.PublishTimelineUpdate(item.OrderID, "status")
	return nil
}

// Plans loads the plan of every work item of an order.
func (s *ScheduleService) Plans(ctx context.Context, orderID uint64) ([]*timeline.Plan, error) {
	items, err := s.repos.WorkItem.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list work items: %w", err)
	}
	plans := make([]*timeline.Plan, 0, len(items))
	for i := range items {
		plan, err := loadPlan(ctx, s.repos, &items[i], s.defaultStages)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// Progress derives the progress snapshot of an order. It is never stored.
func (s *ScheduleService) Progress(ctx context.Context, orderID uint64) (timeline.OrderSnapshot, error) {
	plans, err := s.Plans(ctx, orderID)
	if err != nil {
		return timeline.OrderSnapshot{}, err
	}
	return timeline.Snapshot(orderID, plans), nil
}
