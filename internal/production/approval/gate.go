package approval

import (
	"fmt"
	"strings"
	"time"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
)

// Latest picks the most recent request per work item (by creation time,
// then id).
func Latest(requests []entity.ExtensionRequest) map[uint64]entity.ExtensionRequest {
	out := make(map[uint64]entity.ExtensionRequest)
	for _, r := range requests {
		cur, ok := out[r.WorkItemID]
		if !ok || r.CreatedAt.After(cur.CreatedAt) || (r.CreatedAt.Equal(cur.CreatedAt) && r.ID > cur.ID) {
			out[r.WorkItemID] = r
		}
	}
	return out
}

// ItemGate is the gate state of one work item.
type ItemGate struct {
	WorkItemID uint64                   `json:"work_item_id"`
	Latest     *entity.ExtensionRequest `json:"latest_request"`
	Blocking   bool                     `json:"blocking"`
}

// GateView is the read model behind CanEditTimeline.
type GateView struct {
	Editable bool       `json:"editable"`
	Items    []ItemGate `json:"items"`
}

// blocks reports whether a latest request locks the timeline. Only an
// approved request leaves it open.
func blocks(r entity.ExtensionRequest) bool {
	return r.Status != entity.ExtensionStatusApproved
}

// Evaluate builds the gate view for the work items of one order.
func Evaluate(workItemIDs []uint64, requests []entity.ExtensionRequest) GateView {
	latest := Latest(requests)
	view := GateView{Editable: true, Items: make([]ItemGate, 0, len(workItemIDs))}
	for _, id := range workItemIDs {
		item := ItemGate{WorkItemID: id}
		if r, ok := latest[id]; ok {
			r := r
			item.Latest = &r
			item.Blocking = blocks(r)
		}
		if item.Blocking {
			view.Editable = false
		}
		view.Items = append(view.Items, item)
	}
	return view
}

// CanEditTimeline is true iff every work item has no request or an
// approved latest request. One blocking item locks the whole order.
func CanEditTimeline(workItemIDs []uint64, requests []entity.ExtensionRequest) bool {
	return Evaluate(workItemIDs, requests).Editable
}

// RequestExtension opens a pending request. It refuses while the latest
// request is still pending.
func RequestExtension(latest *entity.ExtensionRequest, workItemID, orderID uint64, reason, by string, at time.Time) (*entity.ExtensionRequest, error) {
	if latest != nil && latest.Status == entity.ExtensionStatusPending {
		return nil, entity.Fail(entity.ErrExtensionPending, fmt.Sprintf("request %d is awaiting a decision", latest.ID))
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, entity.Fail(entity.ErrInvalidExtension, "reason is required")
	}
	return &entity.ExtensionRequest{
		WorkItemID:  workItemID,
		OrderID:     orderID,
		Status:      entity.ExtensionStatusPending,
		Reason:      &reason,
		RequestedBy: by,
		CreatedAt:   at,
		UpdatedAt:   at,
	}, nil
}

// Resolve approves or rejects a pending request. Resolved requests never
// change again.
func Resolve(r *entity.ExtensionRequest, status, by string, at time.Time) error {
	if status != entity.ExtensionStatusApproved && status != entity.ExtensionStatusRejected {
		return entity.Fail(entity.ErrInvalidStatus, fmt.Sprintf("cannot resolve to %q", status))
	}
	switch r.Status {
	case entity.ExtensionStatusPending:
	case entity.ExtensionStatusApproved, entity.ExtensionStatusRejected:
		return entity.Fail(entity.ErrAlreadyResolved, fmt.Sprintf("request %d is %s", r.ID, r.Status))
	default:
		return entity.Fail(entity.ErrInvalidStatus, fmt.Sprintf("request %d was never submitted", r.ID))
	}
	r.Status = status
	r.ResolvedBy = by
	r.ResolvedAt = &at
	r.UpdatedAt = at
	return nil
}

// LockMarker is the request written after a timeline submission. Its
// status "none" counts as not approved, so the timeline stays locked until
// a new request is approved.
func LockMarker(workItemID, orderID uint64, at time.Time) *entity.ExtensionRequest {
	return &entity.ExtensionRequest{
		WorkItemID: workItemID,
		OrderID:    orderID,
		Status:     entity.ExtensionStatusNone,
		CreatedAt:  at,
		UpdatedAt:  at,
	}
}
