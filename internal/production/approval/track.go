package approval

import (
	"fmt"
	"strings"
	"time"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
)

// Board holds the response tracks of one (order, stage). Tracks never
// read or write each other's record.
type Board map[entity.Track]*entity.ResponseTrack

// NewBoard indexes tracks by their Track. Records of other stages are ignored.
func NewBoard(orderID uint64, stage string, tracks []entity.ResponseTrack) Board {
	b := make(Board, len(tracks))
	for i := range tracks {
		t := &tracks[i]
		if t.OrderID == orderID && t.Stage == stage {
			b[t.Track] = t
		}
	}
	return b
}

// Responded reports whether the given track has a response.
func (b Board) Responded(track entity.Track) bool {
	t, ok := b[track]
	return ok && t.Status == entity.ResponseStatusResponded
}

// Record responds on one track. The track must be open.
func (b Board) Record(track entity.Track, author string, at time.Time) (*entity.ResponseTrack, error) {
	t, ok := b[track]
	if !ok {
		return nil, entity.Fail(entity.ErrUnknownStage, fmt.Sprintf("no %s track open", track))
	}
	if err := Respond(t, author, at); err != nil {
		return nil, err
	}
	return t, nil
}

// OpenTrack starts an unresponded track with deadline = start + durationDays.
func OpenTrack(orderID uint64, stage string, track entity.Track, start time.Time, durationDays int) (*entity.ResponseTrack, error) {
	if !track.Valid() {
		return nil, entity.Fail(entity.ErrInvalidStatus, fmt.Sprintf("unknown track %q", track))
	}
	stage = strings.TrimSpace(stage)
	if stage == "" {
		return nil, entity.Fail(entity.ErrMissingStageName, "")
	}
	if durationDays < 0 {
		return nil, entity.Fail(entity.ErrInvalidRange, fmt.Sprintf("duration %d must not be negative", durationDays))
	}
	return &entity.ResponseTrack{
		OrderID:      orderID,
		Stage:        stage,
		Track:        track,
		Status:       entity.ResponseStatusPending,
		StartTime:    start,
		Deadline:     start.AddDate(0, 0, durationDays),
		DurationDays: durationDays,
	}, nil
}

// Respond records the author and time. The first response is final.
func Respond(t *entity.ResponseTrack, author string, at time.Time) error {
	if t.Status == entity.ResponseStatusResponded {
		return entity.Fail(entity.ErrAlreadyResponded,
			fmt.Sprintf("%s track of %s answered by %s", t.Track, t.Stage, t.ResponseBy)).WithStage(t.Stage)
	}
	if strings.TrimSpace(author) == "" {
		return entity.Fail(entity.ErrInvalidStatus, "response author is required").WithStage(t.Stage)
	}
	t.ResponseBy = author
	t.ResponseTime = &at
	t.Status = entity.ResponseStatusResponded
	return nil
}

// ExtendDeadline moves the deadline of an unanswered track by days and
// returns the log entry to persist.
func ExtendDeadline(t *entity.ResponseTrack, userID string, days, maxDays int, reason string, at time.Time) (*entity.ResponseTrackExtendLog, error) {
	if t.Status == entity.ResponseStatusResponded {
		return nil, entity.Fail(entity.ErrAlreadyResponded, "deadline of an answered track cannot move").WithStage(t.Stage)
	}
	if days < 1 || days > maxDays {
		return nil, entity.Fail(entity.ErrInvalidExtension, fmt.Sprintf("days must be between 1 and %d", maxDays)).WithStage(t.Stage)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, entity.Fail(entity.ErrInvalidExtension, "reason is required").WithStage(t.Stage)
	}

	t.Deadline = t.Deadline.AddDate(0, 0, days)
	t.DurationDays += days
	t.ExtendCount++
	entry := fmt.Sprintf("Perpanjangan #%d: %s", t.ExtendCount, reason)
	if t.ExtendReason == "" {
		t.ExtendReason = entry
	} else {
		t.ExtendReason += "\n" + entry
	}
	if t.Status == entity.ResponseStatusOverdue && t.Deadline.After(at) {
		t.Status = entity.ResponseStatusPending
	}
	t.RemindedAt = nil

	return &entity.ResponseTrackExtendLog{
		ResponseTrackID: t.ID,
		UserID:          userID,
		ExtendDays:      days,
		ExtendReason:    reason,
		RequestTime:     at,
	}, nil
}

// IsOverdue reports an unanswered track whose deadline has passed.
func IsOverdue(t *entity.ResponseTrack, now time.Time) bool {
	return t.Status == entity.ResponseStatusPending && now.After(t.Deadline)
}

// DueForReminder reports an unanswered, not yet reminded track whose
// deadline falls within lead of now.
func DueForReminder(t *entity.ResponseTrack, now time.Time, lead time.Duration) bool {
	if t.Status != entity.ResponseStatusPending || t.RemindedAt != nil {
		return false
	}
	return !now.After(t.Deadline) && t.Deadline.Sub(now) <= lead
}
