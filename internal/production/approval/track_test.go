package approval

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
)

func openBoth(t *testing.T) Board {
	t.Helper()
	var rows []entity.ResponseTrack
	for _, tr := range entity.Tracks {
		rt, err := OpenTrack(9, "survey", tr, t0, 3)
		if err != nil {
			t.Fatalf("OpenTrack(%s): %v", tr, err)
		}
		rows = append(rows, *rt)
	}
	return NewBoard(9, "survey", rows)
}

func TestOpenTrack(t *testing.T) {
	rt, err := OpenTrack(9, " survey ", entity.TrackRegular, t0, 3)
	if err != nil {
		t.Fatal(err)
	}
	if rt.Stage != "survey" || rt.Status != entity.ResponseStatusPending || !rt.Deadline.Equal(t0.AddDate(0, 0, 3)) {
		t.Errorf("track = %+v", rt)
	}
	if _, err := OpenTrack(9, "survey", entity.Track("finance"), t0, 3); !errors.Is(err, entity.ErrInvalidStatus) {
		t.Errorf("unknown track: err = %v", err)
	}
	if _, err := OpenTrack(9, "", entity.TrackRegular, t0, 3); !errors.Is(err, entity.ErrMissingStageName) {
		t.Errorf("blank stage: err = %v", err)
	}
}

func TestTracksAreIndependent(t *testing.T) {
	b := openBoth(t)
	regularBefore := *b[entity.TrackRegular]

	if _, err := b.Record(entity.TrackMarketing, "kepala marketing", t0.Add(time.Hour)); err != nil {
		t.Fatalf("Record marketing: %v", err)
	}
	if !b.Responded(entity.TrackMarketing) {
		t.Fatal("marketing should be responded")
	}
	if b.Responded(entity.TrackRegular) {
		t.Fatal("marketing response leaked into regular track")
	}
	if *b[entity.TrackRegular] != regularBefore {
		t.Fatalf("regular record mutated: %+v", b[entity.TrackRegular])
	}

	if _, err := b.Record(entity.TrackRegular, "drafter", t0.Add(2*time.Hour)); err != nil {
		t.Fatalf("Record regular: %v", err)
	}
	if b[entity.TrackMarketing].ResponseBy != "kepala marketing" {
		t.Fatalf("regular response changed marketing author")
	}
}

func TestRespondIsFinal(t *testing.T) {
	b := openBoth(t)
	first := t0.Add(time.Hour)
	_, _ = b.Record(entity.TrackRegular, "a", first)
	_, err := b.Record(entity.TrackRegular, "b", t0.Add(2*time.Hour))
	if !errors.Is(err, entity.ErrAlreadyResponded) {
		t.Fatalf("err = %v, want ErrAlreadyResponded", err)
	}
	rt := b[entity.TrackRegular]
	if rt.ResponseBy != "a" || !rt.ResponseTime.Equal(first) {
		t.Fatalf("second response overwrote the first: %+v", rt)
	}
	if _, err := (Board{}).Record(entity.TrackRegular, "a", first); !errors.Is(err, entity.ErrUnknownStage) {
		t.Fatalf("unopened track: err = %v", err)
	}
}

func TestExtendDeadline(t *testing.T) {
	rt, _ := OpenTrack(9, "survey", entity.TrackRegular, t0, 3)
	rt.ID = 4

	log, err := ExtendDeadline(rt, "u1", 2, 30, "klien minta revisi", t0)
	if err != nil {
		t.Fatalf("ExtendDeadline: %v", err)
	}
	if !rt.Deadline.Equal(t0.AddDate(0, 0, 5)) || rt.DurationDays != 5 || rt.ExtendCount != 1 {
		t.Errorf("track after extend = %+v", rt)
	}
	if log.ResponseTrackID != 4 || log.ExtendDays != 2 {
		t.Errorf("log = %+v", log)
	}
	_, _ = ExtendDeadline(rt, "u1", 1, 30, "cuti", t0)
	if !strings.Contains(rt.ExtendReason, "Perpanjangan #1: klien minta revisi") || !strings.HasSuffix(rt.ExtendReason, "Perpanjangan #2: cuti") {
		t.Errorf("reason log = %q", rt.ExtendReason)
	}

	for _, days := range []int{0, 31, -1} {
		if _, err := ExtendDeadline(rt, "u1", days, 30, "x", t0); !errors.Is(err, entity.ErrInvalidExtension) {
			t.Errorf("days=%d: err = %v", days, err)
		}
	}
	if rt.ExtendCount != 2 {
		t.Errorf("rejected extends changed count to %d", rt.ExtendCount)
	}
}

func TestExtendRevivesOverdueTrack(t *testing.T) {
	rt, _ := OpenTrack(9, "survey", entity.TrackRegular, t0, 1)
	now := t0.AddDate(0, 0, 2)
	if !IsOverdue(rt, now) {
		t.Fatal("track should be overdue")
	}
	rt.Status = entity.ResponseStatusOverdue
	if _, err := ExtendDeadline(rt, "u", 5, 30, "x", now); err != nil {
		t.Fatal(err)
	}
	if rt.Status != entity.ResponseStatusPending {
		t.Fatalf("status = %s, want pending", rt.Status)
	}
}

func TestDueForReminder(t *testing.T) {
	rt, _ := OpenTrack(9, "survey", entity.TrackRegular, t0, 2)
	lead := 24 * time.Hour
	if DueForReminder(rt, t0, lead) {
		t.Error("two days out should not remind")
	}
	almost := rt.Deadline.Add(-12 * time.Hour)
	if !DueForReminder(rt, almost, lead) {
		t.Error("half a day out should remind")
	}
	reminded := almost
	rt.RemindedAt = &reminded
	if DueForReminder(rt, almost, lead) {
		t.Error("already reminded")
	}
	if DueForReminder(rt, rt.Deadline.Add(time.Hour), lead) {
		t.Error("past deadline is overdue, not a reminder")
	}
}
