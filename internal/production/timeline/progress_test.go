package timeline

import (
	"testing"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
)

func stagesWith(statuses ...string) []*Stage {
	out := make([]*Stage, len(statuses))
	for i, s := range statuses {
		out[i] = &Stage{Urutan: i + 1, Name: "S", Status: s}
	}
	return out
}

func TestProductProgress(t *testing.T) {
	done, planned := entity.StageStatusDone, entity.StageStatusPlanned
	cases := []struct {
		stages []*Stage
		want   int
	}{
		{nil, 0},
		{stagesWith(), 0},
		{stagesWith(done), 100},
		{stagesWith(done, done, done), 100},
		{stagesWith(planned, planned), 0},
		{stagesWith(done, planned, planned), 33},
		{stagesWith(done, done, planned), 67},
		{stagesWith(done, planned), 50},
		{stagesWith(done, entity.StageStatusCancelled, entity.StageStatusInProgress, planned, planned, planned, planned, planned), 13},
	}
	for i, tc := range cases {
		got := ProductProgress(tc.stages)
		if got != tc.want {
			t.Errorf("case %d: progress = %d, want %d", i, got, tc.want)
		}
		if got < 0 || got > 100 {
			t.Errorf("case %d: progress %d out of bounds", i, got)
		}
	}
}

func TestProgressBoundsExhaustive(t *testing.T) {
	for total := 0; total <= 12; total++ {
		for done := 0; done <= total; done++ {
			statuses := make([]string, total)
			for i := range statuses {
				statuses[i] = entity.StageStatusPlanned
				if i < done {
					statuses[i] = entity.StageStatusDone
				}
			}
			got := ProductProgress(stagesWith(statuses...))
			if got < 0 || got > 100 {
				t.Fatalf("%d/%d -> %d", done, total, got)
			}
			if total > 0 && done == total && got != 100 {
				t.Fatalf("all done %d -> %d", total, got)
			}
			if done == 0 && got != 0 {
				t.Fatalf("none done %d -> %d", total, got)
			}
		}
	}
}

func TestItemAndOrderProgress(t *testing.T) {
	done, planned := entity.StageStatusDone, entity.StageStatusPlanned
	a := &ProductPlan{ProductID: 1, Stages: stagesWith(done, done, planned, planned)}
	b := &ProductPlan{ProductID: 2, Stages: stagesWith(done)}
	empty := &ProductPlan{ProductID: 3}

	if got := ItemProgress([]*ProductPlan{a, b, empty}); got != 60 {
		t.Errorf("item progress = %d, want 60", got)
	}
	if got := ItemProgress([]*ProductPlan{empty}); got != 0 {
		t.Errorf("zero-stage item progress = %d, want 0", got)
	}
	if got := ItemProgress(nil); got != 0 {
		t.Errorf("nil item progress = %d", got)
	}

	plans := []*Plan{
		{WorkItemID: 1, Products: []*ProductPlan{a}},
		{WorkItemID: 2, Products: []*ProductPlan{b, empty}},
	}
	if got := OrderProgress(plans); got != 60 {
		t.Errorf("order progress = %d, want 60", got)
	}

	snap := Snapshot(9, plans)
	if snap.Progress != 60 || len(snap.Items) != 2 || snap.Items[0].Progress != 50 || snap.Items[1].Progress != 100 {
		t.Errorf("snapshot = %+v", snap)
	}
	if p := snap.Items[1].Products[1]; p.Total != 0 || p.Progress != 0 {
		t.Errorf("empty product snapshot = %+v", p)
	}
}
