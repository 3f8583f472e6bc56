package timeline

import (
	"strings"
	"time"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
)

// Stage is one production step of one product.
type Stage struct {
	Urutan   int        `json:"urutan"`
	Name     string     `json:"nama_tahapan"`
	Start    *time.Time `json:"start_date"`
	End      *time.Time `json:"end_date"`
	Duration *int       `json:"duration_days"`
	Status   string     `json:"status"`
	Note     string     `json:"catatan,omitempty"`
}

// recompute derives Duration from the dates. Inverted pairs leave it unset.
func (s *Stage) recompute() {
	s.Duration = nil
	if s.Start == nil || s.End == nil {
		return
	}
	if n := DayCount(*s.Start, *s.End); n >= 1 {
		s.Duration = &n
	}
}

// ProductPlan is the ordered stage list of one product.
type ProductPlan struct {
	ProductID uint64   `json:"product_id"`
	Name      string   `json:"name"`
	RoomLabel string   `json:"nama_ruangan"`
	Stages    []*Stage `json:"stages"`
}

func (p *ProductPlan) stage(urutan int) *Stage {
	for _, s := range p.Stages {
		if s.Urutan == urutan {
			return s
		}
	}
	return nil
}

func (p *ProductPlan) renumber() {
	for i, s := range p.Stages {
		s.Urutan = i + 1
	}
}

// Plan is the schedule document of one work item.
type Plan struct {
	WorkItemID uint64         `json:"work_item_id"`
	Window     *Window        `json:"window"`
	Products   []*ProductPlan `json:"products"`
}

// TotalDays of the window, or nil when no window is set.
func (p *Plan) TotalDays() *int {
	if p.Window == nil {
		return nil
	}
	n := p.Window.TotalDays()
	return &n
}

// NewStage returns a planned stage with the given name and no dates.
func NewStage(urutan int, name string) *Stage {
	return &Stage{Urutan: urutan, Name: name, Status: entity.StageStatusPlanned}
}

// DefaultStages builds the seed stage list from names.
func DefaultStages(names []string) []*Stage {
	out := make([]*Stage, 0, len(names))
	for i, n := range names {
		out = append(out, NewStage(i+1, n))
	}
	return out
}

// BuildStage assembles a stage from submitted values. Dates are truncated
// to calendar days and the duration is derived. A blank status means planned.
func BuildStage(urutan int, name string, start, end *time.Time, status, note string) (*Stage, error) {
	if status == "" {
		status = entity.StageStatusPlanned
	}
	if !entity.ValidStageStatus(status) {
		return nil, entity.Fail(entity.ErrInvalidStatus, "unknown stage status "+status)
	}
	st := &Stage{Urutan: urutan, Name: strings.TrimSpace(name), Status: status, Note: note}
	if start != nil {
		d := entity.Day(*start)
		st.Start = &d
	}
	if end != nil {
		d := entity.Day(*end)
		st.End = &d
	}
	st.recompute()
	return st, nil
}
