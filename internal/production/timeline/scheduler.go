package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/hierarchy"
)

// Field selects a stage date.
type Field string

const (
	FieldStart Field = "start"
	FieldEnd   Field = "end"
)

// Scheduler edits the plan of one work item. Every timeline write is
// refused with ErrTimelineLocked unless the scheduler was built editable.
type Scheduler struct {
	plan     *Plan
	editable bool
}

func NewScheduler(plan *Plan, editable bool) *Scheduler {
	if plan.Products == nil {
		plan.Products = []*ProductPlan{}
	}
	return &Scheduler{plan: plan, editable: editable}
}

func (s *Scheduler) Plan() *Plan { return s.plan }

func (s *Scheduler) Editable() bool { return s.editable }

func (s *Scheduler) guard() error {
	if !s.editable {
		return entity.Fail(entity.ErrTimelineLocked, "an extension must be approved before the timeline can change")
	}
	return nil
}

func (s *Scheduler) product(productID uint64) (*ProductPlan, error) {
	for _, p := range s.plan.Products {
		if p.ProductID == productID {
			return p, nil
		}
	}
	return nil, entity.Fail(entity.ErrUnknownProduct, "").WithProduct(fmt.Sprint(productID))
}

func (s *Scheduler) stage(productID uint64, urutan int) (*ProductPlan, *Stage, error) {
	p, err := s.product(productID)
	if err != nil {
		return nil, nil, err
	}
	st := p.stage(urutan)
	if st == nil {
		return nil, nil, entity.Fail(entity.ErrUnknownStage, fmt.Sprintf("urutan %d", urutan)).WithProduct(productLabel(p))
	}
	return p, st, nil
}

// SeedDefaults gives every product without stages the default stage list.
// It returns how many products were seeded.
func (s *Scheduler) SeedDefaults(names []string) int {
	n := 0
	for _, p := range s.plan.Products {
		if len(p.Stages) == 0 {
			p.Stages = DefaultStages(names)
			n++
		}
	}
	return n
}

// SetItemWindow sets the bounding window of the work item.
func (s *Scheduler) SetItemWindow(start, end time.Time) error {
	if err := s.guard(); err != nil {
		return err
	}
	w, err := NewWindow(start, end)
	if err != nil {
		return err
	}
	// stages already dated must still fit
	for _, p := range s.plan.Products {
		for _, st := range p.Stages {
			if err := checkDates(&w, p, st); err != nil {
				return err
			}
		}
	}
	s.plan.Window = &w
	return nil
}

// SetStageDate sets or clears one date of one stage. A date outside the
// window is refused and the stage keeps its previous dates.
func (s *Scheduler) SetStageDate(productID uint64, urutan int, field Field, value *time.Time) error {
	if err := s.guard(); err != nil {
		return err
	}
	p, st, err := s.stage(productID, urutan)
	if err != nil {
		return err
	}
	if field != FieldStart && field != FieldEnd {
		return entity.Fail(entity.ErrInvalidRange, fmt.Sprintf("unknown date field %q", field))
	}
	if value != nil {
		d := entity.Day(*value)
		value = &d
		if err := s.checkWindow(p, st, field, d); err != nil {
			return err
		}
	}
	if field == FieldStart {
		st.Start = value
	} else {
		st.End = value
	}
	st.recompute()
	return nil
}

func (s *Scheduler) checkWindow(p *ProductPlan, st *Stage, field Field, d time.Time) error {
	if s.plan.Window == nil || s.plan.Window.Contains(d) {
		return nil
	}
	return entity.Fail(entity.ErrOutOfWindow,
		fmt.Sprintf("%s %s is outside %s", field, d.Format(dateLayout), s.plan.Window)).
		WithProduct(productLabel(p)).WithStage(stageLabel(st)).WithField(string(field))
}

func (s *Scheduler) SetStageName(productID uint64, urutan int, name string) error {
	if err := s.guard(); err != nil {
		return err
	}
	_, st, err := s.stage(productID, urutan)
	if err != nil {
		return err
	}
	st.Name = strings.TrimSpace(name)
	return nil
}

func (s *Scheduler) SetStageNote(productID uint64, urutan int, note string) error {
	if err := s.guard(); err != nil {
		return err
	}
	_, st, err := s.stage(productID, urutan)
	if err != nil {
		return err
	}
	st.Note = note
	return nil
}

// SetStageStatus records production progress. It does not change the
// shape of the timeline, so it is allowed while the timeline is locked.
func (s *Scheduler) SetStageStatus(productID uint64, urutan int, status string) error {
	if !entity.ValidStageStatus(status) {
		return entity.Fail(entity.ErrInvalidStatus, fmt.Sprintf("unknown stage status %q", status))
	}
	_, st, err := s.stage(productID, urutan)
	if err != nil {
		return err
	}
	st.Status = status
	return nil
}

// AddStage appends an empty planned stage.
func (s *Scheduler) AddStage(productID uint64) (*Stage, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	p, err := s.product(productID)
	if err != nil {
		return nil, err
	}
	next := 1
	for _, st := range p.Stages {
		if st.Urutan >= next {
			next = st.Urutan + 1
		}
	}
	st := NewStage(next, "")
	p.Stages = append(p.Stages, st)
	return st, nil
}

// RemoveStage deletes a stage and renumbers the rest 1..n.
func (s *Scheduler) RemoveStage(productID uint64, urutan int) error {
	if err := s.guard(); err != nil {
		return err
	}
	p, _, err := s.stage(productID, urutan)
	if err != nil {
		return err
	}
	kept := p.Stages[:0]
	for _, st := range p.Stages {
		if st.Urutan != urutan {
			kept = append(kept, st)
		}
	}
	p.Stages = kept
	p.renumber()
	return nil
}

// ApplyRoomTimeline overwrites the dates of the stage named stageName on
// every product of the room. Products without such a stage are skipped.
// It returns the number of stages updated.
func (s *Scheduler) ApplyRoomTimeline(room hierarchy.RoomID, stageName string, start, end time.Time) (int, error) {
	if err := s.guard(); err != nil {
		return 0, err
	}
	start, end = entity.Day(start), entity.Day(end)
	if end.Before(start) {
		return 0, entity.Fail(entity.ErrInvalidRange,
			fmt.Sprintf("end %s is before start %s", end.Format(dateLayout), start.Format(dateLayout))).WithStage(stageName)
	}

	var members []*ProductPlan
	for _, p := range s.plan.Products {
		if hierarchy.RoomKey(p.RoomLabel) == room {
			members = append(members, p)
		}
	}
	if len(members) == 0 {
		return 0, entity.Fail(entity.ErrUnknownRoom, string(room))
	}

	var targets []*Stage
	for _, p := range members {
		st := findByName(p, stageName)
		if st == nil {
			continue
		}
		if err := s.checkWindow(p, st, FieldStart, start); err != nil {
			return 0, err
		}
		if err := s.checkWindow(p, st, FieldEnd, end); err != nil {
			return 0, err
		}
		targets = append(targets, st)
	}
	for _, st := range targets {
		a, b := start, end
		st.Start, st.End = &a, &b
		st.recompute()
	}
	return len(targets), nil
}

func findByName(p *ProductPlan, name string) *Stage {
	name = strings.TrimSpace(name)
	for _, st := range p.Stages {
		if strings.EqualFold(strings.TrimSpace(st.Name), name) {
			return st
		}
	}
	return nil
}

// ValidateAll checks the plan for submission and returns the first
// violation in product order, then stage order.
func (s *Scheduler) ValidateAll() error {
	return Validate(s.plan)
}

// Validate checks a plan for submission. See Scheduler.ValidateAll.
func Validate(plan *Plan) error {
	if plan.Window == nil {
		return entity.Fail(entity.ErrInvalidRange, "work item window is not set")
	}
	for _, p := range plan.Products {
		for _, st := range p.Stages {
			if strings.TrimSpace(st.Name) == "" {
				return entity.Fail(entity.ErrMissingStageName, "").
					WithProduct(productLabel(p)).WithStage(stageLabel(st))
			}
			if err := checkDates(plan.Window, p, st); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateDates checks what every stored plan must satisfy, even between
// submissions: dates inside the window and no stage ending before it
// starts. Blank stage names are allowed here.
func ValidateDates(plan *Plan) error {
	for _, p := range plan.Products {
		for _, st := range p.Stages {
			if err := checkDates(plan.Window, p, st); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkDates validates the dates of one stage. A nil window only checks
// the order of start and end.
func checkDates(w *Window, p *ProductPlan, st *Stage) error {
	if w != nil {
		for _, f := range []struct {
			field Field
			value *time.Time
		}{{FieldStart, st.Start}, {FieldEnd, st.End}} {
			if f.value != nil && !w.Contains(*f.value) {
				return entity.Fail(entity.ErrOutOfWindow,
					fmt.Sprintf("%s %s is outside %s", f.field, f.value.Format(dateLayout), w)).
					WithProduct(productLabel(p)).WithStage(stageLabel(st)).WithField(string(f.field))
			}
		}
	}
	if st.Start != nil && st.End != nil && st.End.Before(*st.Start) {
		return entity.Fail(entity.ErrInvalidRange, "stage ends before it starts").
			WithProduct(productLabel(p)).WithStage(stageLabel(st))
	}
	return nil
}

func productLabel(p *ProductPlan) string {
	if p.Name != "" {
		return fmt.Sprintf("%d (%s)", p.ProductID, p.Name)
	}
	return fmt.Sprint(p.ProductID)
}

func stageLabel(st *Stage) string {
	if st.Name == "" {
		return fmt.Sprintf("#%d", st.Urutan)
	}
	return fmt.Sprintf("#%d %s", st.Urutan, st.Name)
}
