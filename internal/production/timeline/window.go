package timeline

import (
	"fmt"
	"time"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
)

const dateLayout = "2006-01-02"

// DayCount is the inclusive number of calendar days from start to end.
// It is <= 0 when end precedes start.
func DayCount(start, end time.Time) int {
	return int(entity.Day(end).Sub(entity.Day(start)).Hours()/24) + 1
}

// Window bounds every stage date of one work item.
type Window struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

func NewWindow(start, end time.Time) (Window, error) {
	start, end = entity.Day(start), entity.Day(end)
	if end.Before(start) {
		return Window{}, entity.Fail(entity.ErrInvalidRange,
			fmt.Sprintf("end %s is before start %s", end.Format(dateLayout), start.Format(dateLayout)))
	}
	return Window{Start: start, End: end}, nil
}

func (w Window) TotalDays() int {
	return DayCount(w.Start, w.End)
}

func (w Window) Contains(d time.Time) bool {
	d = entity.Day(d)
	return !d.Before(w.Start) && !d.After(w.End)
}

func (w Window) String() string {
	return "[" + w.Start.Format(dateLayout) + ", " + w.End.Format(dateLayout) + "]"
}
