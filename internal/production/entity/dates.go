package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Day truncates t to a calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FromDate converts a nullable date column to a UTC calendar day.
func FromDate(d *datatypes.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := Day(time.Time(*d))
	return &t
}

// ToDate converts a calendar day to a nullable date column.
func ToDate(t *time.Time) *datatypes.Date {
	if t == nil {
		return nil
	}
	d := datatypes.Date(Day(*t))
	return &d
}
