// Package period models inclusive calendar-day ranges used by list filters
// and reports. Days are UTC, matching the stored timestamps.
package period

import (
	"time"

	"butce-backend/internal/apperror"

	"gorm.io/gorm"
)

const Layout = "2006-01-02"

// Range covers From..To inclusive. A nil bound is open.
type Range struct {
	From *time.Time
	To   *time.Time
}

func Parse(from, to string) (Range, error) {
	var r Range
	if from != "" {
		d, err := time.ParseInLocation(Layout, from, time.UTC)
		if err != nil {
			return Range{}, apperror.Validation("from tarihi geçersiz, 'YYYY-MM-DD' olmalı")
		}
		r.From = &d
	}
	if to != "" {
		d, err := time.ParseInLocation(Layout, to, time.UTC)
		if err != nil {
			return Range{}, apperror.Validation("to tarihi geçersiz, 'YYYY-MM-DD' olmalı")
		}
		r.To = &d
	}
	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		return Range{}, apperror.Validation("from, to tarihinden sonra olamaz")
	}
	return r, nil
}

func Days(from, to time.Time) Range {
	f, t := day(from), day(to)
	return Range{From: &f, To: &t}
}

// Month returns the calendar month containing t.
func Month(t time.Time) Range {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Days(first, first.AddDate(0, 1, -1))
}

func (r Range) IsZero() bool { return r.From == nil && r.To == nil }

// Closed fills open bounds: a missing To becomes today, a missing From the
// first day of To's month. An empty range becomes the current month.
func (r Range) Closed(now time.Time) Range {
	if r.IsZero() {
		return Month(now)
	}
	to := day(now)
	if r.To != nil {
		to = *r.To
	}
	from := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
	if r.From != nil {
		from = *r.From
	}
	return Days(from, to)
}

// Previous returns the window of equal length ending the day before r
// starts. Whole calendar months map to the previous calendar month.
func (r Range) Previous() Range {
	if r.From == nil || r.To == nil {
		return Range{}
	}
	if m := Month(*r.From); m.From.Equal(*r.From) && m.To.Equal(*r.To) {
		return Month(r.From.AddDate(0, 0, -1))
	}
	n := int(r.To.Sub(*r.From).Hours()/24) + 1
	prevTo := r.From.AddDate(0, 0, -1)
	return Days(prevTo.AddDate(0, 0, -(n - 1)), prevTo)
}

// Apply restricts column to the range.
func (r Range) Apply(q *gorm.DB, column string) *gorm.DB {
	if r.From != nil {
		q = q.Where(column+" >= ?", *r.From)
	}
	if r.To != nil {
		q = q.Where(column+" < ?", r.To.AddDate(0, 0, 1))
	}
	return q
}

func (r Range) Strings() (from, to string) {
	if r.From != nil {
		from = r.From.Format(Layout)
	}
	if r.To != nil {
		to = r.To.Format(Layout)
	}
	return from, to
}

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
