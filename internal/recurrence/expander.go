package recurrence

import (
	"fmt"
	"time"

	"facility-booking-backend/internal/model"
	"facility-booking-backend/internal/parse"
	"facility-booking-backend/internal/store"
)

// Occurrence is one concrete dated instance produced by expanding a rule.
type Occurrence struct {
	Date      time.Time
	StartTime string
	EndTime   string
}

// ValidateRule checks the parts of a rule the expander depends on.
func ValidateRule(r *model.RecurringBookingRule) error {
	if _, _, err := parse.ClockRange(r.StartTime, r.EndTime); err != nil {
		return fmt.Errorf("%w: %v", store.ErrValidation, err)
	}
	if r.Interval < 1 {
		return fmt.Errorf("%w: recurrence interval must be >= 1", store.ErrValidation)
	}
	switch r.Pattern {
	case model.PatternDaily, model.PatternMonthly:
	case model.PatternWeekly:
		if len(r.DaysOfWeek) == 0 {
			return fmt.Errorf("%w: weekly recurrence requires at least one weekday", store.ErrValidation)
		}
		for _, d := range r.DaysOfWeek {
			if d < 0 || d > 6 {
				return fmt.Errorf("%w: weekday index %d out of range", store.ErrValidation, d)
			}
		}
	default:
		return fmt.Errorf("%w: unknown recurrence pattern %q", store.ErrValidation, r.Pattern)
	}
	if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
		return fmt.Errorf("%w: end date before start date", store.ErrValidation)
	}
	return nil
}

// Iterator lazily walks a rule's occurrence dates in order. It is a pure
// function of the rule and the from date: two iterators built with the
// same inputs produce the same sequence.
type Iterator struct {
	rule *model.RecurringBookingRule

	// cursor state; meaning depends on the pattern
	cur    time.Time // daily/weekly: next candidate date
	months int       // monthly: multiples of the interval tried so far

	weekdays   map[time.Weekday]bool
	weekAnchor time.Time // Monday of the start date's week

	done bool
}

// NewIterator positions an iterator at the first occurrence on or after
// from. A zero from starts at the rule's start date.
func NewIterator(rule *model.RecurringBookingRule, from time.Time) *Iterator {
	start := model.DateOnly(rule.StartDate)
	cur := start
	if !from.IsZero() {
		if f := model.DateOnly(from); f.After(cur) {
			cur = f
		}
	}

	it := &Iterator{rule: rule, cur: cur}
	switch rule.Pattern {
	case model.PatternDaily:
		// Realign the cursor to the rule's day grid.
		days := int(cur.Sub(start).Hours() / 24)
		if rem := days % rule.Interval; rem != 0 {
			it.cur = cur.AddDate(0, 0, rule.Interval-rem)
		}
	case model.PatternWeekly:
		it.weekdays = rule.Weekdays()
		it.weekAnchor = mondayOf(start)
		if len(it.weekdays) == 0 {
			it.done = true
		}
	case model.PatternMonthly:
		// Advance the multiple counter until the candidate reaches cur.
		for monthlyDate(start, it.months*rule.Interval).Before(cur) {
			it.months++
		}
	}
	return it
}

// Next returns the next occurrence. ok is false once the rule's end date
// is passed; open-ended rules never exhaust, so callers bound their reads.
func (it *Iterator) Next() (Occurrence, bool) {
	if it.done {
		return Occurrence{}, false
	}

	var date time.Time
	switch it.rule.Pattern {
	case model.PatternDaily:
		date = it.cur
		it.cur = it.cur.AddDate(0, 0, it.rule.Interval)

	case model.PatternWeekly:
		for {
			d := it.cur
			it.cur = it.cur.AddDate(0, 0, 1)
			if !it.weekdays[d.Weekday()] {
				continue
			}
			weeks := int(mondayOf(d).Sub(it.weekAnchor).Hours() / (24 * 7))
			if weeks%it.rule.Interval != 0 {
				continue
			}
			date = d
			break
		}

	case model.PatternMonthly:
		date = monthlyDate(model.DateOnly(it.rule.StartDate), it.months*it.rule.Interval)
		it.months++

	default:
		it.done = true
		return Occurrence{}, false
	}

	if it.rule.EndDate != nil && date.After(model.DateOnly(*it.rule.EndDate)) {
		it.done = true
		return Occurrence{}, false
	}
	return Occurrence{Date: date, StartTime: it.rule.StartTime, EndTime: it.rule.EndTime}, true
}

// Occurrences collects up to max occurrences on or after from, stopping
// early at until (inclusive) when until is non-zero.
func Occurrences(rule *model.RecurringBookingRule, from, until time.Time, max int) []Occurrence {
	it := NewIterator(rule, from)
	var out []Occurrence
	for len(out) < max {
		occ, ok := it.Next()
		if !ok {
			break
		}
		if !until.IsZero() && occ.Date.After(model.DateOnly(until)) {
			break
		}
		out = append(out, occ)
	}
	return out
}

// mondayOf returns the Monday of the week containing d. Weekly intervals
// count whole weeks between these anchors.
func mondayOf(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// monthlyDate returns the start day-of-month shifted by addMonths months,
// clamped to the last day of the target month (Jan 31 + 1 month is Feb 29
// in a leap year, not Mar 2).
func monthlyDate(start time.Time, addMonths int) time.Time {
	y, m := start.Year(), int(start.Month())-1+addMonths
	y += m / 12
	m = m % 12
	day := start.Day()
	if last := daysInMonth(y, time.Month(m+1)); day > last {
		day = last
	}
	return time.Date(y, time.Month(m+1), day, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
