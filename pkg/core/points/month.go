package points

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// DateLayout is the calendar-date layout used for daily buckets
const DateLayout = "2006-01-02"

// MonthLayout is the layout accepted by ParseMonth
const MonthLayout = "2006-01"

// ErrInvalidMonth is returned when a month string cannot be parsed
var ErrInvalidMonth = errors.New("invalid month")

// Month identifies a calendar month
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a YYYY-MM string
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("%w %q: expected YYYY-MM", ErrInvalidMonth, s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// CurrentMonth returns the month containing now in loc
func CurrentMonth(now time.Time, loc *time.Location) Month {
	local := now.In(loc)
	return Month{Year: local.Year(), Month: local.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Start returns midnight on the first day of the month in loc
func (m Month) Start(loc *time.Location) time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
}

// End returns midnight on the first day of the following month in loc (exclusive bound)
func (m Month) End(loc *time.Location) time.Time {
	return m.Start(loc).AddDate(0, 1, 0)
}

// Contains reports whether t falls inside the month as observed in loc
func (m Month) Contains(t time.Time, loc *time.Location) bool {
	local := t.In(loc)
	return local.Year() == m.Year && local.Month() == m.Month
}

// Days enumerates every calendar date of the month as DateLayout strings
func (m Month) Days(loc *time.Location) []string {
	start := m.Start(loc)
	count := m.End(loc).AddDate(0, 0, -1).Day()

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: start,
		Count:   count,
	})
	if err != nil {
		// DAILY with a fixed count cannot fail; fall back to stepping dates
		days := make([]string, 0, count)
		for d := start; d.Before(m.End(loc)); d = d.AddDate(0, 0, 1) {
			days = append(days, d.Format(DateLayout))
		}
		return days
	}

	occurrences := r.All()
	days := make([]string, 0, len(occurrences))
	for _, occurrence := range occurrences {
		days = append(days, occurrence.In(loc).Format(DateLayout))
	}
	return days
}

// HolidayDates expands RRULE holiday definitions into the set of dates they
// produce inside the month. A DTSTART without a zone is read in loc; rules
// without DTSTART are anchored at 2000-01-01.
func HolidayDates(rules []string, m Month, loc *time.Location) (map[string]bool, error) {
	holidays := make(map[string]bool)
	if len(rules) == 0 {
		return holidays, nil
	}

	start := m.Start(loc)
	last := m.End(loc).Add(-time.Second)

	for _, rule := range rules {
		opt, err := rrule.StrToROptionInLocation(rule, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid holiday rule %q: %w", rule, err)
		}
		if opt.Dtstart.IsZero() {
			opt.Dtstart = time.Date(2000, time.January, 1, 0, 0, 0, 0, loc)
		}

		r, err := rrule.NewRRule(*opt)
		if err != nil {
			return nil, fmt.Errorf("invalid holiday rule %q: %w", rule, err)
		}

		for _, occurrence := range r.Between(start, last, true) {
			holidays[occurrence.In(loc).Format(DateLayout)] = true
		}
	}

	return holidays, nil
}
