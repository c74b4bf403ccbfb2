package engine

import (
	"fmt"
	"time"

	"github.com/tartampluch/guild-birthday/internal/config"
)

// monthDays is the fixed day count per month (index 1..12). February is 29
// regardless of the actual year: the index space always reserves the leap
// slot, keeping the ring identical across years. This is a calendar-position
// model, not a Gregorian ordinal.
var monthDays = [13]int{0, 31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// cumulativeDays[m] is the number of days preceding month m in the fixed
// 366-day year. Index(m, d) = cumulativeDays[m] + d.
var cumulativeDays = func() [13]int {
	var c [13]int
	for m := 2; m <= 12; m++ {
		c[m] = c[m-1] + monthDays[m-1]
	}
	return c
}()

// Index converts a calendar date to its position in the 366-slot ring:
// Jan 1 = 1, Feb 29 = 60, Mar 1 = 61, Dec 31 = 366. Feb 29 is always a
// valid, distinct slot; no leap-year check is performed here.
func Index(month, day int) (int, error) {
	if month < 1 || month > 12 || day < 1 || day > monthDays[month] {
		return 0, fmt.Errorf("%w: month %d day %d", ErrInvalidRecord, month, day)
	}
	return cumulativeDays[month] + day, nil
}

// IndexOfTime returns the ring position of t's calendar date.
// t is expected to already be in the reference timezone (UTC).
func IndexOfTime(t time.Time) int {
	// A time.Time always carries a valid (month, day); Index cannot fail.
	idx, _ := Index(int(t.Month()), t.Day())
	return idx
}

// WindowScan yields the ordered, wraparound-safe sequence of date indices
// around a center date. A scan is single-use: construct one per query and
// drain it with Next.
type WindowScan struct {
	next      int
	remaining int
}

// NewWindowScan positions the scan daysBefore slots before center and sizes
// it to exactly daysTotal indices. A start at or below zero wraps to the end
// of the ring, counting back from slot 366 (a start of exactly zero lands on
// slot 366, not slot 1).
func NewWindowScan(center, daysBefore, daysTotal int) *WindowScan {
	start := center - daysBefore
	if start <= 0 {
		start = config.YearSlots + start
	}
	return &WindowScan{next: start, remaining: daysTotal}
}

// Next returns the following date index, or ok=false once the scan is spent.
func (s *WindowScan) Next() (int, bool) {
	if s.remaining <= 0 {
		return 0, false
	}
	idx := s.next
	s.next++
	if s.next > config.YearSlots {
		s.next = 1
	}
	s.remaining--
	return idx, true
}
