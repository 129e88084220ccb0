// Package schedule places plan items into non-overlapping date windows.
//
// All windows are half-open [Start, End): the end day itself is free for the
// next item.
package schedule

import (
	"math"
	"sort"
	"time"

	"github.com/career-pathfinder/pathfinder/internal/domain"
)

// Interval is a half-open blocked date range.
type Interval struct {
	Start time.Time
	End   time.Time
}

const minDurationDays = 7

// DurationDays converts a week estimate to days, never below one week.
// Non-positive estimates fall back to fallbackWeeks.
func DurationDays(weeks, fallbackWeeks float64) int {
	if weeks <= 0 {
		weeks = fallbackWeeks
	}
	days := int(math.Round(weeks * 7))
	if days < minDurationDays {
		days = minDurationDays
	}
	return days
}

// BlockingIntervals collects the occupied windows of all schedulable items
// that have a start date. An item without an end date spans its own duration
// estimate from its start.
func BlockingIntervals(items []domain.PlanItem) []Interval {
	intervals := make([]Interval, 0, len(items))
	for _, item := range items {
		if !item.Schedulable() || item.StartDate == nil {
			continue
		}
		start := domain.Date(*item.StartDate)
		var end time.Time
		if item.EndDate != nil {
			end = domain.Date(*item.EndDate)
		} else {
			weeks := 1.0
			if item.DurationWeeks != nil && *item.DurationWeeks > 0 {
				weeks = *item.DurationWeeks
			}
			end = start.AddDate(0, 0, DurationDays(weeks, 1))
		}
		intervals = append(intervals, Interval{Start: start, End: end})
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].Start.Before(intervals[j].Start) })
	return intervals
}

// FindWindow returns a placement window of the requested duration that does
// not overlap any blocking interval. When a deadline is supplied the search
// starts as late as the deadline allows; if the found window would still end
// past the deadline it is snapped back so the end lands exactly on the
// deadline, even when that reintroduces an overlap. Deadline compliance wins
// over strict non-overlap. The one exception is a deadline closer than the
// duration: the start clamps to today and the full duration is kept, so the
// end runs past the deadline.
func FindWindow(today time.Time, durationWeeks float64, deadline *time.Time, blockers []Interval, fallbackWeeks float64) (time.Time, time.Time) {
	today = domain.Date(today)
	durationDays := DurationDays(durationWeeks, fallbackWeeks)

	intervals := make([]Interval, len(blockers))
	copy(intervals, blockers)
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].Start.Before(intervals[j].Start) })

	start := today
	if deadline != nil {
		if latest := domain.Date(*deadline).AddDate(0, 0, -durationDays); latest.After(start) {
			start = latest
		}
	}
	end := start.AddDate(0, 0, durationDays)

	// The candidate start only ever moves forward, so this terminates once
	// it clears the last interval end.
	for {
		conflict := false
		for _, interval := range intervals {
			if !end.After(interval.Start) || !start.Before(interval.End) {
				continue
			}
			start = interval.End
			end = start.AddDate(0, 0, durationDays)
			conflict = true
			break
		}
		if !conflict {
			break
		}
	}

	if deadline != nil {
		due := domain.Date(*deadline)
		if end.After(due) {
			start = due.AddDate(0, 0, -durationDays)
			if start.Before(today) {
				start = today
			}
			end = start.AddDate(0, 0, durationDays)
		}
	}

	return start, end
}

// Rebalance sweeps the schedulable items in priority order with a rolling
// cursor. Items that already hold a valid [start,end] window keep it and
// advance the cursor; everything else is assigned the first window at or
// after the cursor. Returns the items whose dates changed. Running it twice
// with no external change is a no-op the second time.
func Rebalance(today time.Time, items []*domain.PlanItem, fallbackWeeks float64) []*domain.PlanItem {
	today = domain.Date(today)
	changed := make([]*domain.PlanItem, 0)

	var cursor *time.Time
	for _, item := range items {
		if !item.Schedulable() {
			continue
		}

		weeks := 0.0
		if item.DurationWeeks != nil {
			weeks = *item.DurationWeeks
		}
		durationDays := DurationDays(weeks, fallbackWeeks)

		if item.StartDate != nil && item.EndDate != nil && !item.EndDate.Before(*item.StartDate) {
			next := domain.Date(*item.EndDate).AddDate(0, 0, 1)
			cursor = &next
			continue
		}

		if cursor == nil {
			cursor = &today
		}
		start := *cursor
		if item.StartDate != nil && domain.Date(*item.StartDate).After(start) {
			start = domain.Date(*item.StartDate)
		}
		end := start.AddDate(0, 0, durationDays)

		item.StartDate = &start
		item.EndDate = &end
		changed = append(changed, item)

		next := end.AddDate(0, 0, 1)
		cursor = &next
	}

	return changed
}
