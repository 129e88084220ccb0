package crawler

import (
	"strings"
	"time"

	"github.com/career-pathfinder/pathfinder/internal/domain"
)

// Rolling-recruitment markers used by the Korean job boards; listings
// carrying one have no fixed deadline.
var openEndedMarkers = []string{"수시", "상시", "채용시"}

var deadlineLayouts = []string{"2006.01.02", "2006-01-02", "2006/01/02", "01.02", "01-02"}

// ParseDeadline converts a scraped deadline label into a date. Open-ended
// markers and unrecognized formats yield nil. Year-less dates are anchored
// to the current year and roll forward when already past.
func ParseDeadline(text string, today time.Time) *time.Time {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return nil
	}
	for _, marker := range openEndedMarkers {
		if strings.Contains(cleaned, marker) {
			return nil
		}
	}

	today = domain.Date(today)
	for _, layout := range deadlineLayouts {
		parsed, err := time.Parse(layout, cleaned)
		if err != nil {
			continue
		}
		if !strings.Contains(layout, "2006") {
			parsed = time.Date(today.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
			if parsed.Before(today) {
				parsed = parsed.AddDate(1, 0, 0)
			}
		}
		deadline := domain.Date(parsed)
		return &deadline
	}

	return nil
}

// extractDeadlineFromPeriod returns the closing part of a "start ~ end"
// period label.
func extractDeadlineFromPeriod(period string) string {
	if period == "" {
		return ""
	}
	parts := strings.FieldsFunc(period, func(r rune) bool {
		return r == '~' || r == '-'
	})
	if len(parts) == 0 {
		return period
	}
	return strings.TrimSpace(parts[len(parts)-1])
}
