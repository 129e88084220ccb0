// Package roadmap converts generated roadmap narrative into structured plan
// metadata and ordered items.
package roadmap

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	itemPattern  = regexp.MustCompile(`<\s*(\d+)\.([^-]+)-([\d.]+)-([\d.]+)\s*>`)
	finalPattern = regexp.MustCompile(`(?i)<\s*final\.([^>-]+)-([\d.]+)\s*>`)
	titlePattern = regexp.MustCompile(`(?i)<\s*TITLE-([^>-]+)-([^>]+)\s*>`)
)

// Meta is the plan-level header extracted from a narrative.
type Meta struct {
	Title       string
	TotalMonths *float64
}

// Item is one schedulable entry extracted from a narrative.
type Item struct {
	Priority      int
	Title         string
	DurationWeeks *float64
	Importance    *float64
}

// Parse scans the raw narrative for `<N.title-weeks-importance>` item
// markers and the `<final.title-months>` plan header. Markers that do not
// match are ignored; an empty narrative yields an empty result.
func Parse(raw string) (Meta, []Item) {
	items := make([]Item, 0)
	for _, m := range itemPattern.FindAllStringSubmatch(raw, -1) {
		priority, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		items = append(items, Item{
			Priority:      priority,
			Title:         strings.TrimSpace(m[2]),
			DurationWeeks: parseFloat(m[3]),
			Importance:    parseFloat(m[4]),
		})
	}

	meta := Meta{}
	if m := finalPattern.FindStringSubmatch(raw); m != nil {
		meta.Title = strings.TrimSpace(m[1])
		meta.TotalMonths = parseFloat(m[2])
	}
	if meta.Title == "" {
		if m := titlePattern.FindStringSubmatch(raw); m != nil {
			meta.Title = strings.TrimSpace(m[1])
		}
	}

	return meta, items
}

func parseFloat(value string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return nil
	}
	return &f
}
