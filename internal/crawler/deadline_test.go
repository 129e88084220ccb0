package crawler

import (
	"testing"
	"time"
)

func TestParseDeadline(t *testing.T) {
	today := time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC)

	cases := []struct {
		text string
		want string
	}{
		{"2026.04.01", "2026-04-01"},
		{"2026-04-01", "2026-04-01"},
		{"2026/04/01", "2026-04-01"},
		{"04.01", "2026-04-01"},
		{"03.15", "2026-03-15"},
	}

	for _, tc := range cases {
		got := ParseDeadline(tc.text, today)
		if got == nil {
			t.Fatalf("%q: expected a deadline, got nil", tc.text)
		}
		if got.Format("2006-01-02") != tc.want {
			t.Fatalf("%q: expected %s, got %s", tc.text, tc.want, got.Format("2006-01-02"))
		}
	}
}

func TestParseDeadlineYearlessRollsForward(t *testing.T) {
	today := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	got := ParseDeadline("01.15", today)
	if got == nil {
		t.Fatalf("expected a deadline, got nil")
	}
	if got.Year() != 2027 {
		t.Fatalf("expected past month-day to roll into next year, got %v", got)
	}
}

func TestParseDeadlineOpenEnded(t *testing.T) {
	today := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	for _, text := range []string{"수시채용", "상시", "채용시 마감", "", "  ", "garbage"} {
		if got := ParseDeadline(text, today); got != nil {
			t.Fatalf("%q: expected nil deadline, got %v", text, got)
		}
	}
}

func TestExtractDeadlineFromPeriod(t *testing.T) {
	cases := []struct {
		period string
		want   string
	}{
		{"2026.01.01 ~ 2026.03.01", "2026.03.01"},
		{"2026.03.01", "2026.03.01"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := extractDeadlineFromPeriod(tc.period); got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.period, tc.want, got)
		}
	}
}
