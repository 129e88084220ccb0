package config

import (
	"errors"
	"testing"
	"time"

	"github.com/career-pathfinder/pathfinder/internal/domain"
)

type stubSettingsSource struct {
	settings *domain.Settings
	err      error
	calls    int
}

func (s *stubSettingsSource) LatestSettings() (*domain.Settings, error) {
	s.calls++
	return s.settings, s.err
}

var testDefaults = Defaults{
	JobKoreaKeywords:     []string{"백엔드"},
	DataPortalKeywords:   []string{"공모전"},
	MaxItemsPerSource:    20,
	RecentDays:           14,
	MinScore:             35,
	DefaultDurationWeeks: 2,
}

func TestGetFallsBackToDefaults(t *testing.T) {
	provider := NewProvider(&stubSettingsSource{}, testDefaults, time.Minute)

	values := provider.Get()

	if values.Source != "defaults" {
		t.Fatalf("expected defaults source, got %q", values.Source)
	}
	if values.MinScore != 35 || values.RecentDays != 14 {
		t.Fatalf("unexpected default values: %+v", values)
	}
	if values.UpdatedAt != nil {
		t.Fatalf("defaults must not carry an update time")
	}
}

func TestGetOverlaysStoredSettings(t *testing.T) {
	updated := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	source := &stubSettingsSource{settings: &domain.Settings{
		JobKoreaKeywords:  []string{"데이터"},
		MaxItemsPerSource: 5,
		RecentDays:        7,
		MinScore:          50,
		UpdatedAt:         updated,
	}}
	provider := NewProvider(source, testDefaults, time.Minute)

	values := provider.Get()

	if values.Source != "store" {
		t.Fatalf("expected store source, got %q", values.Source)
	}
	if values.MinScore != 50 || values.RecentDays != 7 || values.MaxItemsPerSource != 5 {
		t.Fatalf("unexpected overlaid values: %+v", values)
	}
	if len(values.JobKoreaKeywords) != 1 || values.JobKoreaKeywords[0] != "데이터" {
		t.Fatalf("unexpected keywords: %v", values.JobKoreaKeywords)
	}
	if values.UpdatedAt == nil || !values.UpdatedAt.Equal(updated) {
		t.Fatalf("unexpected update time: %v", values.UpdatedAt)
	}
	// The duration default is not part of the settings row.
	if values.DefaultDurationWeeks != 2 {
		t.Fatalf("expected default duration to survive, got %v", values.DefaultDurationWeeks)
	}
}

func TestGetCachesWithinTTL(t *testing.T) {
	source := &stubSettingsSource{settings: &domain.Settings{MinScore: 50}}
	provider := NewProvider(source, testDefaults, time.Minute)

	clock := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	provider.now = func() time.Time { return clock }

	provider.Get()
	provider.Get()
	if source.calls != 1 {
		t.Fatalf("expected 1 store read within TTL, got %d", source.calls)
	}

	clock = clock.Add(2 * time.Minute)
	provider.Get()
	if source.calls != 2 {
		t.Fatalf("expected a refresh after TTL, got %d reads", source.calls)
	}
}

func TestInvalidateForcesNextRead(t *testing.T) {
	source := &stubSettingsSource{}
	provider := NewProvider(source, testDefaults, time.Hour)

	provider.Get()
	provider.Invalidate()
	provider.Get()

	if source.calls != 2 {
		t.Fatalf("expected 2 store reads after invalidate, got %d", source.calls)
	}
}

func TestStoreErrorDegradesToDefaults(t *testing.T) {
	source := &stubSettingsSource{err: errors.New("database locked")}
	provider := NewProvider(source, testDefaults, time.Minute)

	values := provider.Get()

	if values.Source != "defaults" {
		t.Fatalf("expected defaults on store error, got %q", values.Source)
	}
	if values.MinScore != 35 {
		t.Fatalf("unexpected values on store error: %+v", values)
	}
}
