// Package config serves the tunable matching parameters: static defaults
// overlaid by the newest durable settings row, behind a short-lived cache.
package config

import (
	"sync"
	"time"

	"github.com/career-pathfinder/pathfinder/internal/domain"
)

// Values is one resolved snapshot of the tunables.
type Values struct {
	JobKoreaKeywords     []string
	DataPortalKeywords   []string
	MaxItemsPerSource    int
	RecentDays           int
	MinScore             float64
	DefaultDurationWeeks float64

	// Source reports where the snapshot came from: "defaults" or "store".
	Source    string
	UpdatedAt *time.Time
}

// Defaults are the static fallbacks used when no settings row exists.
type Defaults struct {
	JobKoreaKeywords     []string
	DataPortalKeywords   []string
	MaxItemsPerSource    int
	RecentDays           int
	MinScore             float64
	DefaultDurationWeeks float64
}

// SettingsSource is the durable store behind the provider.
type SettingsSource interface {
	LatestSettings() (*domain.Settings, error)
}

const DefaultTTL = 5 * time.Minute

// Provider caches resolved values for a bounded time. Staleness is
// acceptable for tuning parameters only; nothing identity- or state-bearing
// flows through here.
type Provider struct {
	source   SettingsSource
	defaults Defaults
	ttl      time.Duration
	now      func() time.Time

	mu      sync.Mutex
	cached  *Values
	expires time.Time
}

func NewProvider(source SettingsSource, defaults Defaults, ttl time.Duration) *Provider {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Provider{
		source:   source,
		defaults: defaults,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the current values, served from cache within the TTL. Store
// errors degrade silently to the defaults.
func (p *Provider) Get() Values {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil && p.now().Before(p.expires) {
		return *p.cached
	}
	return p.refreshLocked()
}

// ForceRefresh discards the cache and resolves fresh values. Call it after
// writing settings.
func (p *Provider) ForceRefresh() Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshLocked()
}

// Invalidate drops the cached snapshot without resolving a new one.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cached = nil
}

func (p *Provider) refreshLocked() Values {
	values := Values{
		JobKoreaKeywords:     append([]string(nil), p.defaults.JobKoreaKeywords...),
		DataPortalKeywords:   append([]string(nil), p.defaults.DataPortalKeywords...),
		MaxItemsPerSource:    p.defaults.MaxItemsPerSource,
		RecentDays:           p.defaults.RecentDays,
		MinScore:             p.defaults.MinScore,
		DefaultDurationWeeks: p.defaults.DefaultDurationWeeks,
		Source:               "defaults",
	}

	if p.source != nil {
		if settings, err := p.source.LatestSettings(); err == nil && settings != nil {
			values.JobKoreaKeywords = append([]string(nil), settings.JobKoreaKeywords...)
			values.DataPortalKeywords = append([]string(nil), settings.DataPortalKeywords...)
			values.MaxItemsPerSource = settings.MaxItemsPerSource
			values.RecentDays = settings.RecentDays
			values.MinScore = settings.MinScore
			values.Source = "store"
			updated := settings.UpdatedAt
			values.UpdatedAt = &updated
		}
	}

	p.cached = &values
	p.expires = p.now().Add(p.ttl)
	return values
}
