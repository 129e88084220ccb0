// Package domain holds the persistent entities shared by the matching,
// scheduling and lifecycle packages.
package domain

import (
	"strconv"
	"time"
)

// MatchStatus is the lifecycle state of a Match. A match leaves pending
// exactly once and never returns.
type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchAccepted  MatchStatus = "accepted"
	MatchDismissed MatchStatus = "dismissed"
	MatchInjected  MatchStatus = "injected"
)

// RecommendationStatus is the state of a plan item inside the recommendation
// sub-machine. Items parsed from the roadmap narrative stay at
// RecommendationNone and never enter the sub-machine.
type RecommendationStatus string

const (
	RecommendationNone     RecommendationStatus = "none"
	RecommendationPending  RecommendationStatus = "pending"
	RecommendationApproved RecommendationStatus = "approved"
	RecommendationRejected RecommendationStatus = "rejected"
)

// Opportunity is an externally sourced listing (job posting, contest).
// Identity is (Source, SourceID); re-fetching updates fields in place.
type Opportunity struct {
	ID        uint           `gorm:"primaryKey"`
	Source    string         `gorm:"size:32;uniqueIndex:idx_opportunity_identity"`
	SourceID  string         `gorm:"size:512;uniqueIndex:idx_opportunity_identity"`
	Title     string         `gorm:"size:512"`
	Link      string         `gorm:"size:1024"`
	Summary   string
	Category  string `gorm:"size:255"`
	Location  string `gorm:"size:255"`
	Deadline  *time.Time
	Tags      []string       `gorm:"serializer:json"`
	Metadata  map[string]any `gorm:"serializer:json"`
	FetchedAt time.Time      `gorm:"index"`
}

// EstimatedDurationWeeks reads the crawler-supplied duration hint from the
// metadata map. Zero means no hint.
func (o *Opportunity) EstimatedDurationWeeks() float64 {
	if o.Metadata == nil {
		return 0
	}
	switch v := o.Metadata["duration_weeks"].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Profile is one user's career context: the confirmed targets from intake
// plus the latest roadmap narrative.
type Profile struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"size:255;uniqueIndex"`
	TargetCompany string `gorm:"size:255"`
	TargetRole    string `gorm:"size:255"`
	Intake        string
	Narrative     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Plan is a versioned snapshot of a profile's roadmap. Versions are
// monotonic per profile and immutable once created; only child items change.
type Plan struct {
	ID          uint `gorm:"primaryKey"`
	ProfileID   uint `gorm:"index"`
	Version     int
	RawText     string
	Title       string `gorm:"size:255"`
	TotalMonths *float64
	CreatedAt   time.Time
	Items       []PlanItem
}

// PlanItem is a schedulable unit inside exactly one plan.
type PlanItem struct {
	ID                   uint `gorm:"primaryKey"`
	PlanID               uint `gorm:"index"`
	Priority             int
	Title                string `gorm:"size:512"`
	DurationWeeks        *float64
	ImportanceScore      *float64
	StartDate            *time.Time
	EndDate              *time.Time
	Category             string `gorm:"size:255"`
	DetailText           string
	IsRecommendation     bool
	RecommendationStatus RecommendationStatus `gorm:"size:16;default:none"`
	OriginOpportunityID  *uint
}

// Schedulable reports whether the item blocks other placements and takes
// part in rebalancing.
func (i *PlanItem) Schedulable() bool {
	return i.RecommendationStatus == RecommendationNone || i.RecommendationStatus == RecommendationApproved
}

// Match links one profile to one opportunity with its computed scores.
// Unique per (ProfileID, OpportunityID).
type Match struct {
	ID             uint `gorm:"primaryKey"`
	ProfileID      uint `gorm:"uniqueIndex:idx_match_identity"`
	OpportunityID  uint `gorm:"uniqueIndex:idx_match_identity"`
	Opportunity    Opportunity
	Score          float64
	PriorityScore  float64
	Status         MatchStatus `gorm:"size:16;default:pending"`
	Feedback       string
	InsertedItemID *uint
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Settings is the durable row behind the config provider. The newest row
// wins; absent rows fall back to static defaults.
type Settings struct {
	ID                 uint     `gorm:"primaryKey"`
	JobKoreaKeywords   []string `gorm:"serializer:json"`
	DataPortalKeywords []string `gorm:"serializer:json"`
	MaxItemsPerSource  int
	RecentDays         int
	MinScore           float64
	UpdatedAt          time.Time
}

// Date returns t truncated to midnight UTC. All scheduling arithmetic works
// on whole days.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole-day distance from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Date(b).Sub(Date(a)) / (24 * time.Hour))
}
