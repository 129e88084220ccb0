// Package lifecycle owns the two linked state machines: the match lifecycle
// (pending/accepted/dismissed/injected) and the recommendation sub-machine
// of plan items (pending/approved/rejected).
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/career-pathfinder/pathfinder/internal/config"
	"github.com/career-pathfinder/pathfinder/internal/domain"
	"github.com/career-pathfinder/pathfinder/internal/matching"
	"github.com/career-pathfinder/pathfinder/internal/schedule"
	"github.com/career-pathfinder/pathfinder/internal/store"
)

// ErrPlanNotReady signals that a recommendation cannot be inserted because
// the profile has no plan yet. Retryable once a narrative is synced.
var ErrPlanNotReady = errors.New("profile has no active plan")

// ErrInvalidTransition signals an action on a match that already left the
// pending state.
var ErrInvalidTransition = errors.New("match already left pending state")

const recommendationTitleLimit = 255

type Manager struct {
	store  *store.Store
	cfg    *config.Provider
	logger *zap.Logger
	now    func() time.Time
}

func New(s *store.Store, cfg *config.Provider, logger *zap.Logger) *Manager {
	return &Manager{store: s, cfg: cfg, logger: logger, now: time.Now}
}

func (m *Manager) withStore(s *store.Store) *Manager {
	return &Manager{store: s, cfg: m.cfg, logger: m.logger, now: m.now}
}

// EnsureRecommendation guarantees the match owns a derived plan item,
// creating one in the first free window when absent. Idempotent: the item
// is created at most once per match. The breakdown supplies the duration
// hint and detail text; nil falls back to defaults.
func (m *Manager) EnsureRecommendation(match *domain.Match, breakdown *matching.Breakdown) (*domain.PlanItem, error) {
	if match.InsertedItemID != nil {
		return m.store.ItemByID(*match.InsertedItemID)
	}

	profile, err := m.store.ProfileByID(match.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	plan, err := m.store.LatestPlan(profile.ID)
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	if plan == nil {
		if plan, err = m.store.SyncPlan(profile); err != nil {
			return nil, fmt.Errorf("sync plan: %w", err)
		}
	}
	if plan == nil {
		return nil, ErrPlanNotReady
	}

	values := m.cfg.Get()
	weeks := values.DefaultDurationWeeks
	if breakdown != nil && breakdown.EstimatedDurationWeeks > 0 {
		weeks = breakdown.EstimatedDurationWeeks
	}

	unlock := m.store.LockPlan(plan.ID)
	defer unlock()

	items, err := m.store.SchedulableItems(plan.ID)
	if err != nil {
		return nil, fmt.Errorf("load schedulable items: %w", err)
	}
	blockers := schedule.BlockingIntervals(items)
	start, end := schedule.FindWindow(m.now(), weeks, match.Opportunity.Deadline, blockers, values.DefaultDurationWeeks)

	maxPriority, err := m.store.MaxItemPriority(plan.ID)
	if err != nil {
		return nil, fmt.Errorf("max item priority: %w", err)
	}

	category := match.Opportunity.Category
	if category == "" {
		category = "Opportunity"
	}

	item := &domain.PlanItem{
		PlanID:               plan.ID,
		Priority:             maxPriority + 1,
		Title:                truncateRunes(match.Opportunity.Title, recommendationTitleLimit),
		DurationWeeks:        &weeks,
		StartDate:            &start,
		EndDate:              &end,
		Category:             category,
		DetailText:           recommendationDetail(match, breakdown),
		IsRecommendation:     true,
		RecommendationStatus: domain.RecommendationPending,
		OriginOpportunityID:  &match.OpportunityID,
	}

	err = m.store.Transaction(func(tx *store.Store) error {
		if err := tx.CreateItem(item); err != nil {
			return fmt.Errorf("create recommendation item: %w", err)
		}
		match.InsertedItemID = &item.ID
		return tx.SaveMatch(match)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("recommendation item inserted",
		zap.Uint("match_id", match.ID),
		zap.Uint("item_id", item.ID),
		zap.Time("start", start),
		zap.Time("end", end),
	)

	return item, nil
}

// Approve moves the match's derived item into the committed schedule:
// deadline-anchored window, approved status, then a full plan rebalance.
func (m *Manager) Approve(match *domain.Match) (*domain.PlanItem, error) {
	item, err := m.EnsureRecommendation(match, nil)
	if err != nil {
		return nil, err
	}

	values := m.cfg.Get()
	weeks := values.DefaultDurationWeeks
	if item.DurationWeeks != nil && *item.DurationWeeks > 0 {
		weeks = *item.DurationWeeks
	}
	durationDays := schedule.DurationDays(weeks, values.DefaultDurationWeeks)
	today := domain.Date(m.now())

	var start, end time.Time
	if match.Opportunity.Deadline != nil {
		end = domain.Date(*match.Opportunity.Deadline)
		start = end.AddDate(0, 0, -durationDays)
		if start.Before(today) {
			start = today
		}
	} else {
		start = today
		if item.StartDate != nil {
			start = domain.Date(*item.StartDate)
		}
		end = start.AddDate(0, 0, durationDays)
	}

	item.IsRecommendation = false
	item.RecommendationStatus = domain.RecommendationApproved
	item.StartDate = &start
	item.EndDate = &end

	unlock := m.store.LockPlan(item.PlanID)
	defer unlock()

	err = m.store.Transaction(func(tx *store.Store) error {
		if err := tx.SaveItem(item); err != nil {
			return fmt.Errorf("save approved item: %w", err)
		}
		return m.withStore(tx).rebalancePlan(item.PlanID, values.DefaultDurationWeeks)
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

// Reject marks the derived item as rejected while keeping it visible. A
// match without an item is a no-op.
func (m *Manager) Reject(match *domain.Match) error {
	if match.InsertedItemID == nil {
		return nil
	}

	item, err := m.store.ItemByID(*match.InsertedItemID)
	if err != nil {
		return fmt.Errorf("load recommendation item: %w", err)
	}

	item.RecommendationStatus = domain.RecommendationRejected
	item.IsRecommendation = true
	return m.store.SaveItem(item)
}

// Accept is the user approving a pending match: the item is committed and
// the match leaves pending for good.
func (m *Manager) Accept(match *domain.Match) (*domain.PlanItem, error) {
	return m.resolve(match, domain.MatchAccepted)
}

// Inject is the system-initiated twin of Accept.
func (m *Manager) Inject(match *domain.Match) (*domain.PlanItem, error) {
	return m.resolve(match, domain.MatchInjected)
}

func (m *Manager) resolve(match *domain.Match, status domain.MatchStatus) (*domain.PlanItem, error) {
	if match.Status != domain.MatchPending {
		return nil, ErrInvalidTransition
	}

	var item *domain.PlanItem
	err := m.store.Transaction(func(tx *store.Store) error {
		var err error
		if item, err = m.withStore(tx).Approve(match); err != nil {
			return err
		}
		match.Status = status
		return tx.SaveMatch(match)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Dismiss rejects a pending match and its derived item.
func (m *Manager) Dismiss(match *domain.Match) error {
	if match.Status != domain.MatchPending {
		return ErrInvalidTransition
	}

	return m.store.Transaction(func(tx *store.Store) error {
		if err := m.withStore(tx).Reject(match); err != nil {
			return err
		}
		match.Status = domain.MatchDismissed
		return tx.SaveMatch(match)
	})
}

// ArchiveExpired dismisses every non-dismissed match whose opportunity
// deadline passed before today and rejects its derived item. Returns the
// number archived.
func (m *Manager) ArchiveExpired(profileID uint) (int, error) {
	matches, err := m.store.ExpiredMatches(profileID, m.now())
	if err != nil {
		return 0, fmt.Errorf("load expired matches: %w", err)
	}

	archived := 0
	for i := range matches {
		match := &matches[i]
		err := m.store.Transaction(func(tx *store.Store) error {
			if err := m.withStore(tx).Reject(match); err != nil {
				return err
			}
			match.Status = domain.MatchDismissed
			return tx.SaveMatch(match)
		})
		if err != nil {
			return archived, fmt.Errorf("archive match %d: %w", match.ID, err)
		}
		archived++
	}

	return archived, nil
}

// RebalancePlan reruns the scheduling sweep over a plan.
func (m *Manager) RebalancePlan(planID uint) error {
	values := m.cfg.Get()

	unlock := m.store.LockPlan(planID)
	defer unlock()

	return m.store.Transaction(func(tx *store.Store) error {
		return m.withStore(tx).rebalancePlan(planID, values.DefaultDurationWeeks)
	})
}

func (m *Manager) rebalancePlan(planID uint, fallbackWeeks float64) error {
	items, err := m.store.SchedulableItems(planID)
	if err != nil {
		return fmt.Errorf("load schedulable items: %w", err)
	}

	pointers := make([]*domain.PlanItem, len(items))
	for i := range items {
		pointers[i] = &items[i]
	}

	for _, changed := range schedule.Rebalance(m.now(), pointers, fallbackWeeks) {
		if err := m.store.SaveItem(changed); err != nil {
			return fmt.Errorf("save rebalanced item %d: %w", changed.ID, err)
		}
	}
	return nil
}

func recommendationDetail(match *domain.Match, breakdown *matching.Breakdown) string {
	hits := "none"
	if breakdown != nil && len(breakdown.KeywordHits) > 0 {
		hits = strings.Join(breakdown.KeywordHits, ", ")
	}
	feedback := match.Feedback
	if feedback == "" {
		feedback = "pending"
	}
	return fmt.Sprintf("Matched keywords: %s\nAI feedback: %s\nLink: %s",
		hits, feedback, match.Opportunity.Link)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
