package lifecycle

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/career-pathfinder/pathfinder/internal/config"
	"github.com/career-pathfinder/pathfinder/internal/domain"
	"github.com/career-pathfinder/pathfinder/internal/matching"
	"github.com/career-pathfinder/pathfinder/internal/store"
)

func testToday() time.Time {
	return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
}

func newTestManager(t *testing.T) (*Manager, *store.Store) {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}

	provider := config.NewProvider(nil, config.Defaults{
		MaxItemsPerSource:    20,
		RecentDays:           14,
		MinScore:             35,
		DefaultDurationWeeks: 2,
	}, time.Minute)

	m := New(s, provider, zap.NewNop())
	m.now = testToday
	return m, s
}

func seedProfile(t *testing.T, s *store.Store, narrative string) *domain.Profile {
	t.Helper()
	profile := &domain.Profile{
		Name:       "tester",
		TargetRole: "Backend Engineer",
		Narrative:  narrative,
	}
	if err := s.SaveProfile(profile); err != nil {
		t.Fatal(err)
	}
	return profile
}

func seedMatch(t *testing.T, s *store.Store, profileID uint, deadline *time.Time) *domain.Match {
	t.Helper()
	created, err := s.UpsertOpportunities([]domain.Opportunity{{
		Source:   "jobkorea",
		SourceID: "m1",
		Title:    "Backend Engineer opening",
		Link:     "https://example.com/1",
		Deadline: deadline,
	}}, testToday())
	if err != nil || created != 1 {
		t.Fatalf("seeding opportunity: %v", err)
	}
	opps, err := s.RecentOpportunities(time.Time{})
	if err != nil || len(opps) != 1 {
		t.Fatalf("loading opportunity: %v", err)
	}

	match, _, err := s.GetOrCreateMatch(profileID, opps[0].ID, 60, "solid fit")
	if err != nil {
		t.Fatal(err)
	}
	return match
}

const testNarrative = "<1.Go 기초-2-8>\n<2.API 서버-4-9>\n<final.백엔드 로드맵-3>"

func TestEnsureRecommendationCreatesOnce(t *testing.T) {
	m, s := newTestManager(t)
	profile := seedProfile(t, s, testNarrative)
	match := seedMatch(t, s, profile.ID, nil)

	breakdown := &matching.Breakdown{
		KeywordHits:            []string{"backend", "engineer"},
		EstimatedDurationWeeks: 3,
	}

	item, err := m.EnsureRecommendation(match, breakdown)
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}

	if !item.IsRecommendation || item.RecommendationStatus != domain.RecommendationPending {
		t.Fatalf("expected a pending recommendation, got %+v", item)
	}
	if item.Priority != 3 {
		t.Fatalf("expected priority after the existing items, got %d", item.Priority)
	}
	if item.DurationWeeks == nil || *item.DurationWeeks != 3 {
		t.Fatalf("expected the breakdown's duration hint, got %v", item.DurationWeeks)
	}
	if item.StartDate == nil || item.EndDate == nil {
		t.Fatalf("expected a placement window")
	}
	if match.InsertedItemID == nil || *match.InsertedItemID != item.ID {
		t.Fatalf("expected the match to reference its item")
	}

	again, err := m.EnsureRecommendation(match, breakdown)
	if err != nil {
		t.Fatalf("second ensure failed: %v", err)
	}
	if again.ID != item.ID {
		t.Fatalf("ensure must be idempotent, got a second item")
	}

	items, err := s.PlanItems(item.PlanID)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items total, got %d", len(items))
	}
}

func TestEnsureRecommendationWithoutPlan(t *testing.T) {
	m, s := newTestManager(t)
	profile := seedProfile(t, s, "")
	match := seedMatch(t, s, profile.ID, nil)

	if _, err := m.EnsureRecommendation(match, nil); !errors.Is(err, ErrPlanNotReady) {
		t.Fatalf("expected ErrPlanNotReady, got %v", err)
	}
}

func TestAcceptCommitsAndRebalances(t *testing.T) {
	m, s := newTestManager(t)
	profile := seedProfile(t, s, testNarrative)
	deadline := testToday().AddDate(0, 0, 30)
	match := seedMatch(t, s, profile.ID, &deadline)

	item, err := m.Accept(match)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	if match.Status != domain.MatchAccepted {
		t.Fatalf("expected accepted status, got %s", match.Status)
	}
	if item.IsRecommendation || item.RecommendationStatus != domain.RecommendationApproved {
		t.Fatalf("expected an approved schedulable item, got %+v", item)
	}
	if item.EndDate == nil || !item.EndDate.Equal(deadline) {
		t.Fatalf("expected the window to end on the deadline, got %v", item.EndDate)
	}

	// Rebalance assigned windows to the narrative items too.
	items, err := s.SchedulableItems(item.PlanID)
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range items {
		if it.StartDate == nil || it.EndDate == nil {
			t.Fatalf("expected every schedulable item dated after rebalance, item %d", it.ID)
		}
	}

	stored, err := s.MatchByID(match.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != domain.MatchAccepted {
		t.Fatalf("accepted status was not persisted")
	}
}

func TestAcceptOnlyFromPending(t *testing.T) {
	m, s := newTestManager(t)
	profile := seedProfile(t, s, testNarrative)
	match := seedMatch(t, s, profile.ID, nil)

	if _, err := m.Accept(match); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}
	if _, err := m.Accept(match); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if err := m.Dismiss(match); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from dismiss, got %v", err)
	}
}

func TestDismissRejectsItem(t *testing.T) {
	m, s := newTestManager(t)
	profile := seedProfile(t, s, testNarrative)
	match := seedMatch(t, s, profile.ID, nil)

	if _, err := m.EnsureRecommendation(match, nil); err != nil {
		t.Fatal(err)
	}
	if err := m.Dismiss(match); err != nil {
		t.Fatalf("dismiss failed: %v", err)
	}

	if match.Status != domain.MatchDismissed {
		t.Fatalf("expected dismissed status, got %s", match.Status)
	}
	item, err := s.ItemByID(*match.InsertedItemID)
	if err != nil {
		t.Fatal(err)
	}
	if item.RecommendationStatus != domain.RecommendationRejected || !item.IsRecommendation {
		t.Fatalf("expected a rejected recommendation, got %+v", item)
	}
}

func TestDismissWithoutItem(t *testing.T) {
	m, s := newTestManager(t)
	profile := seedProfile(t, s, "")
	match := seedMatch(t, s, profile.ID, nil)

	if err := m.Dismiss(match); err != nil {
		t.Fatalf("dismiss without item must succeed, got %v", err)
	}
	if match.Status != domain.MatchDismissed {
		t.Fatalf("expected dismissed status, got %s", match.Status)
	}
}

func TestInjectMarksSystemInitiated(t *testing.T) {
	m, s := newTestManager(t)
	profile := seedProfile(t, s, testNarrative)
	match := seedMatch(t, s, profile.ID, nil)

	item, err := m.Inject(match)
	if err != nil {
		t.Fatalf("inject failed: %v", err)
	}
	if match.Status != domain.MatchInjected {
		t.Fatalf("expected injected status, got %s", match.Status)
	}
	if item.RecommendationStatus != domain.RecommendationApproved {
		t.Fatalf("expected the item approved, got %s", item.RecommendationStatus)
	}
}

func TestArchiveExpired(t *testing.T) {
	m, s := newTestManager(t)
	profile := seedProfile(t, s, testNarrative)

	yesterday := testToday().AddDate(0, 0, -1)
	expired := seedMatch(t, s, profile.ID, &yesterday)
	if _, err := m.EnsureRecommendation(expired, nil); err != nil {
		t.Fatal(err)
	}

	future := testToday().AddDate(0, 0, 10)
	if _, err := s.UpsertOpportunities([]domain.Opportunity{{
		Source: "jobkorea", SourceID: "m2", Title: "Still open", Deadline: &future,
	}}, testToday()); err != nil {
		t.Fatal(err)
	}
	opps, _ := s.RecentOpportunities(time.Time{})
	for _, opp := range opps {
		if _, _, err := s.GetOrCreateMatch(profile.ID, opp.ID, 50, ""); err != nil {
			t.Fatal(err)
		}
	}

	archived, err := m.ArchiveExpired(profile.ID)
	if err != nil {
		t.Fatalf("archive failed: %v", err)
	}
	if archived != 1 {
		t.Fatalf("expected 1 archived match, got %d", archived)
	}

	stored, err := s.MatchByID(expired.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != domain.MatchDismissed {
		t.Fatalf("expected the expired match dismissed, got %s", stored.Status)
	}
	item, err := s.ItemByID(*stored.InsertedItemID)
	if err != nil {
		t.Fatal(err)
	}
	if item.RecommendationStatus != domain.RecommendationRejected {
		t.Fatalf("expected the derived item rejected, got %s", item.RecommendationStatus)
	}

	again, err := m.ArchiveExpired(profile.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again != 0 {
		t.Fatalf("expected archive to be idempotent, got %d", again)
	}
}
