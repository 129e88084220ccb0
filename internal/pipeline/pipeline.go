// Package pipeline runs the periodic sweep: crawl sources, score and match
// opportunities per profile, archive expired matches, then let the model
// reorder the pending queue. Steps are best-effort; one failing step never
// blocks the rest.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/career-pathfinder/pathfinder/internal/ai"
	"github.com/career-pathfinder/pathfinder/internal/config"
	"github.com/career-pathfinder/pathfinder/internal/crawler"
	"github.com/career-pathfinder/pathfinder/internal/domain"
	"github.com/career-pathfinder/pathfinder/internal/lifecycle"
	"github.com/career-pathfinder/pathfinder/internal/matching"
	"github.com/career-pathfinder/pathfinder/internal/priority"
	"github.com/career-pathfinder/pathfinder/internal/store"
)

const reprioritizeBatchSize = 10

// Prompts are the templates handed to the model. Placeholders {profile},
// {roadmap_summary} and {opportunities} are substituted before the call.
// An empty template disables the corresponding step.
type Prompts struct {
	OpportunityFeedback string
	Prioritization      string
}

// Summary reports what one sweep did.
type Summary struct {
	Fetched       int
	Matched       int
	Archived      int
	Reprioritized int
}

type Orchestrator struct {
	store     *store.Store
	cfg       *config.Provider
	sources   []crawler.Source
	generator ai.Generator
	lifecycle *lifecycle.Manager
	prompts   Prompts
	logger    *zap.Logger
	now       func() time.Time
}

// New wires the sweep. The generator may be nil; AI-dependent steps are
// skipped then.
func New(s *store.Store, cfg *config.Provider, sources []crawler.Source, generator ai.Generator, lm *lifecycle.Manager, prompts Prompts, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		store:     s,
		cfg:       cfg,
		sources:   sources,
		generator: generator,
		lifecycle: lm,
		prompts:   prompts,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes one full sweep. The returned error covers only failures that
// abort the sweep entirely; per-step failures are logged and counted as zero.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	values := o.cfg.Get()
	var summary Summary

	fetched, err := o.refresh(ctx, values)
	summary.Fetched = fetched
	if err != nil {
		o.logger.Warn("opportunity refresh incomplete", zap.Error(err), zap.Int("fetched", fetched))
	}

	profiles, err := o.store.Profiles()
	if err != nil {
		return summary, fmt.Errorf("load profiles: %w", err)
	}

	cutoff := o.now().AddDate(0, 0, -values.RecentDays)
	opportunities, err := o.store.RecentOpportunities(cutoff)
	if err != nil {
		return summary, fmt.Errorf("load recent opportunities: %w", err)
	}

	for i := range profiles {
		profile := &profiles[i]
		if profile.TargetCompany == "" && profile.TargetRole == "" {
			o.logger.Debug("skipping profile without targets", zap.String("profile", profile.Name))
			continue
		}

		matched, err := o.matchProfile(ctx, profile, opportunities, values)
		summary.Matched += matched
		if err != nil {
			o.logger.Warn("matching failed", zap.String("profile", profile.Name), zap.Error(err))
		}

		archived, err := o.lifecycle.ArchiveExpired(profile.ID)
		summary.Archived += archived
		if err != nil {
			o.logger.Warn("archiving failed", zap.String("profile", profile.Name), zap.Error(err))
		}

		reprioritized, err := o.reprioritizeProfile(ctx, profile)
		summary.Reprioritized += reprioritized
		if err != nil {
			o.logger.Warn("reprioritization failed", zap.String("profile", profile.Name), zap.Error(err))
		}
	}

	o.logger.Info("sweep finished",
		zap.Int("fetched", summary.Fetched),
		zap.Int("matched", summary.Matched),
		zap.Int("archived", summary.Archived),
		zap.Int("reprioritized", summary.Reprioritized),
	)
	return summary, nil
}

// refresh crawls every configured keyword on every source and upserts the
// results. A failing source or keyword is logged and skipped.
func (o *Orchestrator) refresh(ctx context.Context, values config.Values) (int, error) {
	fetchedAt := o.now()
	total := 0
	var firstErr error

	for _, source := range o.sources {
		for _, keyword := range keywordsFor(source.Name(), values) {
			records, err := source.Fetch(ctx, keyword, values.MaxItemsPerSource)
			if err != nil {
				o.logger.Warn("fetch failed",
					zap.String("source", source.Name()),
					zap.String("keyword", keyword),
					zap.Error(err),
				)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}

			created, err := o.store.UpsertOpportunities(records, fetchedAt)
			if err != nil {
				o.logger.Warn("upsert failed", zap.String("source", source.Name()), zap.Error(err))
				if firstErr == nil {
					firstErr = err
				}
				continue
			}

			o.logger.Debug("source fetched",
				zap.String("source", source.Name()),
				zap.String("keyword", keyword),
				zap.Int("records", len(records)),
				zap.Int("created", created),
			)
			total += len(records)
		}
	}

	return total, firstErr
}

func keywordsFor(sourceName string, values config.Values) []string {
	switch sourceName {
	case "jobkorea":
		return values.JobKoreaKeywords
	case "data_portal":
		return values.DataPortalKeywords
	default:
		return nil
	}
}

func (o *Orchestrator) matchProfile(ctx context.Context, profile *domain.Profile, opportunities []domain.Opportunity, values config.Values) (int, error) {
	plan, err := o.store.LatestPlan(profile.ID)
	if err != nil {
		return 0, fmt.Errorf("load plan: %w", err)
	}
	if plan == nil {
		if plan, err = o.store.SyncPlan(profile); err != nil {
			return 0, fmt.Errorf("sync plan: %w", err)
		}
	}

	var items []domain.PlanItem
	if plan != nil {
		if items, err = o.store.PlanItems(plan.ID); err != nil {
			return 0, fmt.Errorf("load plan items: %w", err)
		}
	}

	keywords := matching.DeriveKeywords(profile)
	planKeywords := matching.ExtractPlanKeywords(items)
	focus := matching.BuildProfileFocus(profile, items)
	today := o.now()

	matched := 0
	for i := range opportunities {
		opp := &opportunities[i]
		score, breakdown := matching.Score(opp, keywords, planKeywords, focus, today)
		if score < values.MinScore {
			continue
		}

		feedback := o.opportunityFeedback(ctx, profile, opp, breakdown)

		match, created, err := o.store.GetOrCreateMatch(profile.ID, opp.ID, score, "")
		if err != nil {
			o.logger.Warn("match upsert failed", zap.Uint("opportunity_id", opp.ID), zap.Error(err))
			continue
		}

		if created {
			if feedback != "" {
				match.Feedback = feedback
				if err := o.store.SaveMatch(match); err != nil {
					o.logger.Warn("match feedback save failed", zap.Uint("match_id", match.ID), zap.Error(err))
				}
			}
			matched++
		} else if match.Status == domain.MatchPending {
			// Re-scoring is allowed only while the user has not acted yet.
			match.Score = score
			match.PriorityScore = score
			if feedback != "" {
				match.Feedback = feedback
			}
			if err := o.store.SaveMatch(match); err != nil {
				o.logger.Warn("match refresh failed", zap.Uint("match_id", match.ID), zap.Error(err))
				continue
			}
		}

		if match.Status == domain.MatchPending {
			if _, err := o.lifecycle.EnsureRecommendation(match, breakdown); err != nil {
				if errors.Is(err, lifecycle.ErrPlanNotReady) {
					o.logger.Debug("recommendation deferred", zap.String("profile", profile.Name))
				} else {
					o.logger.Warn("recommendation insert failed", zap.Uint("match_id", match.ID), zap.Error(err))
				}
			}
		}
	}

	return matched, nil
}

// opportunityFeedback asks the model for a short assessment of one listing.
// Any failure degrades to an empty string.
func (o *Orchestrator) opportunityFeedback(ctx context.Context, profile *domain.Profile, opp *domain.Opportunity, breakdown *matching.Breakdown) string {
	if o.generator == nil || o.prompts.OpportunityFeedback == "" {
		return ""
	}

	prompt := strings.NewReplacer(
		"{profile}", profileSummary(profile),
		"{opportunity}", opportunitySummary(opp, breakdown),
	).Replace(o.prompts.OpportunityFeedback)

	text, err := o.generator.Generate(ctx, prompt)
	if err != nil {
		o.logger.Debug("feedback generation failed", zap.Uint("opportunity_id", opp.ID), zap.Error(err))
		return ""
	}
	return strings.TrimSpace(text)
}

type promptEntry struct {
	MatchID    uint    `json:"match_id"`
	Title      string  `json:"title"`
	Deadline   string  `json:"deadline"`
	Score      float64 `json:"score"`
	Category   string  `json:"category"`
	AIFeedback string  `json:"ai_feedback"`
}

// reprioritizeProfile hands the top pending matches to the model and applies
// the priority scores it returns. Unparseable output leaves scores untouched.
func (o *Orchestrator) reprioritizeProfile(ctx context.Context, profile *domain.Profile) (int, error) {
	if o.generator == nil || o.prompts.Prioritization == "" {
		return 0, nil
	}

	matches, err := o.store.PendingMatches(profile.ID, reprioritizeBatchSize)
	if err != nil {
		return 0, fmt.Errorf("load pending matches: %w", err)
	}
	if len(matches) == 0 {
		return 0, nil
	}

	entries := make([]promptEntry, 0, len(matches))
	for i := range matches {
		match := &matches[i]
		deadline := ""
		if match.Opportunity.Deadline != nil {
			deadline = match.Opportunity.Deadline.Format("2006-01-02")
		}
		entries = append(entries, promptEntry{
			MatchID:    match.ID,
			Title:      match.Opportunity.Title,
			Deadline:   deadline,
			Score:      match.Score,
			Category:   match.Opportunity.Category,
			AIFeedback: match.Feedback,
		})
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return 0, fmt.Errorf("marshal prompt payload: %w", err)
	}

	prompt := strings.NewReplacer(
		"{profile}", profileSummary(profile),
		"{roadmap_summary}", o.roadmapSummary(profile),
		"{opportunities}", string(payload),
	).Replace(o.prompts.Prioritization)

	raw, err := o.generator.Generate(ctx, prompt)
	if err != nil {
		return 0, fmt.Errorf("prioritization call: %w", err)
	}

	scores := priority.Parse(raw)
	if len(scores) == 0 {
		o.logger.Debug("prioritization response unusable", zap.String("profile", profile.Name))
		return 0, nil
	}

	updated := 0
	for i := range matches {
		match := &matches[i]
		score, ok := scores[int64(match.ID)]
		if !ok {
			continue
		}
		match.PriorityScore = score
		if err := o.store.SaveMatch(match); err != nil {
			o.logger.Warn("priority score save failed", zap.Uint("match_id", match.ID), zap.Error(err))
			continue
		}
		updated++
	}

	return updated, nil
}

func (o *Orchestrator) roadmapSummary(profile *domain.Profile) string {
	plan, err := o.store.LatestPlan(profile.ID)
	if err != nil || plan == nil {
		return "no roadmap yet"
	}
	items, err := o.store.PlanItems(plan.ID)
	if err != nil || len(items) == 0 {
		return "no roadmap yet"
	}

	lines := make([]string, 0, len(items))
	for i := range items {
		item := &items[i]
		if !item.Schedulable() {
			continue
		}
		lines = append(lines, fmt.Sprintf("%d. %s (%s)", item.Priority, item.Title, item.Category))
	}
	if len(lines) == 0 {
		return "no roadmap yet"
	}
	return strings.Join(lines, "\n")
}

func profileSummary(profile *domain.Profile) string {
	parts := []string{fmt.Sprintf("name: %s", profile.Name)}
	if profile.TargetCompany != "" {
		parts = append(parts, fmt.Sprintf("target company: %s", profile.TargetCompany))
	}
	if profile.TargetRole != "" {
		parts = append(parts, fmt.Sprintf("target role: %s", profile.TargetRole))
	}
	if profile.Intake != "" {
		parts = append(parts, fmt.Sprintf("background: %s", profile.Intake))
	}
	return strings.Join(parts, "\n")
}

func opportunitySummary(opp *domain.Opportunity, breakdown *matching.Breakdown) string {
	deadline := "none"
	if opp.Deadline != nil {
		deadline = opp.Deadline.Format("2006-01-02")
	}
	hits := "none"
	if breakdown != nil && len(breakdown.KeywordHits) > 0 {
		hits = strings.Join(breakdown.KeywordHits, ", ")
	}
	return fmt.Sprintf("title: %s\ncategory: %s\nsummary: %s\ndeadline: %s\nmatched keywords: %s",
		opp.Title, opp.Category, opp.Summary, deadline, hits)
}
