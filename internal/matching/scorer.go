// Package matching computes the weighted match score between one
// opportunity and one profile's career context.
package matching

import (
	"math"
	"strings"
	"time"

	"github.com/career-pathfinder/pathfinder/internal/domain"
)

const (
	keywordWeight  = 0.45
	roadmapWeight  = 0.25
	deadlineWeight = 0.10
	profileWeight  = 0.20
)

// Breakdown carries the weighted per-component contributions plus the
// literal hits used downstream for feedback and recommendation detail text.
type Breakdown struct {
	KeywordComponent       float64
	RoadmapComponent       float64
	DeadlineComponent      float64
	ProfileComponent       float64
	KeywordHits            []string
	ProfileHits            []string
	EstimatedDurationWeeks float64
}

// Score computes the 0-100 match score for one opportunity. Each sub-score
// is bounded to [0,100] before weighting; the total is rounded to two
// decimals.
func Score(opp *domain.Opportunity, keywords []string, planKeywords []PlanItemKeywords, focus ProfileFocus, today time.Time) (float64, *Breakdown) {
	haystack := searchText(opp)

	hits := make([]string, 0)
	for _, keyword := range keywords {
		if keyword != "" && strings.Contains(haystack, keyword) {
			hits = append(hits, keyword)
		}
	}
	keywordScore := math.Min(100, float64(len(hits))*25)

	roadmapScore := 0.0
	for _, info := range planKeywords {
		if !anyKeywordIn(info.Keywords, haystack) {
			continue
		}
		priorityFactor := float64(info.MaxPriority+1-info.Priority) / float64(info.MaxPriority+1)
		importanceFactor := math.Min(info.Importance/10, 1)
		contribution := priorityFactor*100*0.6 + importanceFactor*40
		if contribution > roadmapScore {
			roadmapScore = contribution
		}
	}

	deadlineScore := 0.0
	if opp.Deadline != nil {
		switch daysLeft := domain.DaysBetween(today, *opp.Deadline); {
		case daysLeft < 0:
			deadlineScore = 0
		case daysLeft <= 3:
			deadlineScore = 100
		case daysLeft <= 7:
			deadlineScore = 70
		case daysLeft <= 14:
			deadlineScore = 40
		default:
			deadlineScore = 10
		}
	}

	profileScore, profileHits := profileFocusScore(focus, haystack)

	breakdown := &Breakdown{
		KeywordComponent:       round2(keywordScore * keywordWeight),
		RoadmapComponent:       round2(roadmapScore * roadmapWeight),
		DeadlineComponent:      round2(deadlineScore * deadlineWeight),
		ProfileComponent:       round2(profileScore * profileWeight),
		KeywordHits:            hits,
		ProfileHits:            profileHits,
		EstimatedDurationWeeks: opp.EstimatedDurationWeeks(),
	}

	total := round2(keywordScore*keywordWeight + roadmapScore*roadmapWeight +
		deadlineScore*deadlineWeight + profileScore*profileWeight)

	return total, breakdown
}

func profileFocusScore(focus ProfileFocus, haystack string) (float64, []string) {
	score := 0.0
	hits := make([]string, 0)

	if focus.TargetCompany != "" && strings.Contains(haystack, strings.ToLower(focus.TargetCompany)) {
		score += 60
		hits = append(hits, focus.TargetCompany)
	}
	if focus.TargetRole != "" && strings.Contains(haystack, strings.ToLower(focus.TargetRole)) {
		score += 60
		hits = append(hits, focus.TargetRole)
	}
	for _, category := range focus.PriorityCategories {
		if strings.Contains(haystack, strings.ToLower(category)) {
			score += 20
			hits = append(hits, category)
		}
	}

	return math.Min(100, score), hits
}

func searchText(opp *domain.Opportunity) string {
	parts := []string{opp.Title, opp.Summary, opp.Category, strings.Join(opp.Tags, " ")}
	return strings.ToLower(strings.Join(parts, " "))
}

func anyKeywordIn(keywords []string, haystack string) bool {
	for _, keyword := range keywords {
		if keyword != "" && strings.Contains(haystack, keyword) {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
