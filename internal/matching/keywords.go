package matching

import (
	"regexp"
	"sort"
	"strings"

	"github.com/career-pathfinder/pathfinder/internal/domain"
)

var tokenSeparator = regexp.MustCompile(`[\s/,|]+`)

// SplitTokens splits free text on whitespace, comma, slash and pipe.
func SplitTokens(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return tokenSeparator.Split(value, -1)
}

// DeriveKeywords builds the profile's search keyword set: target company,
// target role and intake text tokenized, lower-cased, deduplicated, tokens
// shorter than two runes dropped, sorted for determinism.
func DeriveKeywords(profile *domain.Profile) []string {
	seeds := make([]string, 0)
	seeds = append(seeds, SplitTokens(profile.TargetCompany)...)
	seeds = append(seeds, SplitTokens(profile.TargetRole)...)
	seeds = append(seeds, SplitTokens(profile.Intake)...)

	seen := make(map[string]struct{}, len(seeds))
	for _, seed := range seeds {
		keyword := strings.ToLower(seed)
		if len([]rune(keyword)) < 2 {
			continue
		}
		seen[keyword] = struct{}{}
	}

	keywords := make([]string, 0, len(seen))
	for keyword := range seen {
		keywords = append(keywords, keyword)
	}
	sort.Strings(keywords)

	return keywords
}

// PlanItemKeywords carries one plan item's keyword set and ranking signals
// for the roadmap alignment sub-score.
type PlanItemKeywords struct {
	Keywords    []string
	Priority    int
	Importance  float64
	MaxPriority int
}

// ExtractPlanKeywords tokenizes every item's title and category. MaxPriority
// is shared across the result and never below one.
func ExtractPlanKeywords(items []domain.PlanItem) []PlanItemKeywords {
	if len(items) == 0 {
		return nil
	}

	maxPriority := 0
	for _, item := range items {
		if item.Priority > maxPriority {
			maxPriority = item.Priority
		}
	}
	if maxPriority == 0 {
		maxPriority = 1
	}

	payload := make([]PlanItemKeywords, 0, len(items))
	for _, item := range items {
		tokens := append(SplitTokens(item.Title), SplitTokens(item.Category)...)
		keywords := make([]string, 0, len(tokens))
		for _, token := range tokens {
			if token == "" {
				continue
			}
			keywords = append(keywords, strings.ToLower(token))
		}

		importance := 0.0
		if item.ImportanceScore != nil {
			importance = *item.ImportanceScore
		}

		payload = append(payload, PlanItemKeywords{
			Keywords:    keywords,
			Priority:    item.Priority,
			Importance:  importance,
			MaxPriority: maxPriority,
		})
	}

	return payload
}

// ProfileFocus is the focus descriptor for the profile sub-score.
type ProfileFocus struct {
	TargetCompany      string
	TargetRole         string
	PriorityCategories []string
}

const focusCategoryLimit = 5

// BuildProfileFocus collects the profile targets plus the categories of the
// top plan items by priority.
func BuildProfileFocus(profile *domain.Profile, items []domain.PlanItem) ProfileFocus {
	sorted := make([]domain.PlanItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })

	categories := make([]string, 0, focusCategoryLimit)
	for _, item := range sorted {
		if len(categories) == focusCategoryLimit {
			break
		}
		if item.Category == "" {
			continue
		}
		categories = append(categories, item.Category)
	}

	return ProfileFocus{
		TargetCompany:      strings.TrimSpace(profile.TargetCompany),
		TargetRole:         strings.TrimSpace(profile.TargetRole),
		PriorityCategories: categories,
	}
}
