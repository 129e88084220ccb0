package store

import (
	"fmt"
	"strings"

	"github.com/career-pathfinder/pathfinder/internal/domain"
	"github.com/career-pathfinder/pathfinder/internal/roadmap"
)

// Profiles returns all profiles ordered by name.
func (s *Store) Profiles() ([]domain.Profile, error) {
	var profiles []domain.Profile
	err := s.db.Order("name").Find(&profiles).Error
	return profiles, err
}

// ProfileByName loads one profile by its unique name, nil when absent.
func (s *Store) ProfileByName(name string) (*domain.Profile, error) {
	var profile domain.Profile
	err := s.db.Where("name = ?", name).First(&profile).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ProfileByID loads one profile.
func (s *Store) ProfileByID(id uint) (*domain.Profile, error) {
	var profile domain.Profile
	if err := s.db.First(&profile, id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// SaveProfile creates or updates a profile.
func (s *Store) SaveProfile(profile *domain.Profile) error {
	return s.db.Save(profile).Error
}

// LatestPlan returns the newest plan version for a profile, nil when the
// profile has no plan yet.
func (s *Store) LatestPlan(profileID uint) (*domain.Plan, error) {
	var plan domain.Plan
	err := s.db.Where("profile_id = ?", profileID).
		Order("version DESC").
		First(&plan).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// SyncPlan materializes the profile's narrative into a plan. The parse is
// memoized by exact text: when the latest stored version already carries the
// narrative it is returned unchanged, otherwise a new version is created
// with its items in one transaction. Returns nil when the narrative is
// empty.
func (s *Store) SyncPlan(profile *domain.Profile) (*domain.Plan, error) {
	narrative := profile.Narrative
	if strings.TrimSpace(narrative) == "" {
		return nil, nil
	}

	latest, err := s.LatestPlan(profile.ID)
	if err != nil {
		return nil, err
	}
	if latest != nil && latest.RawText == narrative {
		return latest, nil
	}

	meta, parsed := roadmap.Parse(narrative)

	nextVersion := 1
	if latest != nil {
		nextVersion = latest.Version + 1
	}

	plan := &domain.Plan{
		ProfileID:   profile.ID,
		Version:     nextVersion,
		RawText:     narrative,
		Title:       meta.Title,
		TotalMonths: meta.TotalMonths,
	}

	err = s.Transaction(func(tx *Store) error {
		if err := tx.db.Create(plan).Error; err != nil {
			return fmt.Errorf("create plan version %d: %w", nextVersion, err)
		}
		for _, entry := range parsed {
			item := domain.PlanItem{
				PlanID:               plan.ID,
				Priority:             entry.Priority,
				Title:                entry.Title,
				DurationWeeks:        entry.DurationWeeks,
				ImportanceScore:      entry.Importance,
				RecommendationStatus: domain.RecommendationNone,
			}
			if err := tx.db.Create(&item).Error; err != nil {
				return fmt.Errorf("create plan item %q: %w", entry.Title, err)
			}
			plan.Items = append(plan.Items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return plan, nil
}

// PlanItems returns every item of a plan in priority order.
func (s *Store) PlanItems(planID uint) ([]domain.PlanItem, error) {
	var items []domain.PlanItem
	err := s.db.Where("plan_id = ?", planID).
		Order("priority").
		Find(&items).Error
	return items, err
}

// SchedulableItems returns the plan's items that block placements: status
// none or approved, in priority order.
func (s *Store) SchedulableItems(planID uint) ([]domain.PlanItem, error) {
	var items []domain.PlanItem
	err := s.db.Where("plan_id = ? AND recommendation_status IN ?",
		planID, []domain.RecommendationStatus{domain.RecommendationNone, domain.RecommendationApproved}).
		Order("priority").
		Find(&items).Error
	return items, err
}

// MaxItemPriority returns the highest priority value in the plan, zero when
// the plan is empty.
func (s *Store) MaxItemPriority(planID uint) (int, error) {
	var max *int
	err := s.db.Model(&domain.PlanItem{}).
		Where("plan_id = ?", planID).
		Select("MAX(priority)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// ItemByID loads one plan item.
func (s *Store) ItemByID(id uint) (*domain.PlanItem, error) {
	var item domain.PlanItem
	if err := s.db.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem inserts a new plan item.
func (s *Store) CreateItem(item *domain.PlanItem) error {
	return s.db.Create(item).Error
}

// SaveItem persists all fields of an existing item.
func (s *Store) SaveItem(item *domain.PlanItem) error {
	return s.db.Save(item).Error
}
