package store

import (
	"fmt"
	"time"

	"github.com/career-pathfinder/pathfinder/internal/domain"
)

// UpsertOpportunities merges crawled records by their (source, source id)
// identity: existing rows are updated in place, new rows are inserted.
// Returns the number of newly created rows.
func (s *Store) UpsertOpportunities(records []domain.Opportunity, fetchedAt time.Time) (int, error) {
	created := 0
	err := s.Transaction(func(tx *Store) error {
		for _, record := range records {
			record.FetchedAt = fetchedAt

			var existing domain.Opportunity
			err := tx.db.Where("source = ? AND source_id = ?", record.Source, record.SourceID).
				First(&existing).Error
			switch {
			case notFound(err):
				record.ID = 0
				if err := tx.db.Create(&record).Error; err != nil {
					return fmt.Errorf("create opportunity %s/%s: %w", record.Source, record.SourceID, err)
				}
				created++
			case err != nil:
				return fmt.Errorf("lookup opportunity %s/%s: %w", record.Source, record.SourceID, err)
			default:
				record.ID = existing.ID
				if err := tx.db.Model(&existing).Select(
					"title", "link", "summary", "category", "location",
					"deadline", "tags", "metadata", "fetched_at",
				).Updates(&record).Error; err != nil {
					return fmt.Errorf("update opportunity %s/%s: %w", record.Source, record.SourceID, err)
				}
			}
		}
		return nil
	})
	return created, err
}

// RecentOpportunities returns opportunities fetched at or after the cutoff,
// newest first.
func (s *Store) RecentOpportunities(cutoff time.Time) ([]domain.Opportunity, error) {
	var opportunities []domain.Opportunity
	err := s.db.Where("fetched_at >= ?", cutoff).
		Order("fetched_at DESC").
		Find(&opportunities).Error
	return opportunities, err
}

// OpportunityByID loads one opportunity.
func (s *Store) OpportunityByID(id uint) (*domain.Opportunity, error) {
	var opportunity domain.Opportunity
	if err := s.db.First(&opportunity, id).Error; err != nil {
		return nil, err
	}
	return &opportunity, nil
}
