package store

import (
	"time"

	"github.com/career-pathfinder/pathfinder/internal/domain"
)

// LatestSettings returns the newest settings row, nil when none was ever
// written.
func (s *Store) LatestSettings() (*domain.Settings, error) {
	var settings domain.Settings
	err := s.db.Order("updated_at DESC").First(&settings).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// SaveSettings persists a settings row, stamping its update time.
func (s *Store) SaveSettings(settings *domain.Settings) error {
	settings.UpdatedAt = time.Now().UTC()
	return s.db.Save(settings).Error
}
