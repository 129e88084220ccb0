package store

import (
	"time"

	"github.com/career-pathfinder/pathfinder/internal/domain"
)

// GetOrCreateMatch returns the match for (profile, opportunity), creating a
// pending one with the supplied score and feedback when none exists. The
// boolean reports creation.
func (s *Store) GetOrCreateMatch(profileID, opportunityID uint, score float64, feedback string) (*domain.Match, bool, error) {
	var match domain.Match
	err := s.db.Where("profile_id = ? AND opportunity_id = ?", profileID, opportunityID).
		Preload("Opportunity").
		First(&match).Error
	if err == nil {
		return &match, false, nil
	}
	if !notFound(err) {
		return nil, false, err
	}

	match = domain.Match{
		ProfileID:     profileID,
		OpportunityID: opportunityID,
		Score:         score,
		PriorityScore: score,
		Status:        domain.MatchPending,
		Feedback:      feedback,
	}
	if err := s.db.Omit("Opportunity").Create(&match).Error; err != nil {
		return nil, false, err
	}
	if err := s.db.Preload("Opportunity").First(&match, match.ID).Error; err != nil {
		return nil, false, err
	}
	return &match, true, nil
}

// MatchByID loads one match with its opportunity.
func (s *Store) MatchByID(id uint) (*domain.Match, error) {
	var match domain.Match
	if err := s.db.Preload("Opportunity").First(&match, id).Error; err != nil {
		return nil, err
	}
	return &match, nil
}

// SaveMatch persists all fields of an existing match. The preloaded
// opportunity is never written back.
func (s *Store) SaveMatch(match *domain.Match) error {
	return s.db.Omit("Opportunity").Save(match).Error
}

// PendingMatches returns up to limit pending matches for the profile,
// ordered by priority score then score, both descending. A non-positive
// limit returns all of them.
func (s *Store) PendingMatches(profileID uint, limit int) ([]domain.Match, error) {
	query := s.db.Where("profile_id = ? AND status = ?", profileID, domain.MatchPending).
		Preload("Opportunity").
		Order("priority_score DESC, score DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var matches []domain.Match
	err := query.Find(&matches).Error
	return matches, err
}

// ExpiredMatches returns the profile's non-dismissed matches whose
// opportunity deadline lies strictly before today.
func (s *Store) ExpiredMatches(profileID uint, today time.Time) ([]domain.Match, error) {
	statuses := []domain.MatchStatus{domain.MatchPending, domain.MatchAccepted, domain.MatchInjected}
	var matches []domain.Match
	err := s.db.
		Joins("JOIN opportunities ON opportunities.id = matches.opportunity_id").
		Where("matches.profile_id = ? AND matches.status IN ?", profileID, statuses).
		Where("opportunities.deadline IS NOT NULL AND opportunities.deadline < ?", domain.Date(today)).
		Preload("Opportunity").
		Find(&matches).Error
	return matches, err
}
