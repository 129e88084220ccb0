// Package store is the durable layer behind the engine: a gorm sqlite
// database holding opportunities, profiles, plans, matches and settings.
package store

import (
	"errors"
	"fmt"
	"sync"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/career-pathfinder/pathfinder/internal/domain"
)

type Store struct {
	db    *gorm.DB
	locks *planLocks
}

// Open opens the sqlite database at path and migrates the schema. Use
// ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.AutoMigrate(
		&domain.Opportunity{},
		&domain.Profile{},
		&domain.Plan{},
		&domain.PlanItem{},
		&domain.Match{},
		&domain.Settings{},
	); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	return &Store{db: db, locks: newPlanLocks()}, nil
}

// Transaction runs fn against a transactional view of the store. Multi-step
// lifecycle changes for one match or plan always go through here.
func (s *Store) Transaction(fn func(tx *Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, locks: s.locks})
	})
}

// LockPlan serializes scheduling against one plan. The returned function
// releases the lock.
func (s *Store) LockPlan(planID uint) func() {
	return s.locks.lock(planID)
}

// planLocks hands out one mutex per plan id. Scheduling is serialized
// per-plan, not globally.
type planLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newPlanLocks() *planLocks {
	return &planLocks{locks: make(map[uint]*sync.Mutex)}
}

func (p *planLocks) lock(planID uint) func() {
	p.mu.Lock()
	m, ok := p.locks[planID]
	if !ok {
		m = &sync.Mutex{}
		p.locks[planID] = m
	}
	p.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
