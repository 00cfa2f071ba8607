package services

import (
	"sync"

	"github.com/ajubot/volunteer-bot/internal/db"
	"github.com/ajubot/volunteer-bot/internal/models"
)

// SessionManager serializes conversation processing per chat. Updates for
// different volunteers run concurrently, but two updates for the same chat
// never interleave, so every transition sees a consistent state row.
type SessionManager struct {
	stateRepo *db.StateRepository

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewSessionManager(stateRepo *db.StateRepository) *SessionManager {
	return &SessionManager{
		stateRepo: stateRepo,
		locks:     make(map[int64]*sync.Mutex),
	}
}

// Lock acquires the per-chat lock, returning the unlock func.
func (s *SessionManager) Lock(chatID int64) func() {
	s.mu.Lock()
	lock, ok := s.locks[chatID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[chatID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (s *SessionManager) Get(chatID int64) (*models.VolunteerState, error) {
	return s.stateRepo.Get(chatID)
}

func (s *SessionManager) Save(state *models.VolunteerState) error {
	return s.stateRepo.Save(state)
}

func (s *SessionManager) Known(chatID int64) (bool, error) {
	return s.stateRepo.Known(chatID)
}

func (s *SessionManager) All() ([]*models.VolunteerState, error) {
	return s.stateRepo.All()
}
