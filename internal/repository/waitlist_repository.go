package repository

import (
	"strings"
	"sync"

	"trading_academy_backend/internal/model"
	"trading_academy_backend/internal/util"
)

type WaitlistRepository struct {
	mu      sync.RWMutex
	entries []model.WaitlistEntry
	byEmail map[string]bool
}

func NewWaitlistRepository() *WaitlistRepository {
	return &WaitlistRepository{byEmail: make(map[string]bool)}
}

func (r *WaitlistRepository) Add(entry model.WaitlistEntry) error {
	key := strings.ToLower(strings.TrimSpace(entry.Email))

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byEmail[key] {
		return util.ErrAlreadyOnWaitlist
	}
	r.byEmail[key] = true
	r.entries = append(r.entries, entry)
	return nil
}

func (r *WaitlistRepository) List() []model.WaitlistEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.WaitlistEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *WaitlistRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
