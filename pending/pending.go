// Package pending holds the category a user picked from the panel menu
// while their topic modal is open. Entries live in process memory only:
// the menu handler writes, the modal handler takes-and-clears, and
// anything older than the TTL is treated as absent.
package pending

import (
	"sync"
	"time"
)

// TTL bounds how long a picked category stays valid without the topic
// modal being submitted.
const TTL = 10 * time.Minute

// Selections is the process-wide store. Only the category menu handler
// writes to it; only the topic modal handler takes from it.
var Selections = NewStore()

type entry struct {
	category string
	storedAt time.Time
}

type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		entries: map[string]entry{},
		now:     time.Now,
	}
}

// Put records the category picked by a user, overwriting any earlier pick.
func (s *Store) Put(userID, category string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[userID] = entry{category: category, storedAt: s.now()}
}

// Take returns and clears the user's pending category. It reports false
// when nothing is pending or the entry expired.
func (s *Store) Take(userID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]

	if !ok {
		return "", false
	}

	delete(s.entries, userID)

	if s.now().Sub(e.storedAt) > TTL {
		return "", false
	}

	return e.category, true
}
