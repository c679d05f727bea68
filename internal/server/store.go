package server

import (
	"errors"
	"sync"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/workbook"
)

var errSessionNotFound = errors.New("session not found")

// sessionStore keeps imported sessions in memory, oldest first. When the store
// is full, adding a session drops the oldest one.
type sessionStore struct {
	mu    sync.RWMutex
	max   int
	items map[string]*workbook.Session
	order []string
}

func newSessionStore(max int) *sessionStore {
	if max <= 0 {
		max = 1
	}
	return &sessionStore{
		max:   max,
		items: make(map[string]*workbook.Session),
	}
}

// put stores sess and returns the IDs of the sessions it pushed out.
func (s *sessionStore) put(sess *workbook.Session) (evicted []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[sess.ID]; !ok {
		s.order = append(s.order, sess.ID)
	}
	s.items[sess.ID] = sess

	for len(s.order) > s.max {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.items, oldest)
		evicted = append(evicted, oldest)
	}
	return evicted
}

func (s *sessionStore) get(id string) (*workbook.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.items[id]
	return sess, ok
}

// update replaces a session with the result of fn, atomically with respect to
// other updates.
func (s *sessionStore) update(id string, fn func(*workbook.Session) (*workbook.Session, error)) (*workbook.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[id]
	if !ok {
		return nil, errSessionNotFound
	}
	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	s.items[id] = next
	return next, nil
}

func (s *sessionStore) delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *sessionStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
