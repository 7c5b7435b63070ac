// Package memory is an in-process session store bounded by size and age.
package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finstat/internal/session"
)

type entry struct {
	s         *session.Session
	expiresAt time.Time
}

// Store is an LRU of sessions. The least recently used session is evicted
// once maxSize is reached, and sessions older than ttl are dropped on access.
type Store struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	now     func() time.Time
	items   map[uuid.UUID]*list.Element
	lru     *list.List
}

func New(maxSize int, ttl time.Duration) *Store {
	return &Store{
		maxSize: max(maxSize, 1),
		ttl:     ttl,
		now:     time.Now,
		items:   make(map[uuid.UUID]*list.Element),
		lru:     list.New(),
	}
}

// WithClock overrides the time source.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.now = now

	return s
}

func (s *Store) Save(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &entry{s: sess, expiresAt: s.now().Add(s.ttl)}

	if elem, ok := s.items[sess.ID]; ok {
		elem.Value = e
		s.lru.MoveToFront(elem)

		return nil
	}

	s.items[sess.ID] = s.lru.PushFront(e)

	for s.lru.Len() > s.maxSize {
		s.remove(s.lru.Back())
	}

	return nil
}

func (s *Store) Get(_ context.Context, id uuid.UUID) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[id]
	if !ok {
		return nil, session.ErrNotFound
	}

	e := elem.Value.(*entry)
	if s.ttl > 0 && s.now().After(e.expiresAt) {
		s.remove(elem)
		return nil, session.ErrNotFound
	}

	s.lru.MoveToFront(elem)

	return e.s, nil
}

func (s *Store) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[id]; ok {
		s.remove(elem)
	}

	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lru.Len()
}

func (s *Store) remove(elem *list.Element) {
	e := elem.Value.(*entry)
	delete(s.items, e.s.ID)
	s.lru.Remove(elem)
}
