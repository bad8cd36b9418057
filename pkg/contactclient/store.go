package contactclient

import (
	"context"
	"sync"

	"contact-manager-backend/pkg/logger"
)

// API is the subset of Client the Store needs.
type API interface {
	List(ctx context.Context) ([]Contact, error)
	Create(ctx context.Context, contact Contact) (Contact, error)
	Update(ctx context.Context, id int64, contact Contact) (Contact, error)
	Delete(ctx context.Context, id int64) error
}

// Store owns the last fetched contact list. Every mutation goes through
// the API and is followed by a wholesale refetch; nothing is patched
// locally.
type Store struct {
	api API

	mu       sync.RWMutex
	contacts []Contact
	lastErr  error
	subs     map[int]chan []Contact
	nextSub  int
}

func NewStore(api API) *Store {
	return &Store{
		api:      api,
		contacts: []Contact{},
		subs:     make(map[int]chan []Contact),
	}
}

// Contacts returns a copy of the current snapshot.
func (s *Store) Contacts() []Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Contact(nil), s.contacts...)
}

// Err is the error of the most recent refresh, nil if it succeeded.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Subscribe returns a channel that receives each new snapshot. Slow
// readers only see the latest one. cancel closes the channel.
func (s *Store) Subscribe() (<-chan []Contact, func()) {
	ch := make(chan []Contact, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Refresh refetches the full list. On failure the previous snapshot is
// kept.
func (s *Store) Refresh(ctx context.Context) error {
	contacts, err := s.api.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		logger.Log.Warn("Contact list refresh failed", "error", err)
		return err
	}
	s.contacts = contacts
	for _, ch := range s.subs {
		snapshot := append([]Contact(nil), contacts...)
		select {
		case ch <- snapshot:
		default:
			// Replace the unread snapshot with the newer one.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
	return nil
}

// Add creates contact and refreshes. A failed refresh does not fail the
// mutation; it is reported through Err.
func (s *Store) Add(ctx context.Context, contact Contact) (Contact, error) {
	created, err := s.api.Create(ctx, contact)
	if err != nil {
		return Contact{}, err
	}
	_ = s.Refresh(ctx)
	return created, nil
}

func (s *Store) Update(ctx context.Context, id int64, contact Contact) (Contact, error) {
	updated, err := s.api.Update(ctx, id, contact)
	if err != nil {
		return Contact{}, err
	}
	_ = s.Refresh(ctx)
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.Refresh(ctx)
	return nil
}
