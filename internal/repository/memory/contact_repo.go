// Package memory holds process-local repositories. They enforce the same
// constraints as their Postgres counterparts and are used for local runs
// (STORE_DRIVER=memory) and tests.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"contact-manager-backend/internal/domain"
)

// ContactRepository implements [domain.ContactRepository].
type ContactRepository struct {
	mu       sync.Mutex
	nextID   int64
	contacts map[int64]domain.Contact
	names    map[string]int64 // NameKey -> id; plays the unique index
	now      func() time.Time
}

var _ domain.ContactRepository = (*ContactRepository)(nil)

func NewContactRepository(seed ...domain.Contact) *ContactRepository {
	r := &ContactRepository{
		nextID:   1,
		contacts: make(map[int64]domain.Contact, len(seed)),
		names:    make(map[string]int64, len(seed)),
		now:      time.Now,
	}
	for _, c := range seed {
		_ = r.Create(context.Background(), &c)
	}
	return r
}

func (r *ContactRepository) List(_ context.Context) ([]domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contacts := make([]domain.Contact, 0, len(r.contacts))
	for _, c := range r.contacts {
		contacts = append(contacts, c)
	}
	slices.SortFunc(contacts, func(a, b domain.Contact) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return contacts, nil
}

func (r *ContactRepository) GetByID(_ context.Context, id int64) (*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.contacts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *ContactRepository) FindByName(_ context.Context, name string, excludeID int64) (*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.names[domain.NameKey(name)]
	if !ok || id == excludeID {
		return nil, domain.ErrNotFound
	}
	c := r.contacts[id]
	return &c, nil
}

func (r *ContactRepository) Create(_ context.Context, contact *domain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := domain.NameKey(contact.Name)
	if _, taken := r.names[key]; taken {
		return domain.ErrDuplicateName
	}

	now := r.now().UTC()
	contact.ID = r.nextID
	contact.CreatedAt = now
	contact.UpdatedAt = now
	r.nextID++

	r.contacts[contact.ID] = *contact
	r.names[key] = contact.ID
	return nil
}

func (r *ContactRepository) Update(_ context.Context, contact *domain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.contacts[contact.ID]
	if !ok {
		return domain.ErrNotFound
	}

	key := domain.NameKey(contact.Name)
	if owner, taken := r.names[key]; taken && owner != contact.ID {
		return domain.ErrDuplicateName
	}

	contact.CreatedAt = old.CreatedAt
	contact.UpdatedAt = r.now().UTC()

	delete(r.names, domain.NameKey(old.Name))
	r.names[key] = contact.ID
	r.contacts[contact.ID] = *contact
	return nil
}

func (r *ContactRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.contacts[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.names, domain.NameKey(c.Name))
	delete(r.contacts, id)
	return nil
}

func (r *ContactRepository) Ping(_ context.Context) error {
	return nil
}
