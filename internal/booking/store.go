package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Store keeps live wizards in memory. Entries expire after the TTL of
// inactivity; nothing is persisted.
type Store struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		cache: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

func (s *Store) Put(w *Wizard) {
	s.cache.Set(w.ID().String(), w, s.ttl)
}

// Get returns the wizard and extends its lifetime.
func (s *Store) Get(id uuid.UUID) (*Wizard, bool) {
	v, ok := s.cache.Get(id.String())
	if !ok {
		return nil, false
	}
	w := v.(*Wizard)
	s.cache.Set(id.String(), w, s.ttl)
	return w, true
}

func (s *Store) Delete(id uuid.UUID) {
	s.cache.Delete(id.String())
}

func (s *Store) Len() int {
	return s.cache.ItemCount()
}
