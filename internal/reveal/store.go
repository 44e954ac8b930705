// Package reveal holds plaintext key material for the short window between
// issuance and the one-time disclosure to the caller. Entries live only in
// process memory; nothing here ever touches disk.
package reveal

import (
	"errors"
	"sync"
	"time"
)

// DefaultTTL is the hard server-side expiry for a reveal entry
const DefaultTTL = 15 * time.Minute

// Errors returned by Take
var (
	ErrNotFound = errors.New("reveal entry not found")
	ErrExpired  = errors.New("reveal entry expired")
)

// Entry holds the plaintext key and client secret for one issued key
type Entry struct {
	Key       string
	Secret    string
	CreatedAt time.Time
}

// Store is an ephemeral keyed store with TTL and consume-once reads.
// A single mutex-guarded map is the source of truth; Take removes the entry
// before checking expiry, so concurrent callers have at most one winner.
type Store struct {
	mu      sync.Mutex
	entries map[string]Entry
	ttl     time.Duration
	stop    chan struct{}
	once    sync.Once
	now     func() time.Time
}

// NewStore creates a store with the given TTL (DefaultTTL if <= 0) and
// starts a background janitor that sweeps expired entries.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		entries: make(map[string]Entry),
		ttl:     ttl,
		stop:    make(chan struct{}),
		now:     time.Now,
	}
	go s.janitor()
	return s
}

// Put stores the plaintext material for a freshly issued key
func (s *Store) Put(keyID, key, secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[keyID] = Entry{Key: key, Secret: secret, CreatedAt: s.now()}
}

// Take consumes the entry for keyID. The delete happens before the expiry
// check: an expired entry is already gone when ErrExpired is returned, so a
// retry correctly yields ErrNotFound. This ordering trades an occasional
// discarded entry for a guarantee that the plaintext is disclosed at most once.
func (s *Store) Take(keyID string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[keyID]
	if !ok {
		return Entry{}, ErrNotFound
	}
	delete(s.entries, keyID)

	if s.now().Sub(entry.CreatedAt) > s.ttl {
		return Entry{}, ErrExpired
	}
	return entry, nil
}

// Delete drops any entry for keyID. Used when the parent key is revoked:
// a revoked key's plaintext must not remain revealable.
func (s *Store) Delete(keyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, keyID)
}

// Len returns the number of live entries
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops the janitor and drops all entries
func (s *Store) Close() {
	s.once.Do(func() { close(s.stop) })
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry)
}

// janitor sweeps expired entries once a minute
func (s *Store) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, entry := range s.entries {
		if now.Sub(entry.CreatedAt) > s.ttl {
			delete(s.entries, id)
		}
	}
}
