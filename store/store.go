package store

import (
	"fmt"
	"sync"

	"github.com/MrEthical07/goEphemeral/clock"
)

// Options tunes a Store.
type Options struct {
	// MaxEntries caps the number of physical entries. Zero means unbounded.
	// Expired entries count toward the cap until they are removed or swept.
	MaxEntries int
}

// Store is a mutex-guarded map from (code, user) to an expiry instant.
//
// Store is safe for concurrent use. Concurrent Put calls on the same key resolve
// last-write-wins.
type Store struct {
	mu         sync.RWMutex
	entries    map[Key]int64
	clock      clock.Clock
	maxEntries int
}

// New creates an empty Store reading time from clk. A nil clk uses clock.System.
func New(clk clock.Clock, opts Options) *Store {
	if clk == nil {
		clk = clock.System{}
	}
	if opts.MaxEntries < 0 {
		opts.MaxEntries = 0
	}
	return &Store{
		entries:    make(map[Key]int64),
		clock:      clk,
		maxEntries: opts.MaxEntries,
	}
}

// Put inserts or overwrites the entry for (rec.Code, rec.User).
//
// Overwrites always succeed. A new key fails with ErrStoreFull once MaxEntries
// physical entries exist.
func (s *Store) Put(rec Record) error {
	key := rec.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		return fmt.Errorf("%w: %w: %d entries", ErrWriteFailed, ErrStoreFull, len(s.entries))
	}
	s.entries[key] = rec.ExpiresAt
	return nil
}

// Get returns the record for (code, user) if present and not expired.
// An expired entry reads as absent and stays in the map.
func (s *Store) Get(code, user string) (Record, bool) {
	key := Key{Code: code, User: user}

	s.mu.RLock()
	expiresAt, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return Record{}, false
	}

	rec := Record{Code: code, User: user, ExpiresAt: expiresAt}
	if rec.Expired(s.now()) {
		return Record{}, false
	}
	return rec, true
}

// Remove deletes the entry regardless of expiry and reports whether one existed.
func (s *Store) Remove(code, user string) bool {
	key := Key{Code: code, User: user}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	return true
}

// Size returns the number of physical entries, including expired ones that have
// not been removed or swept yet.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Live returns the number of entries that would currently read as valid.
func (s *Store) Live() int {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, expiresAt := range s.entries {
		if expiresAt > now {
			n++
		}
	}
	return n
}

// Sweep deletes every expired entry and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, expiresAt := range s.entries {
		if expiresAt <= now {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *Store) now() int64 {
	return s.clock.Now().Unix()
}
