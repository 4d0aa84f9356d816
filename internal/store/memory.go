package store

import (
	"sync"
	"time"
)

type memoryEntry struct {
	rec       VerificationRecord
	expiresAt time.Time
}

// MemoryStore is the default process-local record store: a mutex-guarded map
// with a periodic sweep plus an eager sweep when the table crosses its size
// bound. Losing it on restart only re-opens already-expired windows.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	ttl        time.Duration
	maxEntries int
	stop       chan struct{}
	stopOnce   sync.Once
}

func NewMemoryStore(ttl, sweepInterval time.Duration, maxEntries int) *MemoryStore {
	s := &MemoryStore{
		entries:    make(map[string]memoryEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		stop:       make(chan struct{}),
	}
	go s.sweepLoop(sweepInterval)
	return s
}

func (s *MemoryStore) Get(key string) (VerificationRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return VerificationRecord{}, false, nil
	}
	if time.Now().After(e.expiresAt) {
		delete(s.entries, key)
		return VerificationRecord{}, false, nil
	}
	return e.rec, true, nil
}

func (s *MemoryStore) PutIfAbsent(key string, rec VerificationRecord) (VerificationRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if e, ok := s.entries[key]; ok && now.Before(e.expiresAt) {
		return e.rec, false, nil
	}
	if len(s.entries) >= s.maxEntries {
		s.sweepLocked(now)
	}
	s.entries[key] = memoryEntry{rec: rec, expiresAt: now.Add(s.ttl)}
	return rec, true, nil
}

func (s *MemoryStore) Len() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries), nil
}

// Close stops the sweep goroutine. Safe to call more than once.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *MemoryStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			s.sweepLocked(time.Now())
			s.mu.Unlock()
		case <-s.stop:
			return
		}
	}
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}
