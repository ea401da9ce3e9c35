package cache

import (
	"sync"

	"github.com/seion-lab/kintai/pkg/domain/types"
)

// keyedLocks is a lazily-populated lock table keyed by record ID. Entries
// are refcounted and removed when uncontended, so unrelated users' scans
// never block each other and the table does not grow with history.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[types.RecordID]*lockEntry
}

type lockEntry struct {
	mu  sync.Mutex
	ref int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{
		locks: make(map[types.RecordID]*lockEntry),
	}
}

// acquire blocks until the per-key mutex is held and returns the release
// function. The entry is dropped from the table once the last holder
// releases it.
func (k *keyedLocks) acquire(key types.RecordID) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.ref++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		k.mu.Lock()
		entry.ref--
		if entry.ref == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// size reports the number of live entries, used by tests to verify GC
func (k *keyedLocks) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
