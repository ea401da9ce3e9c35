package cache

import (
	"sync"
	"time"

	"github.com/seion-lab/kintai/pkg/domain/model"
	"github.com/seion-lab/kintai/pkg/domain/types"
)

// Cache is the process-wide authoritative read path for card scans. It
// holds two mappings: card identifier to user, and (userID, date) to the
// day's punch record. It is populated wholesale from the remote store at
// startup and mutated synchronously by every punch and registration; the
// remote store is reconciled asynchronously. Owned by the application
// root and injected into the use cases, not a package-level singleton.
type Cache struct {
	// state guards the mappings themselves; held only for the duration
	// of a single map operation.
	state sync.RWMutex

	// bulkGate serializes bulk operations against in-flight per-key punch
	// transitions: transitions hold it in read mode across their whole
	// read-modify-write, bulk loads and invalidations take it in write
	// mode. A punch can therefore never be lost inside a cache rebuild.
	bulkGate sync.RWMutex

	locks *keyedLocks

	usersByCard  map[types.CardID]*model.User
	recordsByKey map[types.RecordID]*model.TimeRecord
	lastFullSync time.Time
}

func New() *Cache {
	return &Cache{
		locks:        newKeyedLocks(),
		usersByCard:  make(map[types.CardID]*model.User),
		recordsByKey: make(map[types.RecordID]*model.TimeRecord),
	}
}

// LockRecord serializes punch transitions for one (userID, date) key. It
// blocks while a bulk operation is running, then while another transition
// on the same key is in flight. The returned function releases both.
func (c *Cache) LockRecord(id types.RecordID) func() {
	c.bulkGate.RLock()
	release := c.locks.acquire(id)

	return func() {
		release()
		c.bulkGate.RUnlock()
	}
}

// UserByCard is a pure cache read; there is no remote fallback here
func (c *Cache) UserByCard(cardID types.CardID) (*model.User, bool) {
	c.state.RLock()
	defer c.state.RUnlock()

	user, ok := c.usersByCard[cardID]
	if !ok {
		return nil, false
	}
	userCopy := *user
	return &userCopy, true
}

// PutUser inserts or replaces the binding for the user's card
func (c *Cache) PutUser(user *model.User) {
	c.state.Lock()
	defer c.state.Unlock()

	userCopy := *user
	c.usersByCard[user.CardID] = &userCopy
}

// Users returns a snapshot of all cached users
func (c *Cache) Users() []*model.User {
	c.state.RLock()
	defer c.state.RUnlock()

	users := make([]*model.User, 0, len(c.usersByCard))
	for _, user := range c.usersByCard {
		userCopy := *user
		users = append(users, &userCopy)
	}
	return users
}

// Record is a pure cache read keyed by (userID, date); no remote fallback.
// The hot path must stay free of I/O latency, so the remote store is
// synced wholesale rather than per key.
func (c *Cache) Record(id types.RecordID) (*model.TimeRecord, bool) {
	c.state.RLock()
	defer c.state.RUnlock()

	record, ok := c.recordsByKey[id]
	if !ok {
		return nil, false
	}
	recordCopy := *record
	return &recordCopy, true
}

// PutRecord upserts the record synchronously
func (c *Cache) PutRecord(record *model.TimeRecord) {
	c.state.Lock()
	defer c.state.Unlock()

	recordCopy := *record
	c.recordsByKey[record.RecordID()] = &recordCopy
}

// Records returns a snapshot of all cached records
func (c *Cache) Records() []*model.TimeRecord {
	c.state.RLock()
	defer c.state.RUnlock()

	records := make([]*model.TimeRecord, 0, len(c.recordsByKey))
	for _, record := range c.recordsByKey {
		recordCopy := *record
		records = append(records, &recordCopy)
	}
	return records
}

// BulkLoadRecords atomically replaces the whole record mapping with the
// result of a full remote scan. It is exclusive: in-flight punches finish
// first, and no punch starts until the load is done.
func (c *Cache) BulkLoadRecords(records []*model.TimeRecord) {
	c.bulkGate.Lock()
	defer c.bulkGate.Unlock()

	fresh := make(map[types.RecordID]*model.TimeRecord, len(records))
	for _, record := range records {
		recordCopy := *record
		fresh[record.RecordID()] = &recordCopy
	}

	c.state.Lock()
	defer c.state.Unlock()
	c.recordsByKey = fresh
	c.lastFullSync = time.Now()
}

// BulkLoadUsers atomically replaces the whole card-to-user mapping
func (c *Cache) BulkLoadUsers(users []*model.User) {
	c.bulkGate.Lock()
	defer c.bulkGate.Unlock()

	fresh := make(map[types.CardID]*model.User, len(users))
	for _, user := range users {
		userCopy := *user
		fresh[user.CardID] = &userCopy
	}

	c.state.Lock()
	defer c.state.Unlock()
	c.usersByCard = fresh
	c.lastFullSync = time.Now()
}

// InvalidateRecords empties the record mapping, used by bulk clear
func (c *Cache) InvalidateRecords() {
	c.bulkGate.Lock()
	defer c.bulkGate.Unlock()

	c.state.Lock()
	defer c.state.Unlock()
	c.recordsByKey = make(map[types.RecordID]*model.TimeRecord)
}

// InvalidateAll empties both mappings, used by full reset
func (c *Cache) InvalidateAll() {
	c.bulkGate.Lock()
	defer c.bulkGate.Unlock()

	c.state.Lock()
	defer c.state.Unlock()
	c.usersByCard = make(map[types.CardID]*model.User)
	c.recordsByKey = make(map[types.RecordID]*model.TimeRecord)
}

// LastFullSync returns when the cache was last rebuilt from the remote store
func (c *Cache) LastFullSync() time.Time {
	c.state.RLock()
	defer c.state.RUnlock()
	return c.lastFullSync
}
