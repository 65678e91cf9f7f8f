package session

import (
	"sync"
	"time"
)

// Store is the process-scoped session table. The outer mutex guards the
// map; each entry carries its own mutex so that read-modify-write cycles
// are serialized per key while independent conversations proceed in
// parallel. The clock is injected so sweep logic is testable.
type Store struct {
	mu      sync.Mutex
	entries map[Key]*entry

	now       func() time.Time
	ttl       time.Duration
	defaultTZ string
}

type entry struct {
	mu   sync.Mutex
	sess *Session
}

// NewStore builds a store. Sessions idle longer than ttl become
// candidates for Sweep; defaultTZ seeds the timezone of fresh sessions.
func NewStore(ttl time.Duration, defaultTZ string, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		entries:   make(map[Key]*entry),
		now:       now,
		ttl:       ttl,
		defaultTZ: defaultTZ,
	}
}

func (st *Store) entryFor(key Key) *entry {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.entries[key]
	if !ok {
		now := st.now()
		e = &entry{sess: &Session{
			Key:       key,
			Timezone:  st.defaultTZ,
			CreatedAt: now,
			LastSeen:  now,
		}}
		st.entries[key] = e
	}
	return e
}

// GetOrCreate returns a snapshot of the session for key, materializing a
// fresh main-menu session if none exists. Lookups never fail. The
// snapshot is detached from the store: mutating it changes nothing, so
// the per-key serialization Do provides cannot be bypassed.
func (st *Store) GetOrCreate(key Key) *Session {
	e := st.entryFor(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := *e.sess
	return &snap
}

// Do runs fn with exclusive access to the session for key. All transitions
// go through here so two near-simultaneous callbacks for the same message
// cannot interleave and corrupt the input buffer.
func (st *Store) Do(key Key, fn func(*Session)) {
	e := st.entryFor(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sess.LastSeen = st.now()
	fn(e.sess)
}

// Put replaces the stored session for key.
func (st *Store) Put(key Key, sess *Session) {
	e := st.entryFor(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	sess.Key = key
	e.sess = sess
}

// Delete removes the session for key, if any.
func (st *Store) Delete(key Key) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.entries, key)
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.entries)
}

// Sweep evicts sessions whose last access is older than the configured
// ttl and returns how many were removed. Eviction is advisory: a swept
// session simply materializes fresh on the next lookup.
func (st *Store) Sweep(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	evicted := 0
	for key, e := range st.entries {
		e.mu.Lock()
		idle := now.Sub(e.sess.LastSeen) > st.ttl
		e.mu.Unlock()
		if idle {
			delete(st.entries, key)
			evicted++
		}
	}
	return evicted
}
