package chat

import (
	"sync"

	"github.com/samber/lo"
)

// UnknownUser is the display name used when the identity source yields none.
const UnknownUser = "Unknown User"

type registryEntry struct {
	username string
	seq      uint64
}

// Registry maps live connections to their display name. It owns its locking;
// callers never hold an external lock.
type Registry struct {
	mu      sync.RWMutex
	entries map[ConnectionID]registryEntry
	nextSeq uint64
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[ConnectionID]registryEntry)}
}

// Register inserts or overwrites the mapping for id. Registering the same id
// twice keeps its original position in lookup order.
func (r *Registry) Register(id ConnectionID, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		r.nextSeq++
		entry.seq = r.nextSeq
	}
	entry.username = username
	r.entries[id] = entry
}

// Unregister removes id and returns the username it carried. An id that was
// never registered is reported as absent, not as an error.
func (r *Registry) Unregister(id ConnectionID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return "", false
	}
	delete(r.entries, id)
	return entry.username, true
}

// Username returns the display name registered for id.
func (r *Registry) Username(id ConnectionID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	return entry.username, ok
}

// LookupByUsername returns the first live connection carrying username.
// When a user is connected more than once, which connection wins is not part
// of the contract; today it is the earliest registered one.
func (r *Registry) LookupByUsername(username string) (ConnectionID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		found ConnectionID
		best  uint64
	)
	for id, entry := range r.entries {
		if entry.username != username {
			continue
		}
		if best == 0 || entry.seq < best {
			found, best = id, entry.seq
		}
	}
	return found, best != 0
}

// SnapshotUsernames returns one username per live connection, unordered.
func (r *Registry) SnapshotUsernames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.MapToSlice(r.entries, func(_ ConnectionID, entry registryEntry) string {
		return entry.username
	})
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
