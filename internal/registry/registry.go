// Package registry tracks which room and player each live connection belongs
// to, so a dropped socket can be cleaned up without trusting client input.
package registry

import (
	"sync"

	"github.com/google/uuid"
)

type Identity struct {
	RoomKey string
	Name    string
}

type Registry struct {
	mu     sync.RWMutex
	byConn map[uuid.UUID]Identity
}

func New() *Registry {
	return &Registry{byConn: make(map[uuid.UUID]Identity)}
}

// Add records the identity for conn, replacing any earlier entry.
func (r *Registry) Add(conn uuid.UUID, id Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byConn[conn] = id
}

// Remove deletes conn and returns the identity it had.
func (r *Registry) Remove(conn uuid.UUID) (Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byConn[conn]
	if ok {
		delete(r.byConn, conn)
	}
	return id, ok
}

func (r *Registry) Lookup(conn uuid.UUID) (Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byConn[conn]
	return id, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}
