// Package registry maps logical users to their active transport connections
// and each connection back to its authenticated user. It is the single source
// of truth for who is reachable and through which connections.
package registry

import (
	"sort"
	"sync"

	"github.com/samber/lo"

	"conrelay/internal/domain"
)

// Registry is the identity and session registry. A connection belongs to at
// most one user at a time; a user may hold any number of concurrent
// connections (multi-device). All mutations are serialized by one lock.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]map[string]struct{} // username -> set of connection IDs
	owners map[string]string              // connection ID -> username
}

func New() *Registry {
	return &Registry{
		conns:  make(map[string]map[string]struct{}),
		owners: make(map[string]string),
	}
}

// Bind registers connID under username and reports whether this is the user's
// first active connection (the offline -> online transition). Binding the
// same connection to the same user again is a no-op; binding it to a
// different user moves it.
func (r *Registry) Bind(username, connID string) (first bool) {
	username = domain.NormalizeUsername(username)

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.owners[connID]; ok {
		if prev == username {
			return false
		}
		r.dropLocked(prev, connID)
	}

	set := r.conns[username]
	first = len(set) == 0
	if set == nil {
		set = make(map[string]struct{})
		r.conns[username] = set
	}
	set[connID] = struct{}{}
	r.owners[connID] = username
	return first
}

// Unbind removes connID from the registry. It returns the owning user, and
// last reports whether removing this connection emptied the user's set (the
// online -> offline transition). ok is false when the connection was never
// bound.
func (r *Registry) Unbind(connID string) (username string, last bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	username, ok = r.owners[connID]
	if !ok {
		return "", false, false
	}
	last = r.dropLocked(username, connID)
	return username, last, true
}

func (r *Registry) dropLocked(username, connID string) (last bool) {
	delete(r.owners, connID)
	set := r.conns[username]
	delete(set, connID)
	if len(set) == 0 {
		delete(r.conns, username)
		return true
	}
	return false
}

// ConnectionsOf returns the current fan-out targets for a user. An empty
// result means the user is offline.
func (r *Registry) ConnectionsOf(username string) []string {
	username = domain.NormalizeUsername(username)

	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Keys(r.conns[username])
}

// UserOf returns the user a connection is bound to, if any.
func (r *Registry) UserOf(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	username, ok := r.owners[connID]
	return username, ok
}

// IsOnline reports whether the user has at least one active connection.
func (r *Registry) IsOnline(username string) bool {
	username = domain.NormalizeUsername(username)

	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns[username]) > 0
}

// ListOnline returns a sorted snapshot of all online users, excluding the
// given one.
func (r *Registry) ListOnline(excluding string) []string {
	excluding = domain.NormalizeUsername(excluding)

	r.mu.RLock()
	users := lo.Filter(lo.Keys(r.conns), func(u string, _ int) bool {
		return u != excluding
	})
	r.mu.RUnlock()

	sort.Strings(users)
	return users
}
