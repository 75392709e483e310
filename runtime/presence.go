// Package runtime owns the shared in-memory state of the relay: who is
// online, who watches which post, and the dispatch of inbound messages.
// It orchestrates the system without containing storage or transport logic.
package runtime

import (
	"sync"

	"github.com/YUGESHKARAN/web-socket.io/contract"
)

// PresenceTable is the bidirectional mapping between a user identity
// (email) and its single active connection. It is a pure cache: state
// is lost on restart and every author is then simply "offline".
type PresenceTable struct {
	mu      sync.RWMutex
	byEmail map[string]contract.Conn
	byConn  map[string]string // conn ID -> email, for O(1) unregister
}

func NewPresenceTable() *PresenceTable {
	return &PresenceTable{
		byEmail: make(map[string]contract.Conn),
		byConn:  make(map[string]string),
	}
}

// Register records or overwrites the mapping for an identity.
// Last registration wins: a prior connection for the same email is
// simply forgotten, never closed.
func (p *PresenceTable) Register(email string, conn contract.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if old, ok := p.byEmail[email]; ok {
		delete(p.byConn, old.ID())
	}
	// The same connection may re-register under a new identity;
	// drop the stale reverse entry so both directions stay in sync.
	if oldEmail, ok := p.byConn[conn.ID()]; ok && oldEmail != email {
		delete(p.byEmail, oldEmail)
	}
	p.byEmail[email] = conn
	p.byConn[conn.ID()] = email
}

// Lookup returns the live connection for an identity, used to decide
// push vs. persist at dispatch time.
func (p *PresenceTable) Lookup(email string) (contract.Conn, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	conn, ok := p.byEmail[email]
	return conn, ok
}

// Unregister removes the entry bound to this connection, if any.
// A connection that was already replaced by a newer registration for
// the same email leaves the newer entry untouched.
func (p *PresenceTable) Unregister(conn contract.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()

	email, ok := p.byConn[conn.ID()]
	if !ok {
		return
	}
	delete(p.byConn, conn.ID())
	if current, ok := p.byEmail[email]; ok && current.ID() == conn.ID() {
		delete(p.byEmail, email)
	}
}

// Online reports the number of registered identities.
func (p *PresenceTable) Online() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byEmail)
}
