package runtime

import (
	"sync"

	"github.com/YUGESHKARAN/web-socket.io/contract"
	"github.com/YUGESHKARAN/web-socket.io/domain"
)

type Set map[string]struct{}

// Registry groups connections by post so a broadcast reaches only the
// viewers of that post. The transport has no room concept of its own,
// so the registry also owns pruning: Drop removes a dead connection
// from every room it joined.
type Registry struct {
	mu      sync.RWMutex
	conns   map[string]contract.Conn       // conn ID -> connection
	members map[domain.PostID]Set          // post -> member conn IDs
	joined  map[string]map[domain.PostID]struct{} // conn ID -> joined posts
}

func NewRegistry() *Registry {
	return &Registry{
		conns:   make(map[string]contract.Conn),
		members: make(map[domain.PostID]Set),
		joined:  make(map[string]map[domain.PostID]struct{}),
	}
}

// Join adds a connection to a post's room. A connection may belong to
// many rooms simultaneously; joining twice is a no-op.
// If the room does not yet exist in the registry, it is initialized on the fly.
func (r *Registry) Join(conn contract.Conn, postID domain.PostID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[conn.ID()] = conn

	if _, ok := r.members[postID]; !ok {
		r.members[postID] = make(Set)
	}
	r.members[postID][conn.ID()] = struct{}{}

	if _, ok := r.joined[conn.ID()]; !ok {
		r.joined[conn.ID()] = make(map[domain.PostID]struct{})
	}
	r.joined[conn.ID()][postID] = struct{}{}
}

// Broadcast delivers an event to every member of the room except the
// originating connection, which already has local knowledge of its own
// message. Delivery is fire-and-forget; a full or dead peer is skipped.
func (r *Registry) Broadcast(postID domain.PostID, event string, payload any, exceptConnID string) {
	// Resolve the recipient set under the read lock, emit outside it:
	// a slow consumer must not block joins on unrelated rooms.
	r.mu.RLock()
	memberIDs, ok := r.members[postID]
	var recipients []contract.Conn
	if ok {
		for id := range memberIDs {
			if id == exceptConnID {
				continue
			}
			if conn, exists := r.conns[id]; exists {
				recipients = append(recipients, conn)
			}
		}
	}
	r.mu.RUnlock()

	for _, conn := range recipients {
		_ = conn.Emit(event, payload)
	}
}

// Drop removes a connection from the registry and from every room it
// joined. It cleans up empty member sets so the maps don't leak rooms
// of long-gone posts.
func (r *Registry) Drop(conn contract.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, conn.ID())

	for postID := range r.joined[conn.ID()] {
		if memberIDs, ok := r.members[postID]; ok {
			delete(memberIDs, conn.ID())
			if len(memberIDs) == 0 {
				delete(r.members, postID)
			}
		}
	}
	delete(r.joined, conn.ID())
}

// Members reports the current size of a room.
func (r *Registry) Members(postID domain.PostID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members[postID])
}
