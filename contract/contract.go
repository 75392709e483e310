package contract

import (
	"context"
	"reflect"

	"github.com/YUGESHKARAN/web-socket.io/domain"
)

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Conn is the minimal handle the core needs from a transport connection.
// The transport owns the connection; the core never uses one past its
// disconnect event.
type Conn interface {
	ID() string
	Emit(event string, payload any) error
}

// IPresence maps a user identity to its single live connection.
// Last registration wins; losing the table only degrades delivery
// to "always offline", it never corrupts data.
type IPresence interface {
	Register(email string, conn Conn)
	Lookup(email string) (Conn, bool)
	Unregister(conn Conn)
}

// IRegistry groups connections by post so a message broadcasts only
// to viewers of that post.
type IRegistry interface {
	Join(conn Conn, postID domain.PostID)
	Broadcast(postID domain.PostID, event string, payload any, exceptConnID string)
	Drop(conn Conn)
}

// IAuthorStore is the durable store contract consumed by the dispatcher.
type IAuthorStore interface {
	FindPostByID(postID domain.PostID) (domain.OwnedPost, error)
	FindAuthorByEmail(email string) (domain.Author, error)
	AppendMessage(postID domain.PostID, msg domain.ChatMessage) error
	AppendNotification(email string, n domain.Notification) error
}

// IDispatcher runs one inbound message through persistence, broadcast
// and notification routing.
type IDispatcher interface {
	Dispatch(ctx context.Context, cmd domain.NewMessageCommand, sender Conn) error
}
