package services

import (
	"context"
	"log/slog"

	"github.com/YUGESHKARAN/web-socket.io/contract"
	"github.com/YUGESHKARAN/web-socket.io/domain"
	"github.com/YUGESHKARAN/web-socket.io/errors"
)

type IRelayService interface {
	RegisterUser(email string, conn contract.Conn)
	JoinPostRoom(conn contract.Conn, postID domain.PostID)
	NewMessage(ctx context.Context, cmd domain.NewMessageCommand, sender contract.Conn, ack func(error))
	Disconnect(conn contract.Conn)
}

// RelayService is the facade the transport gateway talks to. It maps
// connection lifecycle and inbound events onto the presence table, the
// room registry and the dispatcher.
type RelayService struct {
	log        *slog.Logger
	presence   contract.IPresence
	rooms      contract.IRegistry
	dispatcher contract.IDispatcher
}

func NewRelayService(log *slog.Logger, presence contract.IPresence,
	rooms contract.IRegistry, dispatcher contract.IDispatcher) *RelayService {
	return &RelayService{log: log, presence: presence, rooms: rooms, dispatcher: dispatcher}
}

func (s *RelayService) RegisterUser(email string, conn contract.Conn) {
	s.presence.Register(email, conn)
	s.log.Debug("Registered", "email", email, "conn_id", conn.ID())
}

func (s *RelayService) JoinPostRoom(conn contract.Conn, postID domain.PostID) {
	s.rooms.Join(conn, postID)
	s.log.Debug("Joined room", "post_id", postID, "conn_id", conn.ID())
}

// NewMessage runs one dispatch as its own asynchronous unit so a slow
// store call for one message never delays unrelated rooms. The task
// boundary catches panics and routes them to the ack like any other
// dispatch failure instead of crashing the process.
func (s *RelayService) NewMessage(ctx context.Context, cmd domain.NewMessageCommand,
	sender contract.Conn, ack func(error)) {
	go func() {
		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("Dispatch panicked", "post_id", cmd.PostID, "panic", r)
					err = errors.ErrWorkerPanic
				}
			}()
			return s.dispatcher.Dispatch(ctx, cmd, sender)
		}()
		if ack != nil {
			ack(err)
		}
	}()
}

// Disconnect cleans up everything bound to a dying connection: its
// presence entry and its membership in every room.
func (s *RelayService) Disconnect(conn contract.Conn) {
	s.presence.Unregister(conn)
	s.rooms.Drop(conn)
	s.log.Debug("Disconnected", "conn_id", conn.ID())
}
