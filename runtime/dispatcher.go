package runtime

import (
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/YUGESHKARAN/web-socket.io/contract"
	"github.com/YUGESHKARAN/web-socket.io/domain"
	"github.com/YUGESHKARAN/web-socket.io/errors"
)

// Dispatcher routes one inbound chat message through persistence,
// room broadcast and notification delivery. Every dependency is
// injected so tests run against fakes and a fresh presence table.
type Dispatcher struct {
	log      *slog.Logger
	store    contract.IAuthorStore
	presence contract.IPresence
	rooms    contract.IRegistry
	now      func() time.Time
}

func NewDispatcher(log *slog.Logger, store contract.IAuthorStore,
	presence contract.IPresence, rooms contract.IRegistry) *Dispatcher {
	return &Dispatcher{
		log:      log,
		store:    store,
		presence: presence,
		rooms:    rooms,
		now:      time.Now,
	}
}

// Dispatch handles one newMessage command end to end.
//
// The message append is the durability point: once it commits, the
// message is sent and Dispatch returns nil no matter what the
// broadcast or notification stages do afterward. Any failure before
// the append aborts the whole dispatch — no broadcast, no
// notification — and the error is returned for the sender's ack.
//
// The notification goes through exactly one channel, decided on the
// presence table's current snapshot: pushed live when the author is
// online, appended to the author's durable log otherwise. An author
// disconnecting between the presence check and the push only costs
// the live delivery, never the message itself.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd domain.NewMessageCommand, sender contract.Conn) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	owned, err := d.store.FindPostByID(cmd.PostID)
	if err != nil {
		if goerrors.Is(err, errors.ErrPostNotFound) {
			d.log.Warn("Dropping message for unknown post", "post_id", cmd.PostID)
			return err
		}
		d.log.Error("Post lookup failed", "post_id", cmd.PostID, "error", err)
		return fmt.Errorf("resolve post %s: %w", cmd.PostID, err)
	}

	// The sender's profile is cosmetic: an unknown sender defaults to
	// an empty profile and must never block delivery.
	profile := ""
	if account, err := d.store.FindAuthorByEmail(cmd.Email); err == nil {
		profile = account.Profile
	}

	msg := domain.ChatMessage{
		User:      cmd.User,
		Message:   cmd.Message,
		Profile:   profile,
		Timestamp: d.now().UTC(),
	}
	if err := d.store.AppendMessage(cmd.PostID, msg); err != nil {
		d.log.Error("Message append failed", "post_id", cmd.PostID, "error", err)
		return fmt.Errorf("append message to %s: %w", cmd.PostID, err)
	}

	d.rooms.Broadcast(cmd.PostID, "message", msg, sender.ID())

	notification := domain.Notification{
		PostID:      cmd.PostID,
		User:        cmd.User,
		Message:     cmd.Message,
		Profile:     profile,
		AuthorEmail: owned.AuthorEmail,
		URL:         cmd.URL,
		Timestamp:   msg.Timestamp,
	}

	if conn, online := d.presence.Lookup(owned.AuthorEmail); online {
		if err := conn.Emit("notification", notification); err != nil {
			// Author vanished between the presence check and the push.
			// A best-effort live-delivery miss, not an error.
			d.log.Debug("Live notification missed", "author", owned.AuthorEmail, "error", err)
		}
		return nil
	}

	if err := d.store.AppendNotification(owned.AuthorEmail, notification); err != nil {
		d.log.Error("Notification append failed", "author", owned.AuthorEmail, "error", err)
	}
	return nil
}
