package ws

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"github.com/YUGESHKARAN/web-socket.io/domain"
	"github.com/YUGESHKARAN/web-socket.io/errors"
	"github.com/YUGESHKARAN/web-socket.io/services"
)

const shutdownTimeout = 5 * time.Second

// Inbound event names, mirrored by the blog frontend.
const (
	eventRegisterUser = "registerUser"
	eventJoinPostRoom = "joinPostRoom"
	eventNewMessage   = "newMessage"
)

// Outbound event names.
const (
	eventMessage      = "message"
	eventNotification = "notification"
	eventAck          = "ack"
)

// messagePayload is the newMessage frame body. Email identifies the
// sender; the frontend fills url with the post's route for the
// notification link.
type messagePayload struct {
	PostID  string `json:"postId" validate:"required"`
	User    string `json:"user" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	URL     string `json:"url" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type ackPayload struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Gateway is the transport edge of the relay. It upgrades HTTP
// requests to websockets, decodes event frames and forwards them to
// the relay service; connection teardown feeds the service's
// disconnect path so presence and room membership get pruned.
// It runs as a worker under the supervisor.
type Gateway struct {
	log            *slog.Logger
	service        services.IRelayService
	addr           string
	allowedOrigins []string
	bufferSize     int
	writeTimeout   time.Duration
	validate       *validator.Validate
}

func NewGateway(log *slog.Logger, service services.IRelayService, addr string,
	allowedOrigins []string, bufferSize int, writeTimeout time.Duration) *Gateway {
	return &Gateway{
		log:            log,
		service:        service,
		addr:           addr,
		allowedOrigins: allowedOrigins,
		bufferSize:     bufferSize,
		writeTimeout:   writeTimeout,
		validate:       validator.New(),
	}
}

// Handler returns the websocket endpoint. Dispatches triggered by a
// frame outlive the frame's connection, so they run off ctx (the
// server's lifetime), not off the request context.
func (g *Gateway) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		g.handleSocket(ctx, w, r)
	})
	return mux
}

// Run serves the gateway until the context is canceled, then drains
// with a bounded shutdown.
func (g *Gateway) Run(ctx context.Context) error {
	server := &http.Server{Addr: g.addr, Handler: g.Handler(ctx)}

	errChan := make(chan error, 1)
	go func() {
		g.log.Info("Gateway listening", "addr", g.addr)
		if err := server.ListenAndServe(); err != nil && !goerrors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("gateway serve: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return nil
	case err := <-errChan:
		return err
	}
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	if len(g.allowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser client; the trust boundary sits in the auth layer.
		return true
	}
	return lo.Contains(g.allowedOrigins, origin)
}

func (g *Gateway) handleSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: g.checkOrigin}
	socket, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("Upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := newClient(g.log, socket, g.bufferSize, g.writeTimeout)
	go client.writePump()
	g.log.Info("Socket connected", "conn_id", client.ID())

	g.readLoop(ctx, client)
}

// readLoop decodes inbound frames until the socket dies, then runs the
// disconnect path exactly once.
func (g *Gateway) readLoop(ctx context.Context, client *Client) {
	defer func() {
		g.service.Disconnect(client)
		client.close()
		g.log.Info("Socket disconnected", "conn_id", client.ID())
	}()

	for {
		var f frame
		if err := client.socket.ReadJSON(&f); err != nil {
			return
		}
		g.handleFrame(ctx, client, f)
	}
}

func (g *Gateway) handleFrame(ctx context.Context, client *Client, f frame) {
	switch f.Event {
	case eventRegisterUser:
		var email string
		if err := json.Unmarshal(f.Data, &email); err != nil {
			g.log.Warn("Malformed registerUser payload", "conn_id", client.ID(), "error", err)
			return
		}
		g.service.RegisterUser(email, client)

	case eventJoinPostRoom:
		var postID string
		if err := json.Unmarshal(f.Data, &postID); err != nil {
			g.log.Warn("Malformed joinPostRoom payload", "conn_id", client.ID(), "error", err)
			return
		}
		g.service.JoinPostRoom(client, domain.PostID(postID))

	case eventNewMessage:
		var payload messagePayload
		if err := json.Unmarshal(f.Data, &payload); err != nil {
			g.log.Warn("Malformed newMessage payload", "conn_id", client.ID(), "error", err)
			g.ack(client, err)
			return
		}
		if err := g.validate.Struct(payload); err != nil {
			g.log.Warn("Invalid newMessage payload", "conn_id", client.ID(), "error", err)
			g.ack(client, err)
			return
		}
		g.service.NewMessage(ctx, toCommand(payload), client, func(err error) {
			g.ack(client, err)
		})

	default:
		g.log.Debug("Ignoring unknown event", "event", f.Event, "conn_id", client.ID())
	}
}

// ack reports the outcome of a newMessage back to its sender so the
// client can retry; the original frontend got no signal at all.
func (g *Gateway) ack(client *Client, err error) {
	payload := ackPayload{OK: err == nil}
	if err != nil {
		var validationErrs validator.ValidationErrors
		switch {
		case goerrors.Is(err, errors.ErrPostNotFound):
			payload.Error = "post not found"
		case goerrors.As(err, &validationErrs):
			payload.Error = "invalid message payload"
		default:
			payload.Error = "message not delivered"
		}
	}
	_ = client.Emit(eventAck, payload)
}

func toCommand(p messagePayload) domain.NewMessageCommand {
	return domain.NewMessageCommand{
		PostID:  domain.PostID(p.PostID),
		User:    p.User,
		Email:   p.Email,
		URL:     p.URL,
		Message: p.Message,
	}
}
