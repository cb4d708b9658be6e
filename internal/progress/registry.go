package progress

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// textMessage matches websocket.TextMessage; declared here so the registry
// does not depend on the websocket package directly.
const textMessage = 1

// Conn is the subset of a websocket connection the registry needs. The
// real implementation is *websocket.Conn from gofiber/websocket.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// channel pairs a connection with its own write mutex so a write to one
// client can never hold up the registry, and therefore never holds up
// writes to other clients.
type channel struct {
	mu   sync.Mutex
	conn Conn
}

func (ch *channel) write(message string) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.conn.WriteMessage(textMessage, []byte(message))
}

// Registry tracks at most one open progress channel per client id and
// delivers advisory progress strings to it. Delivery is best-effort:
// a missing or broken channel is logged and never propagated, since
// progress messages have no bearing on the request/response result.
// The registry lock only guards the map; writes happen outside it, so a
// stalled client cannot block delivery to unrelated clients.
type Registry struct {
	log *logrus.Logger

	mu    sync.Mutex
	conns map[string]*channel
}

func NewRegistry(log *logrus.Logger) *Registry {
	return &Registry{
		log:   log,
		conns: make(map[string]*channel),
	}
}

// Register associates conn with clientID. A previous channel for the same
// id is closed and replaced (last registration wins).
func (r *Registry) Register(clientID string, conn Conn) {
	r.mu.Lock()
	old, ok := r.conns[clientID]
	r.conns[clientID] = &channel{conn: conn}
	r.mu.Unlock()

	if ok && old.conn != conn {
		old.conn.Close()
		r.log.WithField("client_id", clientID).Info("Replaced existing progress channel")
	} else {
		r.log.WithField("client_id", clientID).Info("Progress channel registered")
	}
}

// Unregister removes the mapping for clientID, but only if it still points
// at conn. This keeps a late unregister from a replaced channel from
// knocking out its replacement.
func (r *Registry) Unregister(clientID string, conn Conn) {
	r.mu.Lock()
	if current, ok := r.conns[clientID]; ok && current.conn == conn {
		delete(r.conns, clientID)
	}
	r.mu.Unlock()
}

// Send pushes a progress message to the client's channel. Sending to an
// unregistered client id is a no-op. A failed write drops the channel.
func (r *Registry) Send(clientID, message string) {
	if clientID == "" {
		return
	}

	r.mu.Lock()
	ch, ok := r.conns[clientID]
	r.mu.Unlock()

	if !ok {
		r.log.WithField("client_id", clientID).Debug("No progress channel registered, dropping message")
		return
	}

	if err := ch.write(message); err != nil {
		r.log.WithFields(logrus.Fields{
			"client_id": clientID,
			"error":     err.Error(),
		}).Warn("Failed to deliver progress message")
		r.drop(clientID, ch)
	}
}

// drop removes a broken channel, unless it has already been replaced by a
// newer registration.
func (r *Registry) drop(clientID string, ch *channel) {
	r.mu.Lock()
	if current, ok := r.conns[clientID]; ok && current == ch {
		delete(r.conns, clientID)
	}
	r.mu.Unlock()
	ch.conn.Close()
}
