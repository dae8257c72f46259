// internal/events/publisher.go
//
// NATS fan-out of session events.
// Every event is published as the same JSON message websocket clients get,
// on subject <prefix>.<session id>.<kind>, so other processes can follow
// games without holding a socket.

package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/azul/internal/session"
	"github.com/robalobadob/azul/internal/wire"
)

// Conn is the part of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Connect dials NATS with reconnect handling that logs through zerolog.
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("azul-game-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn().Err(err).Msg("disconnected from NATS")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("reconnected to NATS")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info().Msg("NATS connection closed")
		}),
		nats.Timeout(10*time.Second),
	)
}

// Publisher is a session.Listener that forwards events to NATS.
type Publisher struct {
	conn   Conn
	prefix string
}

func NewPublisher(conn Conn, prefix string) *Publisher {
	return &Publisher{conn: conn, prefix: prefix}
}

// Subject returns the subject an event of kind for session id goes to.
func Subject(prefix, id string, kind session.EventKind) string {
	return prefix + "." + id + "." + string(kind)
}

// OnEvent publishes ev. nats.Conn buffers writes, so this does not block on
// the network; failures are logged and dropped.
func (p *Publisher) OnEvent(ev session.Event) {
	data, err := json.Marshal(wire.EventMessage(ev))
	if err != nil {
		log.Error().Err(err).Str("session", ev.SessionID).Msg("marshal event")
		return
	}
	subject := Subject(p.prefix, ev.SessionID, ev.Kind)
	if err := p.conn.Publish(subject, data); err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("publish event")
		return
	}
	log.Debug().Str("subject", subject).Msg("event published")
}
