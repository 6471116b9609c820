// Package stream broadcasts run samples over a nanomsg pub socket so
// external dashboards can watch order parameters converge live. It is an
// optional tap on the in-process pubsub fan-out; the simulation never blocks
// on it.
package stream

import (
	"encoding/json"
	"fmt"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"

	// Register all socket transports (tcp, ipc, inproc, ws).
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/tmercer/syncwave/pkg/logging"
	"github.com/tmercer/syncwave/pkg/pubsub"
	"github.com/tmercer/syncwave/pkg/timeseries"
)

// Publisher owns a pub socket bound to one address.
type Publisher struct {
	sock mangos.Socket
	log  logging.Logger
}

// NewPublisher opens and binds the pub socket. A bind failure is a setup
// failure: it aborts the run before any step executes.
func NewPublisher(addr string, log logging.Logger) (*Publisher, error) {
	sock, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("open pub socket: %w", err)
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}

	if log == nil {
		log = logging.DefaultLogger()
	}
	return &Publisher{sock: sock, log: log.With(logging.Component("stream"))}, nil
}

// Publish sends one sample as a JSON payload. Send errors are logged and
// swallowed; a dead subscriber must not affect the run.
func (p *Publisher) Publish(point timeseries.Point) {
	payload, err := json.Marshal(point)
	if err != nil {
		p.log.Error("marshal sample", logging.Error(err))
		return
	}
	if err := p.sock.Send(payload); err != nil {
		p.log.Warn("send sample", logging.Error(err), logging.String("series", point.Series))
	}
}

// Close shuts the socket down.
func (p *Publisher) Close() error {
	return p.sock.Close()
}

// Bridge drains a pubsub subscription into the publisher until the
// subscription closes. Run it on its own goroutine.
func Bridge(sub *pubsub.Subscription[timeseries.Point], p *Publisher) {
	for point := range sub.Channel() {
		p.Publish(point)
	}
}
