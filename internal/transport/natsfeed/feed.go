// Package natsfeed attaches mock endpoints to NATS subjects. Each endpoint
// subscribes to the subject named by its feeder wiring ("subject" option,
// defaulting to the endpoint identity), optionally in a queue group ("queue"
// option). Messages carrying a reply subject receive the response.
package natsfeed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"mockspec/internal/expectation"
	"mockspec/internal/feeder"
	"mockspec/pkg/logging"
)

const (
	// OptionSubject overrides the subject an endpoint listens on
	OptionSubject = "subject"
	// OptionQueue places the subscription in a queue group
	OptionQueue = "queue"

	// HeaderFault carries the fault of a response
	HeaderFault = "Mockspec-Fault"
	// HeaderError carries a delivery error such as an unexpected message
	HeaderError = "Mockspec-Error"
)

// Conn is the subset of *nats.Conn the feed needs.
type Conn interface {
	Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
	QueueSubscribe(subj, queue string, cb nats.MsgHandler) (*nats.Subscription, error)
	PublishMsg(m *nats.Msg) error
}

// Connect opens a NATS connection suitable for a feed.
func Connect(url, name string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	return nc, nil
}

// Feed routes NATS messages into a runtime.
type Feed struct {
	conn    Conn
	runtime *feeder.Runtime

	mu   sync.Mutex
	subs []*nats.Subscription
}

// New creates a feed delivering into runtime.
func New(conn Conn, runtime *feeder.Runtime) *Feed {
	return &Feed{conn: conn, runtime: runtime}
}

// Subject returns the subject def listens on.
func Subject(def *expectation.Definition) string {
	if subject := def.FeederWiring().Option(OptionSubject); subject != "" {
		return subject
	}
	return def.Endpoint()
}

// Start subscribes every definition. Deliveries use ctx until Close.
func (f *Feed) Start(ctx context.Context, defs []*expectation.Definition) error {
	for _, def := range defs {
		subject := Subject(def)
		handler := f.handler(ctx, def.Endpoint())

		var (
			sub *nats.Subscription
			err error
		)
		if queue := def.FeederWiring().Option(OptionQueue); queue != "" {
			sub, err = f.conn.QueueSubscribe(subject, queue, handler)
		} else {
			sub, err = f.conn.Subscribe(subject, handler)
		}
		if err != nil {
			f.Close()
			return fmt.Errorf("subscribe endpoint %s to %s: %w", def.Endpoint(), subject, err)
		}

		f.mu.Lock()
		f.subs = append(f.subs, sub)
		f.mu.Unlock()
		logging.Info("NATSFeed", "Endpoint %s listening on subject %s", def.Endpoint(), subject)
	}
	return nil
}

// Close removes all subscriptions.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		if sub == nil {
			continue
		}
		if err := sub.Unsubscribe(); err != nil {
			logging.Warn("NATSFeed", "Failed to unsubscribe from %s: %v", sub.Subject, err)
		}
	}
	f.subs = nil
}

func (f *Feed) handler(ctx context.Context, endpoint string) nats.MsgHandler {
	return func(m *nats.Msg) {
		msg := &expectation.Message{Body: m.Data}
		for name, values := range m.Header {
			if len(values) > 0 {
				msg.SetHeader(name, values[0])
			}
		}

		response, err := f.runtime.Deliver(ctx, endpoint, msg)
		if m.Reply == "" {
			if err != nil {
				logging.Debug("NATSFeed", "Delivery on %s failed without reply subject: %v", endpoint, err)
			}
			return
		}

		reply := nats.NewMsg(m.Reply)
		switch {
		case err != nil:
			reply.Header.Set(HeaderError, err.Error())
		default:
			reply.Data = response.Body
			for name, value := range response.Headers {
				reply.Header.Set(name, fmt.Sprintf("%v", value))
			}
			if response.Fault != nil {
				reply.Header.Set(HeaderFault, response.Fault.Error())
			}
		}

		if err := f.conn.PublishMsg(reply); err != nil {
			logging.Error("NATSFeed", err, "Failed to publish reply for endpoint %s", endpoint)
		}
	}
}
