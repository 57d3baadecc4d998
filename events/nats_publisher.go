package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/oklog/ulid/v2"
	log "github.com/sirupsen/logrus"
)

// SubjectPrefix prefixes every subject the casino publishes to
const SubjectPrefix = "casino"

// Envelope wraps an event payload for the broker
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     EventType       `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// messagePublisher is the subset of *nats.Conn the publisher needs
type messagePublisher interface {
	Publish(subject string, data []byte) error
	IsConnected() bool
	Close()
}

// NATSPublisher forwards bus events to NATS subjects
type NATSPublisher struct {
	conn    messagePublisher
	service string
}

// ConnectNATS dials the broker with reconnect handling
func ConnectNATS(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("casinobot"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Error("NATS disconnected with error")
			} else {
				log.Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.WithField("url", url).Info("Connected to NATS")
	return newNATSPublisher(nc), nil
}

func newNATSPublisher(conn messagePublisher) *NATSPublisher {
	return &NATSPublisher{conn: conn, service: "casinobot"}
}

// SubjectFor maps an event type to its broker subject
func SubjectFor(eventType EventType) string {
	return SubjectPrefix + "." + string(eventType)
}

// Attach subscribes the publisher to every event on the bus
func (p *NATSPublisher) Attach(bus *Bus) {
	bus.SubscribeAll(func(ctx context.Context, event Event) {
		if err := p.Publish(event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Failed to publish event to NATS")
		}
	})
}

// Publish serializes the event into an envelope and sends it
func (p *NATSPublisher) Publish(event Event) error {
	data, err := p.envelope(event)
	if err != nil {
		return err
	}

	subject := SubjectFor(event.Type())
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"subject":   subject,
	}).Debug("Published event to NATS")
	return nil
}

func (p *NATSPublisher) envelope(event Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := Envelope{
		EventID:       ulid.Make().String(),
		EventType:     event.Type(),
		Timestamp:     time.Now().UTC(),
		SourceService: p.service,
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event envelope: %w", err)
	}
	return data, nil
}

// IsConnected reports broker connectivity for the health check
func (p *NATSPublisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}

// Close closes the broker connection
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
		log.Info("NATS connection closed")
	}
}
