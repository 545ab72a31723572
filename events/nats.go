package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// Envelope wraps an event payload for external consumers.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// NATSForwarder republishes committed domain events to NATS subjects so
// other services (payout reconciliation, analytics) can consume them.
type NATSForwarder struct {
	nc            *nats.Conn
	subjectPrefix string
}

// ConnectNATS connects to the given NATS servers and returns a forwarder.
func ConnectNATS(servers, subjectPrefix string) (*NATSForwarder, error) {
	opts := []nats.Option{
		nats.Name("stakehouse"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
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
	}

	nc, err := nats.Connect(servers, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", servers, err)
	}

	return &NATSForwarder{nc: nc, subjectPrefix: subjectPrefix}, nil
}

// SubscribeAll registers the forwarder for every event type on the bus.
func (f *NATSForwarder) SubscribeAll(bus *Bus) {
	types := []EventType{
		EventTypeBalanceChange,
		EventTypeGameOpened,
		EventTypeGameCompleted,
		EventTypeGameMutualQuit,
		EventTypeBonusGranted,
		EventTypeBonusClaimed,
		EventTypeTokenSwept,
	}
	for _, et := range types {
		bus.Subscribe(et, f.forward)
	}
}

// Close drains and closes the NATS connection.
func (f *NATSForwarder) Close() {
	if f.nc != nil {
		f.nc.Close()
	}
}

func (f *NATSForwarder) forward(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to marshal event payload")
		return
	}

	envelope := Envelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: "stakehouse",
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		log.WithError(err).Error("Failed to marshal event envelope")
		return
	}

	subject := fmt.Sprintf("%s.%s", f.subjectPrefix, event.Type())
	if err := f.nc.Publish(subject, data); err != nil {
		log.WithFields(log.Fields{
			"subject": subject,
			"eventId": envelope.EventID,
			"error":   err,
		}).Error("Failed to publish event to NATS")
		return
	}

	log.WithFields(log.Fields{
		"subject": subject,
		"eventId": envelope.EventID,
	}).Debug("Published event to NATS")
}
