package service

import (
	"encoding/json"
	"time"

	"github.com/golinkhq/golink/internal/app/model"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// ClickPublisher publishes click events to NATS JetStream.
type ClickPublisher struct {
	js nats.JetStreamContext
}

// NewClickPublisher creates a new click event publisher.
func NewClickPublisher(js nats.JetStreamContext) *ClickPublisher {
	return &ClickPublisher{js: js}
}

// Publish emits one click for the given normalized shortlink.
func (p *ClickPublisher) Publish(shortlink, ip, userAgent, referrer string) error {
	event := model.ClickEvent{
		ID:        uuid.New().String(),
		Shortlink: shortlink,
		IP:        ip,
		UserAgent: userAgent,
		Referrer:  referrer,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = p.js.Publish(model.ClickStreamSubject, data)
	return err
}
