// Package queue carries committed registrations over RabbitMQ so side effects
// can run in a consumer instead of the request path.
package queue

import (
	"encoding/json"
	"fmt"

	"guestregistration/internal/domain"
)

// QueueName is the durable queue committed registrations are published to.
const QueueName = "registration.committed"

func encodeMessage(msg *domain.RegistrationCommitted) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal registration: %w", err)
	}
	return body, nil
}

func decodeMessage(body []byte) (*domain.RegistrationCommitted, error) {
	var msg domain.RegistrationCommitted
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal registration: %w", err)
	}
	if msg.Registrant.RegistrationID == "" {
		return nil, fmt.Errorf("message has no registration id")
	}
	return &msg, nil
}
