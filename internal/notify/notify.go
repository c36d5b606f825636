// Package notify delivers outbound admin notifications (alert emails) through
// a pluggable provider.
package notify

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNoRecipients       = errors.New("notification has no recipients")
	ErrEmptySubject       = errors.New("notification subject is empty")
	ErrRejected           = errors.New("notification rejected by provider")
	ErrInvalidCredentials = errors.New("invalid or missing provider credentials")
)

// Message is a provider-neutral email.
type Message struct {
	From    string
	To      []string
	Subject string
	Text    string
	HTML    string
	Tags    map[string]string
}

// Validate checks the fields every provider requires.
func (m Message) Validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	if strings.TrimSpace(m.Subject) == "" {
		return ErrEmptySubject
	}
	return nil
}

// Sender delivers a message. Implementations make a single attempt.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}
