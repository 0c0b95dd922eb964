package email

import (
	"context"
	"errors"
	"fmt"
)

// ErrTransport marks failures reaching the provider: network faults,
// timeouts, dial errors. Provider rejections are reported as *ProviderError.
var ErrTransport = errors.New("email transport failure")

// ErrNotConfigured is returned by providers missing credentials.
var ErrNotConfigured = errors.New("email provider is not configured")

// Message is a single outbound email.
type Message struct {
	From     string
	FromName string
	To       []string
	ReplyTo  string
	Subject  string
	HTML     string
}

// SendResult is the provider acknowledgement of an accepted message.
type SendResult struct {
	ID string
}

// Provider sends email through a transactional-email service.
type Provider interface {
	Send(ctx context.Context, msg Message) (*SendResult, error)
	Name() string
}

// ProviderError is a structured rejection returned by the provider API.
type ProviderError struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider rejected message (%d %s): %s", e.StatusCode, e.Name, e.Message)
}

// FormatAddress renders a display-name address, "Name <addr>".
func FormatAddress(name, addr string) string {
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", name, addr)
}
