package email

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogProvider acknowledges every message after logging it. Used for local
// development when no provider credentials are available.
type LogProvider struct {
	log *slog.Logger
}

func NewLogProvider(log *slog.Logger) *LogProvider {
	return &LogProvider{log: log.With("component", "email_log_provider")}
}

func (p *LogProvider) Name() string { return "log" }

func (p *LogProvider) Send(ctx context.Context, msg Message) (*SendResult, error) {
	id := uuid.NewString()
	p.log.InfoContext(ctx, "email accepted by log provider",
		"id", id,
		"to", msg.To,
		"subject", msg.Subject,
		"bytes", len(msg.HTML),
	)
	return &SendResult{ID: id}, nil
}
