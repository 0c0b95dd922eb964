package email

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultResendBaseURL = "https://api.resend.com"

// ResendConfig holds credentials for the Resend API.
type ResendConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// ResendProvider sends email via the Resend HTTP API.
type ResendProvider struct {
	apiKey string
	client *resty.Client
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

func NewResendProvider(cfg ResendConfig) *ResendProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultResendBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &ResendProvider{apiKey: cfg.APIKey, client: client}
}

func (p *ResendProvider) Name() string { return "resend" }

func (p *ResendProvider) Send(ctx context.Context, msg Message) (*SendResult, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("resend: %w", ErrNotConfigured)
	}

	var ok resendResponse
	var apiErr ProviderError
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.apiKey).
		SetBody(resendRequest{
			From:    FormatAddress(msg.FromName, msg.From),
			To:      msg.To,
			Subject: msg.Subject,
			HTML:    msg.HTML,
			ReplyTo: msg.ReplyTo,
		}).
		SetResult(&ok).
		SetError(&apiErr).
		Post("/emails")
	if err != nil {
		return nil, fmt.Errorf("%w: resend request: %v", ErrTransport, err)
	}

	if resp.IsError() {
		if apiErr.StatusCode == 0 {
			apiErr.StatusCode = resp.StatusCode()
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode())
		}
		return nil, &apiErr
	}

	return &SendResult{ID: ok.ID}, nil
}
