package contactclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"portfolio-backend/internal/domain"

	"github.com/go-resty/resty/v2"
)

const contactPath = "/v1/contact"

// Submission is the field-set posted to the dispatch endpoint.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Result is the dispatch outcome reported by the server.
type Result struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
	rest      *resty.Client
}

type Option func(*Client) error

func New(opts ...Option) (*Client, error) {
	c := &Client{
		http:      &http.Client{Timeout: 30 * time.Second},
		userAgent: "portfolio-contact",
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.baseURL == "" {
		return nil, errors.New("server is required")
	}

	c.rest = resty.NewWithClient(c.http).
		SetBaseURL(c.baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", c.userAgent)
	return c, nil
}

func WithServer(server string) Option {
	return func(c *Client) error {
		if server == "" {
			return errors.New("server is required")
		}
		parsed, err := url.Parse(server)
		if err != nil {
			return fmt.Errorf("invalid server: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("invalid server: unsupported scheme %q", parsed.Scheme)
		}
		c.baseURL = strings.TrimRight(parsed.String(), "/")
		return nil
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("http client is nil")
		}
		c.http = hc
		return nil
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) error {
		c.userAgent = userAgent
		return nil
	}
}

// Send posts one submission. The server's own result is returned whenever
// it answered with one; otherwise the result is the generic failure and the
// error describes what went wrong.
func (c *Client) Send(ctx context.Context, sub Submission) (Result, error) {
	var out Result
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(sub).
		SetResult(&out).
		SetError(&out).
		Post(contactPath)
	if err != nil {
		return failed(), fmt.Errorf("contact request failed: %w", err)
	}
	if out.Message == "" {
		return failed(), fmt.Errorf("unexpected response from server: %s", resp.Status())
	}
	return out, nil
}

func failed() Result {
	return Result{Success: false, Message: domain.MessageSendFailed}
}
