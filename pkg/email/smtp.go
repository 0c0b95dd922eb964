package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"

	"gopkg.in/gomail.v2"
)

// SMTPConfig holds credentials for an SMTP server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPProvider sends email through an SMTP relay.
type SMTPProvider struct {
	dialer *gomail.Dialer
}

func NewSMTPProvider(cfg SMTPConfig) *SMTPProvider {
	return &SMTPProvider{dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)}
}

func (p *SMTPProvider) Name() string { return "smtp" }

// Send delivers msg over a connection bound to ctx: the deadline applies to
// the whole SMTP conversation and cancellation closes the socket.
func (p *SMTPProvider) Send(ctx context.Context, msg Message) (*SendResult, error) {
	if p.dialer.Host == "" {
		return nil, fmt.Errorf("smtp: %w", ErrNotConfigured)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", msg.From, msg.FromName)
	m.SetHeader("To", msg.To...)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := p.send(ctx, m); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: smtp send: %v (%v)", ErrTransport, ctxErr, err)
		}
		return nil, fmt.Errorf("%w: smtp send: %v", ErrTransport, err)
	}
	return &SendResult{}, nil
}

func (p *SMTPProvider) send(ctx context.Context, m *gomail.Message) error {
	d := p.dialer
	addr := net.JoinHostPort(d.Host, strconv.Itoa(d.Port))

	var nd net.Dialer
	raw, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer raw.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = raw.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = raw.Close() })
	defer stop()

	conn := raw
	if d.SSL {
		conn = tls.Client(raw, p.tlsConfig())
	}

	c, err := smtp.NewClient(conn, d.Host)
	if err != nil {
		return err
	}
	defer c.Close()

	if d.LocalName != "" {
		if err := c.Hello(d.LocalName); err != nil {
			return err
		}
	}
	if !d.SSL {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(p.tlsConfig()); err != nil {
				return err
			}
		}
	}
	if d.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", d.Username, d.Password, d.Host)); err != nil {
				return err
			}
		}
	}

	err = gomail.Send(gomail.SendFunc(func(from string, to []string, msg io.WriterTo) error {
		if err := c.Mail(from); err != nil {
			return err
		}
		for _, rcpt := range to {
			if err := c.Rcpt(rcpt); err != nil {
				return err
			}
		}
		w, err := c.Data()
		if err != nil {
			return err
		}
		if _, err := msg.WriteTo(w); err != nil {
			_ = w.Close()
			return err
		}
		return w.Close()
	}), m)
	if err != nil {
		return err
	}
	return c.Quit()
}

func (p *SMTPProvider) tlsConfig() *tls.Config {
	if p.dialer.TLSConfig != nil {
		return p.dialer.TLSConfig
	}
	return &tls.Config{ServerName: p.dialer.Host, MinVersion: tls.VersionTLS12}
}
