package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"portfolio-backend/internal/domain"
	"portfolio-backend/pkg/email"
	"portfolio-backend/pkg/metrics"
	"portfolio-backend/pkg/security"
	"portfolio-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const defaultSendTimeout = 10 * time.Second

// ContactConfig is the fixed envelope for contact notifications.
type ContactConfig struct {
	FromEmail     string
	FromName      string
	ToEmail       string
	SubjectPrefix string
	SendTimeout   time.Duration
}

type contactUsecase struct {
	provider email.Provider
	cfg      ContactConfig
	validate *validator.Validate
	log      *slog.Logger
	security *security.SecurityLogger
}

// NewContactUsecase creates a new contact usecase
func NewContactUsecase(provider email.Provider, cfg ContactConfig, log *slog.Logger, sec *security.SecurityLogger) domain.ContactUsecase {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	return &contactUsecase{
		provider: provider,
		cfg:      cfg,
		validate: validation.New(),
		log:      log.With("component", "contact"),
		security: sec,
	}
}

// Dispatch validates the submission, renders the notification and sends it
// with a single provider call.
func (uc *contactUsecase) Dispatch(ctx context.Context, sub *domain.ContactSubmission) (result domain.DispatchResult) {
	defer func() {
		if r := recover(); r != nil {
			uc.log.ErrorContext(ctx, "Email sending error", "error", fmt.Sprint(r), "panic", true)
			metrics.ContactDispatches.WithLabelValues(metrics.OutcomeTransportError).Inc()
			result = domain.FailedResult()
		}
	}()

	if sub == nil {
		sub = &domain.ContactSubmission{}
	}

	if err := uc.validate.Struct(sub); err != nil {
		fields := validation.FailedFields(err)
		uc.log.InfoContext(ctx, "Contact submission rejected",
			"error", fmt.Errorf("%w: %v", domain.ErrValidation, err),
			"fields", fields,
			"details", validation.FormatValidationErrors(err),
		)
		uc.security.LogValidationFailed(ctx, sub.Email, fields)
		metrics.ContactDispatches.WithLabelValues(metrics.OutcomeValidation).Inc()
		return domain.InvalidResult()
	}

	// Field values are used as submitted; newlines in the message matter.
	data := email.ContactEmailData{
		SenderName:  sub.Name,
		SenderEmail: sub.Email,
		Subject:     sub.Subject,
		Message:     sub.Message,
	}
	uc.flagMarkup(ctx, data)

	body, err := email.RenderContactEmail(data)
	if err != nil {
		uc.log.ErrorContext(ctx, "Email rendering error", "error", err)
		metrics.ContactDispatches.WithLabelValues(metrics.OutcomeTransportError).Inc()
		return domain.FailedResult()
	}

	msg := email.Message{
		From:     uc.cfg.FromEmail,
		FromName: uc.cfg.FromName,
		To:       []string{uc.cfg.ToEmail},
		Subject:  uc.subject(data.Subject),
		HTML:     body,
	}
	if addr, err := mail.ParseAddress(strings.TrimSpace(data.SenderEmail)); err == nil {
		msg.ReplyTo = addr.Address
	}

	sendCtx, cancel := context.WithTimeout(ctx, uc.cfg.SendTimeout)
	defer cancel()

	start := time.Now()
	res, err := uc.provider.Send(sendCtx, msg)
	metrics.EmailProviderDuration.WithLabelValues(uc.provider.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		var perr *email.ProviderError
		outcome := metrics.OutcomeTransportError
		if errors.As(err, &perr) {
			outcome = metrics.OutcomeProviderError
		} else if errors.Is(sendCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: provider call timed out after %s: %v", email.ErrTransport, uc.cfg.SendTimeout, err)
		}
		uc.log.ErrorContext(ctx, "Email sending error",
			"error", err,
			"provider", uc.provider.Name(),
			"outcome", outcome,
		)
		uc.security.Log(ctx, security.SecurityEvent{
			Event:        security.EventDispatchFailed,
			SubjectType:  "email",
			SubjectValue: security.MaskEmail(data.SenderEmail),
			Details:      map[string]interface{}{"outcome": outcome, "provider": uc.provider.Name()},
		})
		metrics.ContactDispatches.WithLabelValues(outcome).Inc()
		return domain.FailedResult()
	}

	id := ""
	if res != nil {
		id = res.ID
	}
	uc.log.InfoContext(ctx, "Contact email sent", "provider", uc.provider.Name(), "id", id)
	metrics.ContactDispatches.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return domain.SentResult()
}

// subject builds "<prefix>: <subject>" on a single header line.
func (uc *contactUsecase) subject(userSubject string) string {
	userSubject = strings.NewReplacer("\r", " ", "\n", " ").Replace(userSubject)
	if uc.cfg.SubjectPrefix == "" {
		return userSubject
	}
	return uc.cfg.SubjectPrefix + ": " + userSubject
}

func (uc *contactUsecase) flagMarkup(ctx context.Context, data email.ContactEmailData) {
	var fields []string
	for _, f := range [...]struct{ name, value string }{
		{"name", data.SenderName},
		{"email", data.SenderEmail},
		{"subject", data.Subject},
		{"message", data.Message},
	} {
		if security.ContainsMarkup(f.value) {
			fields = append(fields, f.name)
		}
	}
	if len(fields) > 0 {
		uc.security.LogSuspiciousInput(ctx, data.SenderEmail, fields)
	}
}
