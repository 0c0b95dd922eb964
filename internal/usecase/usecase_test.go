package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/usecase"
	"portfolio-backend/pkg/email"
	"portfolio-backend/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Send(ctx context.Context, msg email.Message) (*email.SendResult, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*email.SendResult), args.Error(1)
}

func (m *MockProvider) Name() string { return "mock" }

// blockingProvider waits for the context to end.
type blockingProvider struct{}

func (blockingProvider) Send(ctx context.Context, _ email.Message) (*email.SendResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingProvider) Name() string { return "blocking" }

type panickingProvider struct{}

func (panickingProvider) Send(context.Context, email.Message) (*email.SendResult, error) {
	panic("provider exploded")
}

func (panickingProvider) Name() string { return "panicking" }

var testContactConfig = usecase.ContactConfig{
	FromEmail:     "onboarding@resend.dev",
	FromName:      "Portfolio Contact",
	ToEmail:       "me@example.com",
	SubjectPrefix: "Portfolio Contact",
	SendTimeout:   time.Second,
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newContactUC(p email.Provider) domain.ContactUsecase {
	return usecase.NewContactUsecase(p, testContactConfig, discardLogger(), nil)
}

func validSubmission() *domain.ContactSubmission {
	return &domain.ContactSubmission{Name: "Ada", Email: "ada@x.com", Subject: "Hi", Message: "Hello\nWorld"}
}

func TestDispatchValidationGate(t *testing.T) {
	cases := map[string]func(s *domain.ContactSubmission){
		"empty name":    func(s *domain.ContactSubmission) { s.Name = "" },
		"empty email":   func(s *domain.ContactSubmission) { s.Email = "" },
		"empty subject": func(s *domain.ContactSubmission) { s.Subject = "" },
		"empty message": func(s *domain.ContactSubmission) { s.Message = "" },
		"all empty":     func(s *domain.ContactSubmission) { *s = domain.ContactSubmission{} },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			provider := new(MockProvider)
			uc := newContactUC(provider)

			sub := validSubmission()
			mutate(sub)
			before := testutil.ToFloat64(metrics.ContactDispatches.WithLabelValues(metrics.OutcomeValidation))

			result := uc.Dispatch(context.Background(), sub)

			assert.False(t, result.Success)
			assert.Equal(t, "Please fill in all fields.", result.Message)
			assert.Equal(t, domain.OutcomeInvalid, result.Outcome)
			provider.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
			assert.Equal(t, before+1, testutil.ToFloat64(metrics.ContactDispatches.WithLabelValues(metrics.OutcomeValidation)))
		})
	}

	t.Run("nil submission", func(t *testing.T) {
		provider := new(MockProvider)
		result := newContactUC(provider).Dispatch(context.Background(), nil)
		assert.Equal(t, domain.InvalidResult(), result)
		provider.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})
}

func TestDispatchWhitespaceFieldsAreSent(t *testing.T) {
	cases := map[string]func(s *domain.ContactSubmission){
		"space name":         func(s *domain.ContactSubmission) { s.Name = " " },
		"tab email":          func(s *domain.ContactSubmission) { s.Email = "\t" },
		"space subject":      func(s *domain.ContactSubmission) { s.Subject = "  " },
		"whitespace message": func(s *domain.ContactSubmission) { s.Message = " \n\t " },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			provider := new(MockProvider)
			provider.On("Send", mock.Anything, mock.Anything).Return(&email.SendResult{ID: "msg_ws"}, nil).Once()

			sub := validSubmission()
			mutate(sub)

			result := newContactUC(provider).Dispatch(context.Background(), sub)

			assert.True(t, result.Success)
			assert.Equal(t, domain.OutcomeSucceeded, result.Outcome)
			provider.AssertNumberOfCalls(t, "Send", 1)
		})
	}
}

func TestDispatchKeepsMessageNewlines(t *testing.T) {
	provider := new(MockProvider)
	var sent email.Message
	provider.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(email.Message) }).
		Return(&email.SendResult{}, nil)

	sub := validSubmission()
	sub.Message = "\n\nHello\n\n"

	result := newContactUC(provider).Dispatch(context.Background(), sub)
	require.True(t, result.Success)
	assert.Contains(t, sent.HTML, "<br><br>Hello<br><br>")
}

func TestDispatchSuccess(t *testing.T) {
	provider := new(MockProvider)
	var sent email.Message
	provider.On("Send", mock.Anything, mock.AnythingOfType("email.Message")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(email.Message) }).
		Return(&email.SendResult{ID: "msg_1"}, nil).
		Once()

	result := newContactUC(provider).Dispatch(context.Background(), validSubmission())

	assert.Equal(t, domain.DispatchResult{
		Success: true,
		Message: "Message sent successfully! I'll get back to you soon.",
		Outcome: domain.OutcomeSucceeded,
	}, result)
	provider.AssertNumberOfCalls(t, "Send", 1)

	assert.Equal(t, "onboarding@resend.dev", sent.From)
	assert.Equal(t, "Portfolio Contact", sent.FromName)
	assert.Equal(t, []string{"me@example.com"}, sent.To)
	assert.Equal(t, "Portfolio Contact: Hi", sent.Subject)
	assert.Equal(t, "ada@x.com", sent.ReplyTo)
	assert.Contains(t, sent.HTML, "Hello<br>World")
}

func TestDispatchEscapesMarkup(t *testing.T) {
	provider := new(MockProvider)
	var sent email.Message
	provider.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(email.Message) }).
		Return(&email.SendResult{ID: "msg_2"}, nil)

	sub := validSubmission()
	sub.Name = "<script>alert(1)</script>"
	sub.Subject = "Hi\r\nBcc: victim@example.com"

	result := newContactUC(provider).Dispatch(context.Background(), sub)
	require.True(t, result.Success)

	assert.NotContains(t, sent.HTML, "<script>")
	assert.NotContains(t, sent.Subject, "\n")
	assert.NotContains(t, sent.Subject, "\r")
}

func TestDispatchReplyToOnlyForParsableAddress(t *testing.T) {
	provider := new(MockProvider)
	var sent email.Message
	provider.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(email.Message) }).
		Return(&email.SendResult{}, nil)

	sub := validSubmission()
	sub.Email = "not an address"

	result := newContactUC(provider).Dispatch(context.Background(), sub)
	assert.True(t, result.Success)
	assert.Empty(t, sent.ReplyTo)
	assert.Contains(t, sent.HTML, "not an address")
}

func TestDispatchProviderErrorObject(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Send", mock.Anything, mock.Anything).
		Return(nil, &email.ProviderError{StatusCode: 403, Name: "invalid_api_key", Message: "API key is invalid"}).
		Once()
	before := testutil.ToFloat64(metrics.ContactDispatches.WithLabelValues(metrics.OutcomeProviderError))

	result := newContactUC(provider).Dispatch(context.Background(), validSubmission())

	assert.False(t, result.Success)
	assert.Equal(t, "Failed to send message. Please try again.", result.Message)
	assert.NotContains(t, result.Message, "API key")
	provider.AssertNumberOfCalls(t, "Send", 1)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ContactDispatches.WithLabelValues(metrics.OutcomeProviderError)))
}

func TestDispatchTransportError(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Send", mock.Anything, mock.Anything).
		Return(nil, errors.New("dial tcp: connection refused")).
		Once()

	result := newContactUC(provider).Dispatch(context.Background(), validSubmission())

	assert.Equal(t, domain.FailedResult(), result)
	assert.Equal(t, "Failed to send message. Please try again.", result.Message)
}

func TestDispatchProviderAndTransportFailuresLookAlike(t *testing.T) {
	providerErr := new(MockProvider)
	providerErr.On("Send", mock.Anything, mock.Anything).Return(nil, &email.ProviderError{StatusCode: 422})
	transportErr := new(MockProvider)
	transportErr.On("Send", mock.Anything, mock.Anything).Return(nil, email.ErrTransport)

	a := newContactUC(providerErr).Dispatch(context.Background(), validSubmission())
	b := newContactUC(transportErr).Dispatch(context.Background(), validSubmission())
	assert.Equal(t, a, b)
}

func TestDispatchTimeout(t *testing.T) {
	cfg := testContactConfig
	cfg.SendTimeout = 20 * time.Millisecond
	uc := usecase.NewContactUsecase(blockingProvider{}, cfg, discardLogger(), nil)

	start := time.Now()
	result := uc.Dispatch(context.Background(), validSubmission())

	assert.Equal(t, domain.FailedResult(), result)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestDispatchRecoversFromProviderPanic(t *testing.T) {
	uc := usecase.NewContactUsecase(panickingProvider{}, testContactConfig, discardLogger(), nil)

	var result domain.DispatchResult
	require.NotPanics(t, func() {
		result = uc.Dispatch(context.Background(), validSubmission())
	})
	assert.Equal(t, domain.FailedResult(), result)
}

func TestDispatchSubjectWithoutPrefix(t *testing.T) {
	provider := new(MockProvider)
	var sent email.Message
	provider.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(email.Message) }).
		Return(&email.SendResult{}, nil)

	cfg := testContactConfig
	cfg.SubjectPrefix = ""
	usecase.NewContactUsecase(provider, cfg, discardLogger(), nil).Dispatch(context.Background(), validSubmission())

	assert.Equal(t, "Hi", sent.Subject)
}

func TestHealthCheck(t *testing.T) {
	ok := usecase.NewHealthUsecase("resend", true, nil).Check(context.Background())
	assert.Equal(t, "ok", ok["status"])
	assert.Equal(t, "resend", ok["email_provider"])
	assert.Equal(t, "disabled", ok["redis"])

	degraded := usecase.NewHealthUsecase("resend", false, nil).Check(context.Background())
	assert.Equal(t, "degraded", degraded["status"])
	assert.Equal(t, "not_configured", degraded["email"])
}
