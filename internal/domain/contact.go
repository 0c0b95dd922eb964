package domain

import (
	"context"
	"errors"
)

// Fixed user-facing dispatch messages.
const (
	MessageFillAllFields = "Please fill in all fields."
	MessageSendFailed    = "Failed to send message. Please try again."
	MessageSent          = "Message sent successfully! I'll get back to you soon."
)

// ErrValidation marks a submission with one or more empty fields.
var ErrValidation = errors.New("contact submission is incomplete")

// ContactSubmission is a contact form field-set. Keys absent from the
// request decode to empty strings.
type ContactSubmission struct {
	Name    string `json:"name" form:"name" validate:"required"`
	Email   string `json:"email" form:"email" validate:"required"`
	Subject string `json:"subject" form:"subject" validate:"required"`
	Message string `json:"message" form:"message" validate:"required"`
}

// DispatchOutcome classifies a finished attempt for transport-level
// mapping; it is not part of the JSON result.
type DispatchOutcome int

const (
	OutcomeSucceeded DispatchOutcome = iota
	OutcomeInvalid
	OutcomeFailed
)

// DispatchResult is returned for every dispatch attempt.
type DispatchResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Outcome DispatchOutcome `json:"-"`
}

func InvalidResult() DispatchResult {
	return DispatchResult{Success: false, Message: MessageFillAllFields, Outcome: OutcomeInvalid}
}

func FailedResult() DispatchResult {
	return DispatchResult{Success: false, Message: MessageSendFailed, Outcome: OutcomeFailed}
}

func SentResult() DispatchResult {
	return DispatchResult{Success: true, Message: MessageSent, Outcome: OutcomeSucceeded}
}

// ContactUsecase validates a submission and sends the notification email.
// Dispatch never returns an error; every failure is folded into the result.
type ContactUsecase interface {
	Dispatch(ctx context.Context, sub *ContactSubmission) DispatchResult
}
