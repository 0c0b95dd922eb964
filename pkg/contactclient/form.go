package contactclient

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrSubmissionPending is returned by Submit while an earlier call on the
// same form has not finished.
var ErrSubmissionPending = errors.New("contactclient: submission already pending")

// State tracks a single submission: Idle, then Pending, then Succeeded or
// Failed. Every Submit starts over from Pending.
type State int

const (
	StateIdle State = iota
	StatePending
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Form holds the four inputs. Set the fields before calling Submit.
type Form struct {
	Name    string
	Email   string
	Subject string
	Message string

	client  *Client
	pending atomic.Bool

	mu     sync.Mutex
	state  State
	result *Result
}

func NewForm(client *Client) *Form {
	return &Form{client: client}
}

// Submit sends the current field values exactly once. A concurrent call
// returns ErrSubmissionPending without touching the network.
func (f *Form) Submit(ctx context.Context) (Result, error) {
	if !f.pending.CompareAndSwap(false, true) {
		return Result{}, ErrSubmissionPending
	}
	defer f.pending.Store(false)

	f.mu.Lock()
	f.state = StatePending
	sub := Submission{
		Name:    f.Name,
		Email:   f.Email,
		Subject: f.Subject,
		Message: f.Message,
	}
	f.mu.Unlock()

	res, err := f.client.Send(ctx, sub)

	f.mu.Lock()
	f.result = &res
	if res.Success {
		f.state = StateSucceeded
	} else {
		f.state = StateFailed
	}
	f.mu.Unlock()

	return res, err
}

// Pending reports whether a submission is in flight.
func (f *Form) Pending() bool {
	return f.pending.Load()
}

// Result returns the outcome of the most recent finished submission. The
// previous outcome stays visible while a new one is pending.
func (f *Form) Result() (Result, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.result == nil {
		return Result{}, false
	}
	return *f.result, true
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}
