// Package audit records every operation that changes a router or netdb.
package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/erikjseidel/salt-netdb/pkg/result"
)

// Event is one audited operation.
type Event struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	User      string        `json:"user"`
	Router    string        `json:"router"`
	Operation string        `json:"operation"`
	Target    string        `json:"target,omitempty"`
	Test      bool          `json:"test"`
	Force     bool          `json:"force,omitempty"`
	Permanent bool          `json:"permanent,omitempty"`
	Success   bool          `json:"success"`
	Comment   string        `json:"comment,omitempty"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Filter defines criteria for querying audit events
type Filter struct {
	Router      string
	User        string
	Operation   string
	Target      string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int
	Offset      int
}

// NewEvent creates a new audit event
func NewEvent(user, router, operation, target string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		User:      user,
		Router:    router,
		Operation: operation,
		Target:    target,
	}
}

// WithOptions records the run mode.
func (e *Event) WithOptions(test, force, permanent bool) *Event {
	e.Test = test
	e.Force = force
	e.Permanent = permanent
	return e
}

// WithResult copies the outcome from an operation envelope.
func (e *Event) WithResult(r *result.Return) *Event {
	if r == nil {
		return e
	}
	e.Success = r.Result
	e.Comment = r.Comment
	if r.Error {
		e.Error = r.Comment
	}
	return e
}

// WithError marks the event as failed
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets the operation duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}
