// Package result defines the response envelope every netdb, overlay and
// router operation answers with.
package result

import (
	"errors"

	"github.com/erikjseidel/salt-netdb/pkg/util"
)

// Return is the {result, comment, error, out} envelope. Result false
// signals any failure; Error is set only when a backend failed.
type Return struct {
	Result  bool        `json:"result"`
	Comment string      `json:"comment,omitempty"`
	Error   bool        `json:"error,omitempty"`
	Out     interface{} `json:"out,omitempty"`

	// Netdb carries netdb's answer when an operation also wrote to netdb.
	Netdb *Return `json:"netdb,omitempty"`

	// Notice is an advisory shown next to the output.
	Notice string `json:"notice,omitempty"`
}

// OK returns a successful envelope.
func OK(comment string, out interface{}) *Return {
	return &Return{Result: true, Comment: comment, Out: out}
}

// Fail returns a failed envelope that is not a backend error.
func Fail(comment string) *Return {
	return &Return{Result: false, Comment: comment}
}

// FromError maps the error taxonomy onto the envelope: validation and
// not-found errors fail with a comment, backend errors additionally set
// Error. A nil err yields a bare successful envelope.
func FromError(err error) *Return {
	if err == nil {
		return &Return{Result: true}
	}

	var pe *util.PreconditionError
	if errors.As(err, &pe) {
		return Fail(pe.Precondition)
	}

	var ce *util.ColumnNotFoundError
	if errors.As(err, &ce) {
		return Fail(ce.Error())
	}

	switch {
	case errors.Is(err, util.ErrValidationFailed),
		errors.Is(err, util.ErrUnknownColumnType),
		errors.Is(err, util.ErrInvalidCategory),
		errors.Is(err, util.ErrNotFound),
		errors.Is(err, util.ErrAlreadyExists),
		errors.Is(err, util.ErrUnsupported):
		return Fail(err.Error())
	}

	return &Return{Result: false, Error: true, Comment: err.Error()}
}

// IsBackendError reports whether r records a backend failure.
func (r *Return) IsBackendError() bool {
	return r != nil && r.Error
}
