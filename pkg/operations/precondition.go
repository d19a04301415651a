package operations

import (
	"fmt"

	"github.com/erikjseidel/salt-netdb/pkg/util"
)

// PreconditionChecker collects the checks an operation runs before it
// touches the router. Checks are evaluated in order and the first failure
// is the one reported.
type PreconditionChecker struct {
	operation string
	resource  string
	errors    []error
}

// NewPreconditionChecker creates a new precondition checker
func NewPreconditionChecker(operation, resource string) *PreconditionChecker {
	return &PreconditionChecker{
		operation: operation,
		resource:  resource,
	}
}

// RequireSelected checks that a resource name was given. what names the
// resource in the refusal, as in "No interface selected.".
func (p *PreconditionChecker) RequireSelected(what string) *PreconditionChecker {
	return p.Check(p.resource != "", fmt.Sprintf("No %s selected.", what), "")
}

// RequireManaged checks that the resource exists in netdb.
func (p *PreconditionChecker) RequireManaged(found bool, comment string) *PreconditionChecker {
	return p.Check(found, comment, fmt.Sprintf("%s is not in netdb", p.resource))
}

// Check runs a custom check
func (p *PreconditionChecker) Check(condition bool, precondition, details string) *PreconditionChecker {
	if !condition && len(p.errors) == 0 {
		p.errors = append(p.errors, util.NewPreconditionError(
			p.operation, p.resource, precondition, details))
	}
	return p
}

// Result returns the first failed check or nil.
func (p *PreconditionChecker) Result() error {
	if len(p.errors) == 0 {
		return nil
	}
	return p.errors[0]
}

// HasErrors returns true if there are any errors
func (p *PreconditionChecker) HasErrors() bool {
	return len(p.errors) > 0
}
