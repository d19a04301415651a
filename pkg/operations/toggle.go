package operations

import (
	"context"
	"time"

	"github.com/erikjseidel/salt-netdb/pkg/result"
	"github.com/erikjseidel/salt-netdb/pkg/util"
	"github.com/erikjseidel/salt-netdb/pkg/vyos"
)

// toggle describes one enable or disable of an overlay tracked entry.
type toggle struct {
	operation string
	key       string
	entry     string
	disable   bool

	// refusal is returned when the overlay mark already agrees with the
	// request and Force is not set.
	refusal string

	request vyos.TemplateRequest
}

// apply runs the shared enable/disable flow once the entry has passed its
// preconditions: consult the overlay, load the template, then update the
// overlay mark unless forced or testing.
func (m *Manager) apply(ctx context.Context, t toggle, opts Options) *result.Return {
	log := util.WithRouter(m.grains.ID).WithField("operation", t.operation).WithField("entry", t.entry)

	if m.overlay == nil {
		return result.FromError(errNoOverlay)
	}
	if m.device == nil {
		return result.FromError(errNoDevice)
	}

	marked, err := m.overlay.Contains(ctx, t.key, t.entry)
	if err != nil {
		log.WithError(err).Warn("Overlay unavailable, refusing change")
		return result.FromError(err)
	}
	if marked == t.disable && !opts.Force {
		return result.Fail(t.refusal)
	}

	req := t.request
	req.Test = opts.Test
	req.Debug = opts.Debug
	cr, err := m.device.LoadTemplate(ctx, req)
	if err != nil {
		return result.FromError(err)
	}
	ret := commitReturn(cr)
	log.WithField("test", opts.Test).Info(cr.Comment)

	// A forced change leaves the mark as it was.
	if opts.Force || opts.Test {
		return ret
	}
	if t.disable {
		_, err = m.overlay.Add(ctx, t.key, t.entry)
	} else {
		_, err = m.overlay.Remove(ctx, t.key, t.entry)
	}
	if err != nil {
		log.WithError(err).Error("Router changed but overlay update failed")
		ret.Error = true
		ret.Comment += " Overlay update failed: " + err.Error()
	}
	return ret
}

// run wraps fn with an audit record.
func (m *Manager) run(operation, target string, opts Options, fn func() *result.Return) *result.Return {
	start := time.Now()
	ret := fn()
	m.record(operation, target, opts, ret, start)
	return ret
}
