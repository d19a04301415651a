// Package operations implements the per-router management functions:
// generating the router's view of its netdb columns, enabling and disabling
// interfaces, tunnels, BGP peers and IS-IS interfaces, and wrapping the
// router's operational commands.
//
// Every operation answers with a result.Return. Refusals (a precondition
// not met, a mark that already agrees) come back with Result false and a
// comment; backend failures additionally set Error.
package operations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erikjseidel/salt-netdb/pkg/audit"
	"github.com/erikjseidel/salt-netdb/pkg/column"
	"github.com/erikjseidel/salt-netdb/pkg/grains"
	"github.com/erikjseidel/salt-netdb/pkg/netdb"
	"github.com/erikjseidel/salt-netdb/pkg/overlay"
	"github.com/erikjseidel/salt-netdb/pkg/result"
	"github.com/erikjseidel/salt-netdb/pkg/util"
	"github.com/erikjseidel/salt-netdb/pkg/vyos"
)

const commentUnsupportedOS = "unsupported operating system."

var (
	errNoDevice  = errors.New("no router connection configured")
	errNoOverlay = errors.New("no overlay store configured")
)

// Options control how a router change is applied.
type Options struct {
	// Test loads and compares the change, then discards it. The overlay
	// and netdb are not written.
	Test bool

	// Debug returns the rendered configuration lines.
	Debug bool

	// Force applies the change even when the overlay mark already agrees.
	// The overlay is not updated.
	Force bool

	// Permanent also writes the disabled flag to netdb.
	Permanent bool
}

// Netdb is the part of the netdb client operations use.
type Netdb interface {
	ListColumns(ctx context.Context) (*netdb.Response, error)
	GetColumn(ctx context.Context, setID, columnType string) (json.RawMessage, error)
	Container(ctx context.Context, setID, columnType string) (column.Container, error)
	SetInterfaceDisabled(ctx context.Context, setID, iface string, disabled, test bool) (*netdb.Response, error)
}

// Config holds the collaborators of a Manager.
type Config struct {
	Netdb   Netdb
	Overlay *overlay.Overlay
	Device  vyos.Executor
	Grains  *grains.Grains

	// User is recorded in audit events.
	User string

	// Audit receives one event per router change. When nil the process
	// default logger is used.
	Audit audit.Logger
}

// Manager runs operations against one router.
type Manager struct {
	netdb   Netdb
	overlay *overlay.Overlay
	device  vyos.Executor
	grains  *grains.Grains
	user    string
	audit   audit.Logger
}

// New returns a Manager. Netdb and Grains are required; Overlay and Device
// are only needed by the operations that use them.
func New(cfg Config) (*Manager, error) {
	v := &util.ValidationBuilder{}
	v.Add(cfg.Netdb != nil, "netdb: required")
	v.Add(cfg.Grains != nil, "grains: required")
	if err := v.Build(); err != nil {
		return nil, err
	}
	return &Manager{
		netdb:   cfg.Netdb,
		overlay: cfg.Overlay,
		device:  cfg.Device,
		grains:  cfg.Grains,
		user:    cfg.User,
		audit:   cfg.Audit,
	}, nil
}

// Router returns the id of the router the manager works on.
func (m *Manager) Router() string { return m.grains.ID }

// Grains returns the router facts.
func (m *Manager) Grains() *grains.Grains { return m.grains }

func (m *Manager) interfaces(ctx context.Context) (map[string]column.Interface, error) {
	c, err := m.netdb.Container(ctx, m.grains.ID, string(column.TypeInterface))
	if err != nil {
		return nil, err
	}
	ic, ok := c.(*column.InterfaceContainer)
	if !ok {
		return nil, fmt.Errorf("unexpected %s container for interface column", c.ColumnType())
	}
	ifaces := ic.Column[m.grains.ID]
	if ifaces == nil {
		ifaces = map[string]column.Interface{}
	}
	return ifaces, nil
}

// disabledEntries returns the router's overlay list under key. A missing
// overlay store yields an empty list.
func (m *Manager) disabledEntries(ctx context.Context, key string) ([]string, error) {
	if m.overlay == nil {
		return []string{}, nil
	}
	entries, _, err := m.overlay.Entries(ctx, key)
	return entries, err
}

// cli runs operational commands. Only VyOS routers are supported.
func (m *Manager) cli(ctx context.Context, cmds ...string) *result.Return {
	if !m.grains.IsVyOS() {
		return result.Fail(commentUnsupportedOS)
	}
	if m.device == nil {
		return result.FromError(errNoDevice)
	}
	out, err := m.device.CLI(ctx, cmds...)
	if err != nil {
		return result.FromError(err)
	}
	return result.OK("", out)
}

// commitReturn converts a template load into the response envelope.
func commitReturn(cr *vyos.CommitResult) *result.Return {
	out := map[string]interface{}{
		"already_configured": cr.AlreadyConfigured,
		"diff":               cr.Diff,
	}
	if cr.LoadedConfig != "" {
		out["loaded_config"] = cr.LoadedConfig
	}
	return &result.Return{Result: cr.Result, Comment: cr.Comment, Out: out}
}

// record writes one audit event. Audit failures are logged, never returned.
func (m *Manager) record(operation, target string, opts Options, ret *result.Return, start time.Time) {
	event := audit.NewEvent(m.user, m.grains.ID, operation, target).
		WithOptions(opts.Test, opts.Force, opts.Permanent).
		WithResult(ret).
		WithDuration(time.Since(start))

	var err error
	if m.audit != nil {
		err = m.audit.Log(event)
	} else {
		err = audit.Log(event)
	}
	if err != nil {
		util.WithOperation(operation).Warnf("audit: %v", err)
	}
}
