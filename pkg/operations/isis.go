package operations

import (
	"context"
	"fmt"

	"github.com/erikjseidel/salt-netdb/pkg/column"
	"github.com/erikjseidel/salt-netdb/pkg/overlay"
	"github.com/erikjseidel/salt-netdb/pkg/result"
	"github.com/erikjseidel/salt-netdb/pkg/util"
	"github.com/erikjseidel/salt-netdb/pkg/vyos"
)

// isis returns the router's IS-IS configuration from the protocol column,
// or nil when IS-IS is not configured.
func (m *Manager) isis(ctx context.Context) (*column.ISIS, error) {
	c, err := m.netdb.Container(ctx, m.grains.ID, string(column.TypeProtocol))
	if err != nil {
		return nil, err
	}
	pc, ok := c.(*column.ProtocolContainer)
	if !ok {
		return nil, fmt.Errorf("unexpected %s container for protocol column", c.ColumnType())
	}
	return pc.Column[m.grains.ID].ISIS, nil
}

// GenerateISIS returns the router's IS-IS configuration without the
// interfaces disabled in the overlay.
func (m *Manager) GenerateISIS(ctx context.Context) *result.Return {
	isis, err := m.isis(ctx)
	if err != nil {
		ret := result.FromError(err)
		ret.Error = true
		return ret
	}
	if isis == nil {
		return &result.Return{Result: false, Error: true, Comment: "IS-IS not configured on this router."}
	}
	disabled, err := m.disabledEntries(ctx, overlay.KeyISIS)
	if err != nil {
		return result.FromError(err)
	}

	out := *isis
	out.Interfaces = make([]column.ISISInterface, 0, len(isis.Interfaces))
	for _, iface := range isis.Interfaces {
		if !util.Contains(disabled, iface.Name) {
			out.Interfaces = append(out.Interfaces, iface)
		}
	}
	return result.OK("", out)
}

// EnableISISInterface adds an interface back to the IS-IS process.
func (m *Manager) EnableISISInterface(ctx context.Context, name string, opts Options) *result.Return {
	return m.run("isis.enable", name, opts, func() *result.Return {
		return m.toggleISISInterface(ctx, name, false, opts)
	})
}

// DisableISISInterface removes an interface from the IS-IS process.
// Passive interfaces cannot be disabled.
func (m *Manager) DisableISISInterface(ctx context.Context, name string, opts Options) *result.Return {
	return m.run("isis.disable", name, opts, func() *result.Return {
		return m.toggleISISInterface(ctx, name, true, opts)
	})
}

func (m *Manager) toggleISISInterface(ctx context.Context, name string, disable bool, opts Options) *result.Return {
	op, verb, action := "isis.enable", "enable", "set"
	refusal := "IS-IS interface not marked as disabled in REDIS. Use force=true to commit anyway."
	if disable {
		op, verb, action = "isis.disable", "disable", "delete"
		refusal = "IS-IS interface already marked as disabled in REDIS. Use force=true to commit anyway."
	}

	pc := NewPreconditionChecker(op, name).RequireSelected("interface")
	if err := pc.Result(); err != nil {
		return result.FromError(err)
	}
	isis, err := m.isis(ctx)
	if err != nil {
		return result.FromError(err)
	}
	iface, found := isis.Interface(name)
	pc.RequireManaged(found, "IS-IS interface not found.")
	if disable {
		pc.Check(!iface.Passive, "IS-IS passive interface cannot be disabled.", "")
	}
	if err := pc.Result(); err != nil {
		return result.FromError(err)
	}

	return m.apply(ctx, toggle{
		operation: op,
		key:       overlay.KeyISIS,
		entry:     name,
		disable:   disable,
		refusal:   refusal,
		request: vyos.TemplateRequest{
			Name:          op,
			Source:        action + " protocols isis interface {{ .interface }}",
			Vars:          map[string]interface{}{"interface": name},
			CommitComment: verb + " IS-IS on interface " + name,
		},
	}, opts)
}

// ISISOverload sets or removes the IS-IS overload bit. Force does not
// apply; the overlay does not track the bit.
func (m *Manager) ISISOverload(ctx context.Context, enable bool, opts Options) *result.Return {
	target := "off"
	if enable {
		target = "on"
	}
	return m.run("isis.overload", target, opts, func() *result.Return {
		if m.device == nil {
			return result.FromError(errNoDevice)
		}
		req := vyos.TemplateRequest{
			Name:          "isis.overload",
			Source:        "delete protocols isis set-overload-bit",
			CommitComment: "IS-IS overload bit removed",
			Test:          opts.Test,
			Debug:         opts.Debug,
		}
		if enable {
			req.Source = "set protocols isis set-overload-bit"
			req.CommitComment = "IS-IS overload bit set"
		}
		cr, err := m.device.LoadTemplate(ctx, req)
		if err != nil {
			return result.FromError(err)
		}
		return commitReturn(cr)
	})
}

// isisList renders the managed IS-IS interfaces for the display comments.
func (m *Manager) isisList(ctx context.Context) (string, error) {
	isis, err := m.isis(ctx)
	if err != nil {
		return "", err
	}
	disabled, err := m.disabledEntries(ctx, overlay.KeyISIS)
	if err != nil {
		return "", err
	}
	var names []string
	if isis != nil {
		for _, iface := range isis.Interfaces {
			line := iface.Name
			if iface.Passive {
				line += "\t[passive]"
			}
			if util.Contains(disabled, iface.Name) {
				line += "\t[disabled]"
			}
			names = append(names, line)
		}
	}
	return managedList("salt managed IS-IS interfaces", names, nil), nil
}

// ISISAdjacencies shows the router's IS-IS neighbors.
func (m *Manager) ISISAdjacencies(ctx context.Context) *result.Return {
	ret := m.cli(ctx, "show isis neighbor")
	if !ret.Result {
		return ret
	}
	list, err := m.isisList(ctx)
	if err != nil {
		ret.Comment = "netdb API is down"
		return ret
	}
	ret.Comment = list
	return ret
}

// ISISSummary shows the router's IS-IS summary.
func (m *Manager) ISISSummary(ctx context.Context) *result.Return {
	return m.cli(ctx, "show isis summary")
}

// ISISInterfaces shows the router's IS-IS interfaces.
func (m *Manager) ISISInterfaces(ctx context.Context) *result.Return {
	ret := m.cli(ctx, "show isis interface")
	if !ret.Result {
		return ret
	}
	list, err := m.isisList(ctx)
	if err != nil {
		ret.Comment = "netdb API is down"
		return ret
	}
	ret.Comment = list
	return ret
}
