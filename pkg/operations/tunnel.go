package operations

import (
	"context"
	"strings"

	"github.com/erikjseidel/salt-netdb/pkg/column"
	"github.com/erikjseidel/salt-netdb/pkg/overlay"
	"github.com/erikjseidel/salt-netdb/pkg/result"
	"github.com/erikjseidel/salt-netdb/pkg/util"
	"github.com/erikjseidel/salt-netdb/pkg/vyos"
)

// Tunnel is a tunnel interface as the router applies it. KeyVyOS is the
// GRE key as an integer; VyOS does not accept dotted keys.
type Tunnel struct {
	column.Interface
	Disabled bool    `json:"disabled"`
	KeyVyOS  *uint32 `json:"key_vyos,omitempty"`
}

func (m *Manager) tunnels(ctx context.Context) (map[string]column.Interface, error) {
	all, err := m.interfaces(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]column.Interface)
	for name, iface := range all {
		if strings.HasPrefix(name, "tun") {
			out[name] = iface
		}
	}
	return out, nil
}

// GenerateTunnels returns the router's tunnels. A tunnel is disabled when
// netdb disables it or it is marked in the overlay.
func (m *Manager) GenerateTunnels(ctx context.Context) *result.Return {
	tunnels, err := m.tunnels(ctx)
	if err != nil {
		return result.FromError(err)
	}
	disabled, err := m.disabledEntries(ctx, overlay.KeyTunnel)
	if err != nil {
		return result.FromError(err)
	}

	out := make(map[string]Tunnel, len(tunnels))
	for name, iface := range tunnels {
		t := Tunnel{Interface: iface, Disabled: iface.Disabled || util.Contains(disabled, name)}
		if iface.Key.IsValid() {
			key, err := util.IP2Long(iface.Key.String())
			if err != nil {
				return result.Fail(name + ": " + err.Error())
			}
			t.KeyVyOS = &key
		}
		out[name] = t
	}
	return result.OK("", out)
}

// EnableTunnel removes the disable statement from a tunnel.
func (m *Manager) EnableTunnel(ctx context.Context, name string, opts Options) *result.Return {
	return m.run("tunnel.enable", name, opts, func() *result.Return {
		return m.toggleTunnel(ctx, name, false, opts)
	})
}

// DisableTunnel sets the disable statement on a tunnel.
func (m *Manager) DisableTunnel(ctx context.Context, name string, opts Options) *result.Return {
	return m.run("tunnel.disable", name, opts, func() *result.Return {
		return m.toggleTunnel(ctx, name, true, opts)
	})
}

func (m *Manager) toggleTunnel(ctx context.Context, name string, disable bool, opts Options) *result.Return {
	op, verb, action := "tunnel.enable", "enable", "delete"
	refusal := "Tunnel not marked as disabled in REDIS. Use force=true to commit anyway."
	if disable {
		op, verb, action = "tunnel.disable", "disable", "set"
		refusal = "Tunnel is already marked disabled in REDIS. Use force=true to commit anyway."
	}

	pc := NewPreconditionChecker(op, name).RequireSelected("tunnel")
	if err := pc.Result(); err != nil {
		return result.FromError(err)
	}
	tunnels, err := m.tunnels(ctx)
	if err != nil {
		return result.FromError(err)
	}
	_, found := tunnels[name]
	if err := pc.RequireManaged(found, "Tunnel not found on this router.").Result(); err != nil {
		return result.FromError(err)
	}

	return m.apply(ctx, toggle{
		operation: op,
		key:       overlay.KeyTunnel,
		entry:     name,
		disable:   disable,
		refusal:   refusal,
		request: vyos.TemplateRequest{
			Name:          op,
			Source:        action + " interfaces tunnel {{ .tunnel }} disable",
			Vars:          map[string]interface{}{"tunnel": name},
			CommitComment: verb + " tunnel " + name,
		},
	}, opts)
}

// DisplayTunnels shows the router's tunnels, with the managed tunnels
// listed in the comment.
func (m *Manager) DisplayTunnels(ctx context.Context) *result.Return {
	ret := m.cli(ctx, "show interfaces tunnel")
	if !ret.Result {
		return ret
	}
	tunnels, err := m.tunnels(ctx)
	if err != nil {
		ret.Comment = "netdb API is down"
		return ret
	}
	disabled, err := m.disabledEntries(ctx, overlay.KeyTunnel)
	if err != nil {
		return result.FromError(err)
	}
	ret.Comment = managedList("salt managed tunnels", sortedNames(tunnels), disabled)
	return ret
}
