package operations

import (
	"context"
	"fmt"
	"strings"

	"github.com/erikjseidel/salt-netdb/pkg/column"
	"github.com/erikjseidel/salt-netdb/pkg/result"
)

func (m *Manager) loopbacks(ctx context.Context) (map[string]column.Interface, error) {
	all, err := m.interfaces(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]column.Interface)
	for name, iface := range all {
		if strings.HasPrefix(name, "dum") {
			out[name] = iface
		}
	}
	return out, nil
}

// GenerateLoopbacks returns the router's dummy interfaces.
func (m *Manager) GenerateLoopbacks(ctx context.Context) *result.Return {
	lo, err := m.loopbacks(ctx)
	if err != nil {
		return result.FromError(err)
	}
	return result.OK("", lo)
}

// DisplayLoopbacks shows the router's dummy interfaces.
func (m *Manager) DisplayLoopbacks(ctx context.Context) *result.Return {
	ret := m.cli(ctx, "show interfaces dummy")
	if !ret.Result {
		return ret
	}
	lo, err := m.loopbacks(ctx)
	if err != nil {
		ret.Comment = "netdb API is down"
		return ret
	}
	ret.Comment = managedList("salt managed loopback (dummy) interfaces", sortedNames(lo), nil)
	return ret
}

// GenerateFirewall returns the router's firewall column.
func (m *Manager) GenerateFirewall(ctx context.Context) *result.Return {
	c, err := m.netdb.Container(ctx, m.grains.ID, string(column.TypeFirewall))
	if err != nil {
		return result.FromError(err)
	}
	fc, ok := c.(*column.FirewallContainer)
	if !ok {
		return result.FromError(fmt.Errorf("unexpected %s container for firewall column", c.ColumnType()))
	}
	return result.OK("", fc.Column[m.grains.ID])
}

// GeneratePolicy returns the router's policy column.
func (m *Manager) GeneratePolicy(ctx context.Context) *result.Return {
	c, err := m.netdb.Container(ctx, m.grains.ID, string(column.TypePolicy))
	if err != nil {
		return result.FromError(err)
	}
	pc, ok := c.(*column.PolicyContainer)
	if !ok {
		return result.FromError(fmt.Errorf("unexpected %s container for policy column", c.ColumnType()))
	}
	return result.OK("", pc.Column[m.grains.ID])
}
