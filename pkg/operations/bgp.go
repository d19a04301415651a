package operations

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/erikjseidel/salt-netdb/pkg/column"
	"github.com/erikjseidel/salt-netdb/pkg/overlay"
	"github.com/erikjseidel/salt-netdb/pkg/result"
	"github.com/erikjseidel/salt-netdb/pkg/util"
	"github.com/erikjseidel/salt-netdb/pkg/vyos"
)

// BGPPeer is a managed neighbor with the address families it carries.
type BGPPeer struct {
	Address   string   `json:"address"`
	PeerGroup string   `json:"peer_group,omitempty"`
	Families  []string `json:"families"`

	// RouteMaps are the neighbor's own per-family route-maps, restored
	// when the peer is enabled.
	RouteMaps map[string]*column.BGPRouteMap `json:"route_maps,omitempty"`
}

func (m *Manager) bgp(ctx context.Context) (column.BGP, error) {
	c, err := m.netdb.Container(ctx, m.grains.ID, string(column.TypeBGP))
	if err != nil {
		return column.BGP{}, err
	}
	bc, ok := c.(*column.BGPContainer)
	if !ok {
		return column.BGP{}, fmt.Errorf("unexpected %s container for bgp column", c.ColumnType())
	}
	return bc.Column[m.grains.ID], nil
}

// peers resolves every neighbor's families through its peer group,
// falling back to the neighbor's own families.
func peers(b column.BGP) []BGPPeer {
	addrs := b.NeighborAddrs()
	out := make([]BGPPeer, 0, len(addrs))
	for _, addr := range addrs {
		n := b.Neighbors[addr]
		p := BGPPeer{Address: addr.String(), PeerGroup: n.PeerGroup}
		if pg, ok := b.PeerGroups[n.PeerGroup]; ok && pg.Family != nil {
			p.Families = pg.Family.Names()
		} else {
			p.Families = n.Family.Names()
		}
		if p.Families == nil {
			p.Families = []string{}
		}
		for _, fam := range n.Family.Names() {
			if opts := n.Family.Get(fam); opts.RouteMap != nil {
				if p.RouteMaps == nil {
					p.RouteMaps = make(map[string]*column.BGPRouteMap)
				}
				p.RouteMaps[fam] = opts.RouteMap
			}
		}
		out = append(out, p)
	}
	return out
}

func findPeer(list []BGPPeer, addr string) (BGPPeer, bool) {
	// Accept any spelling of the address netip understands.
	if a, err := netip.ParseAddr(addr); err == nil {
		addr = a.String()
	}
	for _, p := range list {
		if p.Address == addr {
			return p, true
		}
	}
	return BGPPeer{}, false
}

// GenerateBGP returns the router's bgp column.
func (m *Manager) GenerateBGP(ctx context.Context) *result.Return {
	b, err := m.bgp(ctx)
	if err != nil {
		return result.FromError(err)
	}
	return result.OK("", b)
}

// Peers returns the managed BGP peers.
func (m *Manager) Peers(ctx context.Context) ([]BGPPeer, error) {
	b, err := m.bgp(ctx)
	if err != nil {
		return nil, err
	}
	return peers(b), nil
}

// EnableBGPPeer removes the REJECT-ALL route-maps from a peer and restores
// its own route-maps.
func (m *Manager) EnableBGPPeer(ctx context.Context, peer string, opts Options) *result.Return {
	return m.run("bgp.enable", peer, opts, func() *result.Return {
		return m.toggleBGPPeer(ctx, peer, false, opts)
	})
}

// DisableBGPPeer sets REJECT-ALL import and export route-maps on every
// family of a peer.
func (m *Manager) DisableBGPPeer(ctx context.Context, peer string, opts Options) *result.Return {
	return m.run("bgp.disable", peer, opts, func() *result.Return {
		return m.toggleBGPPeer(ctx, peer, true, opts)
	})
}

func (m *Manager) toggleBGPPeer(ctx context.Context, peer string, disable bool, opts Options) *result.Return {
	op, verb := "bgp.enable", "enable"
	refusal := "BGP peer not marked as disabled in REDIS. Use force=true to commit anyway."
	if disable {
		op, verb = "bgp.disable", "disable"
		refusal = "BGP peer already marked as disabled in REDIS. Use force=true to commit anyway."
	}

	pc := NewPreconditionChecker(op, peer).RequireSelected("BGP peer")
	if err := pc.Result(); err != nil {
		return result.FromError(err)
	}
	list, err := m.Peers(ctx)
	if err != nil {
		return result.FromError(err)
	}
	p, found := findPeer(list, peer)
	if err := pc.RequireManaged(found, "BGP peer not found.").Result(); err != nil {
		return result.FromError(err)
	}

	vars := map[string]interface{}{
		"peer":       p.Address,
		"families":   p.Families,
		"route_maps": p.RouteMaps,
	}
	return m.apply(ctx, toggle{
		operation: op,
		key:       overlay.KeyBGP,
		entry:     p.Address,
		disable:   disable,
		refusal:   refusal,
		request: vyos.TemplateRequest{
			Name:          "bgp/" + verb,
			Vars:          vars,
			CommitComment: verb + " BGP peer " + p.Address,
		},
	}, opts)
}

// BGPSummary shows the router's BGP summary for family ("ipv4", "ipv6" or
// "both"), with the managed peers carrying that family in the comment.
func (m *Manager) BGPSummary(ctx context.Context, family string) *result.Return {
	cmd := "show bgp summary"
	switch family {
	case "", "both":
		family = "both"
	case util.FamilyIPv4:
		cmd = "show ip bgp summary"
	case util.FamilyIPv6:
		cmd = "show ipv6 bgp summary"
	default:
		return result.Fail("unsupported address family.")
	}

	ret := m.cli(ctx, cmd)
	if !ret.Result {
		return ret
	}
	list, err := m.Peers(ctx)
	if err != nil {
		ret.Comment = "netdb API is down"
		return ret
	}
	disabled, err := m.disabledEntries(ctx, overlay.KeyBGP)
	if err != nil {
		return result.FromError(err)
	}

	var names []string
	for _, p := range filterPeers(list, family) {
		line := fmt.Sprintf("%-30s %-20s", p.Address, p.PeerGroup)
		if util.Contains(disabled, p.Address) {
			line += "\t[disabled]"
		}
		names = append(names, line)
	}
	ret.Comment = managedList("salt managed peers", names, nil)
	return ret
}

func filterPeers(list []BGPPeer, family string) []BGPPeer {
	var out []BGPPeer
	for _, p := range list {
		if family == "both" || util.Contains(p.Families, family) {
			out = append(out, p)
		}
	}
	return out
}
