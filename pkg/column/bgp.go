package column

import (
	"net/netip"
	"sort"

	"github.com/erikjseidel/salt-netdb/pkg/util"
)

// Peer types.
const (
	PeerIBGP = "ibgp"
	PeerEBGP = "ebgp"
)

// BGPOptions are the router-wide BGP settings.
type BGPOptions struct {
	Base
	ASN                int64      `json:"asn"`
	HoldTime           *int       `json:"hold_time,omitempty"`
	KeepaliveTime      *int       `json:"keepalive_time,omitempty"`
	LogNeighborChanges bool       `json:"log_neighbor_changes,omitempty"`
	RouterID           netip.Addr `json:"router_id"`
	ClusterID          netip.Addr `json:"cluster_id,omitzero"`
}

// BGPAddressFamilyElement lists originated networks and redistributed
// sources for one family.
type BGPAddressFamilyElement struct {
	Base
	Networks     []netip.Prefix `json:"networks,omitempty"`
	Redistribute []string       `json:"redistribute"`
}

// BGPAddressFamily holds the per-family origination settings.
type BGPAddressFamily struct {
	Base
	IPv4 *BGPAddressFamilyElement `json:"ipv4,omitempty"`
	IPv6 *BGPAddressFamilyElement `json:"ipv6,omitempty"`
}

// BGPRouteMap names the import and export route-maps of a peer family.
type BGPRouteMap struct {
	Base
	Import string `json:"import,omitempty"`
	Export string `json:"export,omitempty"`
}

// BGPFamilyOptions are per-family peer options.
type BGPFamilyOptions struct {
	Base
	NHS              *bool        `json:"nhs,omitempty"`
	MaxPrefixes      *int         `json:"max_prefixes,omitempty"`
	RouteReflector   *bool        `json:"route_reflector,omitempty"`
	DefaultOriginate *bool        `json:"default_originate,omitempty"`
	RouteMap         *BGPRouteMap `json:"route_map,omitempty"`
}

// BGPFamily holds the per-family options of a peer group or neighbor.
type BGPFamily struct {
	Base
	IPv4 *BGPFamilyOptions `json:"ipv4,omitempty"`
	IPv6 *BGPFamilyOptions `json:"ipv6,omitempty"`
}

// Names returns the configured family names in ipv4, ipv6 order.
func (f *BGPFamily) Names() []string {
	if f == nil {
		return nil
	}
	var names []string
	if f.IPv4 != nil {
		names = append(names, FamilyIPv4)
	}
	if f.IPv6 != nil {
		names = append(names, FamilyIPv6)
	}
	return names
}

// Get returns the options for a family name, or nil.
func (f *BGPFamily) Get(family string) *BGPFamilyOptions {
	if f == nil {
		return nil
	}
	switch family {
	case FamilyIPv4:
		return f.IPv4
	case FamilyIPv6:
		return f.IPv6
	}
	return nil
}

// BGPTimers overrides a neighbor's session timers.
type BGPTimers struct {
	Base
	Holdtime  int `json:"holdtime"`
	Keepalive int `json:"keepalive"`
}

// BGPPeerGroup holds settings shared by a group of neighbors.
type BGPPeerGroup struct {
	Base
	Type      string     `json:"type,omitempty"`
	Source    netip.Addr `json:"source,omitzero"`
	Family    *BGPFamily `json:"family,omitempty"`
	Multihop  *int       `json:"multihop,omitempty"`
	Password  string     `json:"password,omitempty"`
	RemoteASN *int64     `json:"remote_asn,omitempty"`
}

func (p *BGPPeerGroup) setDefaults() {
	if p.Type == "" {
		p.Type = PeerEBGP
	}
}

func (p *BGPPeerGroup) validate(v *util.ValidationBuilder, path string) {
	checkEnum(v, join(path, "type"), p.Type, PeerIBGP, PeerEBGP)
	checkOptRange(v, join(path, "multihop"), p.Multihop, 1, 255)
	if p.RemoteASN != nil {
		checkRange(v, join(path, "remote_asn"), *p.RemoteASN, 1, maxASN)
	}
	if p.Family != nil {
		for _, name := range p.Family.Names() {
			opts := p.Family.Get(name)
			if opts.MaxPrefixes != nil && *opts.MaxPrefixes < 1 {
				v.AddErrorf("%s: must be at least 1, got %d", join(path, "family", name, "max_prefixes"), *opts.MaxPrefixes)
			}
		}
	}
}

// BGPNeighbor extends a peer group with neighbor-only options.
type BGPNeighbor struct {
	BGPPeerGroup
	PeerGroup string     `json:"peer_group,omitempty"`
	Timers    *BGPTimers `json:"timers,omitempty"`
	RejectIn  *bool      `json:"reject_in,omitempty"`
	RejectOut *bool      `json:"reject_out,omitempty"`
}

func (n *BGPNeighbor) validate(v *util.ValidationBuilder, path string) {
	n.BGPPeerGroup.validate(v, path)
	if n.Timers != nil {
		checkRange(v, join(path, "timers", "holdtime"), int64(n.Timers.Holdtime), 15, 3000)
		checkRange(v, join(path, "timers", "keepalive"), int64(n.Timers.Keepalive), 5, 1000)
	}
}

// BGP is one set's BGP configuration.
type BGP struct {
	Base
	Options       *BGPOptions                `json:"options,omitempty"`
	AddressFamily *BGPAddressFamily          `json:"address_family,omitempty"`
	PeerGroups    map[string]BGPPeerGroup    `json:"peer_groups,omitempty"`
	Neighbors     map[netip.Addr]BGPNeighbor `json:"neighbors,omitempty"`
}

// NeighborAddrs returns the neighbor addresses in address order.
func (b *BGP) NeighborAddrs() []netip.Addr {
	addrs := make([]netip.Addr, 0, len(b.Neighbors))
	for a := range b.Neighbors {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Less(addrs[j]) })
	return addrs
}

func (b *BGP) setDefaults() {
	for name, pg := range b.PeerGroups {
		pg.setDefaults()
		b.PeerGroups[name] = pg
	}
	for addr, n := range b.Neighbors {
		n.setDefaults()
		b.Neighbors[addr] = n
	}
}

func (b *BGP) validate(v *util.ValidationBuilder, path string) {
	if o := b.Options; o != nil {
		p := join(path, "options")
		checkRange(v, join(p, "asn"), o.ASN, 1, maxASN)
		checkOptRange(v, join(p, "hold_time"), o.HoldTime, 15, 180)
		checkOptRange(v, join(p, "keepalive_time"), o.KeepaliveTime, 5, 60)
		checkIPv4(v, join(p, "router_id"), o.RouterID, true)
		checkIPv4(v, join(p, "cluster_id"), o.ClusterID, false)
	}
	if af := b.AddressFamily; af != nil {
		for i, el := range []*BGPAddressFamilyElement{af.IPv4, af.IPv6} {
			if el == nil {
				continue
			}
			p := join(path, "address_family", []string{FamilyIPv4, FamilyIPv6}[i])
			checkRequired(v, join(p, "redistribute"), el.Redistribute != nil)
			for _, n := range el.Networks {
				checkNetwork(v, join(p, "networks"), n)
			}
		}
	}
	for _, name := range sortedKeys(b.PeerGroups) {
		pg := b.PeerGroups[name]
		pg.validate(v, keyed(join(path, "peer_groups"), name))
	}
	for _, addr := range b.NeighborAddrs() {
		n := b.Neighbors[addr]
		n.validate(v, keyed(join(path, "neighbors"), addr.String()))
		if n.PeerGroup != "" && b.PeerGroups != nil {
			if _, ok := b.PeerGroups[n.PeerGroup]; !ok {
				v.AddErrorf("%s: unknown peer group %q", join(keyed(join(path, "neighbors"), addr.String()), "peer_group"), n.PeerGroup)
			}
		}
	}
}

// BGPContainer is the bgp column.
type BGPContainer struct {
	header
	Column map[string]BGP `json:"column"`
}

func (c *BGPContainer) ColumnType() Type     { return TypeBGP }
func (c *BGPContainer) Flat() bool           { return registry[TypeBGP].flat }
func (c *BGPContainer) Categories() []string { return registry[TypeBGP].Categories() }
func (c *BGPContainer) SetIDs() []string     { return sortedKeys(c.Column) }

func (c *BGPContainer) setDefaults() {
	for id, b := range c.Column {
		b.setDefaults()
		c.Column[id] = b
	}
}

// Validate checks every set in the container.
func (c *BGPContainer) Validate() error {
	v := &util.ValidationBuilder{}
	c.checkKind(v, TypeBGP)
	checkRequired(v, "column", c.Column != nil)
	for _, id := range c.SetIDs() {
		b := c.Column[id]
		b.validate(v, keyed("column", id))
	}
	return v.Build()
}
