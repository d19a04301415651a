package column

import (
	"net/netip"

	"github.com/erikjseidel/salt-netdb/pkg/util"
)

// DefaultLSPMTU is the IS-IS LSP MTU used when none is configured.
const DefaultLSPMTU = 1471

// DHCPRange is an IPv4 address pool.
type DHCPRange struct {
	Base
	StartAddress netip.Addr `json:"start_address"`
	EndAddress   netip.Addr `json:"end_address"`
}

// DHCPNetwork is a served IPv4 subnet.
type DHCPNetwork struct {
	Base
	RouterIP netip.Addr   `json:"router_ip"`
	Network  netip.Prefix `json:"network"`
	Ranges   []DHCPRange  `json:"ranges"`
}

// DHCPServer lists the served subnets.
type DHCPServer struct {
	Base
	Networks []DHCPNetwork `json:"networks"`
}

// Services holds the protocol column's services category.
type Services struct {
	Base
	DHCPServer *DHCPServer `json:"dhcp_server,omitempty"`
}

// LLDP lists the interfaces LLDP runs on.
type LLDP struct {
	Base
	Interfaces []string `json:"interfaces,omitempty"`
}

// ISISInterface is an IS-IS enabled interface.
type ISISInterface struct {
	Base
	Name    string `json:"name"`
	Passive bool   `json:"passive"`
}

// ISISRedistributeMap names the route-maps used for redistribution.
type ISISRedistributeMap struct {
	Base
	ConnectedMap string `json:"connected_map,omitempty"`
	StaticMap    string `json:"static_map,omitempty"`
}

// ISISRedistributeLevel holds the per-level redistribution maps.
type ISISRedistributeLevel struct {
	Base
	Level1 *ISISRedistributeMap `json:"level_1,omitempty"`
	Level2 *ISISRedistributeMap `json:"level_2,omitempty"`
}

// ISISRedistributePolicy holds the per-family redistribution.
type ISISRedistributePolicy struct {
	Base
	IPv4 *ISISRedistributeLevel `json:"ipv4,omitempty"`
	IPv6 *ISISRedistributeLevel `json:"ipv6,omitempty"`
}

// ISIS is the IS-IS process configuration.
type ISIS struct {
	Base
	Level        *int                    `json:"level,omitempty"`
	LSPMTU       *int                    `json:"lsp_mtu,omitempty"`
	ISO          string                  `json:"iso"`
	Interfaces   []ISISInterface         `json:"interfaces"`
	Redistribute *ISISRedistributePolicy `json:"redistribute,omitempty"`
}

// Interface returns the IS-IS interface with the given name.
func (i *ISIS) Interface(name string) (ISISInterface, bool) {
	if i == nil {
		return ISISInterface{}, false
	}
	for _, iface := range i.Interfaces {
		if iface.Name == name {
			return iface, true
		}
	}
	return ISISInterface{}, false
}

// Protocol is one set's protocol configuration.
type Protocol struct {
	Base
	ISIS     *ISIS     `json:"isis,omitempty"`
	LLDP     *LLDP     `json:"lldp,omitempty"`
	Services *Services `json:"services,omitempty"`
}

func (p *Protocol) setDefaults() {
	if p.ISIS != nil && p.ISIS.LSPMTU == nil {
		mtu := DefaultLSPMTU
		p.ISIS.LSPMTU = &mtu
	}
}

func (p *Protocol) validate(v *util.ValidationBuilder, path string) {
	if i := p.ISIS; i != nil {
		ip := join(path, "isis")
		checkOptRange(v, join(ip, "level"), i.Level, 1, 3)
		checkOptRange(v, join(ip, "lsp_mtu"), i.LSPMTU, 1200, 9200)
		checkRequired(v, join(ip, "iso"), i.ISO != "")
		checkRequired(v, join(ip, "interfaces"), i.Interfaces != nil)
		for n, iface := range i.Interfaces {
			checkRequired(v, join(keyed(join(ip, "interfaces"), itoa(n)), "name"), iface.Name != "")
		}
	}

	if p.Services == nil || p.Services.DHCPServer == nil {
		return
	}
	dp := join(path, "services", "dhcp_server")
	checkRequired(v, join(dp, "networks"), p.Services.DHCPServer.Networks != nil)
	for n, dn := range p.Services.DHCPServer.Networks {
		np := keyed(join(dp, "networks"), itoa(n))
		checkIPv4(v, join(np, "router_ip"), dn.RouterIP, true)
		checkNetwork(v, join(np, "network"), dn.Network)
		if dn.Network.IsValid() && !dn.Network.Addr().Is4() {
			v.AddErrorf("%s: must be an IPv4 network, got %s", join(np, "network"), dn.Network)
		}
		checkRequired(v, join(np, "ranges"), dn.Ranges != nil)
		for r, rng := range dn.Ranges {
			rp := keyed(join(np, "ranges"), itoa(r))
			checkIPv4(v, join(rp, "start_address"), rng.StartAddress, true)
			checkIPv4(v, join(rp, "end_address"), rng.EndAddress, true)
		}
	}
}

// ProtocolContainer is the protocol column.
type ProtocolContainer struct {
	header
	Column map[string]Protocol `json:"column"`
}

func (c *ProtocolContainer) ColumnType() Type     { return TypeProtocol }
func (c *ProtocolContainer) Flat() bool           { return registry[TypeProtocol].flat }
func (c *ProtocolContainer) Categories() []string { return registry[TypeProtocol].Categories() }
func (c *ProtocolContainer) SetIDs() []string     { return sortedKeys(c.Column) }

func (c *ProtocolContainer) setDefaults() {
	for id, p := range c.Column {
		p.setDefaults()
		c.Column[id] = p
	}
}

// Validate checks every set in the container.
func (c *ProtocolContainer) Validate() error {
	v := &util.ValidationBuilder{}
	c.checkKind(v, TypeProtocol)
	checkRequired(v, "column", c.Column != nil)
	for _, id := range c.SetIDs() {
		p := c.Column[id]
		p.validate(v, keyed("column", id))
	}
	return v.Build()
}
