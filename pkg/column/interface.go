package column

import (
	"net/netip"

	"github.com/erikjseidel/salt-netdb/pkg/util"
)

// Interface types accepted by the interface column.
const (
	IfaceEthernet = "ethernet"
	IfaceVLAN     = "vlan"
	IfaceLACP     = "lacp"
	IfaceDummy    = "dummy"
	IfaceGRE      = "gre"
	IfaceL2GRE    = "l2gre"
)

// Bounds shared with the interface name validators.
const (
	MinVLANID = 1
	MaxVLANID = 4095
	MinMTU    = 1280
	MaxMTU    = 9192
)

// InterfaceAddress is the per-address metadata. A null value is allowed
// for addresses without metadata; when present, meta is required.
type InterfaceAddress struct {
	Meta map[string]interface{} `json:"meta"`
}

// InterfaceVLAN describes a VLAN subinterface.
type InterfaceVLAN struct {
	Base
	ID     int    `json:"id"`
	Parent string `json:"parent"`
}

// InterfaceLACP describes a bonding interface.
type InterfaceLACP struct {
	Base
	HashPolicy string   `json:"hash_policy"`
	Rate       string   `json:"rate"`
	MinLinks   int      `json:"min_links"`
	Members    []string `json:"members"`
}

// InterfacePolicy names per-family policies.
type InterfacePolicy struct {
	Base
	IPv4 string `json:"ipv4,omitempty"`
	IPv6 string `json:"ipv6,omitempty"`
}

// InterfaceFirewall binds firewall policies to an interface.
type InterfaceFirewall struct {
	Base
	Local   *InterfacePolicy `json:"local,omitempty"`
	Egress  *InterfacePolicy `json:"egress,omitempty"`
	Ingress *InterfacePolicy `json:"ingress,omitempty"`
}

// Interface is one element of the interface column.
type Interface struct {
	Base
	Type         string                             `json:"type"`
	Disabled     bool                               `json:"disabled,omitempty"`
	Offload      bool                               `json:"offload,omitempty"`
	UseDHCP      bool                               `json:"use_dhcp,omitempty"`
	IPv6Autoconf bool                               `json:"ipv6_autoconf,omitempty"`
	Description  string                             `json:"description,omitempty"`
	Interface    string                             `json:"interface,omitempty"`
	MACAddress   string                             `json:"mac_address,omitempty"`
	VRF          string                             `json:"vrf,omitempty"`
	MTU          *int                               `json:"mtu,omitempty"`
	TTL          *int                               `json:"ttl,omitempty"`
	Key          netip.Addr                         `json:"key,omitzero"`
	Remote       netip.Addr                         `json:"remote,omitzero"`
	Source       netip.Addr                         `json:"source,omitzero"`
	Address      map[netip.Prefix]*InterfaceAddress `json:"address,omitempty"`
	VLAN         *InterfaceVLAN                     `json:"vlan,omitempty"`
	LACP         *InterfaceLACP                     `json:"lacp,omitempty"`
	Firewall     *InterfaceFirewall                 `json:"firewall,omitempty"`
	Policy       *InterfacePolicy                   `json:"policy,omitempty"`
}

func (i *Interface) validate(v *util.ValidationBuilder, path string) {
	checkEnum(v, join(path, "type"), i.Type, IfaceEthernet, IfaceVLAN, IfaceLACP, IfaceDummy, IfaceGRE, IfaceL2GRE)
	checkOptRange(v, join(path, "mtu"), i.MTU, MinMTU, MaxMTU)
	checkOptRange(v, join(path, "ttl"), i.TTL, 1, 255)
	checkIPv4(v, join(path, "key"), i.Key, false)

	for addr, a := range i.Address {
		if !addr.IsValid() {
			v.AddErrorf("%s: invalid interface address", join(path, "address"))
		}
		if a != nil && a.Meta == nil {
			v.AddErrorf("%s: field required", join(keyed(join(path, "address"), addr.String()), "meta"))
		}
	}

	if i.VLAN != nil {
		p := join(path, "vlan")
		checkRange(v, join(p, "id"), int64(i.VLAN.ID), MinVLANID, MaxVLANID)
		checkRequired(v, join(p, "parent"), i.VLAN.Parent != "")
	}
	if i.Type == IfaceVLAN && i.VLAN == nil {
		v.AddErrorf("%s: required for vlan interfaces", join(path, "vlan"))
	}

	if i.LACP != nil {
		p := join(path, "lacp")
		checkEnum(v, join(p, "hash_policy"), i.LACP.HashPolicy, "layer2+3", "layer3+4")
		checkEnum(v, join(p, "rate"), i.LACP.Rate, "fast", "slow")
		checkRange(v, join(p, "min_links"), int64(i.LACP.MinLinks), 1, 5)
		checkRequired(v, join(p, "members"), i.LACP.Members != nil)
	}
}

// InterfaceContainer is the interface column: set id, then interface name.
type InterfaceContainer struct {
	header
	Column map[string]map[string]Interface `json:"column"`
}

func (c *InterfaceContainer) ColumnType() Type     { return TypeInterface }
func (c *InterfaceContainer) Flat() bool           { return registry[TypeInterface].flat }
func (c *InterfaceContainer) Categories() []string { return registry[TypeInterface].Categories() }
func (c *InterfaceContainer) SetIDs() []string     { return sortedKeys(c.Column) }

// Validate checks every interface of every set.
func (c *InterfaceContainer) Validate() error {
	v := &util.ValidationBuilder{}
	c.checkKind(v, TypeInterface)
	checkRequired(v, "column", c.Column != nil)
	for _, id := range c.SetIDs() {
		ifaces := c.Column[id]
		for _, name := range sortedKeys(ifaces) {
			iface := ifaces[name]
			iface.validate(v, keyed(keyed("column", id), name))
		}
	}
	return v.Build()
}
