package column

import (
	"errors"
	"strings"
	"testing"

	"github.com/erikjseidel/salt-netdb/pkg/util"
)

func TestFieldConstraints(t *testing.T) {
	tests := []struct {
		name    string
		typ     Type
		value   interface{}
		path    []string
		wantErr string // empty means the mutated document is valid
	}{
		// interface
		{"mtu low", TypeInterface, 1279, []string{"column", "SIN1", "eth0", "mtu"}, "mtu: must be between 1280 and 9192"},
		{"mtu high", TypeInterface, 9193, []string{"column", "SIN1", "eth0", "mtu"}, "mtu"},
		{"mtu max", TypeInterface, 9192, []string{"column", "SIN1", "eth0", "mtu"}, ""},
		{"bad type", TypeInterface, "wifi", []string{"column", "SIN1", "eth0", "type"}, "type: must be one of"},
		{"ttl zero", TypeInterface, 0, []string{"column", "SIN1", "tun261", "ttl"}, "ttl"},
		{"ipv6 key", TypeInterface, "2001:db8::5", []string{"column", "SIN1", "tun261", "key"}, "key: must be an IPv4 address"},
		{"vlan id zero", TypeInterface, 0, []string{"column", "SIN1", "eth1.100", "vlan", "id"}, "vlan.id"},
		{"vlan id max", TypeInterface, 4095, []string{"column", "SIN1", "eth1.100", "vlan", "id"}, ""},
		{"vlan id over", TypeInterface, 4096, []string{"column", "SIN1", "eth1.100", "vlan", "id"}, "vlan.id: must be between 1 and 4095"},
		{"vlan missing", TypeInterface, nil, []string{"column", "SIN1", "eth1.100", "vlan"}, "required for vlan interfaces"},
		{"lacp min_links zero", TypeInterface, 0, []string{"column", "SIN1", "bond0", "lacp", "min_links"}, "min_links"},
		{"lacp min_links negative", TypeInterface, -1, []string{"column", "SIN1", "bond0", "lacp", "min_links"}, "min_links"},
		{"lacp hash policy", TypeInterface, "layer2", []string{"column", "SIN1", "bond0", "lacp", "hash_policy"}, "hash_policy"},
		{"lacp rate", TypeInterface, "medium", []string{"column", "SIN1", "bond0", "lacp", "rate"}, "rate"},
		{"lacp members", TypeInterface, nil, []string{"column", "SIN1", "bond0", "lacp", "members"}, "members: field required"},
		{"address meta required", TypeInterface, map[string]interface{}{}, []string{"column", "SIN1", "dum0", "address", "10.0.0.1/32"}, "meta: field required"},

		// bgp
		{"asn zero", TypeBGP, 0, []string{"column", "SIN1", "options", "asn"}, "options.asn"},
		{"asn 32bit", TypeBGP, 4294967295, []string{"column", "SIN1", "options", "asn"}, ""},
		{"asn too large", TypeBGP, 4294967296, []string{"column", "SIN1", "options", "asn"}, "options.asn"},
		{"hold_time low", TypeBGP, 14, []string{"column", "SIN1", "options", "hold_time"}, "hold_time"},
		{"keepalive_time high", TypeBGP, 61, []string{"column", "SIN1", "options", "keepalive_time"}, "keepalive_time"},
		{"router_id v6", TypeBGP, "2001:db8::1", []string{"column", "SIN1", "options", "router_id"}, "router_id: must be an IPv4 address"},
		{"router_id missing", TypeBGP, nil, []string{"column", "SIN1", "options", "router_id"}, "router_id: field required"},
		{"peer type", TypeBGP, "confed", []string{"column", "SIN1", "peer_groups", "IBGP", "type"}, "type: must be one of ibgp|ebgp"},
		{"multihop", TypeBGP, 256, []string{"column", "SIN1", "peer_groups", "TRANSIT", "multihop"}, "multihop"},
		{"max_prefixes", TypeBGP, 0, []string{"column", "SIN1", "peer_groups", "TRANSIT", "family", "ipv4", "max_prefixes"}, "max_prefixes"},
		{"neighbor holdtime", TypeBGP, 3001, []string{"column", "SIN1", "neighbors", "23.181.64.4", "timers", "holdtime"}, "timers.holdtime"},
		{"neighbor holdtime long", TypeBGP, 3000, []string{"column", "SIN1", "neighbors", "23.181.64.4", "timers", "holdtime"}, ""},
		{"neighbor keepalive", TypeBGP, 4, []string{"column", "SIN1", "neighbors", "23.181.64.4", "timers", "keepalive"}, "timers.keepalive"},
		{"network host bits", TypeBGP, []interface{}{"23.181.64.1/24"}, []string{"column", "SIN1", "address_family", "ipv4", "networks"}, "host bits"},
		{"redistribute required", TypeBGP, nil, []string{"column", "SIN1", "address_family", "ipv6", "redistribute"}, "redistribute: field required"},
		{"unknown peer group", TypeBGP, "NOPE", []string{"column", "SIN1", "neighbors", "10.0.0.2", "peer_group"}, "unknown peer group"},

		// firewall
		{"mss ipv4 low", TypeFirewall, 555, []string{"column", "SIN1", "mss_clamp", "ipv4"}, "mss_clamp.ipv4: must be between 556 and 9172"},
		{"mss ipv4 min", TypeFirewall, 556, []string{"column", "SIN1", "mss_clamp", "ipv4"}, ""},
		{"mss ipv6 low", TypeFirewall, 1279, []string{"column", "SIN1", "mss_clamp", "ipv6"}, "mss_clamp.ipv6: must be between 1280 and 9172"},
		{"mss ipv6 high", TypeFirewall, 9173, []string{"column", "SIN1", "mss_clamp", "ipv6"}, "mss_clamp.ipv6"},
		{"state policy", TypeFirewall, "reject", []string{"column", "SIN1", "state_policy", "related"}, "state_policy.related"},
		{"zone default", TypeFirewall, "reject", []string{"column", "SIN1", "zone_policy", "WAN", "default_action"}, "default_action"},
		{"zone from zone", TypeFirewall, nil, []string{"column", "SIN1", "zone_policy", "LOCAL", "from", "0", "zone"}, "zone: field required"},
		{"rule action", TypeFirewall, "reject", []string{"column", "SIN1", "policies", "ipv4", "INBOUND4", "rules", "0", "action"}, "action"},
		{"rule jump", TypeFirewall, "jump", []string{"column", "SIN1", "policies", "ipv4", "INBOUND4", "rules", "0", "action"}, ""},
		{"rule state", TypeFirewall, []interface{}{"new"}, []string{"column", "SIN1", "policies", "ipv4", "INBOUND4", "rules", "0", "state"}, "state"},
		{"group type", TypeFirewall, "address", []string{"column", "SIN1", "groups", "ipv4", "MGMT4", "type"}, "type: must be one of network"},

		// policy
		{"route-map number", TypePolicy, 1000, []string{"column", "SIN1", "route_maps", "ipv4", "TRANSIT-OUT4", "rules", "1", "number"}, "number"},
		{"route-map continue", TypePolicy, -1, []string{"column", "SIN1", "route_maps", "ipv4", "TRANSIT-IN4", "rules", "1", "continue"}, "continue"},
		{"local_pref", TypePolicy, 256, []string{"column", "SIN1", "route_maps", "ipv4", "TRANSIT-OUT4", "rules", "0", "set", "local_pref"}, "local_pref"},
		{"rpki", TypePolicy, "unknown", []string{"column", "SIN1", "route_maps", "ipv4", "TRANSIT-IN4", "rules", "0", "match", "rpki"}, "rpki"},
		{"route-map action", TypePolicy, "accept", []string{"column", "SIN1", "route_maps", "ipv4", "TRANSIT-OUT4", "rules", "0", "action"}, "action: must be one of permit|deny"},
		{"prefix le", TypePolicy, 129, []string{"column", "SIN1", "prefix_lists", "ipv4", "OWN4", "rules", "0", "le"}, ".le"},
		{"prefix host bits", TypePolicy, "23.181.64.1/24", []string{"column", "SIN1", "prefix_lists", "ipv4", "OWN4", "rules", "0", "prefix"}, "host bits"},
		{"regex required", TypePolicy, nil, []string{"column", "SIN1", "aspath_lists", "NO-BOGON", "rules", "0", "regex"}, "regex: field required"},

		// protocol
		{"isis level", TypeProtocol, 4, []string{"column", "SIN1", "isis", "level"}, "isis.level"},
		{"lsp_mtu low", TypeProtocol, 1199, []string{"column", "SIN1", "isis", "lsp_mtu"}, "lsp_mtu"},
		{"iso required", TypeProtocol, nil, []string{"column", "SIN1", "isis", "iso"}, "iso: field required"},
		{"dhcp v6 router", TypeProtocol, "2001:db8::1", []string{"column", "SIN1", "services", "dhcp_server", "networks", "0", "router_ip"}, "router_ip"},

		// device
		{"local_asn", TypeDevice, 0, []string{"column", "SIN1", "cvars", "local_asn"}, "local_asn"},
		{"primary_ipv6 v4", TypeDevice, "10.0.0.9", []string{"column", "SIN1", "cvars", "primary_ipv6"}, "primary_ipv6: must be an IPv6 address"},
		{"location", TypeDevice, nil, []string{"column", "SIN1", "location"}, "location: field required"},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ)+"/"+tt.name, func(t *testing.T) {
			data := mutate(t, loadFixture(t, tt.typ), tt.value, tt.path...)
			_, err := Decode(data)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Decode() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, util.ErrValidationFailed) {
				t.Fatalf("Decode() error = %v, want validation failure", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	t.Run("bgp peer type", func(t *testing.T) {
		c, err := Decode(loadFixture(t, TypeBGP))
		if err != nil {
			t.Fatal(err)
		}
		b := c.(*BGPContainer).Column["SIN1"]
		if got := b.PeerGroups["TRANSIT"].Type; got != PeerEBGP {
			t.Errorf("TRANSIT type = %q, want ebgp", got)
		}
		if got := b.PeerGroups["IBGP"].Type; got != PeerIBGP {
			t.Errorf("IBGP type = %q, want ibgp", got)
		}
		addrs := b.NeighborAddrs()
		if len(addrs) != 3 || addrs[0].String() != "10.0.0.2" {
			t.Errorf("NeighborAddrs() = %v", addrs)
		}
		for _, a := range addrs {
			if b.Neighbors[a].Type != PeerEBGP {
				t.Errorf("neighbor %s type = %q", a, b.Neighbors[a].Type)
			}
		}
	})

	t.Run("isis lsp_mtu", func(t *testing.T) {
		c, err := Decode(loadFixture(t, TypeProtocol))
		if err != nil {
			t.Fatal(err)
		}
		isis := c.(*ProtocolContainer).Column["SIN1"].ISIS
		if isis.LSPMTU == nil || *isis.LSPMTU != DefaultLSPMTU {
			t.Errorf("LSPMTU = %v, want %d", isis.LSPMTU, DefaultLSPMTU)
		}
		if iface, ok := isis.Interface("dum0"); !ok || !iface.Passive {
			t.Errorf("Interface(dum0) = %+v, %v", iface, ok)
		}
		if _, ok := isis.Interface("eth9"); ok {
			t.Error("Interface(eth9) should not be found")
		}
	})
}

func TestBGPFamily(t *testing.T) {
	f := &BGPFamily{IPv6: &BGPFamilyOptions{}}
	if got := f.Names(); len(got) != 1 || got[0] != FamilyIPv6 {
		t.Errorf("Names() = %v", got)
	}
	if f.Get(FamilyIPv4) != nil || f.Get(FamilyIPv6) == nil || f.Get("ipx") != nil {
		t.Error("Get() returned the wrong options")
	}
	var nilFamily *BGPFamily
	if nilFamily.Names() != nil || nilFamily.Get(FamilyIPv4) != nil {
		t.Error("nil family should have no options")
	}
}
