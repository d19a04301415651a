package column

import (
	"net/netip"

	"github.com/erikjseidel/salt-netdb/pkg/util"
)

// Firewall actions.
const (
	ActionAccept = "accept"
	ActionDrop   = "drop"
	ActionJump   = "jump"
)

// FirewallOptions are the global firewall knobs, stored with the router's
// hyphenated option names.
type FirewallOptions struct {
	Base
	AllPing              string `json:"all-ping,omitempty"`
	BroadcastPing        string `json:"broadcast-ping,omitempty"`
	ConfigTrap           string `json:"config-trap,omitempty"`
	IPv6ReceiveRedirects string `json:"ipv6-receive-redirects,omitempty"`
	IPv6SrcRoute         string `json:"ipv6-src-route,omitempty"`
	LogMartians          string `json:"log-martians,omitempty"`
	SendRedirects        string `json:"send-redirects,omitempty"`
	SourceValidation     string `json:"source-validation,omitempty"`
	SynCookies           string `json:"syn-cookies,omitempty"`
	TWAHazardsProtection string `json:"twa-hazards-protection,omitempty"`
	IPSrcRoute           string `json:"ip-src-route,omitempty"`
	ReceiveRedirects     string `json:"receive-redirects,omitempty"`
}

// FirewallMSSClamp clamps TCP MSS on the listed interfaces.
type FirewallMSSClamp struct {
	Base
	IPv4       int      `json:"ipv4"`
	IPv6       int      `json:"ipv6"`
	Interfaces []string `json:"interfaces"`
}

// FirewallStatePolicy is the global stateful policy.
type FirewallStatePolicy struct {
	Base
	Established string `json:"established"`
	Related     string `json:"related"`
}

// FirewallZoneRule applies rulesets to traffic from another zone.
type FirewallZoneRule struct {
	Base
	IPv4Ruleset string `json:"ipv4_ruleset,omitempty"`
	IPv6Ruleset string `json:"ipv6_ruleset,omitempty"`
	Zone        string `json:"zone"`
}

// FirewallZonePolicy is one zone of a zone-based firewall.
type FirewallZonePolicy struct {
	Base
	From          []FirewallZoneRule `json:"from,omitempty"`
	Interfaces    []string           `json:"interfaces,omitempty"`
	DefaultAction string             `json:"default_action"`
}

// FirewallGroup is a named network group. Networks may carry host bits.
type FirewallGroup struct {
	Base
	Type     string         `json:"type"`
	Networks []netip.Prefix `json:"networks"`
}

// FirewallGroupBase holds the per-family groups.
type FirewallGroupBase struct {
	Base
	IPv4 map[string]FirewallGroup `json:"ipv4,omitempty"`
	IPv6 map[string]FirewallGroup `json:"ipv6,omitempty"`
}

// FirewallPolicyInterfaces binds a rule to interfaces.
type FirewallPolicyInterfaces struct {
	Base
	Ingress string `json:"ingress,omitempty"`
	Egress  string `json:"egress,omitempty"`
}

// FirewallPolicyTarget matches a source or destination.
type FirewallPolicyTarget struct {
	Base
	NetworkGroup string `json:"network_group,omitempty"`
	Port         []int  `json:"port,omitempty"`
}

// FirewallPolicyRule is one rule of a firewall policy.
type FirewallPolicyRule struct {
	Base
	Action      string                    `json:"action"`
	State       []string                  `json:"state,omitempty"`
	Source      *FirewallPolicyTarget     `json:"source,omitempty"`
	Destination *FirewallPolicyTarget     `json:"destination,omitempty"`
	Protocol    string                    `json:"protocol,omitempty"`
	Policy      string                    `json:"policy,omitempty"`
	Interfaces  *FirewallPolicyInterfaces `json:"interfaces,omitempty"`
}

// FirewallPolicy is an ordered rule set with a default action.
type FirewallPolicy struct {
	Base
	DefaultAction string               `json:"default_action"`
	Rules         []FirewallPolicyRule `json:"rules,omitempty"`
}

func (p *FirewallPolicy) validate(v *util.ValidationBuilder, path string) {
	checkEnum(v, join(path, "default_action"), p.DefaultAction, ActionAccept, ActionDrop)
	for i, r := range p.Rules {
		rp := keyed(join(path, "rules"), itoa(i))
		checkEnum(v, join(rp, "action"), r.Action, ActionAccept, ActionDrop, ActionJump)
		for _, s := range r.State {
			checkEnum(v, join(rp, "state"), s, "established", "related")
		}
		for _, t := range []*FirewallPolicyTarget{r.Source, r.Destination} {
			if t == nil {
				continue
			}
			for _, port := range t.Port {
				checkRange(v, join(rp, "port"), int64(port), 0, 65535)
			}
		}
	}
}

// FirewallPolicyBase holds the per-family policies.
type FirewallPolicyBase struct {
	Base
	IPv4 map[string]FirewallPolicy `json:"ipv4,omitempty"`
	IPv6 map[string]FirewallPolicy `json:"ipv6,omitempty"`
}

func (b *FirewallPolicyBase) validate(v *util.ValidationBuilder, path string) {
	if b == nil {
		return
	}
	for _, f := range []struct {
		name     string
		policies map[string]FirewallPolicy
	}{{FamilyIPv4, b.IPv4}, {FamilyIPv6, b.IPv6}} {
		for _, name := range sortedKeys(f.policies) {
			p := f.policies[name]
			p.validate(v, keyed(join(path, f.name), name))
		}
	}
}

// Firewall is one set's firewall configuration. PolicyBase carries the
// base chains of newer router releases.
type Firewall struct {
	Base
	Policies    *FirewallPolicyBase           `json:"policies,omitempty"`
	Groups      *FirewallGroupBase            `json:"groups,omitempty"`
	StatePolicy *FirewallStatePolicy          `json:"state_policy,omitempty"`
	MSSClamp    *FirewallMSSClamp             `json:"mss_clamp,omitempty"`
	ZonePolicy  map[string]FirewallZonePolicy `json:"zone_policy,omitempty"`
	Options     *FirewallOptions              `json:"options,omitempty"`
	PolicyBase  *FirewallPolicyBase           `json:"policy_base,omitempty"`
}

func (f *Firewall) validate(v *util.ValidationBuilder, path string) {
	f.Policies.validate(v, join(path, "policies"))
	f.PolicyBase.validate(v, join(path, "policy_base"))

	if g := f.Groups; g != nil {
		for _, fam := range []struct {
			name   string
			groups map[string]FirewallGroup
		}{{FamilyIPv4, g.IPv4}, {FamilyIPv6, g.IPv6}} {
			for _, name := range sortedKeys(fam.groups) {
				gp := keyed(join(path, "groups", fam.name), name)
				grp := fam.groups[name]
				checkEnum(v, join(gp, "type"), grp.Type, "network")
				checkRequired(v, join(gp, "networks"), grp.Networks != nil)
			}
		}
	}

	if s := f.StatePolicy; s != nil {
		checkEnum(v, join(path, "state_policy", "established"), s.Established, ActionAccept, ActionDrop)
		checkEnum(v, join(path, "state_policy", "related"), s.Related, ActionAccept, ActionDrop)
	}

	if m := f.MSSClamp; m != nil {
		p := join(path, "mss_clamp")
		checkRange(v, join(p, "ipv4"), int64(m.IPv4), 556, 9172)
		checkRange(v, join(p, "ipv6"), int64(m.IPv6), 1280, 9172)
		checkRequired(v, join(p, "interfaces"), m.Interfaces != nil)
	}

	for _, name := range sortedKeys(f.ZonePolicy) {
		zp := f.ZonePolicy[name]
		p := keyed(join(path, "zone_policy"), name)
		checkEnum(v, join(p, "default_action"), zp.DefaultAction, ActionAccept, ActionDrop)
		for i, r := range zp.From {
			checkRequired(v, join(keyed(join(p, "from"), itoa(i)), "zone"), r.Zone != "")
		}
	}
}

// FirewallContainer is the firewall column.
type FirewallContainer struct {
	header
	Column map[string]Firewall `json:"column"`
}

func (c *FirewallContainer) ColumnType() Type     { return TypeFirewall }
func (c *FirewallContainer) Flat() bool           { return registry[TypeFirewall].flat }
func (c *FirewallContainer) Categories() []string { return registry[TypeFirewall].Categories() }
func (c *FirewallContainer) SetIDs() []string     { return sortedKeys(c.Column) }

// Validate checks every set in the container.
func (c *FirewallContainer) Validate() error {
	v := &util.ValidationBuilder{}
	c.checkKind(v, TypeFirewall)
	checkRequired(v, "column", c.Column != nil)
	for _, id := range c.SetIDs() {
		f := c.Column[id]
		f.validate(v, keyed("column", id))
	}
	return v.Build()
}
