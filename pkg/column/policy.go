package column

import (
	"net/netip"

	"github.com/erikjseidel/salt-netdb/pkg/util"
)

// Policy rule actions.
const (
	ActionPermit = "permit"
	ActionDeny   = "deny"
)

// PolicyBasicRule is a regex-matching list entry, used by community and
// as-path lists.
type PolicyBasicRule struct {
	Base
	Action      string `json:"action"`
	Description string `json:"description,omitempty"`
	Regex       string `json:"regex"`
}

func (r *PolicyBasicRule) validate(v *util.ValidationBuilder, path string) {
	checkEnum(v, join(path, "action"), r.Action, ActionPermit, ActionDeny)
	checkRequired(v, join(path, "regex"), r.Regex != "")
}

// PolicyCommunity is a community list.
type PolicyCommunity struct {
	Base
	Description string            `json:"description,omitempty"`
	Rules       []PolicyBasicRule `json:"rules"`
}

// PolicyASPath is an as-path list.
type PolicyASPath struct {
	Base
	Description string            `json:"description,omitempty"`
	Rules       []PolicyBasicRule `json:"rules"`
}

// PolicyRouteMapSet lists the attributes a route-map rule sets.
type PolicyRouteMapSet struct {
	Base
	LocalPref      *int       `json:"local_pref,omitempty"`
	ASPathExclude  *int64     `json:"as_path_exclude,omitempty"`
	NextHop        netip.Addr `json:"next_hop,omitzero"`
	Origin         string     `json:"origin,omitempty"`
	Community      string     `json:"community,omitempty"`
	LargeCommunity string     `json:"large_community,omitempty"`
}

// PolicyRouteMapMatch lists the conditions of a route-map rule.
type PolicyRouteMapMatch struct {
	Base
	PrefixList    string `json:"prefix_list,omitempty"`
	CommunityList string `json:"community_list,omitempty"`
	ASPath        string `json:"as_path,omitempty"`
	RPKI          string `json:"rpki,omitempty"`
}

// PolicyRouteMapRule is one numbered route-map rule.
type PolicyRouteMapRule struct {
	Base
	Action   string               `json:"action"`
	Match    *PolicyRouteMapMatch `json:"match,omitempty"`
	Set      *PolicyRouteMapSet   `json:"set,omitempty"`
	Number   int                  `json:"number"`
	Continue *int                 `json:"continue,omitempty"`
}

func (r *PolicyRouteMapRule) validate(v *util.ValidationBuilder, path string) {
	checkEnum(v, join(path, "action"), r.Action, ActionPermit, ActionDeny)
	checkRange(v, join(path, "number"), int64(r.Number), 0, 999)
	checkOptRange(v, join(path, "continue"), r.Continue, 0, 999)
	if m := r.Match; m != nil && m.RPKI != "" {
		checkEnum(v, join(path, "match", "rpki"), m.RPKI, "notfound", "valid", "invalid")
	}
	if s := r.Set; s != nil {
		checkOptRange(v, join(path, "set", "local_pref"), s.LocalPref, 0, 255)
		if s.ASPathExclude != nil {
			checkRange(v, join(path, "set", "as_path_exclude"), *s.ASPathExclude, 1, maxASN)
		}
	}
}

// PolicyRouteMap is an ordered list of route-map rules.
type PolicyRouteMap struct {
	Base
	Rules []PolicyRouteMapRule `json:"rules"`
}

// PolicyRouteMapBase holds the per-family route-maps.
type PolicyRouteMapBase struct {
	Base
	IPv4 map[string]PolicyRouteMap `json:"ipv4,omitempty"`
	IPv6 map[string]PolicyRouteMap `json:"ipv6,omitempty"`
}

// PolicyPrefixListRule matches a prefix with optional length bounds.
type PolicyPrefixListRule struct {
	Base
	LE     *int         `json:"le,omitempty"`
	GE     *int         `json:"ge,omitempty"`
	Prefix netip.Prefix `json:"prefix"`
}

// PolicyPrefixList is an ordered list of prefix rules.
type PolicyPrefixList struct {
	Base
	Rules []PolicyPrefixListRule `json:"rules"`
}

// PolicyPrefixListBase holds the per-family prefix lists.
type PolicyPrefixListBase struct {
	Base
	IPv4 map[string]PolicyPrefixList `json:"ipv4,omitempty"`
	IPv6 map[string]PolicyPrefixList `json:"ipv6,omitempty"`
}

// Policy is one set's routing policy.
type Policy struct {
	Base
	PrefixLists    *PolicyPrefixListBase      `json:"prefix_lists,omitempty"`
	RouteMaps      *PolicyRouteMapBase        `json:"route_maps,omitempty"`
	ASPathLists    map[string]PolicyASPath    `json:"aspath_lists,omitempty"`
	CommunityLists map[string]PolicyCommunity `json:"community_lists,omitempty"`
}

func (p *Policy) validate(v *util.ValidationBuilder, path string) {
	if pl := p.PrefixLists; pl != nil {
		for _, fam := range []struct {
			name  string
			lists map[string]PolicyPrefixList
		}{{FamilyIPv4, pl.IPv4}, {FamilyIPv6, pl.IPv6}} {
			for _, name := range sortedKeys(fam.lists) {
				lp := keyed(join(path, "prefix_lists", fam.name), name)
				list := fam.lists[name]
				checkRequired(v, join(lp, "rules"), list.Rules != nil)
				for i, r := range list.Rules {
					rp := keyed(join(lp, "rules"), itoa(i))
					checkOptRange(v, join(rp, "le"), r.LE, 0, 128)
					checkOptRange(v, join(rp, "ge"), r.GE, 0, 128)
					checkNetwork(v, join(rp, "prefix"), r.Prefix)
				}
			}
		}
	}

	if rm := p.RouteMaps; rm != nil {
		for _, fam := range []struct {
			name string
			maps map[string]PolicyRouteMap
		}{{FamilyIPv4, rm.IPv4}, {FamilyIPv6, rm.IPv6}} {
			for _, name := range sortedKeys(fam.maps) {
				mp := keyed(join(path, "route_maps", fam.name), name)
				m := fam.maps[name]
				checkRequired(v, join(mp, "rules"), m.Rules != nil)
				for i := range m.Rules {
					m.Rules[i].validate(v, keyed(join(mp, "rules"), itoa(i)))
				}
			}
		}
	}

	for _, name := range sortedKeys(p.ASPathLists) {
		lp := keyed(join(path, "aspath_lists"), name)
		l := p.ASPathLists[name]
		checkRequired(v, join(lp, "rules"), l.Rules != nil)
		for i := range l.Rules {
			l.Rules[i].validate(v, keyed(join(lp, "rules"), itoa(i)))
		}
	}
	for _, name := range sortedKeys(p.CommunityLists) {
		lp := keyed(join(path, "community_lists"), name)
		l := p.CommunityLists[name]
		checkRequired(v, join(lp, "rules"), l.Rules != nil)
		for i := range l.Rules {
			l.Rules[i].validate(v, keyed(join(lp, "rules"), itoa(i)))
		}
	}
}

// PolicyContainer is the policy column.
type PolicyContainer struct {
	header
	Column map[string]Policy `json:"column"`
}

func (c *PolicyContainer) ColumnType() Type     { return TypePolicy }
func (c *PolicyContainer) Flat() bool           { return registry[TypePolicy].flat }
func (c *PolicyContainer) Categories() []string { return registry[TypePolicy].Categories() }
func (c *PolicyContainer) SetIDs() []string     { return sortedKeys(c.Column) }

// Validate checks every set in the container.
func (c *PolicyContainer) Validate() error {
	v := &util.ValidationBuilder{}
	c.checkKind(v, TypePolicy)
	checkRequired(v, "column", c.Column != nil)
	for _, id := range c.SetIDs() {
		p := c.Column[id]
		p.validate(v, keyed("column", id))
	}
	return v.Build()
}
