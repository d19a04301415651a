package operations

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/erikjseidel/salt-netdb/pkg/column"
	"github.com/erikjseidel/salt-netdb/pkg/overlay"
	"github.com/erikjseidel/salt-netdb/pkg/result"
	"github.com/erikjseidel/salt-netdb/pkg/util"
	"github.com/erikjseidel/salt-netdb/pkg/vyos"
)

// VyOS interface kinds.
const (
	VyOSEthernet = "ethernet"
	VyOSBonding  = "bonding"
	VyOSVif      = "vif"
)

// EthernetVLAN is a VLAN block with the parent's VyOS kind resolved.
type EthernetVLAN struct {
	column.InterfaceVLAN
	ParentVyOSType string `json:"parent_vyos_type"`
}

// EthernetInterface is an interface as the router applies it.
type EthernetInterface struct {
	column.Interface
	Disabled bool          `json:"disabled"`
	VyOSType string        `json:"vyos_type"`
	VLAN     *EthernetVLAN `json:"vlan,omitempty"`
}

func isEthernetName(name string) bool {
	return strings.HasPrefix(name, "eth") || strings.HasPrefix(name, "bond")
}

func (m *Manager) ethernetInterfaces(ctx context.Context) (map[string]column.Interface, error) {
	all, err := m.interfaces(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]column.Interface)
	for name, iface := range all {
		if isEthernetName(name) {
			out[name] = iface
		}
	}
	return out, nil
}

func parentVyOSType(parent string) string {
	switch {
	case strings.Contains(parent, "bond"):
		return VyOSBonding
	case strings.Contains(parent, "eth"):
		return VyOSEthernet
	}
	return ""
}

// GenerateEthernet returns the router's ethernet, bonding and VLAN
// interfaces. An interface is disabled when netdb says so or when it is
// marked in the overlay.
func (m *Manager) GenerateEthernet(ctx context.Context) *result.Return {
	ifaces, err := m.ethernetInterfaces(ctx)
	if err != nil {
		return result.FromError(err)
	}
	disabled, err := m.disabledEntries(ctx, overlay.KeyEthernet)
	if err != nil {
		return result.FromError(err)
	}

	out := make(map[string]EthernetInterface, len(ifaces))
	for name, iface := range ifaces {
		ei := EthernetInterface{
			Interface: iface,
			Disabled:  iface.Disabled || util.Contains(disabled, name),
		}
		switch iface.Type {
		case column.IfaceEthernet:
			ei.VyOSType = VyOSEthernet
		case column.IfaceLACP:
			ei.VyOSType = VyOSBonding
		case column.IfaceVLAN:
			ei.VyOSType = VyOSVif
			pt := parentVyOSType(iface.VLAN.Parent)
			if pt == "" {
				return result.Fail(name + ": unsupported vlan parent interface type!")
			}
			ei.VLAN = &EthernetVLAN{InterfaceVLAN: *iface.VLAN, ParentVyOSType: pt}
		default:
			return result.Fail(name + ": unsupported interface type!")
		}
		out[name] = ei
	}
	return result.OK("", out)
}

// ethernetStatement returns the configuration path of an interface below
// "interfaces".
func ethernetStatement(name string, iface column.Interface) (string, bool) {
	switch iface.Type {
	case column.IfaceVLAN:
		parent := VyOSEthernet
		if strings.Contains(iface.VLAN.Parent, "bond") {
			parent = VyOSBonding
		}
		return fmt.Sprintf("%s %s vif %d", parent, iface.VLAN.Parent, iface.VLAN.ID), true
	case column.IfaceLACP:
		return VyOSBonding + " " + name, true
	case column.IfaceEthernet:
		return VyOSEthernet + " " + name, true
	}
	return "", false
}

// EnableEthernet removes the disable statement from an interface.
func (m *Manager) EnableEthernet(ctx context.Context, name string, opts Options) *result.Return {
	return m.run("ethernet.enable", name, opts, func() *result.Return {
		return m.toggleEthernet(ctx, name, false, opts)
	})
}

// DisableEthernet sets the disable statement on an interface.
func (m *Manager) DisableEthernet(ctx context.Context, name string, opts Options) *result.Return {
	return m.run("ethernet.disable", name, opts, func() *result.Return {
		return m.toggleEthernet(ctx, name, true, opts)
	})
}

func (m *Manager) toggleEthernet(ctx context.Context, name string, disable bool, opts Options) *result.Return {
	op, verb, action := "ethernet.enable", "enable", "delete"
	refusal := "Interface not marked as disabled in REDIS. Use force=true to commit anyway."
	if disable {
		op, verb, action = "ethernet.disable", "disable", "set"
		refusal = "Interface is already marked disabled in REDIS. Use force=true to commit anyway."
	}

	pc := NewPreconditionChecker(op, name).RequireSelected("interface")
	if err := pc.Result(); err != nil {
		return result.FromError(err)
	}
	ifaces, err := m.ethernetInterfaces(ctx)
	if err != nil {
		return result.FromError(err)
	}
	iface, found := ifaces[name]
	statement, supported := ethernetStatement(name, iface)
	pc.RequireManaged(found, "Interface not found on this router.").
		Check(supported, "Unsupported interface type.", iface.Type)
	if err := pc.Result(); err != nil {
		return result.FromError(err)
	}

	ret := m.apply(ctx, toggle{
		operation: op,
		key:       overlay.KeyEthernet,
		entry:     name,
		disable:   disable,
		refusal:   refusal,
		request: vyos.TemplateRequest{
			Name:          op,
			Source:        action + " interfaces {{ .statement }} disable",
			Vars:          map[string]interface{}{"statement": statement, "interface": name},
			CommitComment: verb + " interface " + name,
		},
	}, opts)

	if opts.Permanent && ret.Result {
		ret.Comment += " Permanent (netdb) " + verb + " requested."
		resp, err := m.netdb.SetInterfaceDisabled(ctx, m.grains.ID, name, disable, opts.Test)
		if err != nil {
			ret.Netdb = result.FromError(err)
		} else {
			ret.Netdb = &result.Return{Result: resp.Result, Comment: resp.Comment, Error: resp.Error}
		}
	}
	return ret
}

// DisplayEthernet shows the router's ethernet or bonding interfaces, with
// the managed interfaces listed in the comment. kind is "ethernet" or
// "lag".
func (m *Manager) DisplayEthernet(ctx context.Context, kind string) *result.Return {
	switch kind {
	case "", "ethernet":
		kind = VyOSEthernet
	case "lag":
		kind = VyOSBonding
	default:
		return result.Fail("unsupported interface type.")
	}

	ret := m.cli(ctx, "show interfaces "+kind)
	if !ret.Result {
		return ret
	}
	ifaces, err := m.ethernetInterfaces(ctx)
	if err != nil {
		ret.Comment = "netdb API is down"
		return ret
	}
	disabled, err := m.disabledEntries(ctx, overlay.KeyEthernet)
	if err != nil {
		return result.FromError(err)
	}
	ret.Comment = managedList("salt managed interfaces", sortedNames(ifaces), disabled)
	return ret
}

// managedList renders the "managed entries" comment shared by the display
// operations. Disabled entries are flagged.
func managedList(title string, names, disabled []string) string {
	lines := make([]string, 0, len(names))
	for _, n := range names {
		if util.Contains(disabled, n) {
			n += "\t[disabled]"
		}
		lines = append(lines, n)
	}
	return title + ":\n--- \n" + strings.Join(lines, "\n")
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
