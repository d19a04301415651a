package operations

import (
	"context"
	"fmt"
	"strings"

	"github.com/erikjseidel/salt-netdb/pkg/result"
	"github.com/erikjseidel/salt-netdb/pkg/util"
)

// IPAMEntry describes one address configured on the router.
type IPAMEntry struct {
	CIDR        string                 `json:"cidr"`
	Device      string                 `json:"device"`
	Interface   string                 `json:"interface"`
	Description string                 `json:"description,omitempty"`
	Meta        map[string]interface{} `json:"meta,omitempty"`
}

// IPAMReport lists the addresses of every managed loopback, ethernet and
// tunnel interface, keyed by address. With report the entries are returned
// in out; with comment a text listing (IPv6 first) is returned in the
// comment.
func (m *Manager) IPAMReport(ctx context.Context, report, comment bool) *result.Return {
	ifaces, err := m.interfaces(ctx)
	if err != nil {
		return result.FromError(err)
	}

	entries := make(map[string]IPAMEntry)
	for _, name := range sortedNames(ifaces) {
		if !isEthernetName(name) && !strings.HasPrefix(name, "tun") && !strings.HasPrefix(name, "dum") {
			continue
		}
		iface := ifaces[name]
		for prefix, a := range iface.Address {
			e := IPAMEntry{
				CIDR:        fmt.Sprint(prefix.Bits()),
				Device:      m.grains.ID,
				Interface:   name,
				Description: iface.Description,
			}
			if a != nil {
				e.Meta = a.Meta
			}
			entries[prefix.Addr().String()] = e
		}
	}

	ret := &result.Return{Result: true}
	if report {
		ret.Out = entries
	}
	if comment {
		addrs := make([]string, 0, len(entries))
		for a := range entries {
			addrs = append(addrs, a)
		}
		util.SortAddresses(addrs)

		var b strings.Builder
		b.WriteString("Salt managed addresses on this device:\n----------\n")
		for _, a := range addrs {
			e := entries[a]
			fmt.Fprintf(&b, "%-30s %-10s %-40s\n", a+"/"+e.CIDR, e.Interface, e.Description)
		}
		ret.Comment = b.String()
	}
	return ret
}

// IPAMComment is IPAMReport with only the text listing.
func (m *Manager) IPAMComment(ctx context.Context) *result.Return {
	return m.IPAMReport(ctx, false, true)
}
