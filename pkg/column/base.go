package column

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/erikjseidel/salt-netdb/pkg/util"
)

// Base is embedded by every column model. Meta is free-form data netdb and
// its connectors attach to an element (datasource, weight, PTR, etc.).
type Base struct {
	Meta map[string]interface{} `json:"meta,omitempty"`
}

// Address family sub-sections found in several columns.
const (
	FamilyIPv4 = util.FamilyIPv4
	FamilyIPv6 = util.FamilyIPv6
)

const maxASN = 1<<32 - 1

func join(path ...string) string {
	return strings.Join(path, ".")
}

func keyed(path, key string) string {
	return fmt.Sprintf("%s[%s]", path, key)
}

func itoa(i int) string { return strconv.Itoa(i) }

func checkRange(v *util.ValidationBuilder, path string, n, lo, hi int64) {
	if n < lo || n > hi {
		v.AddErrorf("%s: must be between %d and %d, got %d", path, lo, hi, n)
	}
}

func checkOptRange(v *util.ValidationBuilder, path string, n *int, lo, hi int) {
	if n != nil {
		checkRange(v, path, int64(*n), int64(lo), int64(hi))
	}
}

func checkEnum(v *util.ValidationBuilder, path, s string, allowed ...string) {
	if !util.Contains(allowed, s) {
		v.AddErrorf("%s: must be one of %s, got %q", path, strings.Join(allowed, "|"), s)
	}
}

func checkRequired(v *util.ValidationBuilder, path string, present bool) {
	if !present {
		v.AddErrorf("%s: field required", path)
	}
}

func checkIPv4(v *util.ValidationBuilder, path string, a netip.Addr, required bool) {
	switch {
	case !a.IsValid():
		if required {
			v.AddErrorf("%s: field required", path)
		}
	case !a.Is4():
		v.AddErrorf("%s: must be an IPv4 address, got %s", path, a)
	}
}

func checkIPv6(v *util.ValidationBuilder, path string, a netip.Addr, required bool) {
	switch {
	case !a.IsValid():
		if required {
			v.AddErrorf("%s: field required", path)
		}
	case !a.Is6() || a.Is4In6():
		v.AddErrorf("%s: must be an IPv6 address, got %s", path, a)
	}
}

// checkNetwork requires a network prefix with no host bits set.
func checkNetwork(v *util.ValidationBuilder, path string, p netip.Prefix) {
	if !p.IsValid() {
		v.AddErrorf("%s: field required", path)
		return
	}
	if p.Masked() != p {
		v.AddErrorf("%s: %s has host bits set", path, p)
	}
}
