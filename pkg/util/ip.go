package util

import (
	"encoding/binary"
	"fmt"
	"net/netip"
	"sort"
	"strings"
)

// Address family names used by netdb columns.
const (
	FamilyIPv4 = "ipv4"
	FamilyIPv6 = "ipv6"
)

// IsFamily reports whether s names an address family understood by netdb.
func IsFamily(s string) bool {
	return s == FamilyIPv4 || s == FamilyIPv6
}

// AddrFamily returns "ipv4" or "ipv6" for an address string.
func AddrFamily(s string) (string, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return "", fmt.Errorf("invalid IP address: %s", s)
	}
	if addr.Unmap().Is4() {
		return FamilyIPv4, nil
	}
	return FamilyIPv6, nil
}

// IP2Long converts a dotted IPv4 address to its 32-bit integer value.
// VyOS does not accept octet encoded GRE keys.
func IP2Long(s string) (uint32, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil || !addr.Is4() {
		return 0, fmt.Errorf("invalid IPv4 address: %s", s)
	}
	b := addr.As4()
	return binary.BigEndian.Uint32(b[:]), nil
}

// ParseInterfaceAddress parses an interface address in CIDR notation
// (e.g. 10.0.0.1/31). Host bits are preserved.
func ParseInterfaceAddress(s string) (netip.Prefix, error) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid interface address: %s", s)
	}
	return p, nil
}

// SplitIPMask splits a CIDR notation into IP and mask length strings.
// A bare address returns an empty mask.
func SplitIPMask(cidr string) (string, string) {
	ip, mask, ok := strings.Cut(cidr, "/")
	if !ok {
		return cidr, ""
	}
	return ip, mask
}

// SortAddresses sorts address strings with IPv6 addresses first, then IPv4,
// each family in numeric order. Unparseable strings sort last.
func SortAddresses(addrs []string) {
	rank := func(a netip.Addr) int {
		switch {
		case !a.IsValid():
			return 2
		case a.Is4():
			return 1
		default:
			return 0
		}
	}
	sort.SliceStable(addrs, func(i, j int) bool {
		a, _ := netip.ParseAddr(addrs[i])
		b, _ := netip.ParseAddr(addrs[j])
		if ra, rb := rank(a), rank(b); ra != rb {
			return ra < rb
		}
		if !a.IsValid() {
			return addrs[i] < addrs[j]
		}
		return a.Less(b)
	})
}

const maxASN = 4294967295 // max uint32, 4-byte ASN range

// ValidateASN checks if an AS number is valid (1 to 4294967295).
func ValidateASN(asn int64) error {
	if asn < 1 || asn > maxASN {
		return fmt.Errorf("AS number must be between 1 and %d, got %d", maxASN, asn)
	}
	return nil
}

// ValidateMTU checks if MTU is within the range VyOS interfaces accept.
func ValidateMTU(mtu int) error {
	if mtu < 1280 || mtu > 9192 {
		return fmt.Errorf("MTU must be between 1280 and 9192, got %d", mtu)
	}
	return nil
}
