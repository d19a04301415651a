package util

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAddrFamily(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"23.181.64.4", FamilyIPv4, false},
		{"2620:136:a009::1", FamilyIPv6, false},
		{"::ffff:10.0.0.1", FamilyIPv4, false},
		{"not-an-ip", "", true},
		{"10.0.0.0/24", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := AddrFamily(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AddrFamily(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("AddrFamily(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIP2Long(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"0.0.0.1", 1, false},
		{"10.0.0.1", 167772161, false},
		{"255.255.255.255", 4294967295, false},
		{"2001:db8::1", 0, true},
		{"garbage", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := IP2Long(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("IP2Long(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("IP2Long(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseInterfaceAddress(t *testing.T) {
	p, err := ParseInterfaceAddress("10.0.0.1/31")
	if err != nil {
		t.Fatal(err)
	}
	if p.String() != "10.0.0.1/31" {
		t.Errorf("host bits should be kept, got %s", p)
	}
	if _, err := ParseInterfaceAddress("10.0.0.1"); err == nil {
		t.Error("bare address should be rejected")
	}
}

func TestSplitIPMask(t *testing.T) {
	ip, mask := SplitIPMask("2001:db8::1/64")
	if ip != "2001:db8::1" || mask != "64" {
		t.Errorf("SplitIPMask = %q, %q", ip, mask)
	}
	ip, mask = SplitIPMask("10.0.0.1")
	if ip != "10.0.0.1" || mask != "" {
		t.Errorf("SplitIPMask = %q, %q", ip, mask)
	}
}

func TestSortAddresses(t *testing.T) {
	addrs := []string{"10.0.0.10", "2001:db8::2", "10.0.0.9", "2001:db8::1", "bogus"}
	SortAddresses(addrs)

	want := []string{"2001:db8::1", "2001:db8::2", "10.0.0.9", "10.0.0.10", "bogus"}
	if diff := cmp.Diff(want, addrs); diff != "" {
		t.Errorf("SortAddresses mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateASN(t *testing.T) {
	tests := []struct {
		asn     int64
		wantErr bool
	}{
		{0, true},
		{1, false},
		{36198, false},
		{4294967295, false},
		{4294967296, true},
	}
	for _, tt := range tests {
		if err := ValidateASN(tt.asn); (err != nil) != tt.wantErr {
			t.Errorf("ValidateASN(%d) error = %v, wantErr %v", tt.asn, err, tt.wantErr)
		}
	}
}

func TestValidateMTU(t *testing.T) {
	tests := []struct {
		mtu     int
		wantErr bool
	}{
		{1279, true},
		{1280, false},
		{1500, false},
		{9192, false},
		{9193, true},
	}
	for _, tt := range tests {
		if err := ValidateMTU(tt.mtu); (err != nil) != tt.wantErr {
			t.Errorf("ValidateMTU(%d) error = %v, wantErr %v", tt.mtu, err, tt.wantErr)
		}
	}
}
