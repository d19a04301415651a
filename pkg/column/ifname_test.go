package column

import (
	"errors"
	"testing"

	"github.com/erikjseidel/salt-netdb/pkg/util"
)

func TestValidateInterfaceName(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		wantErr bool
	}{
		{"eth0", IfaceEthernet, false},
		{"eth12", IfaceEthernet, false},
		{"ethx", IfaceEthernet, true},
		{"bond0", IfaceEthernet, true},
		{"bond1", IfaceLACP, false},
		{"bond", IfaceLACP, true},
		{"eth1.100", IfaceVLAN, false},
		{"bond0.4095", IfaceVLAN, false},
		{"eth1.4096", IfaceVLAN, true},
		{"eth1.0", IfaceVLAN, true},
		{"tun0.10", IfaceVLAN, true},
		{"tun261", IfaceGRE, false},
		{"tun1", IfaceL2GRE, false},
		{"gre1", IfaceGRE, true},
		{"dum0", IfaceDummy, false},
		{"lo", IfaceDummy, true},
		{"eth0", "wifi", true},
	}

	for _, tt := range tests {
		t.Run(tt.typ+"/"+tt.name, func(t *testing.T) {
			err := ValidateInterfaceName(tt.name, tt.typ)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateInterfaceName(%q, %q) error = %v, wantErr %v", tt.name, tt.typ, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, util.ErrValidationFailed) {
				t.Errorf("error should be a validation failure: %v", err)
			}
		})
	}
}

func TestParseVLANName(t *testing.T) {
	parent, vid, err := ParseVLANName("bond2.300")
	if err != nil {
		t.Fatalf("ParseVLANName() error = %v", err)
	}
	if parent != "bond2" || vid != 300 {
		t.Errorf("ParseVLANName() = %q, %d", parent, vid)
	}

	for _, name := range []string{"eth1", "eth1.", "eth1.99999999999999999999", "eth1.1.2"} {
		if _, _, err := ParseVLANName(name); err == nil {
			t.Errorf("ParseVLANName(%q) should fail", name)
		}
	}
}
