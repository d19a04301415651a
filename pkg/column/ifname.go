package column

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/erikjseidel/salt-netdb/pkg/util"
)

var (
	ethernetNameRe = regexp.MustCompile(`^eth[0-9]+$`)
	bondNameRe     = regexp.MustCompile(`^bond[0-9]+$`)
	vlanNameRe     = regexp.MustCompile(`^((?:eth|bond)[0-9]+)\.([0-9]+)$`)
	tunnelNameRe   = regexp.MustCompile(`^tun[0-9]+$`)
	dummyNameRe    = regexp.MustCompile(`^dum[0-9]+$`)
)

// ValidateInterfaceName checks that name follows the router naming
// convention for the given interface type.
func ValidateInterfaceName(name, ifaceType string) error {
	var ok bool
	switch ifaceType {
	case IfaceEthernet:
		ok = ethernetNameRe.MatchString(name)
	case IfaceLACP:
		ok = bondNameRe.MatchString(name)
	case IfaceVLAN:
		if _, _, err := ParseVLANName(name); err != nil {
			return err
		}
		return nil
	case IfaceGRE, IfaceL2GRE:
		ok = tunnelNameRe.MatchString(name)
	case IfaceDummy:
		ok = dummyNameRe.MatchString(name)
	default:
		return util.NewValidationError(fmt.Sprintf("type: unknown interface type %q", ifaceType))
	}
	if !ok {
		return util.NewValidationError(fmt.Sprintf("%s: invalid name for a %s interface", name, ifaceType))
	}
	return nil
}

// ParseVLANName splits a VLAN subinterface name such as "eth1.100" into
// its parent and VLAN id.
func ParseVLANName(name string) (parent string, vid int, err error) {
	m := vlanNameRe.FindStringSubmatch(name)
	if m == nil {
		return "", 0, util.NewValidationError(fmt.Sprintf("%s: not a VLAN interface name", name))
	}
	vid, err = strconv.Atoi(m[2])
	if err != nil || vid < MinVLANID || vid > MaxVLANID {
		return "", 0, util.NewValidationError(fmt.Sprintf("%s: VLAN id must be between %d and %d", name, MinVLANID, MaxVLANID))
	}
	return m[1], vid, nil
}
