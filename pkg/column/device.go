package column

import (
	"encoding/json"
	"fmt"
	"net/netip"

	"github.com/erikjseidel/salt-netdb/pkg/util"
)

// DeviceCVars holds per-device configuration variables. Unlike every other
// model it accepts undeclared keys; they are kept in Extra and written back
// unchanged.
type DeviceCVars struct {
	Base
	IBGPIPv4     netip.Addr     `json:"ibgp_ipv4,omitzero"`
	IBGPIPv6     netip.Addr     `json:"ibgp_ipv6,omitzero"`
	ISO          string         `json:"iso,omitempty"`
	RouterID     netip.Addr     `json:"router_id"`
	LocalASN     int64          `json:"local_asn"`
	PrimaryIPv4  netip.Addr     `json:"primary_ipv4"`
	PrimaryIPv6  netip.Addr     `json:"primary_ipv6"`
	DNSServers   []netip.Addr   `json:"dns_servers"`
	ZNSLPrefixes []netip.Prefix `json:"znsl_prefixes"`

	Extra map[string]json.RawMessage `json:"-"`
}

type deviceCVarsFields DeviceCVars

var cvarsKnown = map[string]bool{
	"meta": true, "ibgp_ipv4": true, "ibgp_ipv6": true, "iso": true,
	"router_id": true, "local_asn": true, "primary_ipv4": true,
	"primary_ipv6": true, "dns_servers": true, "znsl_prefixes": true,
}

// UnmarshalJSON decodes the declared fields and collects the rest in Extra.
// A key that differs from a declared name only in case is rejected.
func (c *DeviceCVars) UnmarshalJSON(data []byte) error {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range sortedKeys(all) {
		if foldsToAny(k, cvarsKnown) {
			return fmt.Errorf("json: unknown field %q", k)
		}
	}
	var fields deviceCVarsFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for k, raw := range all {
		if cvarsKnown[k] {
			continue
		}
		if fields.Extra == nil {
			fields.Extra = make(map[string]json.RawMessage)
		}
		fields.Extra[k] = raw
	}
	*c = DeviceCVars(fields)
	return nil
}

// MarshalJSON writes the declared fields followed by Extra.
func (c DeviceCVars) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(deviceCVarsFields(c))
	if err != nil || len(c.Extra) == 0 {
		return known, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	for k, raw := range c.Extra {
		if _, ok := merged[k]; !ok {
			merged[k] = raw
		}
	}
	return json.Marshal(merged)
}

func (c *DeviceCVars) validate(v *util.ValidationBuilder, path string) {
	checkIPv4(v, join(path, "ibgp_ipv4"), c.IBGPIPv4, false)
	checkIPv6(v, join(path, "ibgp_ipv6"), c.IBGPIPv6, false)
	checkIPv4(v, join(path, "router_id"), c.RouterID, true)
	checkRange(v, join(path, "local_asn"), c.LocalASN, 1, maxASN)
	checkIPv4(v, join(path, "primary_ipv4"), c.PrimaryIPv4, true)
	checkIPv6(v, join(path, "primary_ipv6"), c.PrimaryIPv6, true)
	checkRequired(v, join(path, "dns_servers"), c.DNSServers != nil)
	checkRequired(v, join(path, "znsl_prefixes"), c.ZNSLPrefixes != nil)
	for _, p := range c.ZNSLPrefixes {
		checkNetwork(v, join(path, "znsl_prefixes"), p)
	}
}

// Device describes a router: where it is, who provides transit and the
// variables templates need.
type Device struct {
	Base
	Location  string      `json:"location"`
	Providers []string    `json:"providers"`
	Roles     []string    `json:"roles,omitempty"`
	NodeName  string      `json:"node_name"`
	CVars     DeviceCVars `json:"cvars"`
}

func (d *Device) validate(v *util.ValidationBuilder, path string) {
	checkRequired(v, join(path, "location"), d.Location != "")
	checkRequired(v, join(path, "providers"), d.Providers != nil)
	checkRequired(v, join(path, "node_name"), d.NodeName != "")
	d.CVars.validate(v, join(path, "cvars"))
}

// DeviceContainer is the flat device column.
type DeviceContainer struct {
	header
	Column map[string]Device `json:"column"`
}

func (c *DeviceContainer) ColumnType() Type     { return TypeDevice }
func (c *DeviceContainer) Flat() bool           { return registry[TypeDevice].flat }
func (c *DeviceContainer) Categories() []string { return registry[TypeDevice].Categories() }
func (c *DeviceContainer) SetIDs() []string     { return sortedKeys(c.Column) }

// Validate checks every device in the container.
func (c *DeviceContainer) Validate() error {
	v := &util.ValidationBuilder{}
	c.checkKind(v, TypeDevice)
	checkRequired(v, "column", c.Column != nil)
	for _, id := range c.SetIDs() {
		d := c.Column[id]
		d.validate(v, keyed("column", id))
	}
	return v.Build()
}
