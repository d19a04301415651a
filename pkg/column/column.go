// Package column defines the netdb configuration columns: the schema
// registry, the typed per-column containers and the override envelope used
// to patch a fragment of a column.
//
// Every container is strict. Decoding rejects any field not declared by the
// model, at every nesting level, so a document that validates here will not
// be rejected by netdb for shape reasons.
package column

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/erikjseidel/salt-netdb/pkg/util"
)

// Type names a netdb column.
type Type string

// Column types known to netdb.
const (
	TypeDevice    Type = "device"
	TypeInterface Type = "interface"
	TypeBGP       Type = "bgp"
	TypeFirewall  Type = "firewall"
	TypePolicy    Type = "policy"
	TypeProtocol  Type = "protocol"
)

// Container holds one column's data for one or more set ids.
type Container interface {
	ColumnType() Type
	Flat() bool
	Categories() []string
	SetIDs() []string
	Validate() error
}

// defaulter is implemented by containers whose models carry default values.
type defaulter interface {
	setDefaults()
}

// Schema describes one column type.
type Schema struct {
	typ        Type
	flat       bool
	categories []string
	new        func() Container
}

var registry = map[Type]*Schema{
	TypeDevice: {
		typ:  TypeDevice,
		flat: true,
		new:  func() Container { return &DeviceContainer{} },
	},
	TypeInterface: {
		typ: TypeInterface,
		new: func() Container { return &InterfaceContainer{} },
	},
	TypeBGP: {
		typ:        TypeBGP,
		categories: []string{"peer_groups", "neighbors"},
		new:        func() Container { return &BGPContainer{} },
	},
	TypeFirewall: {
		typ:        TypeFirewall,
		categories: []string{"policies", "groups", "zone_policy"},
		new:        func() Container { return &FirewallContainer{} },
	},
	TypePolicy: {
		typ:        TypePolicy,
		categories: []string{"prefix_lists", "route_maps", "aspath_lists", "community_lists"},
		new:        func() Container { return &PolicyContainer{} },
	},
	TypeProtocol: {
		typ:        TypeProtocol,
		categories: []string{"services"},
		new:        func() Container { return &ProtocolContainer{} },
	},
}

// Resolve returns the schema registered for a column type name.
func Resolve(name string) (*Schema, error) {
	s, ok := registry[Type(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", util.ErrUnknownColumnType, name)
	}
	return s, nil
}

// Types returns all registered column types in sorted order.
func Types() []Type {
	types := make([]Type, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Type returns the column type described by s.
func (s *Schema) Type() Type { return s.typ }

// Flat reports whether the column is a single-level key/value column.
func (s *Schema) Flat() bool { return s.flat }

// Categorized reports whether the column declares sub-sections.
func (s *Schema) Categorized() bool { return len(s.categories) > 0 }

// Categories returns the names of the column's independently addressable
// sub-sections.
func (s *Schema) Categories() []string {
	return append([]string(nil), s.categories...)
}

// HasCategory reports whether category is declared by the column.
func (s *Schema) HasCategory(category string) bool {
	return util.Contains(s.categories, category)
}

// Decode strictly decodes and validates a full container document
// ({"column_type": ..., "column": {...}}).
func (s *Schema) Decode(data []byte) (Container, error) {
	c := s.new()
	if err := decodeStrict(data, c); err != nil {
		return nil, err
	}
	h := c.(interface{ hdr() *header }).hdr()
	switch h.Kind {
	case "":
		h.Kind = s.typ
	case s.typ:
	default:
		return nil, util.NewValidationError(fmt.Sprintf("column_type: expected %q, got %q", s.typ, h.Kind))
	}
	if d, ok := c.(defaulter); ok {
		d.setDefaults()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// DecodeColumn validates column data keyed by set id, the shape netdb
// returns in a response's "out".
func (s *Schema) DecodeColumn(column json.RawMessage) (Container, error) {
	doc, err := json.Marshal(struct {
		Type   Type            `json:"column_type"`
		Column json.RawMessage `json:"column"`
	}{s.typ, column})
	if err != nil {
		return nil, err
	}
	return s.Decode(doc)
}

// Decode inspects the column_type discriminator of a container document
// and decodes it with the matching schema.
func Decode(data []byte) (Container, error) {
	var probe struct {
		Type string `json:"column_type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, util.NewValidationError(err.Error())
	}
	s, err := Resolve(probe.Type)
	if err != nil {
		return nil, err
	}
	return s.Decode(data)
}

// Validate decodes raw with the named schema. It is the entry point used
// before anything is sent to netdb.
func Validate(columnType string, raw []byte) (Container, error) {
	s, err := Resolve(columnType)
	if err != nil {
		return nil, err
	}
	return s.Decode(raw)
}

func decodeStrict(data []byte, v interface{}) error {
	if err := checkMemberNames(data, reflect.TypeOf(v)); err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return util.NewValidationError(err.Error())
	}
	if dec.More() {
		return util.NewValidationError("unexpected data after column document")
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// header is embedded by every container.
type header struct {
	Base
	Kind Type `json:"column_type"`
}

func (h *header) checkKind(v *util.ValidationBuilder, want Type) {
	if h.Kind != "" && h.Kind != want {
		v.AddErrorf("column_type: expected %q, got %q", want, h.Kind)
	}
}

func (h *header) hdr() *header { return h }
