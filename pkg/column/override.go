package column

import (
	"fmt"

	"github.com/erikjseidel/salt-netdb/pkg/util"
)

// Override is a partial update to one column. The selector narrows the
// target from the whole set down to a single element:
//
//	set_id / [category] / [family] / [element_id]
//
// Data is merged into whatever the selector addresses.
type Override struct {
	ColumnType string                 `json:"column_type"`
	SetID      string                 `json:"set_id"`
	Category   string                 `json:"category,omitempty"`
	Family     string                 `json:"family,omitempty"`
	ElementID  string                 `json:"element_id,omitempty"`
	Data       map[string]interface{} `json:"data"`
}

// Validate checks the override's shape. It never contacts netdb.
func (o *Override) Validate() error {
	s, err := Resolve(o.ColumnType)
	if err != nil {
		return err
	}
	if o.Category != "" && !s.HasCategory(o.Category) {
		return fmt.Errorf("%w: %q is not a category of the %s column", util.ErrInvalidCategory, o.Category, s.Type())
	}

	v := &util.ValidationBuilder{}
	checkRequired(v, "set_id", o.SetID != "")
	if o.Family != "" {
		checkEnum(v, "family", o.Family, FamilyIPv4, FamilyIPv6)
	}
	checkRequired(v, "data", o.Data != nil)
	return v.Build()
}

// Path returns the non-empty selector components in order.
func (o *Override) Path() []string {
	path := []string{o.SetID}
	for _, p := range []string{o.Category, o.Family, o.ElementID} {
		if p != "" {
			path = append(path, p)
		}
	}
	return path
}

// Apply merges Data into column, a decoded column keyed by set id, at the
// override's path. Intermediate objects are created as needed. Column is
// not modified; the merged copy is returned.
func (o *Override) Apply(column map[string]interface{}) (map[string]interface{}, error) {
	out := deepCopy(column)
	if out == nil {
		out = make(map[string]interface{})
	}

	node := out
	path := o.Path()
	for i, key := range path {
		next, ok := node[key]
		if !ok || next == nil {
			child := make(map[string]interface{})
			node[key] = child
			node = child
			continue
		}
		child, ok := next.(map[string]interface{})
		if !ok {
			return nil, util.NewValidationError(fmt.Sprintf("%s: not an object", join(path[:i+1]...)))
		}
		node = child
	}
	for k, v := range deepMerge(node, o.Data) {
		node[k] = v
	}
	return out, nil
}

// deepMerge merges override into base. Objects merge recursively; every
// other value, lists included, is replaced.
func deepMerge(base, override map[string]interface{}) map[string]interface{} {
	result := deepCopy(base)
	if result == nil {
		result = make(map[string]interface{})
	}
	for key, ov := range override {
		bm, bok := result[key].(map[string]interface{})
		om, ook := ov.(map[string]interface{})
		if bok && ook {
			result[key] = deepMerge(bm, om)
			continue
		}
		result[key] = deepCopyValue(ov)
	}
	return result
}

func deepCopy(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return deepCopy(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, e := range val {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}
