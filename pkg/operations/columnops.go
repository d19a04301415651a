package operations

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/erikjseidel/salt-netdb/pkg/result"
	"github.com/erikjseidel/salt-netdb/pkg/util"
)

// DefaultDelimiter separates the column name from the path below it in
// column lookups ("bgp:neighbors").
const DefaultDelimiter = ":"

// ListColumns returns the column names netdb serves.
func (m *Manager) ListColumns(ctx context.Context) *result.Return {
	resp, err := m.netdb.ListColumns(ctx)
	if err != nil {
		return result.FromError(err)
	}
	return resp.Envelope()
}

// PullColumn returns the router's data for one column. An empty column is
// an error.
func (m *Manager) PullColumn(ctx context.Context, name string) (map[string]interface{}, error) {
	raw, err := m.netdb.GetColumn(ctx, m.grains.ID, name)
	if err != nil {
		return nil, err
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, util.NewBackendError("netdb", fmt.Errorf("decoding %s column: %w", name, err))
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: Empty column returned: %w", name, util.ErrNotFound)
	}
	return data, nil
}

// ColumnGet walks path, a column name followed by nested keys joined by
// delimiter ("bgp:neighbors:10.0.0.2"), and returns the value it reaches.
// A missing column or key is an error.
func (m *Manager) ColumnGet(ctx context.Context, path, delimiter string) (interface{}, error) {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	parts := strings.Split(path, delimiter)
	if parts[0] == "" {
		return nil, util.NewValidationError("column: required")
	}

	raw, err := m.netdb.GetColumn(ctx, m.grains.ID, parts[0])
	if err != nil {
		return nil, err
	}
	var cur interface{}
	if err := json.Unmarshal(raw, &cur); err != nil {
		return nil, util.NewBackendError("netdb", fmt.Errorf("decoding %s column: %w", parts[0], err))
	}

	for i, key := range parts[1:] {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %w", strings.Join(parts[:i+1], delimiter), util.ErrNotFound)
		}
		if cur, ok = obj[key]; !ok {
			return nil, fmt.Errorf("%s: %w", strings.Join(parts[:i+2], delimiter), util.ErrNotFound)
		}
	}
	return cur, nil
}

// ColumnKeys returns the sorted keys of the object path reaches.
func (m *Manager) ColumnKeys(ctx context.Context, path, delimiter string) ([]string, error) {
	v, err := m.ColumnGet(ctx, path, delimiter)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, util.NewValidationError(fmt.Sprintf("%s: not an object", path))
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// ColumnItems looks up several paths at once. Paths that do not resolve
// map to an empty list; any other failure aborts the lookup.
func (m *Manager) ColumnItems(ctx context.Context, delimiter string, paths ...string) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(paths))
	for _, p := range paths {
		v, err := m.ColumnGet(ctx, p, delimiter)
		switch {
		case err == nil && v != nil:
			out[p] = v
		case err == nil || util.IsNotFound(err):
			out[p] = []interface{}{}
		default:
			return nil, err
		}
	}
	return out, nil
}
