package netdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/erikjseidel/salt-netdb/pkg/column"
	"github.com/erikjseidel/salt-netdb/pkg/util"
)

// Client is a netdb API client.
type Client struct {
	t transport
}

// New creates a netdb client from cfg.
func New(cfg Config) (*Client, error) {
	hc, err := newHTTPClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithHTTPClient(cfg.BaseURL(), hc), nil
}

// NewWithHTTPClient creates a client for baseURL using hc. baseURL must
// end with a slash.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{t: transport{service: "netdb", base: baseURL, client: hc}}
}

// Filter selects a fragment of a column. Empty fields are sent as null.
type Filter struct {
	SetID    string
	Category string
	Family   string
	Element  string
}

// MarshalJSON encodes the filter as netdb's positional list.
func (f Filter) MarshalJSON() ([]byte, error) {
	list := make([]interface{}, 4)
	for i, s := range []string{f.SetID, f.Category, f.Family, f.Element} {
		if s != "" {
			list[i] = s
		}
	}
	return json.Marshal(list)
}

// Get reads endpoint. A false result is returned as a ColumnNotFoundError
// carrying netdb's comment.
func (c *Client) Get(ctx context.Context, endpoint string) (*Response, error) {
	resp, err := c.t.do(ctx, http.MethodGet, endpoint, nil, nil, http.StatusOK, http.StatusNotFound, http.StatusUnprocessableEntity)
	if err != nil {
		return nil, err
	}
	if !resp.Result {
		return nil, &util.ColumnNotFoundError{Comment: resp.Comment}
	}
	return resp, nil
}

// ListColumns returns the columns netdb serves.
func (c *Client) ListColumns(ctx context.Context) (*Response, error) {
	return c.Get(ctx, "columns")
}

// GetColumn returns a column's data for one set id.
func (c *Client) GetColumn(ctx context.Context, setID, columnType string) (json.RawMessage, error) {
	resp, err := c.Get(ctx, columnType+"/"+setID)
	if err != nil {
		var nf *util.ColumnNotFoundError
		if errors.As(err, &nf) {
			nf.Column, nf.SetID = columnType, setID
		}
		return nil, err
	}
	var sets map[string]json.RawMessage
	if err := resp.DecodeOut(&sets); err != nil {
		return nil, util.NewBackendError("netdb", fmt.Errorf("decoding %s column: %w", columnType, err))
	}
	data, ok := sets[setID]
	if !ok {
		return nil, &util.ColumnNotFoundError{Column: columnType, SetID: setID}
	}
	return data, nil
}

// Container fetches a column for one set id and decodes it with the
// column's schema.
func (c *Client) Container(ctx context.Context, setID, columnType string) (column.Container, error) {
	schema, err := column.Resolve(columnType)
	if err != nil {
		return nil, err
	}
	data, err := c.GetColumn(ctx, setID, columnType)
	if err != nil {
		return nil, err
	}
	keyed, err := json.Marshal(map[string]json.RawMessage{setID: data})
	if err != nil {
		return nil, err
	}
	return schema.DecodeColumn(keyed)
}

// Query reads the fragment selected by f. The answer is returned as is,
// including a false result.
func (c *Client) Query(ctx context.Context, columnType string, f Filter) (*Response, error) {
	return c.t.do(ctx, http.MethodGet, columnType, f, nil, http.StatusOK, http.StatusNotFound, http.StatusUnprocessableEntity)
}

// Save creates column data (POST).
func (c *Client) Save(ctx context.Context, columnType string, data interface{}, test bool) (*Response, error) {
	return c.write(ctx, http.MethodPost, columnType, data, test)
}

// Update replaces column data (PUT). A successful answer echoes data as
// its out.
func (c *Client) Update(ctx context.Context, columnType string, data interface{}, test bool) (*Response, error) {
	resp, err := c.write(ctx, http.MethodPut, columnType, data, test)
	if err != nil || !resp.Result {
		return resp, err
	}
	out, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	resp.Out = out
	return resp, nil
}

// Delete removes column data (DELETE).
func (c *Client) Delete(ctx context.Context, columnType string, data interface{}, test bool) (*Response, error) {
	return c.write(ctx, http.MethodDelete, columnType, data, test)
}

func (c *Client) write(ctx context.Context, method, columnType string, data interface{}, test bool) (*Response, error) {
	endpoint := columnType
	if test {
		endpoint += "/validate"
	}
	util.WithColumn(columnType).WithField("test", test).Debugf("netdb %s", method)
	return c.t.do(ctx, method, endpoint, data, nil, http.StatusOK, http.StatusNotFound, http.StatusUnprocessableEntity)
}

// ApplyOverride merges o.Data into the fragment o selects, validates the
// result against the column schema and submits it with Update.
func (c *Client) ApplyOverride(ctx context.Context, o column.Override, test bool) (*Response, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	current, err := c.fragment(ctx, o.ColumnType, Filter{SetID: o.SetID, Category: o.Category, Family: o.Family, Element: o.ElementID}, false)
	if err != nil {
		return nil, err
	}
	merged, err := o.Apply(current)
	if err != nil {
		return nil, err
	}
	return c.validateAndUpdate(ctx, o.ColumnType, merged, test)
}

// SetInterfaceDisabled sets or clears the disabled flag of one interface
// in netdb. The interface must already exist.
func (c *Client) SetInterfaceDisabled(ctx context.Context, setID, iface string, disabled, test bool) (*Response, error) {
	current, err := c.fragment(ctx, string(column.TypeInterface), Filter{SetID: setID, Element: iface}, true)
	if err != nil {
		return nil, err
	}
	ifaces, _ := current[setID].(map[string]interface{})
	entry, ok := ifaces[iface].(map[string]interface{})
	if !ok {
		return nil, &util.ColumnNotFoundError{Column: "interface", SetID: setID, Comment: fmt.Sprintf("interface %s not found in netdb", iface)}
	}
	if disabled {
		entry["disabled"] = true
	} else {
		delete(entry, "disabled")
	}
	return c.validateAndUpdate(ctx, string(column.TypeInterface), current, test)
}

// fragment queries f and decodes the answer. A false result is an empty
// fragment unless mustExist is set.
func (c *Client) fragment(ctx context.Context, columnType string, f Filter, mustExist bool) (map[string]interface{}, error) {
	resp, err := c.Query(ctx, columnType, f)
	if err != nil {
		return nil, err
	}
	if !resp.Result {
		if mustExist {
			return nil, &util.ColumnNotFoundError{Column: columnType, SetID: f.SetID, Comment: resp.Comment}
		}
		return map[string]interface{}{}, nil
	}
	current := map[string]interface{}{}
	if len(resp.Out) > 0 {
		if err := json.Unmarshal(resp.Out, &current); err != nil {
			return nil, util.NewBackendError("netdb", fmt.Errorf("decoding %s fragment: %w", columnType, err))
		}
	}
	return current, nil
}

func (c *Client) validateAndUpdate(ctx context.Context, columnType string, data map[string]interface{}, test bool) (*Response, error) {
	schema, err := column.Resolve(columnType)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	if _, err := schema.DecodeColumn(raw); err != nil {
		return nil, err
	}
	return c.Update(ctx, columnType, data, test)
}
