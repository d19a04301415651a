package netdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/erikjseidel/salt-netdb/pkg/util"
)

// MethodError is returned for HTTP methods the util service does not take.
type MethodError struct {
	Method string
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("Internal runner error: %s not allowed.", e.Method)
}

func (e *MethodError) Unwrap() error {
	return util.ErrUnsupported
}

// UtilClient is a netdb-util API client.
type UtilClient struct {
	t transport
}

// NewUtil creates a netdb-util client from cfg.
func NewUtil(cfg Config) (*UtilClient, error) {
	hc, err := newHTTPClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewUtilWithHTTPClient(cfg.UtilURL, hc), nil
}

// NewUtilWithHTTPClient creates a util client for baseURL using hc.
func NewUtilWithHTTPClient(baseURL string, hc *http.Client) *UtilClient {
	return &UtilClient{t: transport{service: "netdb-util", base: baseURL, client: hc}}
}

// Request sends data to endpoint. Unless test is set the service is told
// to commit with test=false; otherwise it performs a dry run.
func (u *UtilClient) Request(ctx context.Context, method, endpoint string, data interface{}, params url.Values, test bool) (*Response, error) {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return nil, &MethodError{Method: method}
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = append([]string(nil), v...)
	}
	if !test {
		q.Set("test", "false")
	}
	return u.t.do(ctx, method, endpoint, data, q,
		http.StatusOK, http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity)
}

// Get is Request with GET and no body.
func (u *UtilClient) Get(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	return u.Request(ctx, http.MethodGet, endpoint, nil, params, true)
}
