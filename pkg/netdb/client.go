// Package netdb talks to the netdb configuration database and to the
// netdb-util service that fronts netdb's connectors (repo, netbox, peering
// manager, cloudflare DNS, ripestat, ipam).
//
// Both services answer with the {result, comment, error, out} envelope.
// Transport failures, unexpected HTTP statuses and empty bodies are
// returned as backend errors; a well-formed answer with result false is
// passed through, except on the column read path where it becomes a
// ColumnNotFoundError.
package netdb

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/erikjseidel/salt-netdb/pkg/result"
	"github.com/erikjseidel/salt-netdb/pkg/util"
)

// DefaultTimeout bounds a single request when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Config holds the connection settings shared by Client and UtilClient.
type Config struct {
	URL          string
	UtilURL      string
	LocalURL     string
	LocalEnabled bool

	// Key is a PEM file holding both the client certificate and its key.
	Key string

	// CA is an optional CA bundle. Server certificates are not verified
	// when it is empty.
	CA string

	Timeout time.Duration
}

// BaseURL returns the netdb base URL, preferring the local instance when
// it is enabled.
func (c Config) BaseURL() string {
	if c.LocalEnabled && c.LocalURL != "" {
		return c.LocalURL
	}
	return c.URL
}

// Response is a decoded service answer. Out is kept raw so callers can
// decode it into typed columns.
type Response struct {
	Result  bool            `json:"result"`
	Comment string          `json:"comment,omitempty"`
	Error   bool            `json:"error,omitempty"`
	Out     json.RawMessage `json:"out,omitempty"`
}

// Envelope converts the answer into a result.Return with a generic Out.
func (r *Response) Envelope() *result.Return {
	ret := &result.Return{Result: r.Result, Comment: r.Comment, Error: r.Error}
	if len(r.Out) > 0 {
		var out interface{}
		if err := json.Unmarshal(r.Out, &out); err == nil {
			ret.Out = out
		}
	}
	return ret
}

// DecodeOut unmarshals Out into v.
func (r *Response) DecodeOut(v interface{}) error {
	if len(r.Out) == 0 {
		return fmt.Errorf("%w: response has no out", util.ErrNotFound)
	}
	return json.Unmarshal(r.Out, v)
}

func newHTTPClient(cfg Config) (*http.Client, error) {
	tlsConfig, err := configureTLS(cfg.Key, cfg.CA)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Transport: &http.Transport{TLSClientConfig: tlsConfig},
		Timeout:   timeout,
	}, nil
}

func configureTLS(keyFile, caFile string) (*tls.Config, error) {
	cfg := &tls.Config{InsecureSkipVerify: true}
	if caFile != "" {
		pem, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("reading CA bundle: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.New("could not load CA certificates")
		}
		cfg = &tls.Config{RootCAs: pool}
	}
	if keyFile != "" {
		cert, err := tls.LoadX509KeyPair(keyFile, keyFile)
		if err != nil {
			return nil, fmt.Errorf("loading client key pair: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}

// transport performs one JSON request and decodes the envelope.
type transport struct {
	service string
	base    string
	client  *http.Client
}

func (t *transport) do(ctx context.Context, method, endpoint string, body interface{}, params url.Values, accepted ...int) (*Response, error) {
	target := t.base + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	reqID := uuid.NewString()
	log := util.WithFields(map[string]interface{}{
		"service": t.service,
		"request": reqID,
		"method":  method,
		"url":     target,
	})
	log.Debug("sending request")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, util.NewBackendError(t.service, err)
	}
	defer resp.Body.Close()
	log.WithField("status", resp.StatusCode).Debug("received response")

	if !statusAccepted(resp.StatusCode, accepted) {
		return nil, util.NewBackendError(t.service,
			fmt.Errorf("%s: %d: %s", target, resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, util.NewBackendError(t.service, err)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, util.NewBackendError(t.service, fmt.Errorf("decoding response: %w", err))
	}
	if len(probe) == 0 {
		return nil, util.NewBackendError(t.service,
			fmt.Errorf("unexpected empty JSON response. Status code %d", resp.StatusCode))
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, util.NewBackendError(t.service, fmt.Errorf("decoding response: %w", err))
	}
	return &out, nil
}

func statusAccepted(code int, accepted []int) bool {
	for _, c := range accepted {
		if c == code {
			return true
		}
	}
	return false
}
