package runner

import (
	"context"
	"net/http"
	"net/netip"
	"net/url"
	"time"

	"github.com/erikjseidel/salt-netdb/pkg/result"
)

const cfdnsEndpoint = "connectors/cfdns/"

// CFZone is a Cloudflare managed reverse zone.
type CFZone struct {
	Prefix  string `json:"prefix"`
	Zone    string `json:"zone"`
	Account string `json:"account"`
	Managed bool   `json:"managed"`
}

// CFSynchronize brings the managed PTR zones in line with netdb.
func (r *Runner) CFSynchronize(ctx context.Context, test bool) *result.Return {
	start := time.Now()
	ret := r.callUtil(ctx, http.MethodPost, cfdnsEndpoint+"update", nil, nil, test)
	r.record("cfdns.sync", "", "", test, ret, start)
	return ret
}

// CFPTRs returns the managed zones with their PTR records.
func (r *Runner) CFPTRs(ctx context.Context) *result.Return {
	return r.callUtil(ctx, http.MethodGet, cfdnsEndpoint+"records", nil, nil, true)
}

// CFZones returns the managed zones.
func (r *Runner) CFZones(ctx context.Context) *result.Return {
	return r.callUtil(ctx, http.MethodGet, cfdnsEndpoint+"zones", nil, nil, true)
}

// CFUpsertZone adds or updates the zone of a prefix.
func (r *Runner) CFUpsertZone(ctx context.Context, z CFZone, test bool) *result.Return {
	if _, err := netip.ParsePrefix(z.Prefix); err != nil {
		return result.Fail("Invalid prefix: " + z.Prefix)
	}
	start := time.Now()
	ret := r.callUtil(ctx, http.MethodPost, cfdnsEndpoint+"zones", z, nil, test)
	r.record("cfdns.zone.upsert", "", z.Prefix, test, ret, start)
	return ret
}

// CFDeleteZone deletes the zone of a prefix.
func (r *Runner) CFDeleteZone(ctx context.Context, prefix string, test bool) *result.Return {
	if _, err := netip.ParsePrefix(prefix); err != nil {
		return result.Fail("Invalid prefix: " + prefix)
	}
	start := time.Now()
	ret := r.callUtil(ctx, http.MethodDelete, cfdnsEndpoint+"zones", nil, url.Values{"prefix": {prefix}}, test)
	r.record("cfdns.zone.delete", "", prefix, test, ret, start)
	return ret
}
