package runner

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/erikjseidel/salt-netdb/pkg/result"
	"github.com/erikjseidel/salt-netdb/pkg/util"
)

const pmEndpoint = "connectors/pm/"

// Peering Manager session statuses.
const (
	PMStatusEnabled     = "enabled"
	PMStatusMaintenance = "maintenance"
)

// DefaultLocalASN is the local ASN of new direct sessions.
const DefaultLocalASN = 36198

// PMPolicy is a Peering Manager routing policy.
type PMPolicy struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Family  string `json:"family"`
	Weight  *int   `json:"weight,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// PMASN is a Peering Manager autonomous system.
type PMASN struct {
	ASN             int64  `json:"asn"`
	Name            string `json:"name"`
	Comment         string `json:"comment,omitempty"`
	IPv4PrefixLimit *int   `json:"ipv4_prefix_limit,omitempty"`
	IPv6PrefixLimit *int   `json:"ipv6_prefix_limit,omitempty"`
}

// PMSession is a direct (non-IXP) eBGP session. On update PeerASN, Type
// and LocalASN are ignored, and "0" clears a policy.
type PMSession struct {
	Device   string `json:"device"`
	RemoteIP string `json:"remote_ip"`
	LocalIP  string `json:"local_ip,omitempty"`
	PeerASN  int64  `json:"peer_asn,omitempty"`
	Import   string `json:"import,omitempty"`
	Export   string `json:"export,omitempty"`
	Type     string `json:"type,omitempty"`
	Comment  string `json:"comment,omitempty"`
	TTL      *int   `json:"ttl,omitempty"`
	Status   string `json:"status,omitempty"`
	LocalASN int64  `json:"local_asn,omitempty"`
}

// PMGenerateDirectSessions shows the direct sessions in netdb format.
func (r *Runner) PMGenerateDirectSessions(ctx context.Context) *result.Return {
	return r.callUtil(ctx, http.MethodGet, pmEndpoint+"sessions/direct", nil, nil, true)
}

// PMGenerateIXPSessions shows the IXP sessions in netdb format.
func (r *Runner) PMGenerateIXPSessions(ctx context.Context) *result.Return {
	return r.callUtil(ctx, http.MethodGet, pmEndpoint+"sessions/ixp", nil, nil, true)
}

// PMReloadBGP replaces Peering Manager's data in the bgp column.
func (r *Runner) PMReloadBGP(ctx context.Context, verbose, test bool) *result.Return {
	return r.pmWrite(ctx, "pm.reload", "", http.MethodPost, "sessions/reload", nil, nil, test, verbose)
}

// PMSetStatus sets a session's status and synchronizes netdb.
func (r *Runner) PMSetStatus(ctx context.Context, device, neighbor, status string, test bool) *result.Return {
	switch status {
	case PMStatusEnabled, PMStatusMaintenance:
	default:
		return result.Fail(fmt.Sprintf("unsupported session status %q", status))
	}
	device = util.NormalizeSetID(device)
	params := url.Values{"device": {device}, "ip": {neighbor}, "status": {status}}
	return r.pmWrite(ctx, "pm.status", device, http.MethodPut, "sessions/status", nil, params, test, true)
}

// PMCreatePolicy adds a routing policy.
func (r *Runner) PMCreatePolicy(ctx context.Context, p PMPolicy, test bool) *result.Return {
	return r.pmWrite(ctx, "pm.policy.create", "", http.MethodPost, "policy", p, nil, test, true)
}

// PMDeletePolicy deletes a routing policy.
func (r *Runner) PMDeletePolicy(ctx context.Context, name string, test bool) *result.Return {
	return r.pmWrite(ctx, "pm.policy.delete", "", http.MethodDelete, "policy", nil, url.Values{"name": {name}}, test, true)
}

// PMCreateASN adds an autonomous system.
func (r *Runner) PMCreateASN(ctx context.Context, a PMASN, test bool) *result.Return {
	if err := util.ValidateASN(a.ASN); err != nil {
		return result.FromError(util.NewValidationError(err.Error()))
	}
	return r.pmWrite(ctx, "pm.asn.create", "", http.MethodPost, "asn", a, nil, test, true)
}

// PMSyncASN refreshes an autonomous system from PeeringDB.
func (r *Runner) PMSyncASN(ctx context.Context, asn int64, test bool) *result.Return {
	if err := util.ValidateASN(asn); err != nil {
		return result.FromError(util.NewValidationError(err.Error()))
	}
	return r.pmWrite(ctx, "pm.asn.sync", "", http.MethodPost, fmt.Sprintf("asn/%d/sync", asn), nil, nil, test, true)
}

// PMAddDirectSession adds a direct session. Type defaults to
// "transit-session" and LocalASN to DefaultLocalASN.
func (r *Runner) PMAddDirectSession(ctx context.Context, s PMSession, test bool) *result.Return {
	s.Device = util.NormalizeSetID(s.Device)
	if s.Type == "" {
		s.Type = "transit-session"
	}
	if s.LocalASN == 0 {
		s.LocalASN = DefaultLocalASN
	}
	v := &util.ValidationBuilder{}
	v.Add(s.Device != "", "device: required")
	v.Add(s.RemoteIP != "", "remote_ip: required")
	v.Add(s.PeerASN != 0, "peer_asn: required")
	if err := v.Build(); err != nil {
		return result.FromError(err)
	}
	return r.pmWrite(ctx, "pm.session.add", s.Device, http.MethodPost, "sessions/direct", s, nil, test, true)
}

// PMUpdateDirectSession updates a direct session.
func (r *Runner) PMUpdateDirectSession(ctx context.Context, s PMSession, test bool) *result.Return {
	s.Device = util.NormalizeSetID(s.Device)
	s.PeerASN, s.Type, s.LocalASN = 0, "", 0
	return r.pmWrite(ctx, "pm.session.update", s.Device, http.MethodPut, "sessions/direct", s, nil, test, true)
}

// PMDeleteDirectSession deletes a direct session and synchronizes netdb.
func (r *Runner) PMDeleteDirectSession(ctx context.Context, device, neighbor string, test bool) *result.Return {
	device = util.NormalizeSetID(device)
	params := url.Values{"device": {device}, "ip": {neighbor}}
	return r.pmWrite(ctx, "pm.session.delete", device, http.MethodDelete, "sessions/direct", nil, params, test, true)
}

func (r *Runner) pmWrite(ctx context.Context, operation, setID, method, endpoint string, data interface{}, params url.Values, test, verbose bool) *result.Return {
	start := time.Now()
	ret := r.callUtil(ctx, method, pmEndpoint+endpoint, data, params, test)
	target := endpoint
	if ip := params.Get("ip"); ip != "" {
		target = ip
	}
	r.record(operation, setID, target, test, ret, start)
	return terse(ret, verbose)
}
