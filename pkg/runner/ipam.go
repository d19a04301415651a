package runner

import (
	"context"
	"net/http"
	"net/url"

	"github.com/erikjseidel/salt-netdb/pkg/result"
	"github.com/erikjseidel/salt-netdb/pkg/util"
)

const ipamEndpoint = "utility/ipam/"

// NoticeIPAMAccuracy accompanies every chooser answer.
const NoticeIPAMAccuracy = `This utility returns only ip space that is managed by salt-netdb. In order for
it to return accurate free space, the entirety of the queried prefix must be
managed by salt-netdb.
`

// IPAMReport lists the managed addresses, optionally for one device only.
func (r *Runner) IPAMReport(ctx context.Context, device string) *result.Return {
	var params url.Values
	if device != "" {
		params = url.Values{"device": {util.NormalizeSetID(device)}}
	}
	return r.callUtil(ctx, http.MethodGet, ipamEndpoint+"report", nil, params, true)
}

// IPAMChooser lists the free space within prefix.
func (r *Runner) IPAMChooser(ctx context.Context, prefix string) *result.Return {
	ret := r.callUtil(ctx, http.MethodGet, ipamEndpoint+"chooser", nil, url.Values{"prefix": {prefix}}, true)
	ret.Notice = NoticeIPAMAccuracy
	return ret
}
