package runner

import (
	"context"
	"net/http"
	"net/url"

	"github.com/erikjseidel/salt-netdb/pkg/result"
)

// RIPEPaths returns the AS paths RIPEstat sees for prefix.
func (r *Runner) RIPEPaths(ctx context.Context, prefix string) *result.Return {
	return r.callUtil(ctx, http.MethodGet, "utility/ripe/paths", nil, url.Values{"prefix": {prefix}}, true)
}
