package runner

import (
	"context"
	"net/http"
	"time"

	"github.com/erikjseidel/salt-netdb/pkg/result"
)

const repoEndpoint = "connectors/repo/"

// GenerateColumn shows a column as the YAML repository connector would
// load it.
func (r *Runner) GenerateColumn(ctx context.Context, columnType string) *result.Return {
	if !validColumn(columnType) {
		return result.Fail("Invalid column")
	}
	return r.callUtil(ctx, http.MethodGet, repoEndpoint+columnType, nil, nil, true)
}

// ReloadColumn replaces the repository's data in a column with a fresh
// copy. Unless verbose the generated data is left out of a successful
// answer.
func (r *Runner) ReloadColumn(ctx context.Context, columnType string, verbose, test bool) *result.Return {
	if !validColumn(columnType) {
		return result.Fail("Invalid column")
	}
	start := time.Now()
	ret := r.callUtil(ctx, http.MethodPost, repoEndpoint+columnType, nil, nil, test)
	r.record("repo.reload", "", columnType, test, ret, start)
	return terse(ret, verbose)
}

// terse drops everything but the result from a clean success.
func terse(ret *result.Return, verbose bool) *result.Return {
	if ret.Result && !ret.Error && !verbose {
		return &result.Return{Result: true, Comment: ret.Comment}
	}
	return ret
}
