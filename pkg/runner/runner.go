// Package runner implements the master side functions that act on netdb
// as a whole rather than on one router: bulk column loading, interface
// address management and the netdb-util connectors (repo, IPAM, RIPEstat,
// Peering Manager, Netbox and Cloudflare DNS).
package runner

import (
	"context"
	"net/url"
	"time"

	"github.com/erikjseidel/salt-netdb/pkg/audit"
	"github.com/erikjseidel/salt-netdb/pkg/netdb"
	"github.com/erikjseidel/salt-netdb/pkg/result"
	"github.com/erikjseidel/salt-netdb/pkg/util"
)

// CommentTestRun answers writes that were only validated.
const CommentTestRun = "Test run. Database not updated."

// Netdb is the part of the netdb client runners use.
type Netdb interface {
	Get(ctx context.Context, endpoint string) (*netdb.Response, error)
	Query(ctx context.Context, columnType string, f netdb.Filter) (*netdb.Response, error)
	Save(ctx context.Context, columnType string, data interface{}, test bool) (*netdb.Response, error)
	Update(ctx context.Context, columnType string, data interface{}, test bool) (*netdb.Response, error)
}

// Util is the netdb-util client.
type Util interface {
	Request(ctx context.Context, method, endpoint string, data interface{}, params url.Values, test bool) (*netdb.Response, error)
}

// Config holds the collaborators of a Runner. Either client may be nil
// when the functions needing it are not used.
type Config struct {
	Netdb Netdb
	Util  Util
	User  string

	// Audit receives one event per committed write. When nil the process
	// default logger is used.
	Audit audit.Logger
}

// Runner runs the netdb wide functions.
type Runner struct {
	netdb Netdb
	util  Util
	user  string
	audit audit.Logger
}

// New returns a Runner.
func New(cfg Config) *Runner {
	return &Runner{netdb: cfg.Netdb, util: cfg.Util, user: cfg.User, audit: cfg.Audit}
}

func answer(resp *netdb.Response, err error) *result.Return {
	if err != nil {
		return result.FromError(err)
	}
	return resp.Envelope()
}

func (r *Runner) callUtil(ctx context.Context, method, endpoint string, data interface{}, params url.Values, test bool) *result.Return {
	if r.util == nil {
		return &result.Return{Result: false, Error: true, Comment: "netdb-util is not configured"}
	}
	return answer(r.util.Request(ctx, method, endpoint, data, params, test))
}

// record audits a write. Dry runs are not recorded.
func (r *Runner) record(operation, setID, target string, test bool, ret *result.Return, start time.Time) {
	if test {
		return
	}
	event := audit.NewEvent(r.user, setID, operation, target).
		WithOptions(test, false, false).
		WithResult(ret).
		WithDuration(time.Since(start))

	var err error
	if r.audit != nil {
		err = r.audit.Log(event)
	} else {
		err = audit.Log(event)
	}
	if err != nil {
		util.WithOperation(operation).Warnf("audit: %v", err)
	}
}
