package runner

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/erikjseidel/salt-netdb/pkg/result"
	"github.com/erikjseidel/salt-netdb/pkg/util"
)

const netboxEndpoint = "netbox/"

func (r *Runner) netboxGenerate(ctx context.Context, function string, data interface{}) *result.Return {
	return r.callUtil(ctx, http.MethodGet, netboxEndpoint+function, data, nil, true)
}

// netboxRun triggers a netbox-side function. Without test the changes are
// committed.
func (r *Runner) netboxRun(ctx context.Context, function string, data interface{}, params url.Values, test bool) *result.Return {
	start := time.Now()
	ret := r.callUtil(ctx, http.MethodGet, netboxEndpoint+function, data, params, test)
	r.record("netbox."+function, "", "", test, ret, start)
	return ret
}

// NetboxGenerateDevices shows the device column generated from Netbox.
func (r *Runner) NetboxGenerateDevices(ctx context.Context) *result.Return {
	return r.netboxGenerate(ctx, "generate_devices", nil)
}

// NetboxGenerateInterfaces shows the interfaces Netbox holds for device.
func (r *Runner) NetboxGenerateInterfaces(ctx context.Context, device string) *result.Return {
	return r.netboxGenerate(ctx, "generate_interfaces", map[string]string{"device": util.NormalizeSetID(device)})
}

// NetboxGenerateISIS shows the IS-IS configuration generated from Netbox.
func (r *Runner) NetboxGenerateISIS(ctx context.Context) *result.Return {
	return r.netboxGenerate(ctx, "generate_igp", nil)
}

// NetboxGenerateEBGP shows the internal eBGP configuration generated from
// Netbox.
func (r *Runner) NetboxGenerateEBGP(ctx context.Context) *result.Return {
	return r.netboxGenerate(ctx, "generate_ebgp", nil)
}

// NetboxSyncDevices loads the generated devices into netdb.
func (r *Runner) NetboxSyncDevices(ctx context.Context, test bool) *result.Return {
	return r.netboxRun(ctx, "synchronize_devices", nil, nil, test)
}

// NetboxSyncInterfaces loads the generated interfaces of devices into
// netdb.
func (r *Runner) NetboxSyncInterfaces(ctx context.Context, devices []string, test bool) *result.Return {
	if len(devices) == 0 {
		return result.Fail("No devices selected.")
	}
	ids := make([]string, len(devices))
	for i, d := range devices {
		ids[i] = util.NormalizeSetID(d)
	}
	return r.netboxRun(ctx, "synchronize_interfaces", map[string][]string{"devices": ids}, nil, test)
}

// NetboxSyncISIS loads the generated IS-IS configuration into netdb.
func (r *Runner) NetboxSyncISIS(ctx context.Context, test bool) *result.Return {
	return r.netboxRun(ctx, "synchronize_igp", nil, nil, test)
}

// NetboxSyncEBGP loads the generated internal eBGP configuration into
// netdb.
func (r *Runner) NetboxSyncEBGP(ctx context.Context, test bool) *result.Return {
	return r.netboxRun(ctx, "synchronize_ebgp", nil, nil, test)
}

// NetboxUpdatePTRs runs Netbox's PTR regularization script.
func (r *Runner) NetboxUpdatePTRs(ctx context.Context, test bool) *result.Return {
	return r.netboxRun(ctx, "update_ptrs", nil, nil, test)
}

// NetboxUpdateDescriptions runs Netbox's interface description script.
func (r *Runner) NetboxUpdateDescriptions(ctx context.Context, test bool) *result.Return {
	return r.netboxRun(ctx, "update_iface_descriptions", nil, nil, test)
}

// NetboxRenumber creates new addresses from the ipv4 and ipv6 prefixes on
// the targeted interfaces and marks the old ones for pruning.
func (r *Runner) NetboxRenumber(ctx context.Context, ipv4, ipv6 string, test bool) *result.Return {
	return r.netboxRun(ctx, "renumber", nil, url.Values{"ipv4": {ipv4}, "ipv6": {ipv6}}, test)
}

// NetboxPruneIPs removes the addresses a renumber marked.
func (r *Runner) NetboxPruneIPs(ctx context.Context, test bool) *result.Return {
	return r.netboxRun(ctx, "prune_ips", nil, nil, test)
}
