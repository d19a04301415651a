package runner

import (
	"context"
	"encoding/json"
	"time"

	"github.com/erikjseidel/salt-netdb/pkg/column"
	"github.com/erikjseidel/salt-netdb/pkg/netdb"
	"github.com/erikjseidel/salt-netdb/pkg/result"
	"github.com/erikjseidel/salt-netdb/pkg/util"
)

// GetInterface returns netdb's interface entries for device, optionally
// narrowed to one interface.
func (r *Runner) GetInterface(ctx context.Context, device, iface string) *result.Return {
	return answer(r.netdb.Query(ctx, string(column.TypeInterface), netdb.Filter{
		SetID:   util.NormalizeSetID(device),
		Element: iface,
	}))
}

// interfaceEntry fetches device's interface fragment and returns it with
// the named entry inside it.
func (r *Runner) interfaceEntry(ctx context.Context, device, iface string) (map[string]interface{}, map[string]interface{}, *result.Return) {
	resp, err := r.netdb.Query(ctx, string(column.TypeInterface), netdb.Filter{SetID: device, Element: iface})
	if err != nil {
		return nil, nil, result.FromError(err)
	}
	if !resp.Result {
		return nil, nil, resp.Envelope()
	}
	var data map[string]interface{}
	if err := json.Unmarshal(resp.Out, &data); err != nil {
		return nil, nil, result.FromError(util.NewBackendError("netdb", err))
	}
	ifaces, _ := data[device].(map[string]interface{})
	entry, ok := ifaces[iface].(map[string]interface{})
	if !ok {
		return nil, nil, &result.Return{Result: false, Error: true, Comment: "Interface " + iface + " not found on " + device}
	}
	return data, entry, nil
}

// NewAddr assigns address to an interface. ptr and roles become the
// address' meta data.
func (r *Runner) NewAddr(ctx context.Context, device, iface, address, ptr string, roles []string, test bool) *result.Return {
	device = util.NormalizeSetID(device)
	data, entry, fail := r.interfaceEntry(ctx, device, iface)
	if fail != nil {
		return fail
	}
	prefix, err := util.ParseInterfaceAddress(address)
	if err != nil {
		return &result.Return{Result: false, Error: true, Comment: "Invalid IP address"}
	}
	key := prefix.String()

	addrs, _ := entry["address"].(map[string]interface{})
	if addrs == nil {
		addrs = map[string]interface{}{}
		entry["address"] = addrs
	}
	if _, ok := addrs[key]; ok {
		return &result.Return{Result: false, Error: true, Comment: "This IP address is already assigned to " + iface}
	}

	var value interface{}
	if ptr != "" || len(roles) > 0 {
		meta := map[string]interface{}{}
		if ptr != "" {
			meta["dns"] = map[string]interface{}{"ptr": ptr}
		}
		if len(roles) > 0 {
			meta["role"] = roles
		}
		value = map[string]interface{}{"meta": meta}
	}
	addrs[key] = value

	return r.updateInterfaces(ctx, "iface.addr.add", device, iface+" "+key, data, test)
}

// DeleteAddr removes address from an interface.
func (r *Runner) DeleteAddr(ctx context.Context, device, iface, address string, test bool) *result.Return {
	device = util.NormalizeSetID(device)
	data, entry, fail := r.interfaceEntry(ctx, device, iface)
	if fail != nil {
		return fail
	}
	prefix, err := util.ParseInterfaceAddress(address)
	if err != nil {
		return &result.Return{Result: false, Error: true, Comment: "Invalid IP address"}
	}
	key := prefix.String()

	addrs, _ := entry["address"].(map[string]interface{})
	if _, ok := addrs[key]; !ok {
		return &result.Return{Result: false, Error: true, Comment: "No such IP address assigned to " + iface}
	}
	delete(addrs, key)
	if len(addrs) == 0 {
		delete(entry, "address")
	}

	return r.updateInterfaces(ctx, "iface.addr.delete", device, iface+" "+key, data, test)
}

// updateInterfaces validates the edited fragment and writes it unless
// testing. A test run answers with the fragment it would have written.
func (r *Runner) updateInterfaces(ctx context.Context, operation, device, target string, data map[string]interface{}, test bool) *result.Return {
	raw, err := json.Marshal(data)
	if err != nil {
		return result.FromError(err)
	}
	schema, err := column.Resolve(string(column.TypeInterface))
	if err != nil {
		return result.FromError(err)
	}
	if _, err := schema.DecodeColumn(raw); err != nil {
		return result.FromError(err)
	}
	if test {
		return &result.Return{Result: false, Comment: CommentTestRun, Out: data}
	}

	start := time.Now()
	ret := answer(r.netdb.Update(ctx, string(column.TypeInterface), data, false))
	r.record(operation, device, target, false, ret, start)
	return ret
}
