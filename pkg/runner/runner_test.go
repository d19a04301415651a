package runner

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/mux"

	"github.com/erikjseidel/salt-netdb/pkg/audit"
	"github.com/erikjseidel/salt-netdb/pkg/netdb"
	"github.com/erikjseidel/salt-netdb/pkg/result"
)

type recorded struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
}

type fakeServices struct {
	mu       sync.Mutex
	requests []recorded
	answer   map[string]interface{}
}

func (f *fakeServices) record(r *http.Request) recorded {
	var body interface{}
	raw, _ := io.ReadAll(r.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}
	rec := recorded{r.Method, r.URL.Path, r.URL.Query(), body}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()
	return rec
}

func (f *fakeServices) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeServices) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func interfaceColumn() map[string]interface{} {
	return map[string]interface{}{
		"SIN1": map[string]interface{}{
			"eth1": map[string]interface{}{
				"type":    "ethernet",
				"address": map[string]interface{}{"10.0.0.1/31": nil},
			},
		},
	}
}

type memAudit struct {
	events []*audit.Event
}

func (a *memAudit) Log(e *audit.Event) error                   { a.events = append(a.events, e); return nil }
func (a *memAudit) Query(audit.Filter) ([]*audit.Event, error) { return a.events, nil }
func (a *memAudit) Close() error                               { return nil }

func newTestRunner(t *testing.T) (*Runner, *fakeServices, *memAudit) {
	t.Helper()
	f := &fakeServices{answer: map[string]interface{}{"result": true, "comment": "ok", "out": map[string]interface{}{"n": 1}}}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/{column}", func(w http.ResponseWriter, r *http.Request) {
		rec := f.record(r)
		filter, _ := rec.Body.([]interface{})
		if mux.Vars(r)["column"] != "interface" {
			writeJSON(w, 404, map[string]interface{}{"result": false, "comment": "column empty"})
			return
		}
		if len(filter) > 0 && filter[0] != "SIN1" {
			writeJSON(w, 404, map[string]interface{}{"result": false, "comment": "no data found"})
			return
		}
		writeJSON(w, 200, map[string]interface{}{"result": true, "out": interfaceColumn()})
	}).Methods("GET")
	write := func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, 200, map[string]interface{}{"result": true, "comment": "column updated"})
	}
	api.HandleFunc("/{column}", write).Methods("POST", "PUT")
	api.HandleFunc("/{column}/validate", write).Methods("POST", "PUT")

	r.PathPrefix("/util/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, 200, f.answer)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	mem := &memAudit{}
	return New(Config{
		Netdb: netdb.NewWithHTTPClient(srv.URL+"/api/", srv.Client()),
		Util:  netdb.NewUtilWithHTTPClient(srv.URL+"/util/", srv.Client()),
		User:  "alice",
		Audit: mem,
	}), f, mem
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, "interfaces.yaml", "SIN1:\n  eth2:\n    type: ethernet\n    mtu: 9000\n")

	tests := []struct {
		name     string
		column   string
		path     string
		test     bool
		update   bool
		want     *result.Return
		wantPath string
		wantMeth string
	}{
		{
			name: "load test", column: "interface", path: path, test: true,
			want:     &result.Return{Result: true, Comment: "column updated"},
			wantPath: "/api/interface/validate", wantMeth: "POST",
		},
		{
			name: "load", column: "interface", path: path,
			want:     &result.Return{Result: true, Comment: "column updated"},
			wantPath: "/api/interface", wantMeth: "POST",
		},
		{
			name: "update", column: "interface", path: path, update: true,
			want:     &result.Return{Result: true, Comment: "column updated", Out: interfaceFile()},
			wantPath: "/api/interface", wantMeth: "PUT",
		},
		{
			name: "invalid column", column: "igp", path: path,
			want: &result.Return{Result: false, Comment: "Invalid column"},
		},
		{
			name: "missing file", column: "interface", path: filepath.Join(t.TempDir(), "nope.yaml"),
			want: &result.Return{Result: false, Error: true, Comment: "File not found."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, f, _ := newTestRunner(t)
			var got *result.Return
			if tt.update {
				got = r.UpdateFromYAML(ctx, tt.column, tt.path, tt.test)
			} else {
				got = r.LoadYAML(ctx, tt.column, tt.path, tt.test)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
			if tt.wantPath == "" {
				if f.count() != 0 {
					t.Errorf("netdb should not be called, got %+v", f.requests)
				}
				return
			}
			req := f.last()
			if req.Method != tt.wantMeth || req.Path != tt.wantPath {
				t.Errorf("request = %s %s, want %s %s", req.Method, req.Path, tt.wantMeth, tt.wantPath)
			}
			if diff := cmp.Diff(interfaceFile(), req.Body); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func interfaceFile() interface{} {
	return map[string]interface{}{
		"SIN1": map[string]interface{}{
			"eth2": map[string]interface{}{"type": "ethernet", "mtu": float64(9000)},
		},
	}
}

func TestGetColumnAndQuery(t *testing.T) {
	ctx := context.Background()
	r, f, _ := newTestRunner(t)

	got := r.GetColumn(ctx, "interface", true)
	if !got.Result {
		t.Fatalf("GetColumn() = %+v", got)
	}
	if s, _ := got.Out.(string); !strings.Contains(s, "SIN1:\n    eth1:\n") {
		t.Errorf("raw output is not YAML:\n%v", got.Out)
	}
	if f.last().Body != nil {
		t.Errorf("column read should carry no filter, got %v", f.last().Body)
	}

	tests := []struct {
		setID      string
		wantFilter []interface{}
		wantResult bool
	}{
		{"sin1", []interface{}{"SIN1", nil, nil, "eth1"}, true},
		{"_shared", []interface{}{"_shared", nil, nil, "eth1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.setID, func(t *testing.T) {
			got := r.Query(ctx, "interface", tt.setID, "", "", "eth1", false)
			if got.Result != tt.wantResult {
				t.Errorf("Query() = %+v", got)
			}
			if diff := cmp.Diff(tt.wantFilter, f.last().Body); diff != "" {
				t.Errorf("filter mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if got := r.GetColumn(ctx, "bgp", false); got.Result || got.Comment != "column empty" {
		t.Errorf("GetColumn(bgp) = %+v", got)
	}
	if got := r.Query(ctx, "routes", "", "", "", "", false); got.Comment != "Invalid column" {
		t.Errorf("Query(routes) = %+v", got)
	}
}

func TestNewAddr(t *testing.T) {
	ctx := context.Background()

	t.Run("test run", func(t *testing.T) {
		r, f, mem := newTestRunner(t)
		got := r.NewAddr(ctx, "sin1", "eth1", "2001:db8::1/127", "eth1.sin1.example.net", []string{"core"}, true)
		if got.Result || got.Comment != CommentTestRun {
			t.Fatalf("NewAddr() = %+v", got)
		}
		out := got.Out.(map[string]interface{})
		addrs := out["SIN1"].(map[string]interface{})["eth1"].(map[string]interface{})["address"].(map[string]interface{})
		want := map[string]interface{}{
			"10.0.0.1/31": nil,
			"2001:db8::1/127": map[string]interface{}{"meta": map[string]interface{}{
				"dns":  map[string]interface{}{"ptr": "eth1.sin1.example.net"},
				"role": []string{"core"},
			}},
		}
		if diff := cmp.Diff(want, addrs); diff != "" {
			t.Errorf("addresses mismatch (-want +got):\n%s", diff)
		}
		if f.last().Method != http.MethodGet {
			t.Error("a test run must not write to netdb")
		}
		if len(mem.events) != 0 {
			t.Errorf("test runs are not audited, got %+v", mem.events)
		}
	})

	t.Run("commit", func(t *testing.T) {
		r, f, mem := newTestRunner(t)
		got := r.NewAddr(ctx, "sin1", "eth1", "10.0.1.1/24", "", nil, false)
		if !got.Result {
			t.Fatalf("NewAddr() = %+v", got)
		}
		req := f.last()
		if req.Method != http.MethodPut || req.Path != "/api/interface" {
			t.Errorf("request = %s %s", req.Method, req.Path)
		}
		if !strings.Contains(mustJSON(t, req.Body), `"10.0.1.1/24":null`) {
			t.Errorf("new address missing from update: %s", mustJSON(t, req.Body))
		}
		if len(mem.events) != 1 || mem.events[0].Operation != "iface.addr.add" || mem.events[0].Router != "SIN1" {
			t.Errorf("audit events = %+v", mem.events)
		}
	})

	tests := []struct {
		name    string
		device  string
		iface   string
		address string
		comment string
	}{
		{"duplicate", "sin1", "eth1", "10.0.0.1/31", "This IP address is already assigned to eth1"},
		{"bad address", "sin1", "eth1", "10.0.0.300/24", "Invalid IP address"},
		{"unknown interface", "sin1", "eth9", "10.0.1.1/24", "Interface eth9 not found on SIN1"},
		{"unknown device", "sin9", "eth1", "10.0.1.1/24", "no data found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTestRunner(t)
			got := r.NewAddr(ctx, tt.device, tt.iface, tt.address, "", nil, false)
			if got.Result || got.Comment != tt.comment {
				t.Errorf("NewAddr() = %+v, want comment %q", got, tt.comment)
			}
		})
	}
}

func TestDeleteAddr(t *testing.T) {
	ctx := context.Background()
	r, f, _ := newTestRunner(t)

	got := r.DeleteAddr(ctx, "SIN1", "eth1", "10.0.0.1/31", false)
	if !got.Result {
		t.Fatalf("DeleteAddr() = %+v", got)
	}
	body := mustJSON(t, f.last().Body)
	if body != `{"SIN1":{"eth1":{"type":"ethernet"}}}` {
		t.Errorf("update body = %s", body)
	}

	got = r.DeleteAddr(ctx, "SIN1", "eth1", "10.0.0.3/31", false)
	if got.Result || got.Comment != "No such IP address assigned to eth1" {
		t.Errorf("DeleteAddr(unassigned) = %+v", got)
	}
}

func TestUtilFunctions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		call       func(r *Runner) *result.Return
		wantMethod string
		wantPath   string
		wantQuery  url.Values
		wantBody   interface{}
	}{
		{
			name:       "ipam report",
			call:       func(r *Runner) *result.Return { return r.IPAMReport(ctx, "sin1") },
			wantMethod: "GET", wantPath: "/util/utility/ipam/report",
			wantQuery: url.Values{"device": {"SIN1"}},
		},
		{
			name:       "ripe paths",
			call:       func(r *Runner) *result.Return { return r.RIPEPaths(ctx, "23.181.64.0/24") },
			wantMethod: "GET", wantPath: "/util/utility/ripe/paths",
			wantQuery: url.Values{"prefix": {"23.181.64.0/24"}},
		},
		{
			name:       "repo generate",
			call:       func(r *Runner) *result.Return { return r.GenerateColumn(ctx, "bgp") },
			wantMethod: "GET", wantPath: "/util/connectors/repo/bgp",
			wantQuery: url.Values{},
		},
		{
			name: "pm maintenance",
			call: func(r *Runner) *result.Return {
				return r.PMSetStatus(ctx, "sin2", "169.254.169.254", PMStatusMaintenance, false)
			},
			wantMethod: "PUT", wantPath: "/util/connectors/pm/sessions/status",
			wantQuery: url.Values{"device": {"SIN2"}, "ip": {"169.254.169.254"}, "status": {"maintenance"}, "test": {"false"}},
		},
		{
			name: "pm add session",
			call: func(r *Runner) *result.Return {
				return r.PMAddDirectSession(ctx, PMSession{Device: "sin2", RemoteIP: "169.254.0.1", PeerASN: 64512}, true)
			},
			wantMethod: "POST", wantPath: "/util/connectors/pm/sessions/direct",
			wantQuery: url.Values{},
			wantBody: map[string]interface{}{
				"device": "SIN2", "remote_ip": "169.254.0.1", "peer_asn": float64(64512),
				"type": "transit-session", "local_asn": float64(DefaultLocalASN),
			},
		},
		{
			name:       "pm asn sync",
			call:       func(r *Runner) *result.Return { return r.PMSyncASN(ctx, 64512, false) },
			wantMethod: "POST", wantPath: "/util/connectors/pm/asn/64512/sync",
			wantQuery: url.Values{"test": {"false"}},
		},
		{
			name:       "netbox interfaces",
			call:       func(r *Runner) *result.Return { return r.NetboxSyncInterfaces(ctx, []string{"sin1", "sin2"}, false) },
			wantMethod: "GET", wantPath: "/util/netbox/synchronize_interfaces",
			wantQuery: url.Values{"test": {"false"}},
			wantBody:  map[string]interface{}{"devices": []interface{}{"SIN1", "SIN2"}},
		},
		{
			name:       "netbox renumber",
			call:       func(r *Runner) *result.Return { return r.NetboxRenumber(ctx, "10.0.0.0/24", "2001:db8::/64", true) },
			wantMethod: "GET", wantPath: "/util/netbox/renumber",
			wantQuery: url.Values{"ipv4": {"10.0.0.0/24"}, "ipv6": {"2001:db8::/64"}},
		},
		{
			name:       "cfdns delete zone",
			call:       func(r *Runner) *result.Return { return r.CFDeleteZone(ctx, "23.181.64.0/24", false) },
			wantMethod: "DELETE", wantPath: "/util/connectors/cfdns/zones",
			wantQuery: url.Values{"prefix": {"23.181.64.0/24"}, "test": {"false"}},
		},
		{
			name: "cfdns upsert zone",
			call: func(r *Runner) *result.Return {
				return r.CFUpsertZone(ctx, CFZone{Prefix: "23.181.64.0/24", Zone: "64.181.23.in-addr.arpa", Account: "acct", Managed: true}, true)
			},
			wantMethod: "POST", wantPath: "/util/connectors/cfdns/zones",
			wantQuery: url.Values{},
			wantBody: map[string]interface{}{
				"prefix": "23.181.64.0/24", "zone": "64.181.23.in-addr.arpa", "account": "acct", "managed": true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, f, _ := newTestRunner(t)
			got := tt.call(r)
			if !got.Result || got.Comment != "ok" {
				t.Errorf("answer = %+v", got)
			}
			req := f.last()
			if req.Method != tt.wantMethod || req.Path != tt.wantPath {
				t.Errorf("request = %s %s, want %s %s", req.Method, req.Path, tt.wantMethod, tt.wantPath)
			}
			if diff := cmp.Diff(tt.wantQuery, req.Query); diff != "" {
				t.Errorf("query mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantBody, req.Body); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIPAMChooserNotice(t *testing.T) {
	r, _, _ := newTestRunner(t)
	got := r.IPAMChooser(context.Background(), "23.181.64.0/24")
	if got.Notice != NoticeIPAMAccuracy {
		t.Errorf("Notice = %q", got.Notice)
	}
}

func TestTerseReload(t *testing.T) {
	ctx := context.Background()
	r, f, mem := newTestRunner(t)

	got := r.ReloadColumn(ctx, "bgp", false, false)
	if diff := cmp.Diff(&result.Return{Result: true, Comment: "ok"}, got); diff != "" {
		t.Errorf("terse mismatch (-want +got):\n%s", diff)
	}
	if got := r.ReloadColumn(ctx, "bgp", true, false); got.Out == nil {
		t.Errorf("verbose reload should keep out: %+v", got)
	}
	if len(mem.events) != 2 || mem.events[0].Operation != "repo.reload" || mem.events[0].Target != "bgp" {
		t.Errorf("audit events = %+v", mem.events)
	}

	f.answer = map[string]interface{}{"result": false, "comment": "connector failed", "error": true}
	got = r.PMReloadBGP(ctx, false, false)
	if got.Result || !got.Error || got.Comment != "connector failed" {
		t.Errorf("failed reload should be passed through: %+v", got)
	}
}

func TestRejectedInput(t *testing.T) {
	ctx := context.Background()
	r, f, _ := newTestRunner(t)

	tests := []struct {
		name string
		got  *result.Return
	}{
		{"pm status", r.PMSetStatus(ctx, "sin1", "10.0.0.1", "disabled", false)},
		{"pm asn", r.PMCreateASN(ctx, PMASN{ASN: 0, Name: "nobody"}, false)},
		{"pm session", r.PMAddDirectSession(ctx, PMSession{Device: "sin1"}, false)},
		{"netbox devices", r.NetboxSyncInterfaces(ctx, nil, false)},
		{"cfdns prefix", r.CFDeleteZone(ctx, "not-a-prefix", false)},
		{"repo column", r.ReloadColumn(ctx, "routes", false, false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got.Result || tt.got.Error {
				t.Errorf("got %+v, want a plain refusal", tt.got)
			}
		})
	}
	if f.count() != 0 {
		t.Errorf("nothing should be sent, got %+v", f.requests)
	}
}

func TestNoUtilClient(t *testing.T) {
	r := New(Config{})
	got := r.CFZones(context.Background())
	if got.Result || !got.Error {
		t.Errorf("CFZones() = %+v", got)
	}
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(raw)
}
