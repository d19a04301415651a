package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/erikjseidel/salt-netdb/pkg/result"
)

func TestColorFunctions(t *testing.T) {
	colorEnabled = true
	tests := []struct {
		name   string
		fn     func(string) string
		prefix string
	}{
		{"Green", Green, "\033[32m"},
		{"Yellow", Yellow, "\033[33m"},
		{"Red", Red, "\033[31m"},
		{"Bold", Bold, "\033[1m"},
		{"Dim", Dim, "\033[2m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn("hello")
			if !strings.HasPrefix(got, tt.prefix) || !strings.HasSuffix(got, "\033[0m") {
				t.Errorf("%s(hello) = %q", tt.name, got)
			}
		})
	}
}

func TestRender(t *testing.T) {
	colorEnabled = false
	t.Cleanup(func() { colorEnabled = true })

	tests := []struct {
		name string
		ret  *result.Return
		want string
	}{
		{
			name: "refusal",
			ret:  result.Fail("Interface is already marked disabled in REDIS. Use force=true to commit anyway."),
			want: "FAILED\nInterface is already marked disabled in REDIS. Use force=true to commit anyway.\n",
		},
		{
			name: "command output",
			ret: result.OK("salt managed tunnels:\n--- \ntun0", map[string]string{
				"show interfaces tunnel": "tun0  up\n",
			}),
			want: "OK\nsalt managed tunnels:\n--- \ntun0\nshow interfaces tunnel\ntun0  up\n",
		},
		{
			name: "structured out",
			ret:  result.OK("", map[string]interface{}{"asn": 65000, "peers": []string{"10.0.0.2"}}),
			want: "OK\nasn: 65000\npeers:\n    - 10.0.0.2\n",
		},
		{
			name: "netdb answer and notice",
			ret: &result.Return{
				Result:  true,
				Comment: "Configuration changed! Permanent (netdb) disable requested.",
				Netdb:   &result.Return{Result: false, Error: true, Comment: "netdb: connection refused"},
				Notice:  "advisory\n",
			},
			want: "OK\nConfiguration changed! Permanent (netdb) disable requested.\nnetdb: ERROR netdb: connection refused\nadvisory\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Render(&buf, tt.ret, false); err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, buf.String()); diff != "" {
				t.Errorf("Render() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	ret := &result.Return{Result: false, Error: true, Comment: "redis down"}
	if err := Render(&buf, ret, true); err != nil {
		t.Fatal(err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	want := map[string]interface{}{"result": false, "error": true, "comment": "redis down"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
