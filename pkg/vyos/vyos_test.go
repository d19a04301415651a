package vyos

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/erikjseidel/salt-netdb/pkg/column"
	"github.com/erikjseidel/salt-netdb/pkg/util"
)

type fakeShell struct {
	cmds   []string
	output func(cmd string) string
	err    error
}

func (f *fakeShell) Run(_ context.Context, cmd string) (string, error) {
	f.cmds = append(f.cmds, cmd)
	out := ""
	if f.output != nil {
		out = f.output(cmd)
	}
	return out, f.err
}

func diffOutput(diff string) func(string) string {
	return func(string) string {
		return "begin\n" + diffStart + "\n" + diff + "\n" + diffEnd + "\n"
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		req  TemplateRequest
		want []string
	}{
		{
			name: "inline",
			req: TemplateRequest{
				Source: "set interface {{ .statement }} disable",
				Vars:   map[string]interface{}{"statement": "ethernet eth1"},
			},
			want: []string{"set interface ethernet eth1 disable"},
		},
		{
			name: "bgp disable",
			req: TemplateRequest{
				Name: "bgp/disable",
				Vars: map[string]interface{}{"peer": "23.181.64.4", "families": []string{"ipv4", "ipv6"}},
			},
			want: []string{
				"set protocols bgp neighbor 23.181.64.4 address-family ipv4-unicast route-map import REJECT-ALL",
				"set protocols bgp neighbor 23.181.64.4 address-family ipv4-unicast route-map export REJECT-ALL",
				"set protocols bgp neighbor 23.181.64.4 address-family ipv6-unicast route-map import REJECT-ALL",
				"set protocols bgp neighbor 23.181.64.4 address-family ipv6-unicast route-map export REJECT-ALL",
			},
		},
		{
			name: "bgp enable restores neighbor maps",
			req: TemplateRequest{
				Name: "bgp/enable",
				Vars: map[string]interface{}{
					"peer":     "10.0.0.2",
					"families": []string{"ipv4", "ipv6"},
					"route_maps": map[string]*column.BGPRouteMap{
						"ipv4": {Import: "IBGP-IN4"},
					},
				},
			},
			want: []string{
				"delete protocols bgp neighbor 10.0.0.2 address-family ipv4-unicast route-map",
				"set protocols bgp neighbor 10.0.0.2 address-family ipv4-unicast route-map import IBGP-IN4",
				"delete protocols bgp neighbor 10.0.0.2 address-family ipv6-unicast route-map",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.req)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Render() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderErrors(t *testing.T) {
	if _, err := Render(TemplateRequest{Name: "bgp/missing"}); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("unknown template error = %v, want ErrNotFound", err)
	}
	if _, err := Render(TemplateRequest{}); !errors.Is(err, util.ErrValidationFailed) {
		t.Errorf("empty request error = %v", err)
	}
	if _, err := Render(TemplateRequest{Source: "set {{ .missing }}", Vars: map[string]interface{}{}}); !errors.Is(err, util.ErrValidationFailed) {
		t.Errorf("missing var error = %v", err)
	}
}

func TestTemplates(t *testing.T) {
	if diff := cmp.Diff([]string{"bgp/disable", "bgp/enable"}, Templates()); diff != "" {
		t.Errorf("Templates() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadTemplate(t *testing.T) {
	req := TemplateRequest{
		Source:        "set interface {{ .statement }} disable",
		Vars:          map[string]interface{}{"statement": "ethernet eth1"},
		CommitComment: "disable interface eth1",
	}

	tests := []struct {
		name      string
		test      bool
		debug     bool
		diff      string
		wantRes   CommitResult
		wantInCmd string
		notInCmd  string
	}{
		{
			name:      "commit",
			diff:      "[interfaces ethernet eth1]\n+ disable",
			wantRes:   CommitResult{Result: true, Comment: CommentChanged, Diff: "[interfaces ethernet eth1]\n+ disable"},
			wantInCmd: "commit comment",
		},
		{
			name:      "test discards",
			test:      true,
			diff:      "+ disable",
			wantRes:   CommitResult{Result: true, Comment: CommentDiscarded, Diff: "+ disable"},
			wantInCmd: "$W discard",
			notInCmd:  "commit",
		},
		{
			name:    "no changes",
			diff:    "No changes between working and active configurations.",
			wantRes: CommitResult{Result: true, Comment: CommentConfigured, AlreadyConfigured: true},
		},
		{
			name:    "debug shows loaded config",
			test:    true,
			debug:   true,
			diff:    "+ disable",
			wantRes: CommitResult{Result: true, Comment: CommentDiscarded, Diff: "+ disable", LoadedConfig: "set interface ethernet eth1 disable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sh := &fakeShell{output: diffOutput(tt.diff)}
			r := NewRouter(sh)
			req := req
			req.Test = tt.test
			req.Debug = tt.debug
			got, err := r.LoadTemplate(context.Background(), req)
			if err != nil {
				t.Fatalf("LoadTemplate() error = %v", err)
			}
			if diff := cmp.Diff(tt.wantRes, *got); diff != "" {
				t.Errorf("LoadTemplate() mismatch (-want +got):\n%s", diff)
			}
			if len(sh.cmds) != 1 {
				t.Fatalf("got %d shell runs, want 1", len(sh.cmds))
			}
			if !strings.Contains(sh.cmds[0], "$W set interface ethernet eth1 disable") {
				t.Errorf("script does not load the line:\n%s", sh.cmds[0])
			}
			if tt.wantInCmd != "" && !strings.Contains(sh.cmds[0], tt.wantInCmd) {
				t.Errorf("script missing %q:\n%s", tt.wantInCmd, sh.cmds[0])
			}
			if tt.notInCmd != "" && strings.Contains(sh.cmds[0], tt.notInCmd) {
				t.Errorf("script should not contain %q:\n%s", tt.notInCmd, sh.cmds[0])
			}
		})
	}
}

func TestLoadTemplateShellError(t *testing.T) {
	sh := &fakeShell{err: util.NewBackendError("ssh", errors.New("exit status 1"))}
	_, err := NewRouter(sh).LoadTemplate(context.Background(), TemplateRequest{Source: "set system host-name r1"})
	if !errors.Is(err, util.ErrBackend) {
		t.Errorf("LoadTemplate() error = %v, want ErrBackend", err)
	}
}

func TestLoadTemplateEmptyRender(t *testing.T) {
	sh := &fakeShell{}
	_, err := NewRouter(sh).LoadTemplate(context.Background(), TemplateRequest{
		Name: "bgp/disable",
		Vars: map[string]interface{}{"peer": "10.0.0.2", "families": []string{}},
	})
	if !errors.Is(err, util.ErrValidationFailed) {
		t.Errorf("LoadTemplate() error = %v, want validation failure", err)
	}
	if len(sh.cmds) != 0 {
		t.Error("nothing should run when the template renders empty")
	}
}

func TestCommitScriptTolerantDeletes(t *testing.T) {
	script := commitScript([]string{"delete protocols isis set-overload-bit", "set system host-name r1"}, false, "it's done")
	if !strings.Contains(script, "set-overload-bit || true") {
		t.Errorf("delete line should tolerate failure:\n%s", script)
	}
	if strings.Contains(script, "host-name r1 || true") {
		t.Errorf("set line should not tolerate failure:\n%s", script)
	}
	if !strings.HasPrefix(script, "/bin/vbash -c '") {
		t.Errorf("script should run under vbash:\n%s", script)
	}
}

func TestCLI(t *testing.T) {
	sh := &fakeShell{output: func(cmd string) string { return "out of " + cmd + "\n" }}
	r := NewRouter(sh)
	cmd := `show ip bgp neighbor 10.0.0.2 | match "BGP state"`
	got, err := r.CLI(context.Background(), "show bgp summary", cmd)
	if err != nil {
		t.Fatalf("CLI() error = %v", err)
	}
	want := map[string]string{
		"show bgp summary": "out of " + opWrapper + " show bgp summary",
		cmd:                "out of " + opWrapper + " show ip bgp neighbor 10.0.0.2 | grep -E 'BGP state'",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CLI() mismatch (-want +got):\n%s", diff)
	}
}

func TestCLIError(t *testing.T) {
	sh := &fakeShell{err: util.NewBackendError("ssh", context.DeadlineExceeded)}
	_, err := NewRouter(sh).CLI(context.Background(), "show version")
	if !errors.Is(err, context.DeadlineExceeded) || !errors.Is(err, util.ErrBackend) {
		t.Errorf("CLI() error = %v", err)
	}
}
