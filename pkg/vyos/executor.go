// Package vyos runs operational commands and configuration templates on VyOS
// routers.
//
// Configuration changes go through the VyOS configuration wrapper inside a
// single shell: the session is opened, the rendered set/delete lines are
// applied, the candidate is compared against the running configuration and
// then either committed or discarded.
package vyos

import (
	"context"
	"fmt"
	"strings"

	"github.com/erikjseidel/salt-netdb/pkg/util"
)

const (
	cfgWrapper = "/opt/vyatta/sbin/vyatta-cfg-cmd-wrapper"
	opWrapper  = "/opt/vyatta/bin/vyatta-op-cmd-wrapper"

	diffStart = "@@netdbctl-diff-start"
	diffEnd   = "@@netdbctl-diff-end"
)

// Commit result comments.
const (
	CommentDiscarded  = "Configuration discarded."
	CommentChanged    = "Configuration changed!"
	CommentConfigured = "Already configured."
)

// Executor is the device side of every operation: operational commands and
// template commits.
type Executor interface {
	CLI(ctx context.Context, commands ...string) (map[string]string, error)
	LoadTemplate(ctx context.Context, req TemplateRequest) (*CommitResult, error)
}

// TemplateRequest names an embedded template (Name) or carries an inline one
// (Source). Vars are passed to the template as its data.
type TemplateRequest struct {
	Name          string
	Source        string
	Vars          map[string]interface{}
	Test          bool
	Debug         bool
	CommitComment string
}

// CommitResult reports what a template load did on the router.
type CommitResult struct {
	Result            bool   `json:"result"`
	Comment           string `json:"comment"`
	AlreadyConfigured bool   `json:"already_configured"`
	Diff              string `json:"diff"`
	LoadedConfig      string `json:"loaded_config,omitempty"`
}

// Shell runs a command string on the router and returns its combined output.
type Shell interface {
	Run(ctx context.Context, cmd string) (string, error)
}

// Router implements Executor on top of a Shell.
type Router struct {
	shell Shell
}

// NewRouter returns an Executor that talks to the router through sh.
func NewRouter(sh Shell) *Router {
	return &Router{shell: sh}
}

// CLI runs each operational command and returns the outputs keyed by the
// command as given.
func (r *Router) CLI(ctx context.Context, commands ...string) (map[string]string, error) {
	out := make(map[string]string, len(commands))
	for _, cmd := range commands {
		util.WithField("command", cmd).Debug("Running operational command")
		output, err := r.shell.Run(ctx, opCommand(cmd))
		if err != nil {
			return out, fmt.Errorf("command %q: %w", cmd, err)
		}
		out[cmd] = strings.TrimRight(output, "\n")
	}
	return out, nil
}

// LoadTemplate renders the template, loads it into a configuration session
// and commits it, or discards it in test mode.
func (r *Router) LoadTemplate(ctx context.Context, req TemplateRequest) (*CommitResult, error) {
	lines, err := Render(req)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, util.NewValidationError("template rendered no configuration lines")
	}

	util.WithFields(map[string]interface{}{
		"template": templateLabel(req),
		"test":     req.Test,
		"lines":    len(lines),
	}).Debug("Loading configuration template")

	output, err := r.shell.Run(ctx, commitScript(lines, req.Test, req.CommitComment))
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w: %s", templateLabel(req), err, strings.TrimSpace(output))
	}

	res := parseCommit(output, req.Test)
	if req.Debug {
		res.LoadedConfig = strings.Join(lines, "\n")
	}
	return res, nil
}

func templateLabel(req TemplateRequest) string {
	if req.Name != "" {
		return req.Name
	}
	return "inline"
}

// opCommand maps an operational command onto the op-mode wrapper. The VyOS
// "| match" pipe filter becomes grep.
func opCommand(cmd string) string {
	base, filter, piped := strings.Cut(cmd, "|")
	line := opWrapper + " " + strings.TrimSpace(base)
	if !piped {
		return line
	}
	filter = strings.TrimSpace(filter)
	if pattern, ok := strings.CutPrefix(filter, "match "); ok {
		return line + " | grep -E " + shellQuote(unquote(strings.TrimSpace(pattern)))
	}
	return line + " | " + filter
}

// commitScript builds the shell program that runs one configuration
// session. Deleting absent nodes is not an error. The compare output is
// framed with markers so parseCommit can pick it out of the combined output.
func commitScript(lines []string, test bool, comment string) string {
	var b strings.Builder
	b.WriteString("W=" + cfgWrapper + "\n")
	b.WriteString(`trap '$W end' EXIT` + "\n")
	b.WriteString("set -e\n")
	b.WriteString("$W begin\n")
	for _, l := range lines {
		if strings.HasPrefix(l, "delete ") {
			b.WriteString("$W " + l + " || true\n")
			continue
		}
		b.WriteString("$W " + l + "\n")
	}
	b.WriteString(`diff=$($W compare)` + "\n")
	b.WriteString("echo " + diffStart + "\n")
	b.WriteString(`printf '%s\n' "$diff"` + "\n")
	b.WriteString("echo " + diffEnd + "\n")
	if test {
		b.WriteString("$W discard\n")
		return "/bin/vbash -c " + shellQuote(b.String())
	}
	b.WriteString(`case "$diff" in` + "\n")
	b.WriteString(`""|"No changes"*) $W discard ;;` + "\n")
	if comment != "" {
		b.WriteString("*) $W commit comment " + shellQuote(comment) + " ;;\n")
	} else {
		b.WriteString("*) $W commit ;;\n")
	}
	b.WriteString("esac\n")
	return "/bin/vbash -c " + shellQuote(b.String())
}

func parseCommit(output string, test bool) *CommitResult {
	diff := ""
	if _, rest, ok := strings.Cut(output, diffStart+"\n"); ok {
		diff, _, _ = strings.Cut(rest, diffEnd)
	}
	diff = strings.TrimSpace(diff)
	if strings.HasPrefix(diff, "No changes") {
		diff = ""
	}

	res := &CommitResult{Result: true, Diff: diff}
	switch {
	case diff == "":
		res.AlreadyConfigured = true
		res.Comment = CommentConfigured
	case test:
		res.Comment = CommentDiscarded
	default:
		res.Comment = CommentChanged
	}
	return res
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
