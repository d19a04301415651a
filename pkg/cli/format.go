// Package cli renders operation results for netdbctl.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/erikjseidel/salt-netdb/pkg/result"
)

// colorEnabled is false when NO_COLOR env var is set (per no-color.org).
var colorEnabled = os.Getenv("NO_COLOR") == ""

// Green wraps s in ANSI green. Returns s unchanged when NO_COLOR is set.
func Green(s string) string {
	return paint("\033[32m", s)
}

// Yellow wraps s in ANSI yellow.
func Yellow(s string) string {
	return paint("\033[33m", s)
}

// Red wraps s in ANSI red.
func Red(s string) string {
	return paint("\033[31m", s)
}

// Bold wraps s in ANSI bold.
func Bold(s string) string {
	return paint("\033[1m", s)
}

// Dim wraps s in ANSI dim.
func Dim(s string) string {
	return paint("\033[2m", s)
}

func paint(code, s string) string {
	if !colorEnabled {
		return s
	}
	return code + s + "\033[0m"
}

// Status labels a result: OK, FAILED for refusals, ERROR for backend
// failures.
func Status(ret *result.Return) string {
	switch {
	case ret.Result:
		return Green("OK")
	case ret.Error:
		return Red("ERROR")
	}
	return Yellow("FAILED")
}

// Render writes ret to w, as indented JSON or as a text summary: status,
// comment, out and any nested netdb answer.
func Render(w io.Writer, ret *result.Return, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ret)
	}

	fmt.Fprintln(w, Status(ret))
	if ret.Comment != "" {
		fmt.Fprintln(w, strings.TrimRight(ret.Comment, "\n"))
	}
	if ret.Out != nil {
		if err := renderOut(w, ret.Out); err != nil {
			return err
		}
	}
	if ret.Netdb != nil {
		fmt.Fprintf(w, "%s %s", Bold("netdb:"), Status(ret.Netdb))
		if ret.Netdb.Comment != "" {
			fmt.Fprintf(w, " %s", ret.Netdb.Comment)
		}
		fmt.Fprintln(w)
	}
	if ret.Notice != "" {
		fmt.Fprintln(w, Dim(strings.TrimRight(ret.Notice, "\n")))
	}
	return nil
}

// renderOut prints strings as they are, command outputs under their
// command and anything else as YAML.
func renderOut(w io.Writer, out interface{}) error {
	switch v := out.(type) {
	case string:
		fmt.Fprintln(w, strings.TrimRight(v, "\n"))
		return nil
	case map[string]string:
		cmds := make([]string, 0, len(v))
		for c := range v {
			cmds = append(cmds, c)
		}
		sort.Strings(cmds)
		for _, c := range cmds {
			fmt.Fprintln(w, Bold(c))
			fmt.Fprintln(w, strings.TrimRight(v[c], "\n"))
		}
		return nil
	}

	// Round-trip through JSON so typed values print with their JSON names.
	raw, err := json.Marshal(out)
	if err != nil {
		return err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	data, err := yaml.Marshal(generic)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
