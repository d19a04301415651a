package operations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/netip"
	"strings"

	"github.com/erikjseidel/salt-netdb/pkg/result"
)

// BGPSession is the parsed answer of a session check.
type BGPSession struct {
	SessionOut  map[string]string `json:"session_out"`
	State       string            `json:"state"`
	Established bool              `json:"established"`
}

// BGPSessionCheck reads the BGP state of one neighbor.
func (m *Manager) BGPSessionCheck(ctx context.Context, neighbor string) *result.Return {
	addr, err := netip.ParseAddr(neighbor)
	if err != nil {
		return result.Fail("Invalid IP address input")
	}
	family := "ip"
	if addr.Is6() && !addr.Is4In6() {
		family = "ipv6"
	}
	cmd := fmt.Sprintf(`show %s bgp neighbor %s | match "BGP state"`, family, neighbor)

	ret := m.cli(ctx, cmd)
	if !ret.Result {
		return ret
	}
	out, _ := ret.Out.(map[string]string)
	state, ok := parseBGPState(out[cmd])
	if !ok {
		return &result.Return{Result: false, Comment: "BGP sessions not found", Out: out}
	}
	return result.OK("BGP session check results", BGPSession{
		SessionOut:  out,
		State:       state,
		Established: state == "ESTABLISHED",
	})
}

// parseBGPState extracts X from "BGP state = X, up for ...".
func parseBGPState(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	first, _, _ := strings.Cut(line, ",")
	_, state, ok := strings.Cut(first, " = ")
	if !ok {
		return "", false
	}
	return strings.ToUpper(strings.TrimSpace(state)), true
}

// GetConfig returns the router's running configuration as JSON.
func (m *Manager) GetConfig(ctx context.Context) *result.Return {
	const cmd = "show configuration json"
	ret := m.cli(ctx, cmd)
	if !ret.Result {
		return ret
	}
	out, _ := ret.Out.(map[string]string)
	var config interface{}
	if err := json.Unmarshal([]byte(out[cmd]), &config); err != nil {
		return &result.Return{Result: false, Error: true, Comment: "Could not decode device config: " + err.Error()}
	}
	return result.OK("Device config", config)
}
