package main

import (
	"github.com/spf13/cobra"

	"github.com/erikjseidel/salt-netdb/pkg/operations"
	"github.com/erikjseidel/salt-netdb/pkg/result"
)

// routerRun renders the answer of a read-only router function.
func routerRun(cmd *cobra.Command, device bool, fn func(m *operations.Manager) *result.Return) error {
	return render(withManager(cmd.Context(), device, fn))
}

// routerWrite renders the answer of a router change.
func routerWrite(cmd *cobra.Command, fn func(m *operations.Manager) *result.Return) error {
	return renderWrite(withManager(cmd.Context(), true, fn))
}

// ============================================================================
// Ethernet
// ============================================================================

var ethernetCmd = &cobra.Command{
	Use:   "ethernet",
	Short: "Ethernet, bonding and VLAN interfaces",
	Long: `Ethernet, bonding and VLAN interfaces of the router.

Disabled interfaces are tracked in the overlay; --permanent also sets the
disabled flag in netdb.

Examples:
  netdbctl ethernet generate
  netdbctl ethernet disable eth2 -x
  netdbctl ethernet enable eth2 -x --permanent
  netdbctl ethernet display lag`,
}

var ethernetGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Show the router's ethernet interfaces from netdb",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerRun(cmd, false, func(m *operations.Manager) *result.Return {
			return m.GenerateEthernet(cmd.Context())
		})
	},
}

var ethernetEnableCmd = &cobra.Command{
	Use:   "enable <interface>",
	Short: "Enable an ethernet interface",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerWrite(cmd, func(m *operations.Manager) *result.Return {
			return m.EnableEthernet(cmd.Context(), argOrEmpty(args, 0), routerOptions())
		})
	},
}

var ethernetDisableCmd = &cobra.Command{
	Use:   "disable <interface>",
	Short: "Disable an ethernet interface",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerWrite(cmd, func(m *operations.Manager) *result.Return {
			return m.DisableEthernet(cmd.Context(), argOrEmpty(args, 0), routerOptions())
		})
	},
}

var ethernetDisplayCmd = &cobra.Command{
	Use:   "display [ethernet|lag]",
	Short: "Show the router's view of its ethernet or LAG interfaces",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := argOrEmpty(args, 0)
		if kind == "" {
			kind = "ethernet"
		}
		return routerRun(cmd, true, func(m *operations.Manager) *result.Return {
			return m.DisplayEthernet(cmd.Context(), kind)
		})
	},
}

// ============================================================================
// Tunnel
// ============================================================================

var tunnelCmd = &cobra.Command{
	Use:   "tunnel",
	Short: "GRE tunnels",
}

var tunnelGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Show the router's tunnels from netdb",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerRun(cmd, false, func(m *operations.Manager) *result.Return {
			return m.GenerateTunnels(cmd.Context())
		})
	},
}

var tunnelEnableCmd = &cobra.Command{
	Use:   "enable <tunnel>",
	Short: "Enable a tunnel",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerWrite(cmd, func(m *operations.Manager) *result.Return {
			return m.EnableTunnel(cmd.Context(), argOrEmpty(args, 0), routerOptions())
		})
	},
}

var tunnelDisableCmd = &cobra.Command{
	Use:   "disable <tunnel>",
	Short: "Disable a tunnel",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerWrite(cmd, func(m *operations.Manager) *result.Return {
			return m.DisableTunnel(cmd.Context(), argOrEmpty(args, 0), routerOptions())
		})
	},
}

var tunnelDisplayCmd = &cobra.Command{
	Use:   "display",
	Short: "Show the router's view of its tunnels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerRun(cmd, true, func(m *operations.Manager) *result.Return {
			return m.DisplayTunnels(cmd.Context())
		})
	},
}

// ============================================================================
// Loopback, firewall, policy
// ============================================================================

var loopbackCmd = &cobra.Command{
	Use:   "loopback",
	Short: "Dummy (loopback) interfaces",
}

var loopbackGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Show the router's loopbacks from netdb",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerRun(cmd, false, func(m *operations.Manager) *result.Return {
			return m.GenerateLoopbacks(cmd.Context())
		})
	},
}

var loopbackDisplayCmd = &cobra.Command{
	Use:   "display",
	Short: "Show the router's view of its loopbacks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerRun(cmd, true, func(m *operations.Manager) *result.Return {
			return m.DisplayLoopbacks(cmd.Context())
		})
	},
}

var firewallCmd = &cobra.Command{
	Use:   "firewall",
	Short: "Firewall column",
}

var firewallGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Show the router's firewall column",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerRun(cmd, false, func(m *operations.Manager) *result.Return {
			return m.GenerateFirewall(cmd.Context())
		})
	},
}

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Routing policy column",
}

var policyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Show the router's policy column",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerRun(cmd, false, func(m *operations.Manager) *result.Return {
			return m.GeneratePolicy(cmd.Context())
		})
	},
}

func argOrEmpty(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}

func init() {
	ethernetCmd.AddCommand(ethernetGenerateCmd, ethernetEnableCmd, ethernetDisableCmd, ethernetDisplayCmd)
	addRouterFlags(ethernetCmd)
	ethernetCmd.PersistentFlags().BoolVar(&permanentMode, "permanent", false, "Also update the disabled flag in netdb")

	tunnelCmd.AddCommand(tunnelGenerateCmd, tunnelEnableCmd, tunnelDisableCmd, tunnelDisplayCmd)
	addRouterFlags(tunnelCmd)

	loopbackCmd.AddCommand(loopbackGenerateCmd, loopbackDisplayCmd)
	firewallCmd.AddCommand(firewallGenerateCmd)
	policyCmd.AddCommand(policyGenerateCmd)
}
