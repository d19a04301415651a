package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erikjseidel/salt-netdb/pkg/operations"
	"github.com/erikjseidel/salt-netdb/pkg/result"
)

// ============================================================================
// BGP
// ============================================================================

var bgpCmd = &cobra.Command{
	Use:   "bgp",
	Short: "BGP peers",
	Long: `BGP peers of the router.

Disabling a peer applies the REJECT-ALL route-map in both directions for
every family of its peer group; enabling restores the peer's own maps.

Examples:
  netdbctl bgp generate
  netdbctl bgp disable 23.181.64.4 -x
  netdbctl bgp summary ipv4`,
}

var bgpGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Show the router's BGP column",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerRun(cmd, false, func(m *operations.Manager) *result.Return {
			return m.GenerateBGP(cmd.Context())
		})
	},
}

var bgpEnableCmd = &cobra.Command{
	Use:   "enable <peer>",
	Short: "Enable a BGP peer",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerWrite(cmd, func(m *operations.Manager) *result.Return {
			return m.EnableBGPPeer(cmd.Context(), argOrEmpty(args, 0), routerOptions())
		})
	},
}

var bgpDisableCmd = &cobra.Command{
	Use:   "disable <peer>",
	Short: "Disable a BGP peer",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerWrite(cmd, func(m *operations.Manager) *result.Return {
			return m.DisableBGPPeer(cmd.Context(), argOrEmpty(args, 0), routerOptions())
		})
	},
}

var bgpSummaryCmd = &cobra.Command{
	Use:   "summary [ipv4|ipv6|both]",
	Short: "Show the router's BGP summary",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerRun(cmd, true, func(m *operations.Manager) *result.Return {
			return m.BGPSummary(cmd.Context(), argOrEmpty(args, 0))
		})
	},
}

// ============================================================================
// IS-IS
// ============================================================================

var isisCmd = &cobra.Command{
	Use:   "isis",
	Short: "IS-IS interfaces",
}

var isisGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Show the router's IS-IS configuration from netdb",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerRun(cmd, false, func(m *operations.Manager) *result.Return {
			return m.GenerateISIS(cmd.Context())
		})
	},
}

var isisEnableCmd = &cobra.Command{
	Use:   "enable <interface>",
	Short: "Enable IS-IS on an interface",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerWrite(cmd, func(m *operations.Manager) *result.Return {
			return m.EnableISISInterface(cmd.Context(), argOrEmpty(args, 0), routerOptions())
		})
	},
}

var isisDisableCmd = &cobra.Command{
	Use:   "disable <interface>",
	Short: "Disable IS-IS on an interface",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerWrite(cmd, func(m *operations.Manager) *result.Return {
			return m.DisableISISInterface(cmd.Context(), argOrEmpty(args, 0), routerOptions())
		})
	},
}

var isisOverloadCmd = &cobra.Command{
	Use:   "overload <on|off>",
	Short: "Set or remove the IS-IS overload bit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var enable bool
		switch args[0] {
		case "on":
			enable = true
		case "off":
		default:
			return fmt.Errorf("overload takes on or off, not %q", args[0])
		}
		return routerWrite(cmd, func(m *operations.Manager) *result.Return {
			return m.ISISOverload(cmd.Context(), enable, routerOptions())
		})
	},
}

var isisAdjacenciesCmd = &cobra.Command{
	Use:   "adjacencies",
	Short: "Show the router's IS-IS neighbors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerRun(cmd, true, func(m *operations.Manager) *result.Return {
			return m.ISISAdjacencies(cmd.Context())
		})
	},
}

var isisSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the router's IS-IS summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerRun(cmd, true, func(m *operations.Manager) *result.Return {
			return m.ISISSummary(cmd.Context())
		})
	},
}

var isisInterfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "Show the router's IS-IS interfaces",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerRun(cmd, true, func(m *operations.Manager) *result.Return {
			return m.ISISInterfaces(cmd.Context())
		})
	},
}

// ============================================================================
// Utility
// ============================================================================

var utilityCmd = &cobra.Command{
	Use:   "utility",
	Short: "Router operational checks",
}

var utilityBGPSessionCmd = &cobra.Command{
	Use:   "bgp-session <neighbor>",
	Short: "Show the BGP state of one neighbor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerRun(cmd, true, func(m *operations.Manager) *result.Return {
			return m.BGPSessionCheck(cmd.Context(), args[0])
		})
	},
}

var utilityConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the router's running configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerRun(cmd, true, func(m *operations.Manager) *result.Return {
			return m.GetConfig(cmd.Context())
		})
	},
}

func init() {
	bgpCmd.AddCommand(bgpGenerateCmd, bgpEnableCmd, bgpDisableCmd, bgpSummaryCmd)
	addRouterFlags(bgpCmd)

	isisCmd.AddCommand(isisGenerateCmd, isisEnableCmd, isisDisableCmd, isisOverloadCmd,
		isisAdjacenciesCmd, isisSummaryCmd, isisInterfacesCmd)
	addRouterFlags(isisCmd)

	utilityCmd.AddCommand(utilityBGPSessionCmd, utilityConfigCmd)
}
