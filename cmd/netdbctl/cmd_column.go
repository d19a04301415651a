package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/erikjseidel/salt-netdb/pkg/cli"
	"github.com/erikjseidel/salt-netdb/pkg/operations"
	"github.com/erikjseidel/salt-netdb/pkg/overlay"
	"github.com/erikjseidel/salt-netdb/pkg/result"
	"github.com/erikjseidel/salt-netdb/pkg/runner"
)

var columnDelimiter string

// ============================================================================
// Column
// ============================================================================

var columnCmd = &cobra.Command{
	Use:   "column",
	Short: "Read the router's netdb columns",
	Long: `Read the router's netdb columns.

Paths are a column name followed by nested keys joined by the delimiter.

Examples:
  netdbctl column list
  netdbctl column get bgp:neighbors:23.181.64.4
  netdbctl column keys interface
  netdbctl column items bgp:options interface:eth1`,
}

var columnListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the columns netdb serves",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerRun(cmd, false, func(m *operations.Manager) *result.Return {
			return m.ListColumns(cmd.Context())
		})
	},
}

var columnPullCmd = &cobra.Command{
	Use:   "pull <column>",
	Short: "Show the router's data for one column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerRun(cmd, false, func(m *operations.Manager) *result.Return {
			return valueReturn(m.PullColumn(cmd.Context(), args[0]))
		})
	},
}

var columnGetCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Show the value at a column path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerRun(cmd, false, func(m *operations.Manager) *result.Return {
			return valueReturn(m.ColumnGet(cmd.Context(), args[0], columnDelimiter))
		})
	},
}

var columnKeysCmd = &cobra.Command{
	Use:   "keys <path>",
	Short: "List the keys of the object at a column path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerRun(cmd, false, func(m *operations.Manager) *result.Return {
			return valueReturn(m.ColumnKeys(cmd.Context(), args[0], columnDelimiter))
		})
	},
}

var columnItemsCmd = &cobra.Command{
	Use:   "items <path>...",
	Short: "Show the values at several column paths",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerRun(cmd, false, func(m *operations.Manager) *result.Return {
			return valueReturn(m.ColumnItems(cmd.Context(), columnDelimiter, args...))
		})
	},
}

// ============================================================================
// IPAM
// ============================================================================

var ipamCmd = &cobra.Command{
	Use:   "ipam",
	Short: "Address management",
	Long: `Address management.

"addresses" lists the addresses configured on this router from netdb;
"report" and "chooser" ask netdb-util about the whole network.

Examples:
  netdbctl ipam addresses
  netdbctl ipam report SIN1
  netdbctl ipam chooser 10.0.0.0/24`,
}

var ipamEntries bool

var ipamAddressesCmd = &cobra.Command{
	Use:   "addresses",
	Short: "List the router's managed addresses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return routerRun(cmd, false, func(m *operations.Manager) *result.Return {
			return m.IPAMReport(cmd.Context(), ipamEntries, true)
		})
	},
}

var ipamReportCmd = &cobra.Command{
	Use:   "report [device]",
	Short: "Show netdb-util's address report",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(false, func(r *runner.Runner) *result.Return {
			return r.IPAMReport(cmd.Context(), argOrEmpty(args, 0))
		})
	},
}

var ipamChooserCmd = &cobra.Command{
	Use:   "chooser <prefix>",
	Short: "Suggest free addresses in a prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(false, func(r *runner.Runner) *result.Return {
			return r.IPAMChooser(cmd.Context(), args[0])
		})
	},
}

// ============================================================================
// Overlay
// ============================================================================

var overlayKeys = []string{overlay.KeyEthernet, overlay.KeyTunnel, overlay.KeyBGP, overlay.KeyISIS}

var overlayCmd = &cobra.Command{
	Use:   "overlay",
	Short: "Disabled-entry overlay of the router",
	Long: `Disabled-entry overlay of the router.

Keys: ethernet_disabled, tunnel_disabled, bgp_disabled, isis_disabled.

Examples:
  netdbctl overlay list
  netdbctl overlay show bgp_disabled
  netdbctl overlay add ethernet_disabled eth2 -x`,
}

var overlayListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every overlay key of the router",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ov, store := routerOverlay()
		defer store.Close()

		all := make(map[string][]string, len(overlayKeys))
		for _, key := range overlayKeys {
			entries, _, err := ov.Entries(cmd.Context(), key)
			if err != nil {
				return render(result.FromError(err))
			}
			all[key] = entries
		}
		if jsonOutput {
			return render(result.OK("", all))
		}

		fmt.Printf("Router: %s\n\n", ov.Router())
		t := cli.NewTable(os.Stdout, "KEY", "ENTRY").WithEmpty("No entries found")
		for _, key := range overlayKeys {
			for _, e := range all[key] {
				t.Row(key, e)
			}
		}
		t.Flush()
		return nil
	},
}

var overlayShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Show the entries under one key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ov, store := routerOverlay()
		defer store.Close()
		return render(ov.GetEntries(cmd.Context(), args[0]))
	},
}

var overlayCheckCmd = &cobra.Command{
	Use:   "check <key> <entry>",
	Short: "Report whether an entry is present",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ov, store := routerOverlay()
		defer store.Close()
		return render(ov.CheckEntry(cmd.Context(), args[0], args[1]))
	},
}

var overlayAddCmd = &cobra.Command{
	Use:   "add <key> <entry>",
	Short: "Add an entry without touching the router",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ov, store := routerOverlay()
		defer store.Close()
		if !executeMode {
			return renderWrite(ov.CheckEntry(cmd.Context(), args[0], args[1]))
		}
		return render(ov.AddEntry(cmd.Context(), args[0], args[1]))
	},
}

var overlayRemoveCmd = &cobra.Command{
	Use:   "remove <key> <entry>",
	Short: "Remove an entry without touching the router",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ov, store := routerOverlay()
		defer store.Close()
		if !executeMode {
			return renderWrite(ov.CheckEntry(cmd.Context(), args[0], args[1]))
		}
		return render(ov.RemoveEntry(cmd.Context(), args[0], args[1]))
	},
}

func init() {
	columnCmd.AddCommand(columnListCmd, columnPullCmd, columnGetCmd, columnKeysCmd, columnItemsCmd)
	columnCmd.PersistentFlags().StringVar(&columnDelimiter, "delimiter", operations.DefaultDelimiter, "Path delimiter")

	ipamAddressesCmd.Flags().BoolVar(&ipamEntries, "entries", false, "Also return the entries keyed by address")
	ipamCmd.AddCommand(ipamAddressesCmd, ipamReportCmd, ipamChooserCmd)

	overlayCmd.AddCommand(overlayListCmd, overlayShowCmd, overlayCheckCmd, overlayAddCmd, overlayRemoveCmd)
	addWriteFlags(overlayCmd)
}
