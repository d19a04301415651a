package main

import (
	"github.com/spf13/cobra"

	"github.com/erikjseidel/salt-netdb/pkg/result"
	"github.com/erikjseidel/salt-netdb/pkg/runner"
)

var (
	rawOutput bool

	queryCategory string
	queryFamily   string
	queryElement  string

	addrPTR   string
	addrRoles []string

	reloadDetails bool
)

// ============================================================================
// Loader
// ============================================================================

var loaderCmd = &cobra.Command{
	Use:   "loader",
	Short: "Bulk load and read netdb columns",
	Long: `Bulk load and read netdb columns.

Examples:
  netdbctl loader load interface interfaces.yaml -x
  netdbctl loader update bgp bgp.yaml
  netdbctl loader get policy --raw
  netdbctl loader query interface sin1 --element eth1`,
}

var loaderLoadCmd = &cobra.Command{
	Use:   "load <column> <file>",
	Short: "Create column elements from a YAML file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(true, func(r *runner.Runner) *result.Return {
			return r.LoadYAML(cmd.Context(), args[0], args[1], !executeMode)
		})
	},
}

var loaderUpdateCmd = &cobra.Command{
	Use:   "update <column> <file>",
	Short: "Replace column elements from a YAML file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(true, func(r *runner.Runner) *result.Return {
			return r.UpdateFromYAML(cmd.Context(), args[0], args[1], !executeMode)
		})
	},
}

var loaderGetCmd = &cobra.Command{
	Use:   "get <column>",
	Short: "Show a whole column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(false, func(r *runner.Runner) *result.Return {
			return r.GetColumn(cmd.Context(), args[0], rawOutput)
		})
	},
}

var loaderQueryCmd = &cobra.Command{
	Use:   "query <column> [set_id]",
	Short: "Show a column fragment",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(false, func(r *runner.Runner) *result.Return {
			return r.Query(cmd.Context(), args[0], argOrEmpty(args, 1), queryCategory, queryFamily, queryElement, rawOutput)
		})
	},
}

// ============================================================================
// Interface addresses
// ============================================================================

var ifaceCmd = &cobra.Command{
	Use:   "iface",
	Short: "Interface addresses in netdb",
	Long: `Interface addresses in netdb.

Examples:
  netdbctl iface get sin1 eth1
  netdbctl iface add-addr sin1 eth1 10.0.0.1/31 --ptr sin1-eth1.example.net -x
  netdbctl iface delete-addr sin1 eth1 10.0.0.1/31 -x`,
}

var ifaceGetCmd = &cobra.Command{
	Use:   "get <device> [interface]",
	Short: "Show a device's interfaces",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(false, func(r *runner.Runner) *result.Return {
			return r.GetInterface(cmd.Context(), args[0], argOrEmpty(args, 1))
		})
	},
}

var ifaceAddAddrCmd = &cobra.Command{
	Use:   "add-addr <device> <interface> <address>",
	Short: "Assign an address to an interface",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(true, func(r *runner.Runner) *result.Return {
			return r.NewAddr(cmd.Context(), args[0], args[1], args[2], addrPTR, addrRoles, !executeMode)
		})
	},
}

var ifaceDeleteAddrCmd = &cobra.Command{
	Use:   "delete-addr <device> <interface> <address>",
	Short: "Remove an address from an interface",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(true, func(r *runner.Runner) *result.Return {
			return r.DeleteAddr(cmd.Context(), args[0], args[1], args[2], !executeMode)
		})
	},
}

// ============================================================================
// Repo and RIPEstat
// ============================================================================

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Columns kept in the configuration repository",
}

var repoGenerateCmd = &cobra.Command{
	Use:   "generate <column>",
	Short: "Show a column as the repository renders it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(false, func(r *runner.Runner) *result.Return {
			return r.GenerateColumn(cmd.Context(), args[0])
		})
	},
}

var repoReloadCmd = &cobra.Command{
	Use:   "reload <column>",
	Short: "Replace a column with the repository's data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(true, func(r *runner.Runner) *result.Return {
			return r.ReloadColumn(cmd.Context(), args[0], reloadDetails, !executeMode)
		})
	},
}

var ripeCmd = &cobra.Command{
	Use:   "ripe",
	Short: "RIPEstat lookups",
}

var ripePathsCmd = &cobra.Command{
	Use:   "paths <prefix>",
	Short: "Show the AS paths RIPEstat sees for a prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(false, func(r *runner.Runner) *result.Return {
			return r.RIPEPaths(cmd.Context(), args[0])
		})
	},
}

func init() {
	loaderGetCmd.Flags().BoolVar(&rawOutput, "raw", false, "Return the column as YAML")
	loaderQueryCmd.Flags().BoolVar(&rawOutput, "raw", false, "Return the fragment as YAML")
	loaderQueryCmd.Flags().StringVar(&queryCategory, "category", "", "Element category")
	loaderQueryCmd.Flags().StringVar(&queryFamily, "family", "", "Element family")
	loaderQueryCmd.Flags().StringVar(&queryElement, "element", "", "Element id")
	loaderCmd.AddCommand(loaderLoadCmd, loaderUpdateCmd, loaderGetCmd, loaderQueryCmd)
	addWriteFlags(loaderCmd)

	ifaceAddAddrCmd.Flags().StringVar(&addrPTR, "ptr", "", "PTR record of the address")
	ifaceAddAddrCmd.Flags().StringSliceVar(&addrRoles, "role", nil, "Address role (repeatable)")
	ifaceCmd.AddCommand(ifaceGetCmd, ifaceAddAddrCmd, ifaceDeleteAddrCmd)
	addWriteFlags(ifaceCmd)

	repoReloadCmd.Flags().BoolVar(&reloadDetails, "details", false, "Show netdb-util's full answer")
	repoCmd.AddCommand(repoGenerateCmd, repoReloadCmd)
	addWriteFlags(repoCmd)

	ripeCmd.AddCommand(ripePathsCmd)
}
