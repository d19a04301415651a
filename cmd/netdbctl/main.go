// Netdbctl - netdb driven VyOS router management
//
// A CLI tool that renders router configuration from the netdb
// configuration database and manages the router through it:
//   - Per-router functions: generate column views, enable and disable
//     ethernet interfaces, tunnels, BGP peers and IS-IS interfaces
//   - netdb wide functions: bulk column loading, interface addresses and
//     the netdb-util connectors (repo, IPAM, RIPEstat, Peering Manager,
//     Netbox, Cloudflare DNS)
//   - Dry-run by default (preview changes, require -x to execute)
//   - Audit logging of all changes
//
// Examples:
//
//	netdbctl ethernet generate
//	netdbctl ethernet disable eth2 -x --permanent
//	netdbctl bgp summary ipv6
//	netdbctl loader load interface interfaces.yaml -x
//	netdbctl pm status SIN1 23.181.64.4 maintenance -x
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/erikjseidel/salt-netdb/pkg/audit"
	"github.com/erikjseidel/salt-netdb/pkg/cli"
	"github.com/erikjseidel/salt-netdb/pkg/result"
	"github.com/erikjseidel/salt-netdb/pkg/runner"
	"github.com/erikjseidel/salt-netdb/pkg/settings"
	"github.com/erikjseidel/salt-netdb/pkg/util"
	"github.com/erikjseidel/salt-netdb/pkg/version"
)

var (
	// Global option flags
	configPath string
	verbose    bool
	logJSON    bool
	jsonOutput bool

	// Write flags
	executeMode   bool
	forceMode     bool
	debugMode     bool
	permanentMode bool

	// Global state
	userSettings *settings.Settings
	auditLogger  *audit.FileLogger
)

// errFailed is returned after a failed envelope has been rendered; it only
// sets the exit status.
var errFailed = errors.New("operation failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if auditLogger != nil {
		auditLogger.Close()
	}
	if err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, red("Error:"), err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "netdbctl",
	Short:             "netdb driven VyOS router management",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Netdbctl manages a VyOS router from the netdb configuration database.

Router commands act on the router named by netdb.id in the settings file.
Write commands preview changes by default; use -x to execute.

  netdbctl <module> <function> [args] [-x]`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Quiet by default, verbose on -v
		level := "warn"
		if verbose {
			level = "debug"
		}
		if err := util.ConfigureLogging(level, logJSON); err != nil {
			return err
		}

		if inCommand(cmd, "help", "version", "settings") {
			return nil
		}

		path := settingsPath()
		var err error
		userSettings, err = settings.LoadFrom(path)
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		if !inCommand(cmd, "audit") {
			if err := userSettings.Validate(); err != nil {
				return fmt.Errorf("invalid settings (%s): %w", path, err)
			}
		}

		auditLogger, err = audit.NewFileLogger(userSettings.AuditFile(), audit.WithRotation(
			10*1024*1024, // 10MB
			10,
		))
		if err != nil {
			util.Warnf("Could not initialize audit logging: %v", err)
		} else {
			audit.SetDefaultLogger(auditLogger)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Settings file (default ~/.netdbctl/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "JSON output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Log to stderr as JSON lines")

	// Write flags are registered per noun group by addWriteFlags and
	// addRouterFlags once the group's subcommands exist.

	rootCmd.AddGroup(
		&cobra.Group{ID: "router", Title: "Router Functions:"},
		&cobra.Group{ID: "netdb", Title: "netdb Functions:"},
		&cobra.Group{ID: "connector", Title: "netdb-util Connectors:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)

	for _, cmd := range []*cobra.Command{
		columnCmd, ethernetCmd, tunnelCmd, bgpCmd, isisCmd, loopbackCmd,
		firewallCmd, policyCmd, ipamCmd, utilityCmd, overlayCmd,
	} {
		cmd.GroupID = "router"
		rootCmd.AddCommand(cmd)
	}

	for _, cmd := range []*cobra.Command{loaderCmd, ifaceCmd} {
		cmd.GroupID = "netdb"
		rootCmd.AddCommand(cmd)
	}

	for _, cmd := range []*cobra.Command{repoCmd, ripeCmd, pmCmd, netboxCmd, cfdnsCmd} {
		cmd.GroupID = "connector"
		rootCmd.AddCommand(cmd)
	}

	for _, cmd := range []*cobra.Command{settingsCmd, auditCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Info())
	},
}

// inCommand reports whether cmd is, or sits below, one of the named
// commands.
func inCommand(cmd *cobra.Command, names ...string) bool {
	for c := cmd; c != nil; c = c.Parent() {
		for _, n := range names {
			if c.Name() == n {
				return true
			}
		}
	}
	return false
}

// addWriteFlags registers -x/--execute. For noun-group parent commands it is
// a PersistentFlag so subcommands inherit.
func addWriteFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if cmd.HasSubCommands() {
		flags = cmd.PersistentFlags()
	}
	flags.BoolVarP(&executeMode, "execute", "x", false, "Execute changes (default is dry-run)")
}

// addRouterFlags registers the write flags of router changes.
func addRouterFlags(cmd *cobra.Command) {
	addWriteFlags(cmd)
	flags := cmd.PersistentFlags()
	flags.BoolVar(&forceMode, "force", false, "Apply even when the overlay already agrees")
	flags.BoolVar(&debugMode, "debug", false, "Show the rendered configuration")
}

// currentUser names the operator in audit events.
func currentUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}

// ============================================================================
// Output Helpers
// ============================================================================

// render prints ret and turns a failed envelope into errFailed.
func render(ret *result.Return) error {
	if err := cli.Render(os.Stdout, ret, jsonOutput); err != nil {
		return err
	}
	if !ret.Result {
		return errFailed
	}
	return nil
}

// renderWrite is render followed by the dry-run notice. A validated dry
// run is not a failure.
func renderWrite(ret *result.Return) error {
	err := render(ret)
	printDryRunNotice()
	if err == errFailed && !executeMode && !ret.Error && ret.Comment == runner.CommentTestRun {
		return nil
	}
	return err
}

// valueReturn answers a lookup that returns a plain value.
func valueReturn(v interface{}, err error) *result.Return {
	if err != nil {
		return result.FromError(err)
	}
	return result.OK("", v)
}

func printDryRunNotice() {
	if !executeMode && !jsonOutput {
		fmt.Println("\n" + yellow("DRY-RUN: No changes applied. Use -x to execute."))
	}
}

// Color helpers delegate to pkg/cli
func green(s string) string  { return cli.Green(s) }
func yellow(s string) string { return cli.Yellow(s) }
func red(s string) string    { return cli.Red(s) }
