package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/erikjseidel/salt-netdb/pkg/result"
	"github.com/erikjseidel/salt-netdb/pkg/runner"
)

var (
	pmPolicy  runner.PMPolicy
	pmASN     runner.PMASN
	pmSession runner.PMSession
	pmWeight  int
	pmV4Limit int
	pmV6Limit int
	pmTTL     int

	netboxDevices []string
	renumberIPv4  string
	renumberIPv6  string

	cfZone runner.CFZone
)

// optionalInt returns &v when the named flag was given.
func optionalInt(cmd *cobra.Command, name string, v int) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

func parseASN(s string) (int64, error) {
	asn, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ASN %q", s)
	}
	return asn, nil
}

// ============================================================================
// Peering Manager
// ============================================================================

var pmCmd = &cobra.Command{
	Use:   "pm",
	Short: "Peering Manager connector",
	Long: `Peering Manager connector.

Examples:
  netdbctl pm sessions direct
  netdbctl pm reload -x
  netdbctl pm status SIN1 23.181.64.4 maintenance -x
  netdbctl pm session add SIN1 23.181.64.4 --peer-asn 174 --import TRANSIT-IN -x`,
}

var pmSessionsCmd = &cobra.Command{
	Use:   "sessions <direct|ixp>",
	Short: "Show Peering Manager's sessions in netdb format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(false, func(r *runner.Runner) *result.Return {
			switch args[0] {
			case "direct":
				return r.PMGenerateDirectSessions(cmd.Context())
			case "ixp":
				return r.PMGenerateIXPSessions(cmd.Context())
			}
			return result.Fail(fmt.Sprintf("unknown session kind %q", args[0]))
		})
	},
}

var pmReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Replace Peering Manager's data in the bgp column",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(true, func(r *runner.Runner) *result.Return {
			return r.PMReloadBGP(cmd.Context(), reloadDetails, !executeMode)
		})
	},
}

var pmStatusCmd = &cobra.Command{
	Use:   "status <device> <neighbor> <enabled|maintenance>",
	Short: "Set a session's status",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(true, func(r *runner.Runner) *result.Return {
			return r.PMSetStatus(cmd.Context(), args[0], args[1], args[2], !executeMode)
		})
	},
}

var pmPolicyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Routing policies",
}

var pmPolicyCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Add a routing policy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := pmPolicy
		p.Name = args[0]
		p.Weight = optionalInt(cmd, "weight", pmWeight)
		return withRunner(true, func(r *runner.Runner) *result.Return {
			return r.PMCreatePolicy(cmd.Context(), p, !executeMode)
		})
	},
}

var pmPolicyDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a routing policy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(true, func(r *runner.Runner) *result.Return {
			return r.PMDeletePolicy(cmd.Context(), args[0], !executeMode)
		})
	},
}

var pmASNCmd = &cobra.Command{
	Use:   "asn",
	Short: "Autonomous systems",
}

var pmASNCreateCmd = &cobra.Command{
	Use:   "create <asn>",
	Short: "Add an autonomous system",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asn, err := parseASN(args[0])
		if err != nil {
			return err
		}
		a := pmASN
		a.ASN = asn
		a.IPv4PrefixLimit = optionalInt(cmd, "ipv4-limit", pmV4Limit)
		a.IPv6PrefixLimit = optionalInt(cmd, "ipv6-limit", pmV6Limit)
		return withRunner(true, func(r *runner.Runner) *result.Return {
			return r.PMCreateASN(cmd.Context(), a, !executeMode)
		})
	},
}

var pmASNSyncCmd = &cobra.Command{
	Use:   "sync <asn>",
	Short: "Refresh an autonomous system from PeeringDB",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asn, err := parseASN(args[0])
		if err != nil {
			return err
		}
		return withRunner(true, func(r *runner.Runner) *result.Return {
			return r.PMSyncASN(cmd.Context(), asn, !executeMode)
		})
	},
}

var pmSessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Direct sessions",
}

var pmSessionAddCmd = &cobra.Command{
	Use:   "add <device> <remote_ip>",
	Short: "Add a direct session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := pmSession
		s.Device, s.RemoteIP = args[0], args[1]
		s.TTL = optionalInt(cmd, "ttl", pmTTL)
		return withRunner(true, func(r *runner.Runner) *result.Return {
			return r.PMAddDirectSession(cmd.Context(), s, !executeMode)
		})
	},
}

var pmSessionUpdateCmd = &cobra.Command{
	Use:   "update <device> <remote_ip>",
	Short: "Update a direct session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := pmSession
		s.Device, s.RemoteIP = args[0], args[1]
		s.TTL = optionalInt(cmd, "ttl", pmTTL)
		return withRunner(true, func(r *runner.Runner) *result.Return {
			return r.PMUpdateDirectSession(cmd.Context(), s, !executeMode)
		})
	},
}

var pmSessionDeleteCmd = &cobra.Command{
	Use:   "delete <device> <remote_ip>",
	Short: "Delete a direct session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(true, func(r *runner.Runner) *result.Return {
			return r.PMDeleteDirectSession(cmd.Context(), args[0], args[1], !executeMode)
		})
	},
}

// ============================================================================
// Netbox
// ============================================================================

var netboxCmd = &cobra.Command{
	Use:   "netbox",
	Short: "Netbox connector",
	Long: `Netbox connector.

Examples:
  netdbctl netbox generate interfaces --device sin1
  netdbctl netbox sync interfaces --device sin1 --device sin2 -x
  netdbctl netbox renumber --ipv4 10.1.0.0/24 --ipv6 2001:db8:1::/64 -x`,
}

var netboxGenerateCmd = &cobra.Command{
	Use:   "generate <devices|interfaces|igp|ebgp>",
	Short: "Show a column generated from Netbox",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(false, func(r *runner.Runner) *result.Return {
			ctx := cmd.Context()
			switch args[0] {
			case "devices":
				return r.NetboxGenerateDevices(ctx)
			case "interfaces":
				if len(netboxDevices) != 1 {
					return result.Fail("Select one device with --device.")
				}
				return r.NetboxGenerateInterfaces(ctx, netboxDevices[0])
			case "igp":
				return r.NetboxGenerateISIS(ctx)
			case "ebgp":
				return r.NetboxGenerateEBGP(ctx)
			}
			return result.Fail(fmt.Sprintf("unknown Netbox column %q", args[0]))
		})
	},
}

var netboxSyncCmd = &cobra.Command{
	Use:   "sync <devices|interfaces|igp|ebgp>",
	Short: "Load a column generated from Netbox into netdb",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(true, func(r *runner.Runner) *result.Return {
			ctx, test := cmd.Context(), !executeMode
			switch args[0] {
			case "devices":
				return r.NetboxSyncDevices(ctx, test)
			case "interfaces":
				return r.NetboxSyncInterfaces(ctx, netboxDevices, test)
			case "igp":
				return r.NetboxSyncISIS(ctx, test)
			case "ebgp":
				return r.NetboxSyncEBGP(ctx, test)
			}
			return result.Fail(fmt.Sprintf("unknown Netbox column %q", args[0]))
		})
	},
}

var netboxUpdatePTRsCmd = &cobra.Command{
	Use:   "update-ptrs",
	Short: "Regularize PTR records in Netbox",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(true, func(r *runner.Runner) *result.Return {
			return r.NetboxUpdatePTRs(cmd.Context(), !executeMode)
		})
	},
}

var netboxUpdateDescriptionsCmd = &cobra.Command{
	Use:   "update-descriptions",
	Short: "Regularize interface descriptions in Netbox",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(true, func(r *runner.Runner) *result.Return {
			return r.NetboxUpdateDescriptions(cmd.Context(), !executeMode)
		})
	},
}

var netboxRenumberCmd = &cobra.Command{
	Use:   "renumber",
	Short: "Renumber the targeted interfaces",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(true, func(r *runner.Runner) *result.Return {
			return r.NetboxRenumber(cmd.Context(), renumberIPv4, renumberIPv6, !executeMode)
		})
	},
}

var netboxPruneIPsCmd = &cobra.Command{
	Use:   "prune-ips",
	Short: "Remove the addresses a renumber marked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(true, func(r *runner.Runner) *result.Return {
			return r.NetboxPruneIPs(cmd.Context(), !executeMode)
		})
	},
}

// ============================================================================
// Cloudflare DNS
// ============================================================================

var cfdnsCmd = &cobra.Command{
	Use:   "cfdns",
	Short: "Cloudflare DNS connector",
}

var cfdnsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Bring the managed PTR zones in line with netdb",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(true, func(r *runner.Runner) *result.Return {
			return r.CFSynchronize(cmd.Context(), !executeMode)
		})
	},
}

var cfdnsPTRsCmd = &cobra.Command{
	Use:   "ptrs",
	Short: "Show the managed zones with their PTR records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(false, func(r *runner.Runner) *result.Return {
			return r.CFPTRs(cmd.Context())
		})
	},
}

var cfdnsZonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "Show the managed zones",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(false, func(r *runner.Runner) *result.Return {
			return r.CFZones(cmd.Context())
		})
	},
}

var cfdnsZoneSetCmd = &cobra.Command{
	Use:   "zone-set <prefix> <zone>",
	Short: "Add or update the zone of a prefix",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		z := cfZone
		z.Prefix, z.Zone = args[0], args[1]
		return withRunner(true, func(r *runner.Runner) *result.Return {
			return r.CFUpsertZone(cmd.Context(), z, !executeMode)
		})
	},
}

var cfdnsZoneDeleteCmd = &cobra.Command{
	Use:   "zone-delete <prefix>",
	Short: "Delete the zone of a prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(true, func(r *runner.Runner) *result.Return {
			return r.CFDeleteZone(cmd.Context(), args[0], !executeMode)
		})
	},
}

func init() {
	pmReloadCmd.Flags().BoolVar(&reloadDetails, "details", false, "Show netdb-util's full answer")

	pmPolicyCreateCmd.Flags().StringVar(&pmPolicy.Type, "type", "import-policy", "Policy type")
	pmPolicyCreateCmd.Flags().StringVar(&pmPolicy.Family, "family", "", "Address family")
	pmPolicyCreateCmd.Flags().IntVar(&pmWeight, "weight", 0, "Policy weight")
	pmPolicyCreateCmd.Flags().StringVar(&pmPolicy.Comment, "comment", "", "Comment")
	pmPolicyCmd.AddCommand(pmPolicyCreateCmd, pmPolicyDeleteCmd)

	pmASNCreateCmd.Flags().StringVar(&pmASN.Name, "name", "", "AS name")
	pmASNCreateCmd.Flags().StringVar(&pmASN.Comment, "comment", "", "Comment")
	pmASNCreateCmd.Flags().IntVar(&pmV4Limit, "ipv4-limit", 0, "IPv4 prefix limit")
	pmASNCreateCmd.Flags().IntVar(&pmV6Limit, "ipv6-limit", 0, "IPv6 prefix limit")
	pmASNCmd.AddCommand(pmASNCreateCmd, pmASNSyncCmd)

	for _, c := range []*cobra.Command{pmSessionAddCmd, pmSessionUpdateCmd} {
		c.Flags().StringVar(&pmSession.LocalIP, "local-ip", "", "Local address")
		c.Flags().StringVar(&pmSession.Import, "import", "", "Import policy (0 clears on update)")
		c.Flags().StringVar(&pmSession.Export, "export", "", "Export policy (0 clears on update)")
		c.Flags().StringVar(&pmSession.Comment, "comment", "", "Comment")
		c.Flags().StringVar(&pmSession.Status, "status", "", "Session status")
		c.Flags().IntVar(&pmTTL, "ttl", 0, "Multihop TTL")
	}
	pmSessionAddCmd.Flags().Int64Var(&pmSession.PeerASN, "peer-asn", 0, "Peer ASN")
	pmSessionAddCmd.Flags().StringVar(&pmSession.Type, "type", "", "Session type (default transit-session)")
	pmSessionAddCmd.Flags().Int64Var(&pmSession.LocalASN, "local-asn", 0, "Local ASN")
	pmSessionCmd.AddCommand(pmSessionAddCmd, pmSessionUpdateCmd, pmSessionDeleteCmd)

	pmCmd.AddCommand(pmSessionsCmd, pmReloadCmd, pmStatusCmd, pmPolicyCmd, pmASNCmd, pmSessionCmd)
	addWriteFlags(pmCmd)

	netboxCmd.PersistentFlags().StringSliceVar(&netboxDevices, "device", nil, "Device (repeatable)")
	netboxRenumberCmd.Flags().StringVar(&renumberIPv4, "ipv4", "", "New IPv4 prefix")
	netboxRenumberCmd.Flags().StringVar(&renumberIPv6, "ipv6", "", "New IPv6 prefix")
	netboxCmd.AddCommand(netboxGenerateCmd, netboxSyncCmd, netboxUpdatePTRsCmd,
		netboxUpdateDescriptionsCmd, netboxRenumberCmd, netboxPruneIPsCmd)
	addWriteFlags(netboxCmd)

	cfdnsZoneSetCmd.Flags().StringVar(&cfZone.Account, "account", "", "Cloudflare account")
	cfdnsZoneSetCmd.Flags().BoolVar(&cfZone.Managed, "managed", true, "Zone is managed by the connector")
	cfdnsCmd.AddCommand(cfdnsSyncCmd, cfdnsPTRsCmd, cfdnsZonesCmd, cfdnsZoneSetCmd, cfdnsZoneDeleteCmd)
	addWriteFlags(cfdnsCmd)
}
