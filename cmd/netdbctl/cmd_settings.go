package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erikjseidel/salt-netdb/pkg/cli"
	"github.com/erikjseidel/salt-netdb/pkg/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persistent settings",
	Long: `Manage persistent settings stored in ~/.netdbctl/config.yaml.

Environment variables override the file: NETDBCTL_NETDB_URL overrides
netdb.url.

Examples:
  netdbctl settings show
  netdbctl settings set netdb.id sin1
  netdbctl settings set netdb.url https://netdb.example.net/api/
  netdbctl settings set redis.addr 127.0.0.1:6379`,
}

// settingsPath is --config or the default location.
func settingsPath() string {
	if configPath != "" {
		return configPath
	}
	return settings.DefaultSettingsPath()
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.LoadFrom(settingsPath())
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}

		fmt.Printf("Settings file: %s\n\n", settingsPath())

		t := cli.NewTable(os.Stdout, "SETTING", "VALUE")
		for _, key := range settings.Keys() {
			value, _ := s.Get(key)
			if value == "" {
				value = "(not set)"
			}
			t.Row(key, value)
		}
		t.Flush()

		if err := s.Validate(); err != nil {
			fmt.Println("\n" + yellow("Incomplete: "+err.Error()))
		}
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Set a setting value",
	Long: `Set a persistent setting value.

Available settings:
  ` + strings.Join(settings.Keys(), "\n  "),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := settingsPath()
		s, err := settings.LoadFrom(path)
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		if err := s.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := s.SaveTo(path); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		value, _ := s.Get(args[0])
		fmt.Printf("%s set to: %s\n", args[0], value)
		return nil
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <setting>",
	Short: "Get a setting value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.LoadFrom(settingsPath())
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		value, err := s.Get(args[0])
		if err != nil {
			return err
		}
		if value == "" {
			fmt.Println("(not set)")
		} else {
			fmt.Println(value)
		}
		return nil
	},
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show settings file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(settingsPath())
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsPathCmd)
}
