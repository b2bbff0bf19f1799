package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage wgs-report configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.wgs-report.yaml.",
		Example: `  wgs-report config                                          # show all config
  wgs-report config set references.hotspots /ref/hotspots.csv  # set a corpus path
  wgs-report config get out_dir                                # get a value`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.configShow()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.configSet(args[0], args[1])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.configGet(args[0])
		},
	})

	return cmd
}

func (a *app) configShow() error {
	settings := a.v.AllSettings()
	if len(settings) == 0 {
		fmt.Fprintln(a.out, "# No configuration set. Config file: ~/.wgs-report.yaml")
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(a.out, string(out))
	return nil
}

func (a *app) configSet(key, value string) error {
	// Parse boolean-like values
	switch value {
	case "true", "yes", "on":
		a.v.Set(key, true)
	case "false", "no", "off":
		a.v.Set(key, false)
	default:
		a.v.Set(key, value)
	}

	cfgFile := a.v.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".wgs-report.yaml")
	}

	if err := a.v.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(a.out, "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func (a *app) configGet(key string) error {
	val := a.v.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(a.out, val)
	return nil
}
