package main

import (
	"fmt"
	"io"
	"os"

	"github.com/felixgeelhaar/courseforge/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage courseforge configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Long: `Write config.yaml with the default settings into the configuration directory
($COURSEFORGE_HOME or ~/.courseforge). An existing file is kept unless --force
is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return initConfig(cmd.OutOrStdout(), force)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadLocalConfig()
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing configuration file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig(w io.Writer, force bool) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	}

	if err := config.SaveLocalConfig(config.DefaultLocalConfig()); err != nil {
		return err
	}
	successColor.Fprint(w, "✓ ")
	fmt.Fprintf(w, "Wrote default configuration to %s\n", path)
	return nil
}
