package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/yuanying/linkpub/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration file",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and report problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.ValidateServer(); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Config is valid for CLI use; serve would fail: %v\n", err)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Config is valid")
			return nil
		},
	}

	cmd.AddCommand(initCmd, validate)
	return cmd
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	var err error
	if path == "" {
		path, err = config.DefaultConfigPath()
	} else {
		path, err = config.ExpandPath(path)
	}
	if err != nil {
		return err
	}

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if err := config.CreateSample(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample config to %s\n", path)
	fmt.Fprintln(cmd.OutOrStdout(), "Set auth.jwt_secret (or LINKPUB_JWT_SECRET) before running 'linkpub serve'.")
	return nil
}
