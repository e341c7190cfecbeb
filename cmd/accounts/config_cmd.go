// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/accounts/internal/config"
	"github.com/holomush/accounts/internal/xdg"
)

// NewConfigCmd creates the config subcommand.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file holding the default values",
		Long: `Write the default configuration to --config, or to
XDG_CONFIG_HOME/accounts/config.yaml. Secrets are left empty; set
JWT_SECRET and DATABASE_URL in the environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := initConfigFile(configFile, force)
			if err != nil {
				return err
			}
			cmd.Printf("wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file that would be loaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.ResolvePath(configFile)
			if err != nil {
				return err
			}
			if path == "" {
				cmd.Println("no config file (defaults, flags and environment only)")
				return nil
			}
			cmd.Println(path)
			return nil
		},
	}

	cmd.AddCommand(initCmd, pathCmd)
	return cmd
}

// initConfigFile writes config.Default to path, or to the XDG config file
// when path is empty. An existing file is kept unless force is set.
func initConfigFile(path string, force bool) (string, error) {
	if path == "" {
		var err error
		if path, err = xdg.ConfigFile(); err != nil {
			return "", err
		}
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", oops.Code("CONFIG_EXISTS").With("path", path).Errorf("%s already exists; pass --force to overwrite", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", oops.Code("CONFIG_WRITE_FAILED").With("path", path).Wrap(err)
		}
	}

	if err := xdg.EnsureDir(filepath.Dir(path)); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := writeYAML(&buf, config.Default()); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return "", oops.Code("CONFIG_WRITE_FAILED").With("path", path).Wrap(err)
	}
	return path, nil
}
