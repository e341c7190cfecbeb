// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"strconv"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// migratorFactory is swapped out by tests.
var migratorFactory = newStoreMigrator

// NewMigrateCmd creates the migrate subcommand. Without a subcommand it
// applies every pending migration.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long: `Apply or inspect the embedded PostgreSQL schema migrations.
The database URL comes from --database-url, the config file or DATABASE_URL.`,
		RunE: runMigrateUp,
	}
	cmd.PersistentFlags().String("database-url", "", "PostgreSQL connection URL (env DATABASE_URL)")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE:  runMigrateUp,
	})

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration (drops the users table)",
		Args:  cobra.NoArgs,
		RunE:  runMigrateDown,
	}
	down.Flags().Bool("yes", false, "confirm the rollback")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "steps N",
		Short: "Apply N migrations, or roll back when N is negative",
		Args:  cobra.ExactArgs(1),
		RunE:  runMigrateSteps,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current schema version and pending migrations",
		Args:  cobra.NoArgs,
		RunE:  runMigrateStatus,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Mark VERSION as applied without running it (clears a dirty state)",
		Args:  cobra.ExactArgs(1),
		RunE:  runMigrateForce,
	})

	return cmd
}

// openMigrator resolves the database URL for cmd and opens a migrator.
func openMigrator(cmd *cobra.Command) (Migrator, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, oops.Code("CONFIG_INVALID").With("field", "database-url").
			Errorf("database URL is required (--database-url or DATABASE_URL)")
	}
	return migratorFactory(cfg.DatabaseURL)
}

func withMigrator(cmd *cobra.Command, fn func(Migrator) error) (err error) {
	m, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(m)
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	return withMigrator(cmd, func(m Migrator) error {
		cmd.Println("Running migrations...")
		if err := m.Up(); err != nil {
			return err
		}
		version, _, err := m.Version()
		if err != nil {
			return err
		}
		cmd.Printf("Migrations completed successfully (version %d)\n", version)
		return nil
	})
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	confirmed, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return err
	}
	if !confirmed {
		return oops.Code("CONFIRMATION_REQUIRED").Errorf("migrate down drops all data; pass --yes to confirm")
	}
	return withMigrator(cmd, func(m Migrator) error {
		if err := m.Down(); err != nil {
			return err
		}
		cmd.Println("All migrations rolled back")
		return nil
	})
}

func runMigrateSteps(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil || n == 0 {
		return oops.Code("INVALID_STEPS").With("steps", args[0]).Errorf("steps must be a non-zero integer, got %q", args[0])
	}
	return withMigrator(cmd, func(m Migrator) error {
		if err := m.Steps(n); err != nil {
			return err
		}
		version, _, err := m.Version()
		if err != nil {
			return err
		}
		cmd.Printf("Now at version %d\n", version)
		return nil
	})
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	return withMigrator(cmd, func(m Migrator) error {
		st, err := m.Status()
		if err != nil {
			return err
		}
		cmd.Printf("Version: %d", st.Version)
		if st.Name != "" {
			cmd.Printf(" (%s)", st.Name)
		}
		cmd.Println()
		if st.Dirty {
			cmd.Println("State:   DIRTY (fix the schema, then run migrate force)")
		}
		if len(st.Pending) == 0 {
			cmd.Println("Pending: none")
			return nil
		}
		pending := make([]string, len(st.Pending))
		for i, v := range st.Pending {
			pending[i] = strconv.FormatUint(uint64(v), 10)
		}
		cmd.Printf("Pending: %s\n", strings.Join(pending, ", "))
		return nil
	})
}

func runMigrateForce(cmd *cobra.Command, args []string) error {
	version, err := strconv.Atoi(args[0])
	if err != nil {
		return oops.Code("INVALID_VERSION").With("version", args[0]).Errorf("version must be an integer, got %q", args[0])
	}
	return withMigrator(cmd, func(m Migrator) error {
		if err := m.Force(version); err != nil {
			return err
		}
		cmd.Printf("Forced version %d\n", version)
		return nil
	})
}
