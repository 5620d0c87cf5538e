package main

import (
	"fmt"
	"os"

	"github.com/snakayama/kadai/internal/db"
	"github.com/spf13/cobra"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBSeedCmd())
	cmd.AddCommand(newDBResetCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the Kadai database",
		Long:  "Migrates all tables and seeds the demo users and sample project.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kadai.yaml", "path to Kadai config file")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := openDB(configPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Connected to %s database\n", cfg.Database.Driver)

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	if err := db.SeedUsers(gormDB); err != nil {
		return err
	}
	fmt.Fprintln(out, "Seeded demo users")

	if err := db.SeedSampleProject(gormDB); err != nil {
		return err
	}
	fmt.Fprintln(out, "Seeded sample project")

	fmt.Fprintln(out, "\nKadai database initialized successfully.")
	return nil
}

func newDBSeedCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the demo users and sample project",
		Long:  "Upserts the demo users and creates the sample project if missing. Safe to run repeatedly; requires an initialized database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBSeed(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kadai.yaml", "path to Kadai config file")
	return cmd
}

func runDBSeed(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	_, gormDB, err := openDB(configPath)
	if err != nil {
		return err
	}

	if err := db.SeedUsers(gormDB); err != nil {
		return err
	}
	fmt.Fprintln(out, "Seeded demo users")

	if err := db.SeedSampleProject(gormDB); err != nil {
		return err
	}
	fmt.Fprintln(out, "Seeded sample project")
	return nil
}

func newDBResetCmd() *cobra.Command {
	var (
		configPath string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop and re-initialize the Kadai database",
		Long:  "Removes the sqlite database file and runs init again. Only supported for the sqlite driver.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBReset(cmd, configPath, yes)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kadai.yaml", "path to Kadai config file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func runDBReset(cmd *cobra.Command, configPath string, yes bool) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Database.Driver != "sqlite" {
		return fmt.Errorf("db reset only supports the sqlite driver, not %q", cfg.Database.Driver)
	}

	if !yes {
		confirmed, err := confirm(cmd, fmt.Sprintf("Delete %s and re-initialize?", cfg.Database.Path))
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	if err := os.Remove(cfg.Database.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", cfg.Database.Path, err)
	}
	fmt.Fprintf(out, "Removed %s\n", cfg.Database.Path)

	return runDBInit(cmd, configPath)
}
