package main

import (
	"fmt"

	"github.com/snakayama/kadai/internal/reconcile"
	"github.com/spf13/cobra"
)

func newReconcileCmd() *cobra.Command {
	var (
		configPath string
		projectID  string
		fallback   string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reassign orphaned tasks to a fallback status",
		Long: `Finds tasks whose status key no longer exists in their project's catalog
(left behind by a status deletion) and reassigns them. With --dry-run the
orphans are listed without being modified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, gormDB, err := openDB(configPath)
			if err != nil {
				return err
			}
			if fallback == "" {
				fallback = cfg.Reconcile.FallbackStatus
			}

			if dryRun {
				if projectID == "" {
					return fmt.Errorf("--dry-run requires --project")
				}
				orphans, err := reconcile.Orphans(gormDB, projectID)
				if err != nil {
					return err
				}
				for _, t := range orphans {
					fmt.Fprintf(out, "#%d %s (status %q)\n", t.KeyID, t.Summary, t.Status)
				}
				fmt.Fprintf(out, "%d orphaned tasks\n", len(orphans))
				return nil
			}

			var n int
			if projectID != "" {
				n, err = reconcile.Reassign(gormDB, projectID, fallback)
			} else {
				n, err = reconcile.ReassignAll(gormDB, fallback)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Reassigned %d orphaned tasks to %q\n", n, fallback)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kadai.yaml", "path to Kadai config file")
	cmd.Flags().StringVarP(&projectID, "project", "P", "", "limit to one project ID")
	cmd.Flags().StringVarP(&fallback, "fallback", "f", "", "fallback status key (default from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list orphans without modifying them")
	return cmd
}
