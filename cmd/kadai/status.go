package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/snakayama/kadai/internal/status"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Status catalog management commands",
	}

	cmd.AddCommand(newStatusAddCmd())
	cmd.AddCommand(newStatusListCmd())
	cmd.AddCommand(newStatusRemoveCmd())
	cmd.AddCommand(newStatusReorderCmd())
	return cmd
}

func newStatusAddCmd() *cobra.Command {
	var (
		configPath string
		projectID  string
		label      string
		color      string
	)

	cmd := &cobra.Command{
		Use:   "add KEY",
		Short: "Add a status to a project's catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := openDB(configPath)
			if err != nil {
				return err
			}
			s, err := status.Create(gormDB, status.CreateOpts{
				ProjectID: projectID,
				Key:       args[0],
				Label:     label,
				Color:     color,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added status %q at position %d\n", s.Key, s.DisplayOrder)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kadai.yaml", "path to Kadai config file")
	cmd.Flags().StringVarP(&projectID, "project", "P", "", "project ID")
	cmd.Flags().StringVarP(&label, "label", "l", "", "display label")
	cmd.Flags().StringVar(&color, "color", "#6b7280", "display color (#RRGGBB)")
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("label")
	return cmd
}

func newStatusListCmd() *cobra.Command {
	var (
		configPath string
		projectID  string
	)

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List a project's status catalog",
		Long:  "Lists the catalog in display order, materializing the defaults on a project's first read.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := openDB(configPath)
			if err != nil {
				return err
			}
			catalog, err := status.Resolve(gormDB, projectID)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ORDER\tKEY\tLABEL\tCOLOR\tID")
			for _, s := range catalog {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.DisplayOrder, s.Key, s.Label, s.Color, s.ID)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kadai.yaml", "path to Kadai config file")
	cmd.Flags().StringVarP(&projectID, "project", "P", "", "project ID")
	cmd.MarkFlagRequired("project")
	return cmd
}

func newStatusRemoveCmd() *cobra.Command {
	var (
		configPath string
		projectID  string
	)

	cmd := &cobra.Command{
		Use:   "rm STATUS_ID",
		Short: "Delete a status from a project's catalog",
		Long: `Deletes a status definition. Default statuses cannot be deleted.

Tasks still holding the deleted key become orphans: they disappear from the
board until "kadai reconcile" reassigns them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := openDB(configPath)
			if err != nil {
				return err
			}
			if err := status.Delete(gormDB, args[0], projectID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted status %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kadai.yaml", "path to Kadai config file")
	cmd.Flags().StringVarP(&projectID, "project", "P", "", "project ID")
	cmd.MarkFlagRequired("project")
	return cmd
}

func newStatusReorderCmd() *cobra.Command {
	var (
		configPath string
		projectID  string
	)

	cmd := &cobra.Command{
		Use:   "reorder STATUS_ID...",
		Short: "Reorder a project's status catalog",
		Long:  "Assigns display order 0..n-1 to the given status IDs in argument order. Pass the full catalog; omitted statuses keep their old rank.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := openDB(configPath)
			if err != nil {
				return err
			}
			items := make([]status.OrderItem, len(args))
			for i, id := range args {
				items[i] = status.OrderItem{ID: id, DisplayOrder: i}
			}
			if err := status.Reorder(gormDB, projectID, items); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reordered %d statuses: %s\n", len(args), strings.Join(args, ", "))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kadai.yaml", "path to Kadai config file")
	cmd.Flags().StringVarP(&projectID, "project", "P", "", "project ID")
	cmd.MarkFlagRequired("project")
	return cmd
}
