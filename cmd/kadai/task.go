package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/snakayama/kadai/internal/task"
	"github.com/snakayama/kadai/internal/user"
	"github.com/spf13/cobra"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Task management commands",
	}

	cmd.AddCommand(newTaskAddCmd())
	cmd.AddCommand(newTaskListCmd())
	cmd.AddCommand(newTaskStatusCmd())
	return cmd
}

func newTaskAddCmd() *cobra.Command {
	var (
		configPath string
		projectID  string
		statusKey  string
		priority   string
	)

	cmd := &cobra.Command{
		Use:   "add SUMMARY",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := openDB(configPath)
			if err != nil {
				return err
			}
			creator, err := user.Current(gormDB)
			if err != nil {
				return err
			}
			t, err := task.Create(gormDB, task.CreateOpts{
				ProjectID: projectID,
				Summary:   args[0],
				Status:    statusKey,
				Priority:  priority,
				CreatedBy: creator.ID,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task #%d (%s)\n", t.KeyID, t.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kadai.yaml", "path to Kadai config file")
	cmd.Flags().StringVarP(&projectID, "project", "P", "", "project ID")
	cmd.Flags().StringVarP(&statusKey, "status", "s", "", "status key (defaults to open)")
	cmd.Flags().StringVarP(&priority, "priority", "r", "", "priority: high, medium, low")
	cmd.MarkFlagRequired("project")
	return cmd
}

func newTaskListCmd() *cobra.Command {
	var (
		configPath string
		projectID  string
		statusKey  string
	)

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List a project's tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := openDB(configPath)
			if err != nil {
				return err
			}
			tasks, err := task.List(gormDB, projectID, task.ListFilters{Status: statusKey})
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NO\tSUMMARY\tSTATUS\tPRIORITY")
			for _, t := range tasks {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.KeyID, t.Summary, t.Status, t.Priority)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kadai.yaml", "path to Kadai config file")
	cmd.Flags().StringVarP(&projectID, "project", "P", "", "project ID")
	cmd.Flags().StringVarP(&statusKey, "status", "s", "", "filter by status key")
	cmd.MarkFlagRequired("project")
	return cmd
}

func newTaskStatusCmd() *cobra.Command {
	var (
		configPath string
		projectID  string
	)

	cmd := &cobra.Command{
		Use:   "status TASK_ID KEY",
		Short: "Move a task to another status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := openDB(configPath)
			if err != nil {
				return err
			}
			if err := task.UpdateStatus(gormDB, args[0], projectID, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s is now %q\n", args[0], args[1])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kadai.yaml", "path to Kadai config file")
	cmd.Flags().StringVarP(&projectID, "project", "P", "", "project ID")
	cmd.MarkFlagRequired("project")
	return cmd
}
