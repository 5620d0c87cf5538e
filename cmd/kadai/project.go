package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/snakayama/kadai/internal/project"
	"github.com/spf13/cobra"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project management commands",
	}

	cmd.AddCommand(newProjectAddCmd())
	cmd.AddCommand(newProjectListCmd())
	cmd.AddCommand(newProjectRemoveCmd())
	return cmd
}

func newProjectAddCmd() *cobra.Command {
	var (
		configPath  string
		key         string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := openDB(configPath)
			if err != nil {
				return err
			}
			p, err := project.Create(gormDB, project.CreateOpts{
				Name:        args[0],
				Key:         key,
				Description: description,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s)\n", p.Key, p.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kadai.yaml", "path to Kadai config file")
	cmd.Flags().StringVarP(&key, "key", "k", "", "short uppercase project key, used as the task number prefix")
	cmd.Flags().StringVarP(&description, "description", "d", "", "project description")
	cmd.MarkFlagRequired("key")
	return cmd
}

func newProjectListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := openDB(configPath)
			if err != nil {
				return err
			}
			projects, err := project.List(gormDB)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tNAME\tID")
			for _, p := range projects {
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.Key, p.Name, p.ID)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kadai.yaml", "path to Kadai config file")
	return cmd
}

func newProjectRemoveCmd() *cobra.Command {
	var (
		configPath string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "rm PROJECT_ID",
		Short: "Delete a project and everything it owns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := openDB(configPath)
			if err != nil {
				return err
			}
			p, err := project.Get(gormDB, args[0])
			if err != nil {
				return err
			}
			if !yes {
				confirmed, err := confirm(cmd, fmt.Sprintf("Delete project %s (%s) and all of its tasks?", p.Key, p.Name))
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}
			if err := project.Delete(gormDB, p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", p.Key)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kadai.yaml", "path to Kadai config file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
