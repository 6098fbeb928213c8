package main

import (
	"fmt"

	"github.com/hylla/tidsplan/internal/domain"
	"github.com/spf13/cobra"
)

// newDepCmd groups dependency management subcommands.
func newDepCmd() *cobra.Command {
	depCmd := &cobra.Command{
		Use:   "dep",
		Short: "Manage dependencies between tasks",
	}
	depCmd.AddCommand(newDepAddCmd(), newDepListCmd(), newDepRmCmd())
	return depCmd
}

func newDepAddCmd() *cobra.Command {
	var (
		depType string
		lag     int
	)
	cmd := &cobra.Command{
		Use:   "add <predecessor-id> <successor-id>",
		Short: "Add a dependency edge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			dep, err := rt.svc.CreateDependency(cmd.Context(), args[0], args[1], domain.DependencyType(depType), lag)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created dependency %s (%s -> %s, %s, lag %d)\n",
				dep.ID, dep.PredecessorID, dep.SuccessorID, dep.Type, dep.LeadLagDays)
			return nil
		},
	}
	cmd.Flags().StringVar(&depType, "type", string(domain.FinishToStart), "dependency type: finish_to_start, start_to_start, finish_to_finish, start_to_finish")
	cmd.Flags().IntVar(&lag, "lag", 0, "lead/lag in days (negative = lead)")
	return cmd
}

func newDepListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			deps, err := rt.svc.ListDependencies(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, dep := range deps {
				fmt.Fprintf(out, "%s  %s -> %s  %s  lag %d\n",
					dep.ID, dep.PredecessorID, dep.SuccessorID, dep.Type, dep.LeadLagDays)
			}
			return nil
		},
	}
}

func newDepRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <dependency-id>",
		Short: "Delete a dependency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.svc.DeleteDependency(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted dependency %s\n", args[0])
			return nil
		},
	}
}
