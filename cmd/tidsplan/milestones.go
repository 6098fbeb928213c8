package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newMilestoneCmd groups milestone management subcommands.
func newMilestoneCmd() *cobra.Command {
	msCmd := &cobra.Command{
		Use:     "milestone",
		Aliases: []string{"ms"},
		Short:   "Manage milestones and their task links",
	}
	msCmd.AddCommand(newMilestoneAddCmd(), newMilestoneListCmd(), newMilestoneContribCmd(), newMilestoneRequireCmd())
	return msCmd
}

func newMilestoneAddCmd() *cobra.Command {
	var (
		name string
		due  string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a milestone",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			dueDate, err := parseDateFlag("due", due)
			if err != nil {
				return err
			}
			milestone, err := rt.svc.CreateMilestone(cmd.Context(), name, dueDate)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created milestone %s\n", milestone.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "milestone name")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newMilestoneListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List milestones",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			milestones, err := rt.svc.ListMilestones(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range milestones {
				due := "-"
				if m.DueDate != nil {
					due = m.DueDate.Format("2006-01-02")
				}
				fmt.Fprintf(out, "%s  %s  due %s\n", m.ID, m.Name, due)
			}
			return nil
		},
	}
}

func newMilestoneContribCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contrib <milestone-id> <task-id>",
		Short: "Record that a task's completion feeds a milestone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.svc.AddMilestoneContribution(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %s now contributes to milestone %s\n", args[1], args[0])
			return nil
		},
	}
}

func newMilestoneRequireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "require <task-id> <milestone-id>",
		Short: "Record that a task must wait on a milestone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.svc.AddMilestoneRequirement(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %s now waits on milestone %s\n", args[0], args[1])
			return nil
		},
	}
}
