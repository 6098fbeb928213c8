package main

import (
	"fmt"

	"github.com/hylla/tidsplan/internal/schedule"
	"github.com/spf13/cobra"
)

// newScheduleCmd previews the full-graph schedule without writing anything.
func newScheduleCmd() *cobra.Command {
	var today string
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Compute the full schedule and critical path (read-only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			return runPreview(cmd, rt, schedule.ModeFull, "", today)
		},
	}
	cmd.Flags().StringVar(&today, "today", "", "reference date for the run (YYYY-MM-DD)")
	return cmd
}

// newCascadeCmd previews the downstream schedule of a single anchor task.
func newCascadeCmd() *cobra.Command {
	var today string
	cmd := &cobra.Command{
		Use:   "cascade <task-id>",
		Short: "Compute the schedule for a task and everything downstream of it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			return runPreview(cmd, rt, schedule.ModeCascade, args[0], today)
		},
	}
	cmd.Flags().StringVar(&today, "today", "", "reference date for the run (YYYY-MM-DD)")
	return cmd
}

// runPreview runs the engine with a pinned reference date and renders the
// result.
func runPreview(cmd *cobra.Command, rt *runtime, mode schedule.Mode, anchor, todayFlag string) error {
	ref, err := rt.today(todayFlag)
	if err != nil {
		return err
	}
	result, err := rt.serviceAt(ref).Preview(cmd.Context(), mode, anchor)
	if err != nil {
		return err
	}
	renderResult(cmd.OutOrStdout(), result)
	return nil
}

// newReconcileCmd recomputes the schedule and persists changed dates.
func newReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute the full schedule and persist changed task dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			updated, err := rt.svc.Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			rt.logger.Info("reconciled schedule", "updated", updated)
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d task(s)\n", updated)
			return nil
		},
	}
}
