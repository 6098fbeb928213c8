package main

import (
	"fmt"

	"github.com/hylla/tidsplan/internal/domain"
	"github.com/spf13/cobra"
)

// newTaskCmd groups task management subcommands.
func newTaskCmd() *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	taskCmd.AddCommand(newTaskAddCmd(), newTaskListCmd(), newTaskDoneCmd(), newTaskRmCmd())
	return taskCmd
}

func newTaskAddCmd() *cobra.Command {
	var (
		id          string
		title       string
		duration    int
		startAfter  string
		startBefore string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			after, err := parseDateFlag("start-after", startAfter)
			if err != nil {
				return err
			}
			before, err := parseDateFlag("start-before", startBefore)
			if err != nil {
				return err
			}

			in := domain.TaskInput{
				ID:          id,
				Title:       title,
				StartAfter:  after,
				StartBefore: before,
			}
			if cmd.Flags().Changed("duration") {
				in.DurationDays = &duration
			}

			task, err := rt.svc.CreateTask(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created task %s\n", task.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "task id (generated when omitted)")
	cmd.Flags().StringVar(&title, "title", "", "task title")
	cmd.Flags().IntVar(&duration, "duration", 0, "duration in calendar days")
	cmd.Flags().StringVar(&startAfter, "start-after", "", "hard earliest start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&startBefore, "start-before", "", "soft latest start (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newTaskListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			tasks, err := rt.svc.ListTasks(cmd.Context())
			if err != nil {
				return err
			}
			renderTasks(cmd.OutOrStdout(), tasks)
			return nil
		},
	}
}

func newTaskDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <task-id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			task, err := rt.svc.CompleteTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "completed task %s\n", task.ID)
			return nil
		},
	}
}

func newTaskRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.svc.DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted task %s\n", args[0])
			return nil
		},
	}
}
