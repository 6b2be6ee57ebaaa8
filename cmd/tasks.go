package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/desklago/leadhub/internal/utils"
	"github.com/desklago/leadhub/pkg/policy"
	"github.com/desklago/leadhub/pkg/tasks"
	"github.com/desklago/leadhub/pkg/users"
)

// tasksCmd represents the tasks command group
var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Track assignable tasks and their subtasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Run: func(cmd *cobra.Command, args []string) {
		mgr, client, cleanup, err := buildSession()
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer cleanup()

		ctx := context.Background()
		principal := requireAuth(ctx, mgr)
		requireAccess(principal, policy.DestTasks)

		all, err := tasks.NewService(client).List(ctx)
		if err != nil {
			renderError(mgr, err)
		}

		delimiter, _ := rootCmd.PersistentFlags().GetString("delimiter")
		fmt.Println(strings.Join([]string{"id", "title", "priority", "status", "due", "assigned"}, delimiter))
		for _, t := range all {
			fmt.Println(strings.Join([]string{
				fmt.Sprint(t.ID),
				t.Title,
				tasks.PriorityLabels[t.Priority],
				t.Status,
				t.DueDate,
				fmt.Sprint(len(t.Assignments)),
			}, delimiter))
		}
	},
}

var tasksShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one task with its assignments and subtasks",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mgr, client, cleanup, err := buildSession()
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer cleanup()

		ctx := context.Background()
		principal := requireAuth(ctx, mgr)
		requireAccess(principal, policy.DestTasks)

		id, err := parseID(args[0])
		if err != nil {
			utils.Log.Fatal(err)
		}
		t, err := tasks.NewService(client).Get(ctx, id)
		if err != nil {
			renderError(mgr, err)
		}
		printTask(t)
	},
}

func printTask(t tasks.Task) {
	fmt.Printf("#%d %s [%s, %s]\n", t.ID, t.Title, tasks.PriorityLabels[t.Priority], t.Status)
	if t.Description != "" {
		fmt.Println(t.Description)
	}
	for _, a := range t.Assignments {
		fmt.Printf("  %s (%s) due %s\n", a.User.Name, a.Status, a.DueDate)
		for _, st := range a.Subtasks {
			mark := " "
			if st.Done {
				mark = "x"
			}
			fmt.Printf("    [%s] %d %s\n", mark, st.ID, st.Title)
		}
	}
}

var tasksCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a task",
	Run: func(cmd *cobra.Command, args []string) {
		mgr, client, cleanup, err := buildSession()
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer cleanup()

		ctx := context.Background()
		principal := requireAuth(ctx, mgr)
		requireAccess(principal, policy.DestTasks)

		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		priority, _ := cmd.Flags().GetInt("priority")
		dueDate, _ := cmd.Flags().GetString("due")
		if title == "" {
			utils.Log.Fatal("a title is required")
		}

		if err := tasks.NewService(client).Create(ctx, title, description, priority, dueDate); err != nil {
			renderError(mgr, err)
		}
		fmt.Println("Task created successfully")
	},
}

var tasksAssignCmd = &cobra.Command{
	Use:   "assign <task-id>",
	Short: "Assign a user to a task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mgr, client, cleanup, err := buildSession()
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer cleanup()

		ctx := context.Background()
		principal := requireAuth(ctx, mgr)
		requireAccess(principal, policy.DestTasks)

		taskID, err := parseID(args[0])
		if err != nil {
			utils.Log.Fatal(err)
		}
		userID, _ := cmd.Flags().GetInt("user")
		dueDate, _ := cmd.Flags().GetString("due")

		svc := tasks.NewService(client)

		if userID == 0 {
			// No user given: show who can still be assigned.
			t, err := svc.Get(ctx, taskID)
			if err != nil {
				renderError(mgr, err)
			}
			all, err := users.NewService(client).List(ctx)
			if err != nil {
				renderError(mgr, err)
			}
			fmt.Println("Assignable users:")
			for _, u := range tasks.AssignableUsers(all, t) {
				fmt.Printf("  %d %s (%s)\n", u.ID, u.Name, u.Role)
			}
			return
		}

		if err := svc.AssignUser(ctx, taskID, userID, dueDate); err != nil {
			renderError(mgr, err)
		}
		// Refetch so the success output reflects server truth.
		if t, err := svc.Get(ctx, taskID); err == nil {
			printTask(t)
		}
	},
}

var tasksCheckCmd = &cobra.Command{
	Use:   "check <subtask-id>",
	Short: "Toggle a subtask checkbox",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mgr, client, cleanup, err := buildSession()
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer cleanup()

		ctx := context.Background()
		principal := requireAuth(ctx, mgr)
		requireAccess(principal, policy.DestTasks)

		subtaskID, err := parseID(args[0])
		if err != nil {
			utils.Log.Fatal(err)
		}
		taskID, _ := cmd.Flags().GetInt("task")
		if taskID == 0 {
			utils.Log.Fatal("--task is required")
		}

		view, err := tasks.NewDetailView(ctx, tasks.NewService(client), taskID)
		if err != nil {
			renderError(mgr, err)
		}
		if err := view.ToggleSubtask(ctx, subtaskID); err != nil {
			// The view has already been reconciled from the server.
			printTask(view.Task())
			renderError(mgr, err)
		}
		printTask(view.Task())
	},
}

var tasksSubtaskCmd = &cobra.Command{
	Use:   "subtask <task-id>",
	Short: "Add a subtask under one assignment",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mgr, client, cleanup, err := buildSession()
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer cleanup()

		ctx := context.Background()
		principal := requireAuth(ctx, mgr)
		requireAccess(principal, policy.DestTasks)

		taskID, err := parseID(args[0])
		if err != nil {
			utils.Log.Fatal(err)
		}
		assignmentID, _ := cmd.Flags().GetInt("assignment")
		userID, _ := cmd.Flags().GetInt("user")
		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		if assignmentID == 0 || userID == 0 || title == "" {
			utils.Log.Fatal("--assignment, --user and --title are required")
		}

		svc := tasks.NewService(client)
		if err := svc.CreateSubtask(ctx, taskID, assignmentID, userID, title, description); err != nil {
			renderError(mgr, err)
		}
		if t, err := svc.Get(ctx, taskID); err == nil {
			printTask(t)
		}
	},
}

func init() {
	rootCmd.AddCommand(tasksCmd)
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksShowCmd)
	tasksCmd.AddCommand(tasksCreateCmd)
	tasksCmd.AddCommand(tasksAssignCmd)
	tasksCmd.AddCommand(tasksCheckCmd)
	tasksCmd.AddCommand(tasksSubtaskCmd)

	tasksCreateCmd.Flags().StringP("title", "", "", "Task title")
	tasksCreateCmd.Flags().StringP("description", "", "", "Task description")
	tasksCreateCmd.Flags().IntP("priority", "", 1, "Priority (1=Low, 2=Medium, 3=High)")
	tasksCreateCmd.Flags().StringP("due", "", "", "Due date (YYYY-MM-DD)")

	tasksAssignCmd.Flags().IntP("user", "u", 0, "User id to assign (omit to list assignable users)")
	tasksAssignCmd.Flags().StringP("due", "", "", "Due date (YYYY-MM-DD, defaults to today)")

	tasksCheckCmd.Flags().IntP("task", "", 0, "Parent task id")

	tasksSubtaskCmd.Flags().IntP("assignment", "", 0, "Assignment id")
	tasksSubtaskCmd.Flags().IntP("user", "u", 0, "Assigned user id")
	tasksSubtaskCmd.Flags().StringP("title", "", "", "Subtask title")
	tasksSubtaskCmd.Flags().StringP("description", "", "", "Subtask description")
}
