package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/desklago/leadhub/internal/utils"
	"github.com/desklago/leadhub/pkg/policy"
	"github.com/desklago/leadhub/pkg/users"
)

// usersCmd represents the users command group (superadmin only)
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts (superadmin only)",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all user accounts",
	Run: func(cmd *cobra.Command, args []string) {
		mgr, client, cleanup, err := buildSession()
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer cleanup()

		ctx := context.Background()
		principal := requireAuth(ctx, mgr)
		requireAccess(principal, policy.DestUsers)

		all, err := users.NewService(client).List(ctx)
		if err != nil {
			renderError(mgr, err)
		}

		delimiter, _ := rootCmd.PersistentFlags().GetString("delimiter")
		fmt.Println(strings.Join([]string{"id", "name", "email", "role", "subscribed"}, delimiter))
		for _, u := range all {
			fmt.Println(strings.Join([]string{
				fmt.Sprint(u.ID), u.Name, u.Email, string(u.Role), fmt.Sprint(bool(u.Subscribed)),
			}, delimiter))
		}
	},
}

var usersSubscribeCmd = &cobra.Command{
	Use:   "subscribe <id>",
	Short: "Toggle a user's subscription flag",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mgr, client, cleanup, err := buildSession()
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer cleanup()

		ctx := context.Background()
		principal := requireAuth(ctx, mgr)
		requireAccess(principal, policy.DestUsers)

		id, err := parseID(args[0])
		if err != nil {
			utils.Log.Fatal(err)
		}
		if err := users.NewService(client).ToggleSubscribe(ctx, id); err != nil {
			renderError(mgr, err)
		}
		fmt.Println("Subscription status updated successfully")
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mgr, client, cleanup, err := buildSession()
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer cleanup()

		ctx := context.Background()
		principal := requireAuth(ctx, mgr)
		requireAccess(principal, policy.DestUsers)

		id, err := parseID(args[0])
		if err != nil {
			utils.Log.Fatal(err)
		}
		if err := users.NewService(client).Delete(ctx, id); err != nil {
			renderError(mgr, err)
		}
		fmt.Println("User deleted successfully")
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersSubscribeCmd)
	usersCmd.AddCommand(usersDeleteCmd)
}
