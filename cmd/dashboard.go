package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/desklago/leadhub/internal/utils"
	"github.com/desklago/leadhub/pkg/leads"
	"github.com/desklago/leadhub/pkg/session"
)

// dashboardCmd represents the dashboard command
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show lead counts for the current principal",
	Run: func(cmd *cobra.Command, args []string) {
		mgr, client, cleanup, err := buildSession()
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer cleanup()

		ctx := context.Background()
		principal := requireAuth(ctx, mgr)
		svc := leads.NewService(client)

		// Superadmins see the global totals; everyone else sees their own.
		if principal.Role == session.RoleSuperadmin {
			stats, err := svc.Count(ctx)
			if err != nil {
				renderError(mgr, err)
			}
			fmt.Printf("Total leads: %d\n", stats.TotalLeads)
			for status, n := range stats.ByStatus {
				fmt.Printf("  %s: %d\n", status, n)
			}
			return
		}

		count, err := svc.CountForUser(ctx, principal.ID)
		if err != nil {
			renderError(mgr, err)
		}
		fmt.Printf("Your leads: %d\n", count)
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
