package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/desklago/leadhub/internal/utils"
	"github.com/desklago/leadhub/pkg/policy"
)

// whoamiCmd represents the whoami command
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current principal and its reachable sections",
	Run: func(cmd *cobra.Command, args []string) {
		mgr, _, cleanup, err := buildSession()
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer cleanup()

		principal := requireAuth(context.Background(), mgr)
		fmt.Printf("%s <%s>\n", principal.Name, principal.Email)
		fmt.Printf("role: %s  subscribed: %t\n", principal.Role, principal.Subscribed)
		fmt.Println("sections:")
		for _, dest := range policy.NavigationFor(principal.Role) {
			fmt.Println("  " + string(dest))
		}
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
