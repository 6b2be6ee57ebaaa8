package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/desklago/leadhub/internal/utils"
)

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		mgr, _, cleanup, err := buildSession()
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer cleanup()

		if err := mgr.Logout(); err != nil {
			utils.Log.Fatal(err)
		}
		fmt.Println("Logged out")
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
