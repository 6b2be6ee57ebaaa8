package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/desklago/leadhub/internal/utils"
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the LeadHub API",
	Run: func(cmd *cobra.Command, args []string) {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if email == "" {
			email = viper.GetString("email")
		}
		if password == "" {
			password = viper.GetString("password")
		}
		if email == "" || password == "" {
			utils.Log.Fatal("email and password are required (flags or ~/.leadhub.yaml)")
		}

		mgr, _, cleanup, err := buildSession()
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer cleanup()

		result, err := mgr.Login(context.Background(), email, password)
		if err != nil {
			utils.Log.Fatal(err)
		}
		if !result.OK {
			// Rejected credentials are rendered inline, not treated as a crash.
			utils.Log.Fatal("login failed: ", result.Reason)
		}

		principal := mgr.Current()
		fmt.Printf("Logged in as %s (%s)\n", principal.Name, principal.Role)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringP("email", "e", "", "Account email")
	loginCmd.Flags().StringP("password", "p", "", "Account password")
}
