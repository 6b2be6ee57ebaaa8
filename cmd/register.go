package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/desklago/leadhub/internal/utils"
	"github.com/desklago/leadhub/pkg/policy"
	"github.com/desklago/leadhub/pkg/session"
	"github.com/desklago/leadhub/pkg/users"
)

// registerCmd represents the register command (superadmin only)
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new user account (superadmin only)",
	Run: func(cmd *cobra.Command, args []string) {
		mgr, client, cleanup, err := buildSession()
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer cleanup()

		ctx := context.Background()
		principal := requireAuth(ctx, mgr)
		requireAccess(principal, policy.DestRegister)

		var reg users.Registration
		reg.Name, _ = cmd.Flags().GetString("name")
		reg.Email, _ = cmd.Flags().GetString("email")
		reg.Password, _ = cmd.Flags().GetString("password")
		reg.PasswordConfirmation, _ = cmd.Flags().GetString("password-confirmation")
		reg.Phone, _ = cmd.Flags().GetString("phone")
		reg.Address, _ = cmd.Flags().GetString("address")
		reg.ProfileImagePath, _ = cmd.Flags().GetString("profile-image")
		reg.RegUserID = principal.ID

		roleStr, _ := cmd.Flags().GetString("role")
		role, err := session.ParseRole(roleStr)
		if err != nil {
			utils.Log.Fatal(err)
		}
		reg.Role = role

		if reg.PasswordConfirmation == "" {
			reg.PasswordConfirmation = reg.Password
		}

		if err := users.NewService(client).Register(ctx, reg); err != nil {
			renderError(mgr, err)
		}
		fmt.Printf("Registered %s (%s)\n", reg.Name, reg.Role)
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringP("name", "", "", "Full name")
	registerCmd.Flags().StringP("email", "e", "", "Email address")
	registerCmd.Flags().StringP("password", "p", "", "Password")
	registerCmd.Flags().StringP("password-confirmation", "", "", "Password confirmation (defaults to --password)")
	registerCmd.Flags().StringP("phone", "", "", "Phone number")
	registerCmd.Flags().StringP("address", "", "", "Address")
	registerCmd.Flags().StringP("role", "r", "member", "Account role (superadmin, admin, leader, member, client)")
	registerCmd.Flags().StringP("profile-image", "", "", "Path to a profile image file")
}
