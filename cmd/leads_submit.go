package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/desklago/leadhub/internal/utils"
	"github.com/desklago/leadhub/pkg/leads"
	"github.com/desklago/leadhub/pkg/policy"
	"github.com/desklago/leadhub/pkg/session"
)

var leadsSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a new business lead",
	Run: func(cmd *cobra.Command, args []string) {
		mgr, client, cleanup, err := buildSession()
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer cleanup()

		ctx := context.Background()
		principal := requireAuth(ctx, mgr)
		requireAccess(principal, policy.DestSubmitEntry)

		draft := draftFromFlags(cmd)
		draft.UserID = principal.ID

		// Client-side validation blocks the submission before any request
		// goes out.
		fieldErrs, err := leads.NewService(client).Submit(ctx, draft)
		if len(fieldErrs) > 0 {
			for field, msg := range fieldErrs {
				fmt.Printf("  %s: %s\n", field, msg)
			}
			utils.Log.Fatal("please correct the errors above")
		}
		if err != nil {
			renderError(mgr, err)
		}
		fmt.Println("Entry submitted successfully!")
	},
}

var leadsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Replace a lead record (full update)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mgr, client, cleanup, err := buildSession()
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer cleanup()

		ctx := context.Background()
		principal := requireAuth(ctx, mgr)
		requireAccess(principal, policy.DestViewSubmissions)
		if principal.Role == session.RoleClient {
			utils.Log.Fatal("clients cannot edit leads")
		}

		id, err := parseID(args[0])
		if err != nil {
			utils.Log.Fatal(err)
		}

		draft := draftFromFlags(cmd)
		draft.UserID = principal.ID
		if errs := leads.Validate(draft); len(errs) > 0 {
			for field, msg := range errs {
				fmt.Printf("  %s: %s\n", field, msg)
			}
			utils.Log.Fatal("please correct the errors above")
		}

		if err := leads.NewService(client).Update(ctx, id, draft); err != nil {
			renderError(mgr, err)
		}
		fmt.Println("Lead updated successfully")
	},
}

var leadsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a lead record",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mgr, client, cleanup, err := buildSession()
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer cleanup()

		ctx := context.Background()
		principal := requireAuth(ctx, mgr)
		requireAccess(principal, policy.DestViewSubmissions)
		if principal.Role == session.RoleClient {
			utils.Log.Fatal("clients cannot delete leads")
		}

		id, err := parseID(args[0])
		if err != nil {
			utils.Log.Fatal(err)
		}
		if err := leads.NewService(client).Delete(ctx, id); err != nil {
			renderError(mgr, err)
		}
		fmt.Println("Lead deleted successfully")
	},
}

var leadsUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Bulk-import leads from a csv/xls/xlsx file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mgr, client, cleanup, err := buildSession()
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer cleanup()

		ctx := context.Background()
		principal := requireAuth(ctx, mgr)
		requireAccess(principal, policy.DestSubmitEntry)

		if err := leads.NewService(client).Upload(ctx, args[0]); err != nil {
			renderError(mgr, err)
		}
		fmt.Println("Leads uploaded successfully")
	},
}

func draftFromFlags(cmd *cobra.Command) leads.Draft {
	var d leads.Draft
	d.BusinessName, _ = cmd.Flags().GetString("name")
	d.BusinessType, _ = cmd.Flags().GetString("type")
	d.BusinessEmail, _ = cmd.Flags().GetString("email")
	d.BusinessPhone, _ = cmd.Flags().GetString("phone")
	d.WebsiteURL, _ = cmd.Flags().GetString("website")
	d.Location, _ = cmd.Flags().GetString("location")
	d.SourceOfData, _ = cmd.Flags().GetString("source")
	d.Note, _ = cmd.Flags().GetString("note")
	status, _ := cmd.Flags().GetString("status")
	d.Status = leads.Status(status)
	return d
}

func addDraftFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("name", "", "", "Business name (required)")
	cmd.Flags().StringP("type", "t", "", "Business type (required)")
	cmd.Flags().StringP("email", "e", "", "Business email")
	cmd.Flags().StringP("phone", "", "", "Business phone")
	cmd.Flags().StringP("website", "w", "", "Website URL")
	cmd.Flags().StringP("location", "", "", "Location")
	cmd.Flags().StringP("source", "", "", "Source of data")
	cmd.Flags().StringP("status", "", string(leads.StatusPending), "Status ("+statusHelp()+")")
	cmd.Flags().StringP("note", "", "", "Free-form note")
}

func init() {
	leadsCmd.AddCommand(leadsSubmitCmd)
	leadsCmd.AddCommand(leadsEditCmd)
	leadsCmd.AddCommand(leadsDeleteCmd)
	leadsCmd.AddCommand(leadsUploadCmd)
	addDraftFlags(leadsSubmitCmd)
	addDraftFlags(leadsEditCmd)
}
