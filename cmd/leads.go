package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/desklago/leadhub/internal/utils"
	"github.com/desklago/leadhub/pkg/leads"
	"github.com/desklago/leadhub/pkg/listquery"
	"github.com/desklago/leadhub/pkg/policy"
	"github.com/desklago/leadhub/pkg/session"
)

// leadsCmd represents the leads command group
var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Browse and manage business-lead submissions",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List lead submissions with server-side filters and pagination",
	Run: func(cmd *cobra.Command, args []string) {
		mgr, client, cleanup, err := buildSession()
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer cleanup()

		ctx := context.Background()
		principal := requireAuth(ctx, mgr)
		requireAccess(principal, policy.DestViewSubmissions)

		filters := listquery.Filters{}
		filters.Search, _ = cmd.Flags().GetString("search")
		filters.BusinessType, _ = cmd.Flags().GetString("type")
		filters.Status, _ = cmd.Flags().GetString("status")
		filters.Location, _ = cmd.Flags().GetString("location")
		filters.FromDate, _ = cmd.Flags().GetString("from")
		filters.ToDate, _ = cmd.Flags().GetString("to")
		page, _ := cmd.Flags().GetInt("page")
		perPage, _ := cmd.Flags().GetInt("per-page")

		query := leads.NewQuery(principal, leads.NewService(client),
			listquery.WithFilters[leads.Lead](filters),
			listquery.WithPage[leads.Lead](page),
			listquery.WithPerPage[leads.Lead](perPage),
		)
		if err := query.Refetch(ctx); err != nil {
			renderError(mgr, err)
		}

		delimiter, _ := rootCmd.PersistentFlags().GetString("delimiter")
		fieldsFlag, _ := cmd.Flags().GetString("output")
		printLeads(query, principal, delimiter, fieldsFlag)
	},
}

// printLeads renders one page of leads, showing only the columns the
// principal's role and subscription state allow. fieldsFlag further narrows
// the output to a comma-separated subset of those columns.
func printLeads(query *listquery.Query[leads.Lead], principal *session.Principal, delimiter, fieldsFlag string) {
	cols := policy.ColumnsFor(principal.Role, principal.Subscribed)
	if fieldsFlag != "" {
		wanted := map[string]bool{}
		for _, f := range strings.Split(fieldsFlag, ",") {
			wanted[strings.TrimSpace(f)] = true
		}
		var narrowed []policy.Column
		for _, col := range cols {
			if wanted[string(col)] {
				narrowed = append(narrowed, col)
			}
		}
		cols = narrowed
	}

	var header []string
	for _, col := range cols {
		header = append(header, string(col))
	}
	fmt.Println(strings.Join(header, delimiter))

	for _, lead := range query.Rows() {
		var fields []string
		for _, col := range cols {
			switch col {
			case policy.ColBusinessInfo:
				fields = append(fields, lead.BusinessName+" ("+lead.BusinessType+")")
			case policy.ColContact:
				fields = append(fields, strings.TrimSpace(lead.BusinessEmail+" "+lead.BusinessPhone))
			case policy.ColStatus:
				fields = append(fields, string(lead.Status))
			case policy.ColCreatedBy:
				fields = append(fields, lead.User.Name)
			case policy.ColDate:
				fields = append(fields, lead.CreatedAt)
			case policy.ColActions:
				fields = append(fields, fmt.Sprintf("id=%d", lead.ID))
			}
		}
		fmt.Println(strings.Join(fields, delimiter))
	}

	p := query.Pagination()
	fmt.Printf("\npage %d/%d (%d total)\n", p.CurrentPage, p.TotalPages, p.TotalItems)
}

func statusHelp() string {
	var opts []string
	for _, s := range leads.Statuses {
		opts = append(opts, string(s))
	}
	return strings.Join(opts, ", ")
}

var leadsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Show lead counts (global for superadmins, own otherwise)",
	Run: func(cmd *cobra.Command, args []string) {
		mgr, client, cleanup, err := buildSession()
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer cleanup()

		ctx := context.Background()
		principal := requireAuth(ctx, mgr)
		svc := leads.NewService(client)

		if principal.Role == session.RoleSuperadmin {
			stats, err := svc.Count(ctx)
			if err != nil {
				renderError(mgr, err)
			}
			fmt.Printf("total: %d\n", stats.TotalLeads)
			for status, n := range stats.ByStatus {
				fmt.Printf("%s: %d\n", status, n)
			}
			return
		}

		count, err := svc.CountForUser(ctx, principal.ID)
		if err != nil {
			renderError(mgr, err)
		}
		fmt.Println(count)
	},
}

func init() {
	rootCmd.AddCommand(leadsCmd)
	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsCountCmd)

	leadsListCmd.Flags().StringP("search", "s", "", "Free-text search")
	leadsListCmd.Flags().StringP("type", "t", "", "Business type filter")
	leadsListCmd.Flags().StringP("status", "", "", "Status filter ("+statusHelp()+")")
	leadsListCmd.Flags().StringP("location", "", "", "Location filter")
	leadsListCmd.Flags().StringP("from", "", "", "Created-at lower bound (YYYY-MM-DD)")
	leadsListCmd.Flags().StringP("to", "", "", "Created-at upper bound (YYYY-MM-DD)")
	leadsListCmd.Flags().IntP("page", "p", 1, "Page number")
	leadsListCmd.Flags().IntP("per-page", "n", listquery.DefaultPerPage, "Rows per page")
	leadsListCmd.Flags().StringP("output", "o", "", "Comma-separated columns to print (subset of your role's columns)")
}
