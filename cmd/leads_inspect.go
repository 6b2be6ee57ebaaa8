package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/desklago/leadhub/internal/utils"
	"github.com/desklago/leadhub/pkg/enrich"
)

// leadsInspectCmd prefills a lead draft from a business website.
var leadsInspectCmd = &cobra.Command{
	Use:   "inspect <url>",
	Short: "Scrape a business website to prefill a lead draft",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		hints, err := enrich.Inspect(context.Background(), args[0])
		if err != nil {
			utils.Log.Fatal(err)
		}

		fmt.Println("Suggested draft fields:")
		fmt.Printf("  --name %q\n", hints.BusinessName)
		if hints.Email != "" {
			fmt.Printf("  --email %q\n", hints.Email)
		}
		if hints.Phone != "" {
			fmt.Printf("  --phone %q\n", hints.Phone)
		}
		if hints.Domain != "" {
			fmt.Printf("  domain: %s\n", hints.Domain)
		}
		if hints.Description != "" {
			fmt.Printf("  note: %s\n", utils.Truncate(hints.Description, 120))
		}
	},
}

func init() {
	leadsCmd.AddCommand(leadsInspectCmd)
}
