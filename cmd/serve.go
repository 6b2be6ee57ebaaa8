package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/desklago/leadhub/internal/server"
	"github.com/desklago/leadhub/internal/utils"
	"github.com/desklago/leadhub/pkg/leads"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the current principal's dashboard as a local JSON API",
	Run: func(cmd *cobra.Command, args []string) {
		mgr, client, cleanup, err := buildSession()
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer cleanup()

		requireAuth(context.Background(), mgr)

		addr, _ := cmd.Flags().GetString("addr")
		user, _ := cmd.Flags().GetString("user")
		pass, _ := cmd.Flags().GetString("pass")

		srv := server.New(mgr, leads.NewService(client), user, pass)
		if err := srv.Start(addr); err != nil {
			utils.Log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "127.0.0.1:8787", "Listen address")
	serveCmd.Flags().StringP("user", "", "", "Basic auth username (empty disables auth)")
	serveCmd.Flags().StringP("pass", "", "", "Basic auth password")
}
