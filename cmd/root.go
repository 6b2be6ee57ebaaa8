package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/desklago/leadhub/internal/utils"
	"github.com/desklago/leadhub/pkg/api"
	"github.com/desklago/leadhub/pkg/policy"
	"github.com/desklago/leadhub/pkg/session"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "leadhub",
	Short: "Manage business leads, users and tasks from your terminal.",
	Long: `leadhub is a client for the LeadHub business-lead management backend.
It lets staff submit, browse, filter and edit business leads, manage users,
and track assignable tasks, with the same role rules as the web dashboard.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.leadhub.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("api-url", "", "", "API base URL (overrides config)")
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().StringP("delimiter", "d", "\t", "Delimiter for list output")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".leadhub")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.leadhub.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default empty values for all keys
	viper.SetDefault("api_url", api.DefaultBaseURL)
	viper.SetDefault("email", "")
	viper.SetDefault("password", "")
	viper.SetDefault("session_path", "")

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}

// buildSession wires up the store, the API client and the session manager.
// The returned cleanup closes the session database.
func buildSession() (*session.Manager, *api.Client, func(), error) {
	sessionPath := viper.GetString("session_path")
	if sessionPath == "" {
		var err error
		sessionPath, err = session.DefaultStorePath()
		if err != nil {
			return nil, nil, nil, err
		}
	}

	store, err := session.OpenStore(sessionPath)
	if err != nil {
		return nil, nil, nil, err
	}

	baseURL, _ := rootCmd.PersistentFlags().GetString("api-url")
	if baseURL == "" {
		baseURL = viper.GetString("api_url")
	}

	var mgr *session.Manager
	client := api.New(baseURL, api.WithToken(func() string {
		if mgr == nil {
			return ""
		}
		return mgr.Token()
	}))

	if proxy, _ := rootCmd.PersistentFlags().GetString("proxy"); proxy != "" {
		if err := client.SetProxy(proxy); err != nil {
			store.Close()
			return nil, nil, nil, err
		}
	}

	mgr, err = session.NewManager(store, client)
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}
	return mgr, client, func() { store.Close() }, nil
}

// requireAuth verifies the persisted credential and exits when no valid
// session exists. Verification failure of any kind clears the session.
func requireAuth(ctx context.Context, mgr *session.Manager) *session.Principal {
	if err := mgr.Initialize(ctx); err != nil {
		utils.Log.Fatal("session initialization failed: ", err)
	}
	if !mgr.IsAuthenticated() {
		utils.Log.Fatal("not logged in, run: leadhub login")
	}
	return mgr.Current()
}

// requireAccess enforces the visibility policy at the command boundary.
func requireAccess(principal *session.Principal, dest policy.Destination) {
	switch policy.GuardRoute(principal, dest) {
	case policy.Allow:
		return
	case policy.RedirectLogin:
		utils.Log.Fatal("not logged in, run: leadhub login")
	default:
		utils.Log.Fatal("your role (", principal.Role, ") has no access to ", dest)
	}
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %q", raw)
	}
	return id, nil
}

// renderError prints a normalized API error once and clears the session on
// an unauthorized response so the next command starts at the login screen.
func renderError(mgr *session.Manager, err error) {
	if err == nil {
		return
	}
	if api.IsUnauthorized(err) {
		_ = mgr.Logout()
		utils.Log.Fatal("session expired, run: leadhub login")
	}
	if fieldErrs := api.FieldErrors(err); len(fieldErrs) > 0 {
		for field, msg := range fieldErrs {
			fmt.Printf("  %s: %s\n", field, msg)
		}
	}
	utils.Log.Fatal(err)
}
