// Package cli implements the notisync command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/minsukim/notisync/internal/core/ports/driving"
	"github.com/minsukim/notisync/internal/logger"
)

// version is the CLI version, overridable at build time via ldflags.
var version = "0.1.0"

// Services injected by the composition root before Execute.
var (
	indexService   driving.IndexService
	queryService   driving.QueryService
	billingService driving.BillingService
	serveFunc      func(addr string) error
	serverAddr     string
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "notisync",
	Short: "Sync Notion databases into a searchable document store",
	Long: `notisync indexes the pages of a Notion database into a Gemini file
search store and keeps the index up to date as pages change. Indexed
content can then be queried with answers grounded in the store.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"print progress details to stderr")
}

// Services carries the wired service implementations.
type Services struct {
	Index   driving.IndexService
	Query   driving.QueryService
	Billing driving.BillingService

	// Serve starts the HTTP surface on addr; wired so the serve command
	// does not depend on the server package.
	Serve func(addr string) error

	// ServerAddr is the configured default listen address.
	ServerAddr string
}

// SetServices injects the service implementations.
func SetServices(s Services) {
	indexService = s.Index
	queryService = s.Query
	billingService = s.Billing
	serveFunc = s.Serve
	serverAddr = s.ServerAddr
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
