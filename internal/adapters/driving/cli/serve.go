package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var serveAddrFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Starts the HTTP server exposing the query, sync and billing endpoints.
The server blocks until the process is stopped.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddrFlag, "addr", "", "listen address (host:port), overrides the configured one")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveFunc == nil {
		return errors.New("server not configured")
	}

	addr := serverAddr
	if serveAddrFlag != "" {
		addr = serveAddrFlag
	}

	cmd.Printf("Listening on http://%s\n", addr)
	if err := serveFunc(addr); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
