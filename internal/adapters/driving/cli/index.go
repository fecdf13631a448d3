package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [label] [database-url]",
	Short: "Index every page of a Notion database",
	Long: `Runs a full index over a database. With a label and URL the database
is registered first; with just a label (or nothing, when exactly one
database is registered) the existing registration is used.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runInit,
}

var syncCmd = &cobra.Command{
	Use:   "sync [label]",
	Short: "Re-index recently modified pages",
	Long: `Checks the pages modified within the sync window and re-indexes the
ones whose content changed since they were last indexed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

var syncForce bool

func init() {
	syncCmd.Flags().BoolVar(&syncForce, "force", false,
		"re-index every checked page regardless of change detection")
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(syncCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	var label, dbURL string
	if len(args) > 0 {
		label = args[0]
	}
	if len(args) > 1 {
		dbURL = args[1]
	}

	cmd.Println("Indexing database...")
	res, err := indexService.InitDatabase(context.Background(), label, dbURL)
	if err != nil {
		return fmt.Errorf("init failed: %w", err)
	}

	cmd.Println(summaryBox("Init Complete", [][2]string{
		{"Label", res.Label},
		{"Database", res.DatabaseID},
		{"Store", res.StoreName},
		{"Pages total", strconv.Itoa(res.PagesTotal)},
		{"Pages indexed", successStyle.Render(strconv.Itoa(res.PagesIndexed))},
		{"Indexing cost", usd(res.IndexingCost)},
		{"Image cost", usd(res.ImageCost)},
		{"Total cost", usd(res.TotalCost)},
	}))
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	label := ""
	if len(args) > 0 {
		label = args[0]
	}

	cmd.Println("Syncing database...")
	res, err := indexService.SyncDatabase(context.Background(), label, syncForce)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	cmd.Println(summaryBox("Sync Complete", [][2]string{
		{"Label", res.Label},
		{"Checked", strconv.Itoa(res.PagesChecked)},
		{"Updated", successStyle.Render(strconv.Itoa(res.PagesUpdated))},
		{"Skipped", strconv.Itoa(res.PagesSkipped)},
		{"Indexing cost", usd(res.IndexingCost)},
		{"Image cost", usd(res.ImageCost)},
		{"Total cost", usd(res.TotalCost)},
	}))
	return nil
}
