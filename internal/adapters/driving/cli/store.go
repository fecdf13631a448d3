package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [label]",
	Short: "List indexed stores and their documents",
	Long: `Without a label, lists the store of every registered database. With a
label, also lists the documents indexed in that store.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

var removeCmd = &cobra.Command{
	Use:   "remove [label] <page-url-or-id>",
	Short: "Remove one page's document from a store",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runRemove,
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup [label]",
	Short: "Delete a database's store and all its documents",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCleanup,
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(cleanupCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}
	ctx := context.Background()

	if len(args) == 0 {
		stores, err := indexService.Stores(ctx)
		if err != nil {
			return fmt.Errorf("list failed: %w", err)
		}
		if len(stores) == 0 {
			cmd.Println("No stores found. Run 'init <label> <url>' first.")
			return nil
		}

		cmd.Println(titleStyle.Render(fmt.Sprintf("Stores (%d)", len(stores))))
		for _, s := range stores {
			cmd.Printf("  %s\n", s.Label)
			cmd.Printf("    %s %s\n", dimStyle.Render("Resource:"), s.Resource)
			cmd.Printf("    %s %d\n", dimStyle.Render("Documents:"), s.Documents)
			cmd.Printf("    %s %d bytes\n", dimStyle.Render("Size:"), s.SizeBytes)
		}
		return nil
	}

	status, artifacts, err := indexService.StoreDetail(ctx, args[0])
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	cmd.Println(titleStyle.Render(fmt.Sprintf("%s (%d documents)", status.Label, status.Documents)))
	for _, a := range artifacts {
		cmd.Printf("  %s\n", a.DisplayName)
		if edited := a.LastEdited(); edited != "" {
			cmd.Printf("    %s %s\n", dimStyle.Render("Last edited:"), edited)
		}
	}
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	var label, pageRef string
	if len(args) == 2 {
		label, pageRef = args[0], args[1]
	} else {
		pageRef = args[0]
	}

	if err := indexService.RemovePage(context.Background(), label, pageRef); err != nil {
		return fmt.Errorf("remove failed: %w", err)
	}
	cmd.Println(successStyle.Render("Document removed."))
	return nil
}

func runCleanup(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	label := ""
	if len(args) > 0 {
		label = args[0]
	}

	if err := indexService.Cleanup(context.Background(), label); err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	cmd.Println(successStyle.Render("Store deleted."))
	return nil
}
