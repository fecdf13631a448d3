package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query [label] <question...>",
	Short: "Ask a question grounded in an indexed database",
	Long: `Generates an answer grounded in a database's indexed pages. The first
argument is treated as the database label when it is registered;
otherwise the whole argument list is the question.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

var queryModel string

func init() {
	queryCmd.Flags().StringVar(&queryModel, "model", "",
		"generation model (default from config)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	label, question := splitLabelArgs(args)

	res, err := queryService.Answer(context.Background(), label, queryModel, question, "cli")
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	cmd.Println(titleStyle.Render("Answer"))
	cmd.Println(res.Answer)

	if res.Grounding != "" {
		cmd.Println()
		cmd.Println(titleStyle.Render("Sources"))
		cmd.Println(dimStyle.Render(res.Grounding))
	}

	cmd.Println()
	cmd.Println(summaryBox("Usage", [][2]string{
		{"Model", res.Model},
		{"Prompt tokens", fmt.Sprintf("%d", res.InputTokens)},
		{"Response tokens", fmt.Sprintf("%d", res.OutputTokens)},
		{"Elapsed", fmt.Sprintf("%.1fs", res.Elapsed.Seconds())},
		{"Cost", usd(res.Cost)},
	}))
	return nil
}

// splitLabelArgs treats the first argument as a label only when more
// arguments follow; a single argument is always the question.
func splitLabelArgs(args []string) (label, question string) {
	if len(args) >= 2 {
		return args[0], strings.Join(args[1:], " ")
	}
	return "", args[0]
}
