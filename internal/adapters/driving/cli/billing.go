package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minsukim/notisync/internal/core/domain"
)

var (
	billingDaily   bool
	billingMonthly bool
)

var billingCmd = &cobra.Command{
	Use:   "billing",
	Short: "Summarise accumulated API costs",
	Long: `Aggregates the cost logs into a spend report. By default the report
is a single grand total; --daily and --monthly add a per-period breakdown.`,
	Args: cobra.NoArgs,
	RunE: runBilling,
}

func init() {
	billingCmd.Flags().BoolVar(&billingDaily, "daily", false, "break costs down per day")
	billingCmd.Flags().BoolVar(&billingMonthly, "monthly", false, "break costs down per month")
	rootCmd.AddCommand(billingCmd)
}

func runBilling(cmd *cobra.Command, args []string) error {
	if billingService == nil {
		return errors.New("billing service not configured")
	}
	if billingDaily && billingMonthly {
		return errors.New("--daily and --monthly are mutually exclusive")
	}

	period := domain.BillingTotal
	if billingDaily {
		period = domain.BillingDaily
	} else if billingMonthly {
		period = domain.BillingMonthly
	}

	summary, err := billingService.Summary(period)
	if err != nil {
		return fmt.Errorf("billing failed: %w", err)
	}

	cmd.Println(summaryBox("Billing Summary", [][2]string{
		{"Embedding", usd(summary.Total.EmbeddingCost)},
		{"Vision", usd(summary.Total.VisionCost)},
		{"Query", usd(summary.Total.QueryCost)},
		{"Total", usd(summary.Total.TotalCost)},
	}))

	if len(summary.Breakdown) > 0 {
		cmd.Println(titleStyle.Render("Breakdown"))
		for _, b := range summary.Breakdown {
			cmd.Printf("  %s  %s\n", b.Period, usd(b.TotalCost))
		}
	}
	return nil
}
