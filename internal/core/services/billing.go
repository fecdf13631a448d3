package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/minsukim/notisync/internal/core/domain"
	"github.com/minsukim/notisync/internal/core/ports/driven"
	"github.com/minsukim/notisync/internal/core/ports/driving"
)

var _ driving.BillingService = (*Billing)(nil)

// Billing aggregates the append-only cost logs into period summaries.
type Billing struct {
	scanner driven.CostScanner
}

// NewBilling wires the billing service.
func NewBilling(scanner driven.CostScanner) *Billing {
	return &Billing{scanner: scanner}
}

// Summary aggregates every cost record into the requested granularity.
// Per-page indexing records carry the authoritative embedding and vision
// split; run-level sync and init summaries are excluded from the totals
// so a page is never billed twice.
func (b *Billing) Summary(period domain.BillingPeriod) (*domain.BillingSummary, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("%w: billing period %q", domain.ErrInvalidInput, period)
	}

	entries, err := b.scanner.Scan()
	if err != nil {
		return nil, fmt.Errorf("scan cost logs: %w", err)
	}

	summary := &domain.BillingSummary{}
	buckets := map[string]*domain.BillingTotals{}

	for _, e := range entries {
		var t domain.BillingTotals
		switch e.Kind {
		case "indexing":
			t.EmbeddingCost = e.EmbeddingCost
			t.VisionCost = e.VisionCost
		case "query":
			t.QueryCost = e.Cost
			if t.QueryCost == 0 {
				t.QueryCost = e.TotalCost
			}
		default:
			// sync and init rows duplicate the per-page records.
			continue
		}
		t.TotalCost = t.EmbeddingCost + t.VisionCost + t.QueryCost

		addTotals(&summary.Total, t)
		if key := bucketKey(period, e.Timestamp); key != "" {
			bt := buckets[key]
			if bt == nil {
				bt = &domain.BillingTotals{}
				buckets[key] = bt
			}
			addTotals(bt, t)
		}
	}

	roundTotals(&summary.Total)
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		roundTotals(buckets[k])
		summary.Breakdown = append(summary.Breakdown, domain.BillingBucket{
			Period:        k,
			BillingTotals: *buckets[k],
		})
	}
	return summary, nil
}

// bucketKey maps a record timestamp to its breakdown bucket. Timestamps
// are RFC 3339, so the date and month are plain prefixes.
func bucketKey(period domain.BillingPeriod, ts string) string {
	switch period {
	case domain.BillingDaily:
		if len(ts) >= 10 {
			return ts[:10]
		}
	case domain.BillingMonthly:
		if len(ts) >= 7 {
			return ts[:7]
		}
	}
	return ""
}

func addTotals(dst *domain.BillingTotals, src domain.BillingTotals) {
	dst.EmbeddingCost += src.EmbeddingCost
	dst.VisionCost += src.VisionCost
	dst.QueryCost += src.QueryCost
	dst.TotalCost += src.TotalCost
}

// roundTotals trims float accumulation noise from the USD figures.
func roundTotals(t *domain.BillingTotals) {
	t.EmbeddingCost = round8(t.EmbeddingCost)
	t.VisionCost = round8(t.VisionCost)
	t.QueryCost = round8(t.QueryCost)
	t.TotalCost = round8(t.TotalCost)
}

func round8(v float64) float64 {
	return math.Round(v*1e8) / 1e8
}
