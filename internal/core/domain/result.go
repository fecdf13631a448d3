package domain

import "time"

// InitResult summarises a full-index run over a database.
type InitResult struct {
	Label        string  `json:"label"`
	DatabaseID   string  `json:"db_id"`
	StoreName    string  `json:"store_name"`
	PagesTotal   int     `json:"pages_total"`
	PagesIndexed int     `json:"pages_indexed"`
	IndexingCost float64 `json:"indexing_cost"`
	ImageCost    float64 `json:"image_cost"`
	TotalCost    float64 `json:"total_cost"`
}

// SyncResult summarises an incremental sync run over a database.
type SyncResult struct {
	Label        string  `json:"label"`
	DatabaseID   string  `json:"db_id"`
	PagesChecked int     `json:"pages_checked"`
	PagesUpdated int     `json:"pages_updated"`
	PagesSkipped int     `json:"pages_skipped"`
	IndexingCost float64 `json:"indexing_cost"`
	ImageCost    float64 `json:"image_cost"`
	TotalCost    float64 `json:"total_cost"`
}

// StoreStatus describes one remote store for listings.
type StoreStatus struct {
	Label     string `json:"display_name"`
	Resource  string `json:"name"`
	Documents int    `json:"documents"`
	SizeBytes int64  `json:"size_bytes"`
}

// QueryResult is the outcome of one grounded query against a store.
type QueryResult struct {
	Answer       string        `json:"answer"`
	Grounding    string        `json:"grounding,omitempty"`
	Model        string        `json:"model"`
	InputTokens  int           `json:"input_tokens"`
	OutputTokens int           `json:"output_tokens"`
	Cost         float64       `json:"cost"`
	Elapsed      time.Duration `json:"-"`
}

// BillingPeriod selects the aggregation granularity of a billing summary.
type BillingPeriod string

// Billing periods.
const (
	BillingTotal   BillingPeriod = "total"
	BillingDaily   BillingPeriod = "daily"
	BillingMonthly BillingPeriod = "monthly"
)

// Valid reports whether the period is one of the supported granularities.
func (p BillingPeriod) Valid() bool {
	switch p {
	case BillingTotal, BillingDaily, BillingMonthly:
		return true
	default:
		return false
	}
}

// BillingTotals holds aggregated USD costs.
type BillingTotals struct {
	EmbeddingCost float64 `json:"embedding_cost"`
	VisionCost    float64 `json:"vision_cost"`
	QueryCost     float64 `json:"query_cost"`
	TotalCost     float64 `json:"total_cost"`
}

// BillingBucket is one period's worth of aggregated costs.
type BillingBucket struct {
	Period string `json:"period"`
	BillingTotals
}

// BillingSummary is the full billing report.
type BillingSummary struct {
	Total     BillingTotals   `json:"total"`
	Breakdown []BillingBucket `json:"breakdown"`
}
