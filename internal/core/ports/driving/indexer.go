package driving

import (
	"context"

	"github.com/minsukim/notisync/internal/core/domain"
)

// IndexService drives the per-database indexing workflows.
type IndexService interface {
	// InitDatabase runs a full index over every page of a database.
	// When dbURL is non-empty the label is registered first. Per-page
	// failures are recorded and skipped; they never abort the run.
	InitDatabase(ctx context.Context, label, dbURL string) (*domain.InitResult, error)

	// SyncDatabase re-indexes the pages modified within the configured
	// trailing window. force re-indexes every candidate regardless of
	// change detection.
	SyncDatabase(ctx context.Context, label string, force bool) (*domain.SyncResult, error)

	// RemovePage deletes the artifact for one page (URL or ID).
	RemovePage(ctx context.Context, label, pageRef string) error

	// Cleanup deletes a database's store and all its artifacts.
	Cleanup(ctx context.Context, label string) error

	// Stores lists the stores belonging to registered databases.
	Stores(ctx context.Context) ([]domain.StoreStatus, error)

	// StoreDetail returns one store's status plus its artifacts.
	StoreDetail(ctx context.Context, label string) (*domain.StoreStatus, []domain.StoredArtifact, error)
}

// QueryService answers questions grounded in a database's indexed content.
type QueryService interface {
	// Answer runs one grounded query. source tags the cost record
	// ("cli" or "api"). An empty model selects the configured default.
	Answer(ctx context.Context, label, model, query, source string) (*domain.QueryResult, error)
}

// BillingService aggregates the cost logs.
type BillingService interface {
	Summary(period domain.BillingPeriod) (*domain.BillingSummary, error)
}
