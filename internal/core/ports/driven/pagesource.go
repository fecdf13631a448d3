package driven

import (
	"context"
	"time"

	"github.com/minsukim/notisync/internal/core/domain"
)

// PageSource reads pages and block trees from the document source.
// Implementations handle authentication, rate limiting and the source's
// own pagination of page listings; block-children pagination is exposed
// through the cursor so the extractor can walk subtrees incrementally.
type PageSource interface {
	// ListPages returns the identifiers of the database's pages, in the
	// source's order. When modifiedSince is non-nil only pages edited on
	// or after that instant are returned, filtered server-side.
	ListPages(ctx context.Context, databaseID string, modifiedSince *time.Time) ([]string, error)

	// GetPage fetches a page's properties, including the change
	// fingerprint.
	GetPage(ctx context.Context, pageID string) (*domain.PageProperties, error)

	// ListBlockChildren returns one page of a block's children plus the
	// cursor for the next page ("" when exhausted). Pass cursor "" for
	// the first call.
	ListBlockChildren(ctx context.Context, blockID, cursor string) ([]domain.Block, string, error)
}
