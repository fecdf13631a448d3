// Package notion provides a page source adapter over the Notion API.
package notion

import (
	"context"
	"fmt"
	"time"

	"github.com/jomei/notionapi"
	"golang.org/x/time/rate"

	"github.com/minsukim/notisync/internal/core/domain"
	"github.com/minsukim/notisync/internal/core/ports/driven"
)

// Ensure PageSource implements the interface.
var _ driven.PageSource = (*PageSource)(nil)

// Default configuration values.
const (
	// DefaultRequestsPerSecond matches Notion's documented average rate
	// limit of three requests per second per integration.
	DefaultRequestsPerSecond = 3

	// childPageSize is the block-children page size per request.
	childPageSize = 100
)

// Config holds configuration for the Notion page source.
type Config struct {
	// Token is the Notion integration token (required).
	Token string

	// RequestsPerSecond caps the request rate (default: 3).
	RequestsPerSecond float64
}

// PageSource reads pages and block trees through the Notion API, with
// client-side rate limiting ahead of every request.
type PageSource struct {
	client  *notionapi.Client
	limiter *rate.Limiter
}

// NewPageSource creates a Notion-backed page source.
func NewPageSource(cfg Config) (*PageSource, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("notion: integration token is required")
	}
	rps := cfg.RequestsPerSecond
	if rps == 0 {
		rps = DefaultRequestsPerSecond
	}

	return &PageSource{
		client:  notionapi.NewClient(notionapi.Token(cfg.Token)),
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// ListPages queries a database and returns its page IDs in the dashed
// form the API reports. A non-nil modifiedSince becomes a server-side
// last_edited_time filter.
func (s *PageSource) ListPages(ctx context.Context, databaseID string, modifiedSince *time.Time) ([]string, error) {
	req := &notionapi.DatabaseQueryRequest{PageSize: childPageSize}
	if modifiedSince != nil {
		cutoff := notionapi.Date(modifiedSince.UTC())
		req.Filter = notionapi.TimestampFilter{
			Timestamp: notionapi.TimestampLastEdited,
			LastEditedTime: &notionapi.DateFilterCondition{
				OnOrAfter: &cutoff,
			},
		}
	}

	var pageIDs []string
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		resp, err := s.client.Database.Query(ctx, notionapi.DatabaseID(databaseID), req)
		if err != nil {
			return nil, fmt.Errorf("notion: query database %s: %w", databaseID, err)
		}
		for _, page := range resp.Results {
			pageIDs = append(pageIDs, page.ID.String())
		}
		if !resp.HasMore {
			break
		}
		req.StartCursor = resp.NextCursor
	}
	return pageIDs, nil
}

// GetPage fetches a page's properties. The change fingerprint is the
// page's last_edited_time rendered as RFC 3339 UTC, matching the format
// stored in artifact metadata.
func (s *PageSource) GetPage(ctx context.Context, pageID string) (*domain.PageProperties, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	page, err := s.client.Page.Get(ctx, notionapi.PageID(pageID))
	if err != nil {
		return nil, fmt.Errorf("notion: get page %s: %w", pageID, err)
	}

	props := &domain.PageProperties{
		ID:         page.ID.String(),
		LastEdited: formatTimestamp(page.LastEditedTime),
	}

	for name, prop := range page.Properties {
		switch p := prop.(type) {
		case *notionapi.TitleProperty:
			props.Title = richText(p.Title)
		case *notionapi.SelectProperty:
			if name == "Type" {
				props.Type = p.Select.Name
			}
		case *notionapi.MultiSelectProperty:
			if name == "Tags" {
				for _, opt := range p.MultiSelect {
					props.Tags = append(props.Tags, opt.Name)
				}
			}
		case *notionapi.URLProperty:
			if name == "URL" {
				props.URL = p.URL
			}
		}
	}
	return props, nil
}

// ListBlockChildren returns one page of a block's children. The returned
// cursor is "" when the listing is exhausted.
func (s *PageSource) ListBlockChildren(ctx context.Context, blockID, cursor string) ([]domain.Block, string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}
	resp, err := s.client.Block.GetChildren(ctx, notionapi.BlockID(blockID), &notionapi.Pagination{
		StartCursor: notionapi.Cursor(cursor),
		PageSize:    childPageSize,
	})
	if err != nil {
		return nil, "", fmt.Errorf("notion: list children of %s: %w", blockID, err)
	}

	blocks := make([]domain.Block, 0, len(resp.Results))
	for _, raw := range resp.Results {
		blocks = append(blocks, convertBlock(raw))
	}

	next := ""
	if resp.HasMore {
		next = resp.NextCursor
	}
	return blocks, next, nil
}

// formatTimestamp renders the fingerprint. Both the stored metadata and
// the comparison value go through this, so detection stays a plain string
// equality.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
