package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minsukim/notisync/internal/core/domain"
)

// --- Mock implementations for extractor testing ---

// extractMockSource serves canned block children keyed by block ID.
// Pagination is simulated via the "<blockID>@<cursor>" key.
type extractMockSource struct {
	children map[string][]domain.Block
	cursors  map[string]string
	err      error
}

func (m *extractMockSource) ListPages(_ context.Context, _ string, _ *time.Time) ([]string, error) {
	return nil, errors.New("not implemented")
}

func (m *extractMockSource) GetPage(_ context.Context, _ string) (*domain.PageProperties, error) {
	return nil, errors.New("not implemented")
}

func (m *extractMockSource) ListBlockChildren(_ context.Context, blockID, cursor string) ([]domain.Block, string, error) {
	if m.err != nil {
		return nil, "", m.err
	}
	key := blockID
	if cursor != "" {
		key = blockID + "@" + cursor
	}
	return m.children[key], m.cursors[key], nil
}

// extractMockAnalyzer returns canned analyses keyed by URL.
type extractMockAnalyzer struct {
	results map[string]domain.ImageAnalysis
	calls   []string
}

func (m *extractMockAnalyzer) Analyze(_ context.Context, url, _ string) domain.ImageAnalysis {
	m.calls = append(m.calls, url)
	if res, ok := m.results[url]; ok {
		return res
	}
	return domain.ImageAnalysis{Class: domain.ImageError, Description: "image analysis failed: no result"}
}

func TestExtractTextBlocks(t *testing.T) {
	source := &extractMockSource{
		children: map[string][]domain.Block{
			"page-1": {
				{ID: "b1", Type: domain.BlockHeading1, Text: "Overview"},
				{ID: "b2", Type: domain.BlockParagraph, Text: "Plain text."},
				{ID: "b3", Type: domain.BlockBulletedListItem, Text: "first"},
				{ID: "b4", Type: domain.BlockToDo, Text: "done item", Checked: true},
				{ID: "b5", Type: domain.BlockToDo, Text: "open item"},
				{ID: "b6", Type: domain.BlockQuote, Text: "quoted"},
				{ID: "b7", Type: domain.BlockDivider},
			},
		},
	}
	ex := NewExtractor(source, &extractMockAnalyzer{})

	text, cost, reports, err := ex.Extract(context.Background(), "page-1")
	require.NoError(t, err)
	assert.Zero(t, cost)
	assert.Empty(t, reports)

	assert.Contains(t, text, "\n# Overview")
	assert.Contains(t, text, "Plain text.")
	assert.Contains(t, text, "- first")
	assert.Contains(t, text, "- [x] done item")
	assert.Contains(t, text, "- [ ] open item")
	assert.Contains(t, text, "> quoted")
	assert.Contains(t, text, "---")
}

func TestExtractSkipsEmptyText(t *testing.T) {
	source := &extractMockSource{
		children: map[string][]domain.Block{
			"page-1": {
				{ID: "b1", Type: domain.BlockParagraph, Text: ""},
				{ID: "b2", Type: domain.BlockHeading2, Text: ""},
				{ID: "b3", Type: domain.BlockParagraph, Text: "kept"},
			},
		},
	}
	ex := NewExtractor(source, &extractMockAnalyzer{})

	text, _, _, err := ex.Extract(context.Background(), "page-1")
	require.NoError(t, err)
	assert.Equal(t, "kept", text)
}

func TestExtractNestedIndentation(t *testing.T) {
	source := &extractMockSource{
		children: map[string][]domain.Block{
			"page-1": {
				{ID: "b1", Type: domain.BlockBulletedListItem, Text: "parent", HasChildren: true},
			},
			"b1": {
				{ID: "b2", Type: domain.BlockBulletedListItem, Text: "child"},
			},
		},
	}
	ex := NewExtractor(source, &extractMockAnalyzer{})

	text, _, _, err := ex.Extract(context.Background(), "page-1")
	require.NoError(t, err)
	assert.Contains(t, text, "- parent")
	assert.Contains(t, text, "  - child")
}

func TestExtractTableRows(t *testing.T) {
	source := &extractMockSource{
		children: map[string][]domain.Block{
			"page-1": {
				{ID: "tbl", Type: domain.BlockTable, HasChildren: true},
			},
			"tbl": {
				{ID: "r1", Type: domain.BlockTableRow, Cells: []string{"Name", "Value"}},
				{ID: "r2", Type: domain.BlockTableRow, Cells: []string{"alpha", "1"}},
			},
		},
	}
	ex := NewExtractor(source, &extractMockAnalyzer{})

	text, _, _, err := ex.Extract(context.Background(), "page-1")
	require.NoError(t, err)
	// Rows render at the table's own depth, not one deeper.
	assert.Contains(t, text, "| Name | Value |")
	assert.Contains(t, text, "| alpha | 1 |")
	assert.NotContains(t, text, "  | Name")
}

func TestExtractCodeBlock(t *testing.T) {
	source := &extractMockSource{
		children: map[string][]domain.Block{
			"page-1": {
				{ID: "c1", Type: domain.BlockCode, Text: "ls -la", Language: "bash", Caption: "list files"},
			},
		},
	}
	ex := NewExtractor(source, &extractMockAnalyzer{})

	text, _, _, err := ex.Extract(context.Background(), "page-1")
	require.NoError(t, err)
	assert.Contains(t, text, "```bash\nls -la\n```")
	assert.Contains(t, text, "[Code description: list files]")
}

func TestExtractPagination(t *testing.T) {
	source := &extractMockSource{
		children: map[string][]domain.Block{
			"page-1":    {{ID: "b1", Type: domain.BlockParagraph, Text: "first page"}},
			"page-1@c2": {{ID: "b2", Type: domain.BlockParagraph, Text: "second page"}},
		},
		cursors: map[string]string{"page-1": "c2"},
	}
	ex := NewExtractor(source, &extractMockAnalyzer{})

	text, _, _, err := ex.Extract(context.Background(), "page-1")
	require.NoError(t, err)
	assert.Contains(t, text, "first page")
	assert.Contains(t, text, "second page")
	assert.Less(t, strings.Index(text, "first page"), strings.Index(text, "second page"))
}

func TestExtractImagePlaceholderOnFailure(t *testing.T) {
	source := &extractMockSource{
		children: map[string][]domain.Block{
			"page-1": {
				{ID: "img", Type: domain.BlockImage, URL: "https://example.com/gone.png", Caption: "missing shot"},
			},
		},
	}
	analyzer := &extractMockAnalyzer{
		results: map[string]domain.ImageAnalysis{
			"https://example.com/gone.png": {
				Class:       domain.ImageError,
				Description: "image could not be downloaded: status 404",
			},
		},
	}
	ex := NewExtractor(source, analyzer)

	text, cost, reports, err := ex.Extract(context.Background(), "page-1")
	require.NoError(t, err)
	assert.Zero(t, cost)
	assert.Contains(t, text, "[IMAGE: missing shot]")
	assert.NotContains(t, text, "404")
	require.Len(t, reports, 1)
	assert.Equal(t, domain.ImageError, reports[0].Class)
}

func TestExtractImageWithoutURL(t *testing.T) {
	source := &extractMockSource{
		children: map[string][]domain.Block{
			"page-1": {{ID: "img", Type: domain.BlockImage}},
		},
	}
	analyzer := &extractMockAnalyzer{}
	ex := NewExtractor(source, analyzer)

	text, _, reports, err := ex.Extract(context.Background(), "page-1")
	require.NoError(t, err)
	assert.Equal(t, "[IMAGE]", text)
	assert.Empty(t, analyzer.calls)
	assert.Empty(t, reports)
}

func TestExtractTerminalImage(t *testing.T) {
	source := &extractMockSource{
		children: map[string][]domain.Block{
			"page-1": {
				{ID: "img", Type: domain.BlockImage, URL: "https://example.com/term.png"},
			},
		},
	}
	analyzer := &extractMockAnalyzer{
		results: map[string]domain.ImageAnalysis{
			"https://example.com/term.png": {
				Class:       domain.ImageTerminal,
				Description: "Running the test suite.",
				Code:        "go test ./...",
				Cost:        0.0001,
			},
		},
	}
	ex := NewExtractor(source, analyzer)

	text, cost, reports, err := ex.Extract(context.Background(), "page-1")
	require.NoError(t, err)
	assert.InDelta(t, 0.0001, cost, 1e-12)
	assert.Contains(t, text, "Running the test suite.")
	assert.Contains(t, text, "```\ngo test ./...\n```")
	// Terminal captures render bare, without the wrapper markers.
	assert.NotContains(t, text, "**[Image]**")
	require.Len(t, reports, 1)
	assert.Equal(t, domain.ImageTerminal, reports[0].Class)
}

func TestExtractDiagramImageWrapped(t *testing.T) {
	source := &extractMockSource{
		children: map[string][]domain.Block{
			"page-1": {
				{ID: "img", Type: domain.BlockImage, URL: "https://example.com/arch.png", Caption: "deployment"},
			},
		},
	}
	analyzer := &extractMockAnalyzer{
		results: map[string]domain.ImageAnalysis{
			"https://example.com/arch.png": {
				Class:       domain.ImageDiagram,
				Description: "Three services behind a load balancer.",
			},
		},
	}
	ex := NewExtractor(source, analyzer)

	text, _, _, err := ex.Extract(context.Background(), "page-1")
	require.NoError(t, err)
	assert.Contains(t, text, "**[Image: deployment]**")
	assert.Contains(t, text, "Three services behind a load balancer.")
	assert.Contains(t, text, "**[/Image: deployment]**")
}

func TestExtractImageCostAccumulates(t *testing.T) {
	source := &extractMockSource{
		children: map[string][]domain.Block{
			"page-1": {
				{ID: "i1", Type: domain.BlockImage, URL: "https://example.com/a.png"},
				{ID: "i2", Type: domain.BlockImage, URL: "https://example.com/b.png"},
			},
		},
	}
	analyzer := &extractMockAnalyzer{
		results: map[string]domain.ImageAnalysis{
			"https://example.com/a.png": {Class: domain.ImageOther, Description: "a", Cost: 0.001},
			"https://example.com/b.png": {Class: domain.ImageOther, Description: "b", Cost: 0.002},
		},
	}
	ex := NewExtractor(source, analyzer)

	_, cost, reports, err := ex.Extract(context.Background(), "page-1")
	require.NoError(t, err)
	assert.InDelta(t, 0.003, cost, 1e-12)
	assert.Len(t, reports, 2)
}

func TestExtractBookmarkAndRefs(t *testing.T) {
	source := &extractMockSource{
		children: map[string][]domain.Block{
			"page-1": {
				{ID: "b1", Type: domain.BlockBookmark, URL: "https://example.com", Caption: "docs"},
				{ID: "b2", Type: domain.BlockBookmark, URL: "https://example.org"},
				{ID: "b3", Type: domain.BlockLinkPreview, URL: "https://example.net"},
				{ID: "b4", Type: domain.BlockFile, Name: "report.csv"},
				{ID: "b5", Type: domain.BlockPDF},
				{ID: "b6", Type: domain.BlockChildPage, Title: "Sub Page"},
			},
		},
	}
	ex := NewExtractor(source, &extractMockAnalyzer{})

	text, _, _, err := ex.Extract(context.Background(), "page-1")
	require.NoError(t, err)
	assert.Contains(t, text, "[REF: docs - https://example.com]")
	assert.Contains(t, text, "[REF: https://example.org]")
	assert.Contains(t, text, "[LINK: https://example.net]")
	assert.Contains(t, text, "[FILE: report.csv]")
	assert.Contains(t, text, "[FILE: attachment]")
	assert.Contains(t, text, "[CHILD PAGE: Sub Page]")
}

func TestExtractDepthLimit(t *testing.T) {
	// Every block lists itself as its own child, simulating a cycle.
	source := &extractMockSource{
		children: map[string][]domain.Block{
			"loop": {{ID: "loop", Type: domain.BlockToggle, Text: "again", HasChildren: true}},
		},
	}
	ex := NewExtractor(source, &extractMockAnalyzer{})

	_, _, _, err := ex.Extract(context.Background(), "loop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum depth")
}

func TestExtractSourceErrorPropagates(t *testing.T) {
	wantErr := errors.New("rate limited")
	source := &extractMockSource{err: wantErr}
	ex := NewExtractor(source, &extractMockAnalyzer{})

	_, _, _, err := ex.Extract(context.Background(), "page-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
}
