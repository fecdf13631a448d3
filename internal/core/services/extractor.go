package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/minsukim/notisync/internal/core/domain"
	"github.com/minsukim/notisync/internal/core/ports/driven"
	"github.com/minsukim/notisync/internal/logger"
)

// maxExtractDepth bounds the recursive walk. The source API does not
// guarantee acyclic trees, so a runaway nesting aborts the page instead
// of recursing forever.
const maxExtractDepth = 64

// Extractor walks a page's block tree and renders it into one normalized
// text artifact. Embedded images are analysed out of band via the
// ImageAnalyzer port; their cost is accumulated and returned.
type Extractor struct {
	source driven.PageSource
	images driven.ImageAnalyzer
}

// NewExtractor creates a block tree extractor.
func NewExtractor(source driven.PageSource, images driven.ImageAnalyzer) *Extractor {
	return &Extractor{source: source, images: images}
}

// Extract renders the full block tree below rootBlockID (normally a page
// ID) and returns the text, the aggregate image-analysis cost, and one
// report per analysed image in source order.
func (e *Extractor) Extract(ctx context.Context, rootBlockID string) (string, float64, []domain.ImageReport, error) {
	var reports []domain.ImageReport
	text, cost, err := e.extract(ctx, rootBlockID, 0, &reports)
	if err != nil {
		return "", 0, nil, err
	}
	return text, cost, reports, nil
}

// extract renders one subtree at the given depth. Children listings are
// paginated transparently; all pages of a listing are consumed before the
// subtree's text is returned.
func (e *Extractor) extract(ctx context.Context, blockID string, depth int, reports *[]domain.ImageReport) (string, float64, error) {
	if depth > maxExtractDepth {
		return "", 0, fmt.Errorf("block %s: tree exceeds maximum depth %d", blockID, maxExtractDepth)
	}

	var texts []string
	var imageCost float64
	indent := strings.Repeat("  ", depth)

	cursor := ""
	for {
		blocks, next, err := e.source.ListBlockChildren(ctx, blockID, cursor)
		if err != nil {
			return "", 0, fmt.Errorf("list block children: %w", err)
		}

		for _, block := range blocks {
			switch block.Type {
			case domain.BlockParagraph, domain.BlockBulletedListItem, domain.BlockNumberedListItem,
				domain.BlockToDo, domain.BlockQuote, domain.BlockCallout, domain.BlockToggle:
				if block.Text != "" {
					texts = append(texts, indent+textLinePrefix(block)+block.Text)
				}

			case domain.BlockHeading1, domain.BlockHeading2, domain.BlockHeading3:
				if block.Text != "" {
					level := block.Type.HeadingLevel()
					texts = append(texts, "\n"+strings.Repeat("#", level)+" "+block.Text)
				}

			case domain.BlockCode:
				if block.Text != "" {
					texts = append(texts, indent+"```"+block.Language)
					texts = append(texts, block.Text)
					texts = append(texts, indent+"```")
					if block.Caption != "" {
						texts = append(texts, indent+"[Code description: "+block.Caption+"]")
					}
				}

			case domain.BlockTable:
				// Transparent container: rows render at the same depth.
				if block.HasChildren {
					tableText, tableCost, err := e.extract(ctx, block.ID, depth, reports)
					if err != nil {
						return "", 0, err
					}
					imageCost += tableCost
					if tableText != "" {
						texts = append(texts, tableText)
					}
				}

			case domain.BlockTableRow:
				texts = append(texts, indent+"| "+strings.Join(block.Cells, " | ")+" |")

			case domain.BlockDivider:
				texts = append(texts, indent+"---")

			case domain.BlockImage:
				rendered, cost := e.renderImage(ctx, block, indent, reports)
				imageCost += cost
				texts = append(texts, rendered...)

			case domain.BlockBookmark:
				switch {
				case block.Caption != "":
					texts = append(texts, indent+"[REF: "+block.Caption+" - "+block.URL+"]")
				case block.URL != "":
					texts = append(texts, indent+"[REF: "+block.URL+"]")
				}

			case domain.BlockLinkPreview:
				if block.URL != "" {
					texts = append(texts, indent+"[LINK: "+block.URL+"]")
				}

			case domain.BlockFile, domain.BlockPDF:
				name := block.Name
				if name == "" {
					name = block.Caption
				}
				if name == "" {
					name = "attachment"
				}
				texts = append(texts, indent+"[FILE: "+name+"]")

			case domain.BlockChildPage:
				texts = append(texts, indent+"[CHILD PAGE: "+block.Title+"]")

			case domain.BlockChildDatabase:
				texts = append(texts, indent+"[CHILD DB: "+block.Title+"]")

			case domain.BlockColumnList, domain.BlockColumn, domain.BlockSyncedBlock:
				// Transparent containers: children render at the same depth.
				if block.HasChildren {
					childText, childCost, err := e.extract(ctx, block.ID, depth, reports)
					if err != nil {
						return "", 0, err
					}
					imageCost += childCost
					if childText != "" {
						texts = append(texts, childText)
					}
				}

			default:
				logger.Debug("Unhandled block type %q on %s", block.Type, block.ID)
			}

			// Generic fallback: nested content of every remaining kind
			// renders one level deeper. The transparent containers and
			// images are excluded; they finished their own recursion above.
			if block.HasChildren && !skipsGenericRecursion(block.Type) {
				childText, childCost, err := e.extract(ctx, block.ID, depth+1, reports)
				if err != nil {
					return "", 0, err
				}
				imageCost += childCost
				if childText != "" {
					texts = append(texts, childText)
				}
			}
		}

		if next == "" {
			break
		}
		cursor = next
	}

	return strings.Join(texts, "\n"), imageCost, nil
}

// renderImage resolves and analyses one image block, returning the rendered
// lines and the analysis cost. It never fails the page: analysis errors
// degrade to the same bracketed placeholder as a missing URL.
func (e *Extractor) renderImage(ctx context.Context, block domain.Block, indent string, reports *[]domain.ImageReport) ([]string, float64) {
	if block.URL == "" {
		return []string{indent + imagePlaceholder(block.Caption)}, 0
	}

	res := e.images.Analyze(ctx, block.URL, block.Caption)
	*reports = append(*reports, domain.ImageReport{
		URL:                block.URL,
		Caption:            block.Caption,
		Class:              res.Class,
		Cost:               res.Cost,
		Elapsed:            res.Elapsed,
		DescriptionPreview: preview(res.Description, 100),
	})

	if res.Failed() {
		logger.Debug("Image analysis failed for %s: %s", block.URL, res.Description)
		return []string{indent + imagePlaceholder(block.Caption)}, res.Cost
	}

	var texts []string
	if res.Class == domain.ImageTerminal {
		// Terminal capture: description plus bare code fence, no wrapper.
		if res.Description != "" {
			texts = append(texts, "\n"+indent+res.Description)
		}
		if res.Code != "" {
			texts = append(texts, "\n"+indent+"```\n"+res.Code+"\n"+indent+"```\n")
		}
		return texts, res.Cost
	}

	// Diagram/other: wrapped description, code fence outside the wrapper.
	label := "Image"
	if block.Caption != "" {
		label = "Image: " + block.Caption
	}
	if res.Description != "" {
		texts = append(texts, "\n\n"+indent+"**["+label+"]**\n"+indent+res.Description+"\n"+indent+"**[/"+label+"]**\n\n")
	}
	if res.Code != "" {
		texts = append(texts, indent+"```\n"+res.Code+"\n"+indent+"```\n")
	}
	return texts, res.Cost
}

// textLinePrefix returns the line prefix for the plain text block kinds.
func textLinePrefix(block domain.Block) string {
	switch block.Type {
	case domain.BlockBulletedListItem:
		return "- "
	case domain.BlockNumberedListItem:
		return "1. "
	case domain.BlockToDo:
		if block.Checked {
			return "- [x] "
		}
		return "- [ ] "
	case domain.BlockQuote:
		return "> "
	case domain.BlockCallout:
		return "> [!NOTE] "
	case domain.BlockToggle:
		return "▶ "
	default:
		return ""
	}
}

// skipsGenericRecursion reports whether a block kind handles (or forbids)
// its own nesting, excluding it from the depth+1 fallback.
func skipsGenericRecursion(t domain.BlockType) bool {
	switch t {
	case domain.BlockTable, domain.BlockColumnList, domain.BlockColumn,
		domain.BlockSyncedBlock, domain.BlockImage:
		return true
	default:
		return false
	}
}

// imagePlaceholder is the fallback rendering when an image cannot be
// resolved or analysed.
func imagePlaceholder(caption string) string {
	if caption != "" {
		return "[IMAGE: " + caption + "]"
	}
	return "[IMAGE]"
}

// preview truncates s to at most n runes for report summaries.
func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
