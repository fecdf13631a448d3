package domain

// BlockType identifies the kind of a Notion block. The set is closed:
// the extractor dispatches on it with an explicit fallback arm, so a kind
// missing from the renderer is visible at the switch rather than silently
// mis-rendered.
type BlockType string

// Known block types.
const (
	BlockParagraph        BlockType = "paragraph"
	BlockHeading1         BlockType = "heading_1"
	BlockHeading2         BlockType = "heading_2"
	BlockHeading3         BlockType = "heading_3"
	BlockBulletedListItem BlockType = "bulleted_list_item"
	BlockNumberedListItem BlockType = "numbered_list_item"
	BlockToDo             BlockType = "to_do"
	BlockQuote            BlockType = "quote"
	BlockCallout          BlockType = "callout"
	BlockToggle           BlockType = "toggle"
	BlockCode             BlockType = "code"
	BlockTable            BlockType = "table"
	BlockTableRow         BlockType = "table_row"
	BlockDivider          BlockType = "divider"
	BlockImage            BlockType = "image"
	BlockBookmark         BlockType = "bookmark"
	BlockLinkPreview      BlockType = "link_preview"
	BlockFile             BlockType = "file"
	BlockPDF              BlockType = "pdf"
	BlockChildPage        BlockType = "child_page"
	BlockChildDatabase    BlockType = "child_database"
	BlockColumnList       BlockType = "column_list"
	BlockColumn           BlockType = "column"
	BlockSyncedBlock      BlockType = "synced_block"
	BlockUnknown          BlockType = "unknown"
)

// Known reports whether t is one of the named block kinds. Adapters map
// anything else to BlockUnknown before it reaches the renderer.
func (t BlockType) Known() bool {
	switch t {
	case BlockParagraph, BlockHeading1, BlockHeading2, BlockHeading3,
		BlockBulletedListItem, BlockNumberedListItem, BlockToDo, BlockQuote,
		BlockCallout, BlockToggle, BlockCode, BlockTable, BlockTableRow,
		BlockDivider, BlockImage, BlockBookmark, BlockLinkPreview,
		BlockFile, BlockPDF, BlockChildPage, BlockChildDatabase,
		BlockColumnList, BlockColumn, BlockSyncedBlock:
		return true
	default:
		return false
	}
}

// HeadingLevel returns 1-3 for heading blocks and 0 for anything else.
func (t BlockType) HeadingLevel() int {
	switch t {
	case BlockHeading1:
		return 1
	case BlockHeading2:
		return 2
	case BlockHeading3:
		return 3
	default:
		return 0
	}
}

// Block is one node of a page's structural tree, already flattened to the
// fields the renderer needs. Blocks are fetched fresh per extraction pass
// and never persisted.
type Block struct {
	// ID is the opaque block identifier, used to list children.
	ID string

	// Type is the block kind.
	Type BlockType

	// Text is the block's inline formatted-text run list rendered to
	// plain text.
	Text string

	// Caption is the rendered caption (code, image, bookmark, file, pdf).
	Caption string

	// Checked is set for to_do blocks.
	Checked bool

	// Language is the code block language tag.
	Language string

	// Cells holds the rendered cell texts of a table_row.
	Cells []string

	// URL is the resolved source URL for image, bookmark and link_preview
	// blocks. For images an empty URL triggers the placeholder fallback.
	URL string

	// Name is the attachment name for file blocks, when the source
	// provides one.
	Name string

	// Title is the child_page / child_database title.
	Title string

	// HasChildren reports whether the block owns nested blocks.
	HasChildren bool
}
