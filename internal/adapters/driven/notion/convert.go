package notion

import (
	"github.com/jomei/notionapi"

	"github.com/minsukim/notisync/internal/core/domain"
)

// convertBlock flattens one API block into the domain representation.
// Unrecognised kinds map to domain.BlockUnknown and keep their nesting
// flag so the caller can still descend into them.
func convertBlock(raw notionapi.Block) domain.Block {
	out := domain.Block{
		ID:          raw.GetID().String(),
		Type:        domain.BlockType(raw.GetType()),
		HasChildren: raw.GetHasChildren(),
	}

	switch b := raw.(type) {
	case *notionapi.ParagraphBlock:
		out.Text = richText(b.Paragraph.RichText)
	case *notionapi.Heading1Block:
		out.Text = richText(b.Heading1.RichText)
	case *notionapi.Heading2Block:
		out.Text = richText(b.Heading2.RichText)
	case *notionapi.Heading3Block:
		out.Text = richText(b.Heading3.RichText)
	case *notionapi.BulletedListItemBlock:
		out.Text = richText(b.BulletedListItem.RichText)
	case *notionapi.NumberedListItemBlock:
		out.Text = richText(b.NumberedListItem.RichText)
	case *notionapi.ToDoBlock:
		out.Text = richText(b.ToDo.RichText)
		out.Checked = b.ToDo.Checked
	case *notionapi.QuoteBlock:
		out.Text = richText(b.Quote.RichText)
	case *notionapi.CalloutBlock:
		out.Text = richText(b.Callout.RichText)
	case *notionapi.ToggleBlock:
		out.Text = richText(b.Toggle.RichText)
	case *notionapi.CodeBlock:
		out.Text = richText(b.Code.RichText)
		out.Caption = richText(b.Code.Caption)
		out.Language = b.Code.Language
	case *notionapi.TableRowBlock:
		for _, cell := range b.TableRow.Cells {
			out.Cells = append(out.Cells, richText(cell))
		}
	case *notionapi.ImageBlock:
		out.Caption = richText(b.Image.Caption)
		out.URL = fileURL(b.Image.File, b.Image.External)
	case *notionapi.BookmarkBlock:
		out.Caption = richText(b.Bookmark.Caption)
		out.URL = b.Bookmark.URL
	case *notionapi.LinkPreviewBlock:
		out.URL = b.LinkPreview.URL
	case *notionapi.FileBlock:
		out.Caption = richText(b.File.Caption)
		out.URL = fileURL(b.File.File, b.File.External)
	case *notionapi.PdfBlock:
		out.Caption = richText(b.Pdf.Caption)
		out.URL = fileURL(b.Pdf.File, b.Pdf.External)
	case *notionapi.ChildPageBlock:
		out.Title = b.ChildPage.Title
	case *notionapi.ChildDatabaseBlock:
		out.Title = b.ChildDatabase.Title
	}

	if !out.Type.Known() {
		out.Type = domain.BlockUnknown
	}
	return out
}

// richText concatenates a rich text array into its plain text.
func richText(parts []notionapi.RichText) string {
	var s string
	for _, part := range parts {
		s += part.PlainText
	}
	return s
}

// fileURL picks the URL from a hosted or external file reference.
func fileURL(file, external *notionapi.FileObject) string {
	if file != nil && file.URL != "" {
		return file.URL
	}
	if external != nil {
		return external.URL
	}
	return ""
}
