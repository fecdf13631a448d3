package domain

// PageProperties holds the metadata of one Notion page as read from the
// source. The source is the single owner of this data; notisync only
// reads it.
type PageProperties struct {
	// ID is the opaque page identifier (32-char hex).
	ID string

	// LastEdited is the page's modification timestamp, already formatted
	// as the change fingerprint. It is compared as an opaque string.
	LastEdited string

	// Title is the page title property.
	Title string

	// Type is the "Type" select property, if present.
	Type string

	// Tags is the "Tags" multi-select property, if present.
	Tags []string

	// URL is the "URL" property, if present.
	URL string
}

// DisplayTitle returns the title or a stand-in for untitled pages.
func (p PageProperties) DisplayTitle() string {
	if p.Title == "" {
		return "Untitled"
	}
	return p.Title
}
