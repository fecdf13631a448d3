package domain

// Change classifies a page against its stored artifact.
type Change int

const (
	// ChangeNew means no prior artifact exists for the page.
	ChangeNew Change = iota

	// ChangeUnchanged means the stored fingerprint matches the page's
	// current one and the sync was not forced; the page is skipped.
	ChangeUnchanged

	// ChangeUpdated means the page must be re-indexed.
	ChangeUpdated
)

// String returns the classification name.
func (c Change) String() string {
	switch c {
	case ChangeNew:
		return "new"
	case ChangeUnchanged:
		return "unchanged"
	case ChangeUpdated:
		return "updated"
	default:
		return "invalid"
	}
}

// NeedsIndex reports whether the classification requires a re-index.
func (c Change) NeedsIndex() bool {
	return c != ChangeUnchanged
}

// DetectChange classifies a page given its current modification fingerprint,
// the fingerprint recorded on the stored artifact ("" when no artifact
// exists), and the force flag.
//
// Fingerprints are compared as opaque strings, never parsed as dates: any
// formatting drift between source and store reads as a change and triggers
// a re-index rather than a missed update.
func DetectChange(current, stored string, force bool) Change {
	if stored == "" {
		return ChangeNew
	}
	if current == stored && !force {
		return ChangeUnchanged
	}
	return ChangeUpdated
}
