package driven

// SourceRegistry persists the label to database-URL mapping.
type SourceRegistry interface {
	// Resolve returns the label and URL for a registered database.
	// An empty label auto-selects when exactly one database is
	// registered; otherwise it returns domain.ErrNoDatabases or
	// domain.ErrAmbiguousLabel. An unknown label returns
	// domain.ErrUnknownLabel.
	Resolve(label string) (string, string, error)

	// Save registers or replaces a label's database URL.
	Save(label, url string) error

	// Labels returns the registered label to URL mapping.
	Labels() map[string]string
}
