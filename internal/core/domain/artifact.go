package domain

import "time"

// Metadata keys every stored artifact must carry.
const (
	// MetaPageID joins an artifact back to its source page.
	MetaPageID = "page_id"

	// MetaLastEdited is the change-detection fingerprint. It always
	// reflects the page state that produced the artifact's current body.
	MetaLastEdited = "last_edited"
)

// StoredArtifact is the remote store's representation of one indexed page.
// At most one artifact exists per (store, page_id) at any time.
type StoredArtifact struct {
	// Name is the store's opaque resource identifier.
	Name string

	// DisplayName is the human-readable label shown in listings.
	DisplayName string

	// Metadata holds the artifact's key-value metadata, including
	// MetaPageID and MetaLastEdited.
	Metadata map[string]string
}

// PageID returns the page identifier recorded in the artifact metadata.
func (a StoredArtifact) PageID() string {
	return a.Metadata[MetaPageID]
}

// LastEdited returns the change fingerprint recorded in the artifact
// metadata, or "" when absent.
func (a StoredArtifact) LastEdited() string {
	return a.Metadata[MetaLastEdited]
}

// ImageClass is the classification an image analysis produced.
type ImageClass string

// Image classifications.
const (
	ImageTerminal ImageClass = "terminal"
	ImageDiagram  ImageClass = "diagram"
	ImageOther    ImageClass = "other"

	// ImageError marks a failed analysis (download error, unsupported
	// format). Failed analyses carry zero cost and degrade to a
	// placeholder in the rendered text.
	ImageError ImageClass = "error"
)

// ImageAnalysis is the outcome of analysing one embedded image.
type ImageAnalysis struct {
	// Class is the classification of the image content.
	Class ImageClass

	// Description is the extracted free-text description. For failed
	// analyses it holds the error detail.
	Description string

	// Code is verbatim code or command output extracted from the image,
	// without fence markers.
	Code string

	// Cost is the USD cost of the vision call, zero on failure or when
	// usage was not reported.
	Cost float64

	// Elapsed is the wall time of the analysis.
	Elapsed time.Duration
}

// Failed reports whether the analysis failed closed.
func (a ImageAnalysis) Failed() bool {
	return a.Class == ImageError
}

// ImageReport is the per-image record accumulated during extraction,
// surfaced for logging and result summaries.
type ImageReport struct {
	URL                string
	Caption            string
	Class              ImageClass
	Cost               float64
	Elapsed            time.Duration
	DescriptionPreview string
}

// ExtractedDocument is the output of one extraction pass over a page.
// It is constructed once per page-processing attempt, serialized, uploaded
// and then discarded.
type ExtractedDocument struct {
	// Body is the normalized text artifact, property header included.
	Body string

	// ImageCost is the aggregate USD cost of all image analyses.
	ImageCost float64

	// Images holds one report per analysed image, in source order.
	Images []ImageReport
}
