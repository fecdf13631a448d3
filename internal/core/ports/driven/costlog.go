package driven

// Append-only JSONL cost and audit records. Every record written to the
// cost log carries a total_cost field so periods can be aggregated
// without knowing the record kind.

// IndexingRecord is the per-page indexing record.
type IndexingRecord struct {
	Label           string  `json:"label"`
	PageID          string  `json:"page_id"`
	Title           string  `json:"title"`
	EmbeddingModel  string  `json:"embedding_model"`
	EmbeddingTokens int     `json:"embedding_tokens"`
	EmbeddingCost   float64 `json:"embedding_cost"`
	VisionModel     string  `json:"vision_model"`
	VisionCost      float64 `json:"vision_cost"`
	TotalCost       float64 `json:"total_cost"`
	Status          string  `json:"status"`
	Error           string  `json:"error,omitempty"`
}

// SyncRecord is the per-run incremental sync summary record.
type SyncRecord struct {
	Label        string  `json:"label"`
	DatabaseID   string  `json:"db_id"`
	PagesChecked int     `json:"pages_checked"`
	PagesUpdated int     `json:"pages_updated"`
	PagesSkipped int     `json:"pages_skipped"`
	IndexingCost float64 `json:"indexing_cost"`
	ImageCost    float64 `json:"image_cost"`
	TotalCost    float64 `json:"total_cost"`
	Force        bool    `json:"force"`
}

// InitRecord is the per-run full index summary record.
type InitRecord struct {
	Label        string  `json:"label"`
	DatabaseID   string  `json:"db_id"`
	StoreName    string  `json:"store_name"`
	PagesTotal   int     `json:"pages_total"`
	PagesIndexed int     `json:"pages_indexed"`
	IndexingCost float64 `json:"indexing_cost"`
	ImageCost    float64 `json:"image_cost"`
	TotalCost    float64 `json:"total_cost"`
}

// QueryRecord is the per-query cost record.
type QueryRecord struct {
	Label        string  `json:"label"`
	Query        string  `json:"query"`
	Model        string  `json:"model"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	Cost         float64 `json:"cost"`
	TotalCost    float64 `json:"total_cost"`
	Elapsed      float64 `json:"elapsed"`
	Source       string  `json:"source"`
}

// APIRecord is the per-request audit record of the HTTP surface.
type APIRecord struct {
	Method     string  `json:"method"`
	Path       string  `json:"path"`
	StatusCode int     `json:"status_code"`
	Elapsed    float64 `json:"elapsed"`
	ClientIP   string  `json:"client_ip,omitempty"`
	Detail     string  `json:"detail,omitempty"`
}

// CostLogger appends operation records to the daily JSONL logs.
// Implementations stamp each record with an id and a UTC timestamp.
type CostLogger interface {
	LogIndexing(rec IndexingRecord) error
	LogSync(rec SyncRecord) error
	LogInit(rec InitRecord) error
	LogQuery(rec QueryRecord) error
	LogAPI(rec APIRecord) error
}

// CostEntry is the kind-agnostic projection of one cost log record used
// for billing aggregation.
type CostEntry struct {
	Kind          string  `json:"-"`
	Timestamp     string  `json:"timestamp"`
	EmbeddingCost float64 `json:"embedding_cost"`
	VisionCost    float64 `json:"vision_cost"`
	IndexingCost  float64 `json:"indexing_cost"`
	ImageCost     float64 `json:"image_cost"`
	Cost          float64 `json:"cost"`
	TotalCost     float64 `json:"total_cost"`
}

// CostScanner reads back every cost record ever written.
type CostScanner interface {
	Scan() ([]CostEntry, error)
}
