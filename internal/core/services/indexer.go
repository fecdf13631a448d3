package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minsukim/notisync/internal/core/domain"
	"github.com/minsukim/notisync/internal/core/ports/driven"
	"github.com/minsukim/notisync/internal/core/ports/driving"
	"github.com/minsukim/notisync/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.IndexService = (*Indexer)(nil)

// Default workflow timings.
const (
	// DefaultSettleDelay is the post-batch wait acknowledging the
	// store's asynchronous indexing latency.
	DefaultSettleDelay = 5 * time.Second

	// DefaultPollInterval is the upload-completion poll interval.
	DefaultPollInterval = 2 * time.Second

	// DefaultPollMaxAttempts bounds the completion poll; a stuck remote
	// operation fails with domain.ErrOperationTimeout instead of
	// blocking forever.
	DefaultPollMaxAttempts = 150

	// DefaultSyncWindow is the trailing modification window of an
	// incremental sync.
	DefaultSyncWindow = 48 * time.Hour

	// DefaultEmbeddingModel prices the indexed tokens.
	DefaultEmbeddingModel = "gemini-embedding-001"
)

// IndexerConfig tunes the indexing workflows. Zero fields take defaults.
type IndexerConfig struct {
	EmbeddingModel  string
	VisionModel     string
	SyncWindow      time.Duration
	SettleDelay     time.Duration
	PollInterval    time.Duration
	PollMaxAttempts int
	Pricing         domain.PriceTable
}

func (c *IndexerConfig) applyDefaults() {
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = DefaultEmbeddingModel
	}
	if c.SyncWindow == 0 {
		c.SyncWindow = DefaultSyncWindow
	}
	if c.SettleDelay == 0 {
		c.SettleDelay = DefaultSettleDelay
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.PollMaxAttempts == 0 {
		c.PollMaxAttempts = DefaultPollMaxAttempts
	}
	if c.Pricing == nil {
		c.Pricing = domain.DefaultPriceTable()
	}
}

// Indexer orchestrates the full-index and incremental-sync workflows.
// Pages are processed strictly sequentially: extract, analyse images,
// upload, poll to completion, then the next page. Per-page failures are
// recorded and skipped; they never abort a batch.
type Indexer struct {
	source    driven.PageSource
	store     driven.ArtifactStore
	extractor *Extractor
	tokens    driven.TokenCounter
	registry  driven.SourceRegistry
	costs     driven.CostLogger
	cfg       IndexerConfig
}

// NewIndexer wires the indexing orchestrator.
func NewIndexer(
	source driven.PageSource,
	store driven.ArtifactStore,
	extractor *Extractor,
	tokens driven.TokenCounter,
	registry driven.SourceRegistry,
	costs driven.CostLogger,
	cfg IndexerConfig,
) *Indexer {
	cfg.applyDefaults()
	return &Indexer{
		source:    source,
		store:     store,
		extractor: extractor,
		tokens:    tokens,
		registry:  registry,
		costs:     costs,
		cfg:       cfg,
	}
}

// InitDatabase indexes every page of a database. When dbURL is given the
// label is registered (or re-pointed) first; otherwise the label resolves
// through the registry, auto-selecting if exactly one is registered.
func (x *Indexer) InitDatabase(ctx context.Context, label, dbURL string) (*domain.InitResult, error) {
	if dbURL != "" {
		if label == "" {
			return nil, fmt.Errorf("%w: label is required when registering a database URL", domain.ErrInvalidInput)
		}
		if err := x.registry.Save(label, dbURL); err != nil {
			return nil, fmt.Errorf("save database: %w", err)
		}
	} else {
		var err error
		label, dbURL, err = x.registry.Resolve(label)
		if err != nil {
			return nil, err
		}
	}

	dbID, err := domain.ParseID(dbURL)
	if err != nil {
		return nil, err
	}

	store, created, err := x.store.EnsureStore(ctx, label)
	if err != nil {
		return nil, fmt.Errorf("ensure store: %w", err)
	}
	if created {
		logger.Info("Created store %s", label)
	} else {
		logger.Info("Using store %s", label)
	}

	pageIDs, err := x.source.ListPages(ctx, dbID, nil)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	res := &domain.InitResult{
		Label:      label,
		DatabaseID: dbID,
		StoreName:  label,
		PagesTotal: len(pageIDs),
	}

	for i, pageID := range pageIDs {
		// Cancellation is honoured only at the page boundary.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Info("[%d/%d] page %s", i+1, len(pageIDs), shortID(pageID))

		existing, err := x.store.FindArtifact(ctx, store.Name, pageID)
		if err != nil {
			x.recordPageFailure(label, pageID, "", err)
			continue
		}

		out, err := x.indexPage(ctx, store.Name, label, pageID, existing, false)
		if err != nil {
			x.recordPageFailure(label, pageID, "", err)
			continue
		}
		res.IndexingCost += out.embedCost
		res.ImageCost += out.imageCost
		res.PagesIndexed++
	}

	x.settle(ctx)

	res.TotalCost = res.IndexingCost + res.ImageCost
	if err := x.costs.LogInit(driven.InitRecord{
		Label:        label,
		DatabaseID:   dbID,
		StoreName:    label,
		PagesTotal:   res.PagesTotal,
		PagesIndexed: res.PagesIndexed,
		IndexingCost: res.IndexingCost,
		ImageCost:    res.ImageCost,
		TotalCost:    res.TotalCost,
	}); err != nil {
		logger.Warn("Failed to write init record: %v", err)
	}
	return res, nil
}

// SyncDatabase re-indexes the pages modified within the trailing sync
// window. Existing artifacts are listed once up front so change detection
// runs against a local index instead of one store round-trip per page.
func (x *Indexer) SyncDatabase(ctx context.Context, label string, force bool) (*domain.SyncResult, error) {
	label, dbURL, err := x.registry.Resolve(label)
	if err != nil {
		return nil, err
	}
	dbID, err := domain.ParseID(dbURL)
	if err != nil {
		return nil, err
	}

	store, created, err := x.store.EnsureStore(ctx, label)
	if err != nil {
		return nil, fmt.Errorf("ensure store: %w", err)
	}
	if created {
		logger.Info("Created store %s", label)
	}

	since := time.Now().UTC().Add(-x.cfg.SyncWindow)
	pageIDs, err := x.source.ListPages(ctx, dbID, &since)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	artifacts, err := x.store.ListArtifacts(ctx, store.Name)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	byPage := make(map[string]*domain.StoredArtifact, len(artifacts))
	for i := range artifacts {
		if id := artifacts[i].PageID(); id != "" {
			byPage[id] = &artifacts[i]
		}
	}

	res := &domain.SyncResult{
		Label:        label,
		DatabaseID:   dbID,
		PagesChecked: len(pageIDs),
	}

	for i, pageID := range pageIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Info("[%d/%d] page %s", i+1, len(pageIDs), shortID(pageID))

		props, err := x.source.GetPage(ctx, pageID)
		if err != nil {
			x.recordPageFailure(label, pageID, "", err)
			continue
		}

		existing := byPage[pageID]
		stored := ""
		if existing != nil {
			stored = existing.LastEdited()
		}

		change := domain.DetectChange(props.LastEdited, stored, force)
		if !change.NeedsIndex() {
			logger.Debug("%s - up to date", props.DisplayTitle())
			res.PagesSkipped++
			continue
		}
		logger.Debug("%s - %s (%s -> %s)", props.DisplayTitle(), change, stored, props.LastEdited)

		out, err := x.indexPage(ctx, store.Name, label, pageID, existing, true)
		if err != nil {
			x.recordPageFailure(label, pageID, props.DisplayTitle(), err)
			continue
		}
		res.IndexingCost += out.embedCost
		res.ImageCost += out.imageCost
		res.PagesUpdated++
	}

	// The settle delay applies only when the index actually changed.
	if res.PagesUpdated > 0 {
		x.settle(ctx)
	}

	res.TotalCost = res.IndexingCost + res.ImageCost
	if err := x.costs.LogSync(driven.SyncRecord{
		Label:        label,
		DatabaseID:   dbID,
		PagesChecked: res.PagesChecked,
		PagesUpdated: res.PagesUpdated,
		PagesSkipped: res.PagesSkipped,
		IndexingCost: res.IndexingCost,
		ImageCost:    res.ImageCost,
		TotalCost:    res.TotalCost,
		Force:        force,
	}); err != nil {
		logger.Warn("Failed to write sync record: %v", err)
	}
	return res, nil
}

// pageOutcome carries the cost accounting of one indexed page.
type pageOutcome struct {
	embedCost float64
	imageCost float64
	skipped   bool
}

// indexPage runs the re-index sub-protocol for one page: change check,
// extract, token count, delete prior artifact, upload, poll to done.
func (x *Indexer) indexPage(ctx context.Context, storeName, label, pageID string, existing *domain.StoredArtifact, force bool) (pageOutcome, error) {
	props, err := x.source.GetPage(ctx, pageID)
	if err != nil {
		return pageOutcome{}, fmt.Errorf("get page: %w", err)
	}

	stored := ""
	if existing != nil {
		stored = existing.LastEdited()
	}
	if !domain.DetectChange(props.LastEdited, stored, force).NeedsIndex() {
		logger.Debug("Already up to date: %s", existing.DisplayName)
		return pageOutcome{skipped: true}, nil
	}

	logger.Debug("Title: %s", props.DisplayTitle())
	content, imageCost, imageReports, err := x.extractor.Extract(ctx, pageID)
	if err != nil {
		return pageOutcome{}, fmt.Errorf("extract blocks: %w", err)
	}
	for _, rep := range imageReports {
		logger.Debug("Image %s [%s] cost=$%.8f elapsed=%s", rep.URL, rep.Class, rep.Cost, rep.Elapsed)
	}

	body := buildDocumentBody(props, content)

	tokenCount, err := x.tokens.CountTokens(ctx, body)
	if err != nil {
		return pageOutcome{}, fmt.Errorf("count tokens: %w", err)
	}
	embedCost := x.cfg.Pricing.Cost(x.cfg.EmbeddingModel, tokenCount, 0)
	logger.Debug("Tokens: %d, cost: $%.8f", tokenCount, embedCost)

	// Delete before upload keeps at most one artifact per page.
	if existing != nil {
		if err := x.store.DeleteArtifact(ctx, existing.Name); err != nil {
			return pageOutcome{}, fmt.Errorf("delete old artifact: %w", err)
		}
	}

	display := fmt.Sprintf("[%s] %s", pageID, truncate(props.DisplayTitle(), 50))
	operation, err := x.store.Upload(ctx, storeName, driven.ArtifactUpload{
		DisplayName: display,
		Body:        body,
		Metadata: map[string]string{
			domain.MetaPageID:     pageID,
			domain.MetaLastEdited: props.LastEdited,
		},
	})
	if err != nil {
		return pageOutcome{}, fmt.Errorf("upload artifact: %w", err)
	}

	if err := x.waitForOperation(ctx, operation); err != nil {
		return pageOutcome{}, err
	}

	if err := x.costs.LogIndexing(driven.IndexingRecord{
		Label:           label,
		PageID:          pageID,
		Title:           props.DisplayTitle(),
		EmbeddingModel:  x.cfg.EmbeddingModel,
		EmbeddingTokens: tokenCount,
		EmbeddingCost:   embedCost,
		VisionModel:     x.cfg.VisionModel,
		VisionCost:      imageCost,
		TotalCost:       embedCost + imageCost,
		Status:          "success",
	}); err != nil {
		logger.Warn("Failed to write indexing record: %v", err)
	}

	return pageOutcome{embedCost: embedCost, imageCost: imageCost}, nil
}

// RemovePage deletes the artifact indexed for one page.
func (x *Indexer) RemovePage(ctx context.Context, label, pageRef string) error {
	label, _, err := x.registry.Resolve(label)
	if err != nil {
		return err
	}
	pageID, err := domain.ParseID(pageRef)
	if err != nil {
		return err
	}
	// Artifacts carry the source's dashed ID form in their metadata.
	pageID = domain.FormatUUID(pageID)

	store, err := x.findStore(ctx, label)
	if err != nil {
		return err
	}

	artifact, err := x.store.FindArtifact(ctx, store.Name, pageID)
	if err != nil {
		return fmt.Errorf("find artifact: %w", err)
	}
	if artifact == nil {
		return fmt.Errorf("%w: no artifact for page %s", domain.ErrNotFound, pageID)
	}

	logger.Info("Deleting %s", artifact.DisplayName)
	return x.store.DeleteArtifact(ctx, artifact.Name)
}

// Cleanup deletes a database's store and every artifact in it.
func (x *Indexer) Cleanup(ctx context.Context, label string) error {
	label, _, err := x.registry.Resolve(label)
	if err != nil {
		return err
	}
	store, err := x.findStore(ctx, label)
	if err != nil {
		return err
	}
	return x.store.DeleteStore(ctx, store.Name)
}

// Stores lists the stores of all registered databases.
func (x *Indexer) Stores(ctx context.Context) ([]domain.StoreStatus, error) {
	stores, err := x.store.ListStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	labels := x.registry.Labels()

	var result []domain.StoreStatus
	for _, st := range stores {
		if _, ok := labels[st.DisplayName]; !ok {
			continue
		}
		artifacts, err := x.store.ListArtifacts(ctx, st.Name)
		if err != nil {
			return nil, fmt.Errorf("list artifacts: %w", err)
		}
		result = append(result, domain.StoreStatus{
			Label:     st.DisplayName,
			Resource:  st.Name,
			Documents: len(artifacts),
			SizeBytes: st.SizeBytes,
		})
	}
	return result, nil
}

// StoreDetail returns one store's status and its artifacts.
func (x *Indexer) StoreDetail(ctx context.Context, label string) (*domain.StoreStatus, []domain.StoredArtifact, error) {
	label, _, err := x.registry.Resolve(label)
	if err != nil {
		return nil, nil, err
	}
	store, err := x.findStore(ctx, label)
	if err != nil {
		return nil, nil, err
	}
	artifacts, err := x.store.ListArtifacts(ctx, store.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("list artifacts: %w", err)
	}
	status := &domain.StoreStatus{
		Label:     store.DisplayName,
		Resource:  store.Name,
		Documents: len(artifacts),
		SizeBytes: store.SizeBytes,
	}
	return status, artifacts, nil
}

// findStore locates an existing store by display name without creating it.
func (x *Indexer) findStore(ctx context.Context, displayName string) (*driven.StoreInfo, error) {
	stores, err := x.store.ListStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	for i := range stores {
		if stores[i].DisplayName == displayName {
			return &stores[i], nil
		}
	}
	return nil, fmt.Errorf("%w: store %q", domain.ErrNotFound, displayName)
}

// waitForOperation polls the store's async handle until done, bounded by
// the configured interval, attempt budget and the context.
func (x *Indexer) waitForOperation(ctx context.Context, operation string) error {
	for attempt := 0; attempt < x.cfg.PollMaxAttempts; attempt++ {
		done, err := x.store.PollOperation(ctx, operation)
		if err != nil {
			return fmt.Errorf("poll operation: %w", err)
		}
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(x.cfg.PollInterval):
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrOperationTimeout, operation)
}

// settle waits the configured post-batch delay, honouring the context.
func (x *Indexer) settle(ctx context.Context) {
	logger.Debug("Waiting %s for the index to settle", x.cfg.SettleDelay)
	select {
	case <-ctx.Done():
	case <-time.After(x.cfg.SettleDelay):
	}
}

// recordPageFailure logs a failed page and keeps the batch going.
func (x *Indexer) recordPageFailure(label, pageID, title string, err error) {
	logger.Warn("Page %s failed: %v", shortID(pageID), err)
	if logErr := x.costs.LogIndexing(driven.IndexingRecord{
		Label:          label,
		PageID:         pageID,
		Title:          title,
		EmbeddingModel: x.cfg.EmbeddingModel,
		VisionModel:    x.cfg.VisionModel,
		Status:         "error",
		Error:          err.Error(),
	}); logErr != nil {
		logger.Warn("Failed to write indexing record: %v", logErr)
	}
}

// buildDocumentBody prepends the page property header to the extracted
// content.
func buildDocumentBody(props *domain.PageProperties, content string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Title: %s]", props.DisplayTitle())
	if props.Type != "" {
		fmt.Fprintf(&b, "\n[Type: %s]", props.Type)
	}
	if len(props.Tags) > 0 {
		fmt.Fprintf(&b, "\n[Tags: %s]", strings.Join(props.Tags, ", "))
	}
	if props.URL != "" {
		fmt.Fprintf(&b, "\n[Reference: %s]", props.URL)
	}
	b.WriteString("\n---\n")
	b.WriteString(content)
	return b.String()
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// shortID abbreviates an identifier for log lines.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
