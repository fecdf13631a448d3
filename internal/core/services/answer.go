package services

import (
	"context"
	"fmt"
	"time"

	"github.com/minsukim/notisync/internal/core/domain"
	"github.com/minsukim/notisync/internal/core/ports/driven"
	"github.com/minsukim/notisync/internal/core/ports/driving"
	"github.com/minsukim/notisync/internal/logger"
)

var _ driving.QueryService = (*Answerer)(nil)

// Answerer runs grounded queries against a database's indexed store.
type Answerer struct {
	store        driven.ArtifactStore
	model        driven.AnswerModel
	registry     driven.SourceRegistry
	costs        driven.CostLogger
	pricing      domain.PriceTable
	defaultModel string
}

// NewAnswerer wires the query service. defaultModel is used when a call
// does not name a model.
func NewAnswerer(
	store driven.ArtifactStore,
	model driven.AnswerModel,
	registry driven.SourceRegistry,
	costs driven.CostLogger,
	pricing domain.PriceTable,
	defaultModel string,
) *Answerer {
	if pricing == nil {
		pricing = domain.DefaultPriceTable()
	}
	return &Answerer{
		store:        store,
		model:        model,
		registry:     registry,
		costs:        costs,
		pricing:      pricing,
		defaultModel: defaultModel,
	}
}

// Answer resolves the label, checks the store has indexed content, then
// asks the model with the store attached as the grounding corpus.
func (a *Answerer) Answer(ctx context.Context, label, model, query, source string) (*domain.QueryResult, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if model == "" {
		model = a.defaultModel
	}

	label, _, err := a.registry.Resolve(label)
	if err != nil {
		return nil, err
	}

	store, created, err := a.store.EnsureStore(ctx, label)
	if err != nil {
		return nil, fmt.Errorf("ensure store: %w", err)
	}

	artifacts, err := a.store.ListArtifacts(ctx, store.Name)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	if len(artifacts) == 0 {
		// An accidentally created empty store is removed again so the
		// listing stays clean.
		if created {
			if delErr := a.store.DeleteStore(ctx, store.Name); delErr != nil {
				logger.Warn("Failed to delete empty store %s: %v", store.Name, delErr)
			}
		}
		return nil, fmt.Errorf("%w: %q has no indexed pages, run init first", domain.ErrStoreEmpty, label)
	}

	start := time.Now()
	answer, grounding, usage, err := a.model.AnswerWithStore(ctx, store.Name, model, query)
	if err != nil {
		return nil, fmt.Errorf("answer query: %w", err)
	}
	elapsed := time.Since(start)

	cost := a.pricing.Cost(model, usage.InputTokens, usage.OutputTokens)
	res := &domain.QueryResult{
		Answer:       answer,
		Grounding:    grounding,
		Model:        model,
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		Cost:         cost,
		Elapsed:      elapsed,
	}

	if err := a.costs.LogQuery(driven.QueryRecord{
		Label:        label,
		Query:        query,
		Model:        model,
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		Cost:         cost,
		TotalCost:    cost,
		Elapsed:      elapsed.Seconds(),
		Source:       source,
	}); err != nil {
		logger.Warn("Failed to write query record: %v", err)
	}
	return res, nil
}
