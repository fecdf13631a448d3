// notisync indexes Notion databases into Gemini file search stores and
// answers questions grounded in the indexed content.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/minsukim/notisync/internal/adapters/driven/config/file"
	"github.com/minsukim/notisync/internal/adapters/driven/costlog"
	"github.com/minsukim/notisync/internal/adapters/driven/gemini"
	"github.com/minsukim/notisync/internal/adapters/driven/notion"
	"github.com/minsukim/notisync/internal/adapters/driving/cli"
	"github.com/minsukim/notisync/internal/adapters/driving/httpapi"
	"github.com/minsukim/notisync/internal/core/domain"
	"github.com/minsukim/notisync/internal/core/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	notionToken := os.Getenv("NOTION_TOKEN")
	if notionToken == "" {
		return fmt.Errorf("%w: NOTION_TOKEN is not set", domain.ErrMissingCredential)
	}
	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY is not set", domain.ErrMissingCredential)
	}

	settings, err := file.NewSettingsStore("")
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	source, err := notion.NewPageSource(notion.Config{Token: notionToken})
	if err != nil {
		return fmt.Errorf("notion client: %w", err)
	}

	client, err := gemini.NewClient(gemini.Config{APIKey: geminiKey})
	if err != nil {
		return fmt.Errorf("gemini client: %w", err)
	}
	store := gemini.NewStore(client)
	vision := gemini.NewVisionModel(client, settings.VisionModel())
	tokens := gemini.NewTokenCounter(client, settings.EmbeddingModel())
	answerModel := gemini.NewAnswerModel(client)

	costs := costlog.New("logs")
	pricing := domain.DefaultPriceTable()

	analyzer := services.NewImageAnalyzer(vision, pricing)
	extractor := services.NewExtractor(source, analyzer)

	indexer := services.NewIndexer(source, store, extractor, tokens, settings, costs, services.IndexerConfig{
		EmbeddingModel:  settings.EmbeddingModel(),
		VisionModel:     settings.VisionModel(),
		SyncWindow:      time.Duration(settings.SyncDays()) * 24 * time.Hour,
		SettleDelay:     time.Duration(settings.IndexWaitSec()) * time.Second,
		PollInterval:    time.Duration(settings.PollIntervalSec()) * time.Second,
		PollMaxAttempts: settings.PollMaxAttempts(),
		Pricing:         pricing,
	})
	answerer := services.NewAnswerer(store, answerModel, settings, costs, pricing, settings.QueryModel())
	billing := services.NewBilling(costs)

	server := httpapi.New(indexer, answerer, billing, costs)

	cli.SetServices(cli.Services{
		Index:   indexer,
		Query:   answerer,
		Billing: billing,
		Serve: func(addr string) error {
			return server.ListenAndServe(context.Background(), addr)
		},
		ServerAddr: settings.ServerAddr(),
	})

	return cli.Execute()
}
