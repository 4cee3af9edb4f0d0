// Command insight answers questions about PDF documents with cited sources.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/insight/internal/adapters/driven/ai"
	"github.com/custodia-labs/insight/internal/adapters/driven/config/file"
	"github.com/custodia-labs/insight/internal/adapters/driven/extractors/pdf"
	"github.com/custodia-labs/insight/internal/adapters/driven/storage/filesystem"
	"github.com/custodia-labs/insight/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/insight/internal/adapters/driving/cli"
	fswatch "github.com/custodia-labs/insight/internal/connectors/filesystem"
	"github.com/custodia-labs/insight/internal/core/services"
	"github.com/custodia-labs/insight/internal/logger"
	"github.com/custodia-labs/insight/internal/postprocessors/chunker"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// envDataDir overrides where config, index and uploads live.
const envDataDir = "INSIGHT_DATA_DIR"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cli.SetVersion(version)

	homeDir, err := dataDir()
	if err != nil {
		return err
	}

	cwd, _ := os.Getwd()
	if loaded, err := file.LoadEnv(cwd, homeDir); err != nil {
		logger.Warn("loading .env: %v", err)
	} else if len(loaded) > 0 {
		logger.Debug("loaded env files: %v", loaded)
	}

	configStore, err := file.NewConfigStore(homeDir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	// Settings must stay reachable even when the providers are not.
	cli.SetSettingsService(settingsService)

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	cli.SetServerConfig(cli.ServerConfig{
		Addr:        settings.Server.Addr,
		CORSOrigins: settings.Server.CORSOrigins,
	})

	ctx := context.Background()
	aiServices, err := ai.Init(ctx, settings)
	if err != nil {
		logger.Warn("AI providers unavailable: %v", err)
		return cli.Execute()
	}
	defer aiServices.Close()
	for _, w := range aiServices.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	db, err := sqlite.NewStore(filepath.Join(homeDir, "data"))
	if err != nil {
		return fmt.Errorf("open index database: %w", err)
	}
	defer db.Close()

	uploads, err := filesystem.NewUploadStore(homeDir)
	if err != nil {
		return err
	}

	prompts, err := file.NewPromptStore(filepath.Join(homeDir, "prompts"))
	if err != nil {
		return err
	}

	store, err := services.NewStore(aiServices.EmbeddingService, db.IndexStore())
	if err != nil {
		return err
	}
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	assembler, err := services.NewAnswerAssembler(aiServices.LLMService, prompts, services.AssemblerConfig{
		MaxTokens:   settings.LLM.MaxTokens,
		Temperature: settings.LLM.Temperature,
	})
	if err != nil {
		return err
	}

	textChunker := chunker.New(
		chunker.WithChunkSize(settings.Chunking.Size),
		chunker.WithOverlapWords(settings.Chunking.OverlapWords),
	)

	ingestService := services.NewIngestService(pdf.New(), textChunker, store, uploads)
	retriever := services.NewRetriever(aiServices.EmbeddingService, store, settings.Retrieval.TopK)
	documentService := services.NewDocumentService(store, uploads, version, settings.Embedding.Model)

	cli.SetServices(cli.Services{
		Ingest:   ingestService,
		Query:    services.NewQueryService(store, retriever, assembler),
		Document: documentService,
		Actions:  services.NewAnswerActionService(uploads),
		Settings: settingsService,
		Index:    services.NewIndexService(store),
		Watch:    services.NewWatchService(ingestService, documentService, fswatch.Factory()),
	})

	return cli.Execute()
}

func dataDir() (string, error) {
	if dir := os.Getenv(envDataDir); dir != "" {
		return dir, nil
	}
	return file.HomeDir()
}
