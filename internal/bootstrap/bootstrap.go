// Package bootstrap wires infrastructure from config for both binaries.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"

	"github.com/bryanwahyu/automaton-a11y/internal/config"
	domain "github.com/bryanwahyu/automaton-a11y/internal/domain/audit"
	"github.com/bryanwahyu/automaton-a11y/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/automaton-a11y/internal/infra/db/mysql"
	"github.com/bryanwahyu/automaton-a11y/internal/infra/db/postgres"
	"github.com/bryanwahyu/automaton-a11y/internal/infra/report"
	minioStore "github.com/bryanwahyu/automaton-a11y/internal/infra/storage"
)

// NewAIClient builds the chat-completion client from the captured credential.
func NewAIClient(cfg *config.Config) *openai.Client {
	return openai.NewClient(openai.Options{
		BaseURL:     cfg.Models.Endpoint,
		Token:       cfg.Models.Token,
		Model:       cfg.Models.Model,
		Temperature: cfg.Models.Temperature,
		MaxTokens:   cfg.Models.MaxTokens,
		Timeout:     cfg.Models.Timeout,
	})
}

// ReportWriters returns the JSON and Markdown writers in output order.
func ReportWriters(cfg *config.Config) []domain.ReportWriter {
	return []domain.ReportWriter{
		report.JSONWriter{Name: cfg.Output.JSON},
		report.MarkdownWriter{Name: cfg.Output.Markdown},
	}
}

// AxeReport returns the axe HTML renderer, or nil when disabled.
func AxeReport(cfg *config.Config) domain.AxeRenderer {
	if cfg.Output.HTML == "" {
		return nil
	}
	return report.NewAxeHTML(filepath.Base(cfg.Output.HTML), cfg.Axe.IssuesResults, cfg.Axe.FixedResults)
}

type migrator interface {
	Migrate(ctx context.Context) error
}

// OpenRepository connects the configured database. It returns (nil, nil, nil)
// when no driver is configured.
func OpenRepository(ctx context.Context, cfg *config.Config) (domain.Repository, *sql.DB, error) {
	var (
		db   *sql.DB
		repo interface {
			domain.Repository
			migrator
		}
		err error
	)
	switch cfg.Database.Driver {
	case "":
		return nil, nil, nil
	case "mysql":
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err == nil {
			repo = mysqlp.NewRecordRepository(db)
		}
	case "postgres":
		db, err = postgres.Connect(ctx, cfg.PostgresDSN())
		if err == nil {
			repo = postgres.NewRecordRepository(db)
		}
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s connect: %w", cfg.Database.Driver, err)
	}
	if err := repo.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("%s migrate: %w", cfg.Database.Driver, err)
	}
	log.Printf("record repository ready driver=%s", cfg.Database.Driver)
	return repo, db, nil
}

// OpenArtifactStore connects MinIO, or returns nil when uploads are disabled.
func OpenArtifactStore(ctx context.Context, cfg *config.Config) (domain.ArtifactStore, error) {
	if !cfg.Minio.Enabled {
		return nil, nil
	}
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		return nil, err
	}
	return store, nil
}
