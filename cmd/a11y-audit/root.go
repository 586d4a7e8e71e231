package main

import (
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/automaton-a11y/internal/application"
	appaudit "github.com/bryanwahyu/automaton-a11y/internal/application/audit"
	"github.com/bryanwahyu/automaton-a11y/internal/bootstrap"
	"github.com/bryanwahyu/automaton-a11y/internal/config"
)

type rootFlags struct {
	configPath string
	inputs     []string
	outDir     string
	upload     bool
	persist    bool
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var f rootFlags
	cmd := &cobra.Command{
		Use:   "a11y-audit",
		Short: "AI accessibility analysis of HTML files.",
		Long: `a11y-audit sends each input HTML file to a GitHub Models chat-completion
endpoint with a WCAG 2.1 AA audit prompt and writes a JSON and a Markdown report.

Without MODELS_TOKEN every file gets a mock analysis instead.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg, err := config.Load(config.ResolvePath(f.configPath))
			if err != nil {
				return err
			}
			applyFlags(cmd, cfg, f)
			return run(ctx, cfg, stdout, f.persist)
		},
	}
	cmd.SetOut(stdout)
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "path to config.yaml (default $CONFIG_PATH or ./config.yaml)")
	cmd.Flags().StringSliceVarP(&f.inputs, "input", "i", nil, "HTML file to analyze (repeatable; default the two demo files)")
	cmd.Flags().StringVarP(&f.outDir, "out-dir", "o", "", "directory for the generated reports")
	cmd.Flags().BoolVar(&f.upload, "upload", false, "upload reports to MinIO")
	cmd.Flags().BoolVar(&f.persist, "persist", false, "store analysis records in the configured database (requires database.driver)")
	return cmd
}

func applyFlags(cmd *cobra.Command, cfg *config.Config, f rootFlags) {
	if cmd.Flags().Changed("input") {
		cfg.Inputs = f.inputs
	}
	if f.outDir != "" {
		cfg.Output.Dir = f.outDir
	}
	if f.upload {
		cfg.Minio.Enabled = true
	}
	if f.persist && cfg.Database.Driver == "" {
		log.Printf("--persist ignored: database.driver is not configured")
	}
}

// run executes one report run. Records are stored only when persist is set and
// a database driver is configured.

func run(ctx context.Context, cfg *config.Config, stdout io.Writer, persist bool) error {
	svc := appaudit.NewService(bootstrap.NewAIClient(cfg), cfg.HasCredential(), stdout)

	gen := &appaudit.Generator{
		Analyzer: svc,
		Inputs:   cfg.Inputs,
		OutDir:   cfg.Output.Dir,
		Writers:  bootstrap.ReportWriters(cfg),
		Axe:      bootstrap.AxeReport(cfg),
		Clock:    application.SystemClock{},
		Out:      stdout,
		Model:    cfg.Models.Model,
	}

	if persist {
		repo, db, err := bootstrap.OpenRepository(ctx, cfg)
		if err != nil {
			log.Printf("persistence disabled: %v", err)
		} else if repo != nil {
			defer closeDB(db)
			gen.Records = repo
		}
	}

	store, err := bootstrap.OpenArtifactStore(ctx, cfg)
	if err != nil {
		log.Printf("artifact upload disabled: %v", err)
	} else if store != nil {
		gen.Artifacts = store
	}

	_, err = gen.Run(ctx)
	return err
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		log.Printf("close database: %v", err)
	}
}
