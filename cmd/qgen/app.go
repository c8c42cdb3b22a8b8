package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bloomforge/internal/adapter/extractor"
	"bloomforge/internal/adapter/llm"
	"bloomforge/internal/adapter/ocr"
	"bloomforge/internal/adapter/quizgen"
	"bloomforge/internal/config"
	"bloomforge/internal/database"
	"bloomforge/internal/domain"
	"bloomforge/internal/generator"
	"bloomforge/internal/logger"
	"bloomforge/internal/repository"
	"bloomforge/internal/service"
	"bloomforge/internal/session"
	"bloomforge/internal/util"

	"go.uber.org/zap"
)

// app holds the pieces shared by every subcommand.
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	extractor *extractor.Extractor
	synth     *generator.Synthesizer
	sessions  *session.MemoryStore
	closers   []func()
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: logger.Get()}
	a.closers = append(a.closers, func() { _ = logger.Sync() })

	if err := extractor.SetOfficeLicense(os.Getenv("UNIDOC_LICENSE_API_KEY")); err != nil {
		a.log.Warn("Failed to register office document license", zap.Error(err))
	}

	var ocrService domain.OCRService
	if vision, err := ocr.New(ctx, cfg.OCR, a.log); err != nil {
		a.log.Warn("OCR unavailable, images will not be read", zap.Error(err))
	} else if vision != nil {
		a.closers = append(a.closers, func() { vision.Close() })
		ocrService = vision
	}
	a.extractor = extractor.New(ocrService, cfg.Upload.MaxFileSize, a.log)

	if a.synth, err = generator.New(); err != nil {
		a.close()
		return nil, err
	}
	a.sessions = session.NewMemoryStore(time.Hour, nil, a.log)
	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// openSession extracts the file at path into a fresh in-memory session.
func (a *app) openSession(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	name := filepath.Base(path)
	extraction, err := a.extractor.Extract(ctx, domain.Upload{FileName: name, Data: data})
	if err != nil {
		return "", err
	}
	for _, w := range extraction.Warnings {
		a.log.Warn("Extraction warning", zap.String("file", name), zap.String("warning", w))
	}

	id := util.NewULID()
	doc := domain.Document{
		ID:         util.NewULID(),
		FileName:   name,
		FileType:   extraction.FileType,
		MimeType:   extraction.MimeType,
		Size:       int64(len(data)),
		Content:    extraction.Content,
		UploadedAt: time.Now(),
	}
	if err := a.sessions.Create(ctx, domain.NewSession(id, false, doc)); err != nil {
		return "", err
	}
	return id, nil
}

// generations builds a GenerationService. withBank connects and migrates the
// configured question bank when db.enabled is set.
func (a *app) generations(ctx context.Context, useAI, withBank bool) (service.GenerationService, error) {
	var opts []service.GenerationOption
	switch {
	case useAI && !a.cfg.AIEnabled():
		a.log.Warn("--ai given but no LLM provider is configured, using rule-based generation")
	case useAI:
		textGenerator, err := llm.New(ctx, a.cfg.LLM)
		if err != nil {
			return nil, err
		}
		opts = append(opts, service.WithAI(
			quizgen.NewOrchestrator(textGenerator, a.synth, a.log, quizgen.WithTimeout(a.cfg.LLM.Timeout))))
	}

	if withBank && a.cfg.DB.Enabled {
		db, err := database.Connect(ctx, a.cfg, a.log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, func() { db.Close() })

		m, err := database.NewMigrator(db.DB, a.cfg.DB.Driver, a.log)
		if err != nil {
			return nil, err
		}
		defer m.Close()
		if err := m.Up(); err != nil {
			return nil, err
		}
		opts = append(opts, service.WithQuestionBank(
			repository.NewQuestionBankAdapter(db), repository.NewTransactionManagerAdapter(db)))
		a.log.Info("Question bank enabled", zap.String("driver", a.cfg.DB.Driver))
	}

	return service.NewGenerationService(a.sessions, a.synth, opts...), nil
}
