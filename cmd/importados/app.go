package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/importados/internal/config"
	"github.com/mamadbah2/importados/internal/render"
	"github.com/mamadbah2/importados/internal/repository/csvfile"
	"github.com/mamadbah2/importados/internal/repository/memory"
	"github.com/mamadbah2/importados/internal/repository/mongodb"
	"github.com/mamadbah2/importados/internal/repository/sheets"
	"github.com/mamadbah2/importados/internal/repository/tabular"
	reportingsvc "github.com/mamadbah2/importados/internal/service/reporting"
	"github.com/mamadbah2/importados/internal/service/stock"
	"github.com/mamadbah2/importados/internal/store"
)

// app holds the services shared by every command.
type app struct {
	stock     *stock.Service
	reporting *reportingsvc.Service
	renderer  *render.Renderer
	closers   []func(context.Context) error
	logger    *zap.Logger
}

func newApp(ctx context.Context, cfg *config.Config, baseLogger *zap.Logger) (*app, error) {
	a := &app{logger: baseLogger}

	repo, err := openRepository(ctx, cfg, baseLogger)
	if err != nil {
		return nil, err
	}

	st := store.New(repo, store.Layout(cfg.Storage.Layout), baseLogger.Named("store"))
	if err := st.Bootstrap(ctx); err != nil {
		return nil, fmt.Errorf("bootstrap tables: %w", err)
	}

	var archive reportingsvc.Archive = reportingsvc.NoopArchive{}
	if cfg.MongoDB.URI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		mongoRepo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			return nil, fmt.Errorf("init mongodb archive: %w", err)
		}
		a.closers = append(a.closers, mongoRepo.Close)
		archive = mongoRepo
		baseLogger.Info("profit snapshot archive enabled", zap.String("db", cfg.MongoDB.DBName))
	}

	renderer, err := render.NewRenderer(cfg.Report, baseLogger.Named("render"))
	if err != nil {
		return nil, err
	}

	a.stock = stock.NewService(st, baseLogger.Named("svc.stock"))
	a.reporting = reportingsvc.NewService(st, archive, baseLogger.Named("svc.reporting"))
	a.renderer = renderer
	return a, nil
}

func openRepository(ctx context.Context, cfg *config.Config, baseLogger *zap.Logger) (tabular.Repository, error) {
	switch cfg.Storage.Backend {
	case config.BackendSheets:
		repo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			return nil, fmt.Errorf("init sheets repository: %w", err)
		}
		return repo, nil
	case config.BackendMemory:
		baseLogger.Warn("memory backend selected, nothing will be persisted")
		return memory.NewRepository(), nil
	default:
		return csvfile.NewRepository(cfg.Storage.DataDir, baseLogger.Named("repo.csv")), nil
	}
}

// close releases external connections. Safe to call more than once.
func (a *app) close() {
	closers := a.closers
	a.closers = nil
	for _, c := range closers {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := c(ctx); err != nil {
			a.logger.Error("failed to close connection", zap.Error(err))
		}
		cancel()
	}
}
