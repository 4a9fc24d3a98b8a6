package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/importados/internal/cli"
	"github.com/mamadbah2/importados/internal/config"
	"github.com/mamadbah2/importados/internal/inventory"
	"github.com/mamadbah2/importados/internal/scheduler"
	"github.com/mamadbah2/importados/internal/server/handlers"
	"github.com/mamadbah2/importados/internal/server/router"
	commandsvc "github.com/mamadbah2/importados/internal/service/commands"
	reportingsvc "github.com/mamadbah2/importados/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/importados/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/importados/pkg/clients/whatsapp"
	"github.com/mamadbah2/importados/pkg/logger"
)

const usage = `usage: importados [-env file] [command]

commands:
  menu      interactive menu (default)
  serve     HTTP gallery/API and the weekly scheduler
  rebuild   recompute availability from catalog minus sales (-check only reports drift)
  report    write the HTML gallery once and show the last archived week
  restock   add units to a product: restock <ID> <size,size,...>
`

func main() {
	envFile := flag.String("env", "", "path to a .env file")
	check := flag.Bool("check", false, "rebuild: report drift without writing")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "menu"
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Keep structured logs out of the operator's terminal.
	if command == "menu" && cfg.Log.File == "" {
		if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg.Log.File = filepath.Join(cfg.Storage.DataDir, "importados.log")
	}

	baseLogger := logger.Must(logger.New(logger.Options{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Console: cfg.Log.Format == config.LogFormatConsole,
	}))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, baseLogger)
	if err != nil {
		baseLogger.Error("failed to initialize", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer a.close()

	switch command {
	case "menu":
		err = cli.New(a.stock, a.reporting, a.renderer, os.Stdin, os.Stdout, logger.Named(baseLogger, "cli")).Run(ctx)
	case "serve":
		err = serve(ctx, cfg, a, baseLogger)
	case "rebuild":
		err = rebuild(ctx, a, *check)
	case "report":
		err = report(ctx, a)
	case "restock":
		err = restock(ctx, a, flag.Arg(1), flag.Arg(2))
	default:
		flag.Usage()
		a.close()
		os.Exit(2)
	}

	if err != nil {
		baseLogger.Error("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		a.close()
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config, a *app, baseLogger *zap.Logger) error {
	var messagingSvc whatsappsvc.MessagingService = whatsappsvc.NoopMessagingService{Logger: logger.Named(baseLogger, "svc.whatsapp")}
	if cfg.WhatsApp.Enabled() {
		dispatcher := commandsvc.NewService(a.stock, a.reporting, logger.Named(baseLogger, "svc.commands"))
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc = whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, dispatcher, logger.Named(baseLogger, "svc.whatsapp"))
		baseLogger.Info("whatsapp messaging enabled")
	} else {
		baseLogger.Warn("whatsapp token missing, weekly summaries will only be logged")
	}

	opts := router.Options{
		Inventory: handlers.NewInventoryHandler(a.stock, a.reporting, a.renderer, logger.Named(baseLogger, "handlers.inventory")),
		ImagesDir: cfg.Report.ImagesDir,
	}
	if cfg.WhatsApp.WebhookEnabled() {
		opts.Webhook = handlers.NewWebhookHandler(messagingSvc, logger.Named(baseLogger, "handlers.whatsapp"))
	}
	engine := router.New(opts, logger.Named(baseLogger, "router"))

	sched, err := scheduler.NewScheduler(*cfg, a.stock, a.renderer, a.reporting, messagingSvc, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server crashed: %w", err)
		}
		return nil
	case <-ctx.Done():
		baseLogger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func rebuild(ctx context.Context, a *app, checkOnly bool) error {
	drift, err := a.stock.Audit(ctx)
	if err != nil {
		return err
	}
	for _, d := range drift {
		fmt.Printf("%s size %s: stored %d, expected %d\n", d.ProductID, d.Size, d.Stored, d.Expected)
	}
	if checkOnly {
		fmt.Printf("%d discrepancies found.\n", len(drift))
		return nil
	}
	snapshot, err := a.stock.RebuildAvailability(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Availability rebuilt: %d units across %d entries.\n", snapshot.Units(), len(snapshot.Entries))
	return nil
}

func report(ctx context.Context, a *app) error {
	snapshot, err := a.stock.Available(ctx)
	if err != nil {
		return err
	}
	path, err := a.renderer.WriteGallery(snapshot)
	if err != nil {
		return err
	}
	fmt.Printf("HTML report created: %s\n", path)

	last, err := a.reporting.LastArchived(ctx)
	if err != nil {
		return err
	}
	if last != nil {
		fmt.Printf("Last archived week (%s):\n%s\n", last.TakenAt.Format(time.DateOnly), reportingsvc.FormatSummary(*last))
	}
	return nil
}

func restock(ctx context.Context, a *app, productID, sizes string) error {
	if productID == "" || sizes == "" {
		return errors.New("usage: importados restock <ID> <size,size,...>")
	}
	product, err := a.stock.Restock(ctx, productID, inventory.SplitSizeList(sizes))
	if err != nil {
		return err
	}
	fmt.Printf("Restocked %s: %d units in catalog.\n", product.ID, product.Units())
	return nil
}
