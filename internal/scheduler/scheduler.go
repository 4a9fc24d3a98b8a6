package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/importados/internal/config"
	"github.com/mamadbah2/importados/internal/domain/models"
	"github.com/mamadbah2/importados/internal/service/reporting"
	"github.com/mamadbah2/importados/internal/service/whatsapp"
)

const jobTimeout = 2 * time.Minute

// StockReader provides the snapshot the gallery is rendered from.
type StockReader interface {
	Available(ctx context.Context) (models.Snapshot, error)
}

// GalleryWriter regenerates the static gallery file.
type GalleryWriter interface {
	WriteGallery(snapshot models.Snapshot) (string, error)
}

// Archiver snapshots profit figures and stores them.
type Archiver interface {
	ArchiveSnapshot(ctx context.Context, now time.Time) (models.ProfitSnapshot, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron         *cron.Cron
	stock        StockReader
	gallery      GalleryWriter
	archiver     Archiver
	messagingSvc whatsapp.MessagingService
	cfg          config.Config
	logger       *zap.Logger
	now          func() time.Time
}

// NewScheduler creates a new scheduler instance running in the configured timezone.
func NewScheduler(cfg config.Config, stock StockReader, gallery GalleryWriter, archiver Archiver, messagingSvc whatsapp.MessagingService, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc := time.Local
	if cfg.Reporting.Timezone != "" {
		l, err := time.LoadLocation(cfg.Reporting.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %s: %w", cfg.Reporting.Timezone, err)
		}
		loc = l
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(loc)),
		stock:        stock,
		gallery:      gallery,
		archiver:     archiver,
		messagingSvc: messagingSvc,
		cfg:          cfg,
		logger:       logger,
		now:          func() time.Time { return time.Now().In(loc) },
	}, nil
}

// Start registers the weekly job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Reporting.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.runWeekly); err != nil {
		return fmt.Errorf("schedule weekly report: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runWeekly() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.RunWeekly(ctx); err != nil {
		s.logger.Error("weekly job finished with errors", zap.Error(err))
		return
	}
	s.logger.Info("weekly job finished")
}

// RunWeekly regenerates the gallery, archives a profit snapshot and sends the
// summary to the owner. Each step runs even if an earlier one failed.
func (s *Scheduler) RunWeekly(ctx context.Context) error {
	var errs []error

	snapshot, err := s.stock.Available(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("load availability: %w", err))
	} else if path, err := s.gallery.WriteGallery(snapshot); err != nil {
		errs = append(errs, fmt.Errorf("write gallery: %w", err))
	} else {
		s.logger.Info("gallery regenerated", zap.String("path", path), zap.Int("units", snapshot.Units()))
	}

	profit, err := s.archiver.ArchiveSnapshot(ctx, s.now())
	if err != nil {
		errs = append(errs, err)
	}
	// An archive failure still leaves a usable snapshot to report.
	if profit.TakenAt.IsZero() {
		return errors.Join(errs...)
	}

	if s.cfg.WhatsApp.RecipientID != "" {
		msg := models.OutboundMessage{
			To:      s.cfg.WhatsApp.RecipientID,
			Message: reporting.FormatSummary(profit),
		}
		if err := s.messagingSvc.SendOutbound(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("send weekly summary: %w", err))
		} else {
			s.logger.Info("weekly summary sent")
		}
	}

	return errors.Join(errs...)
}
