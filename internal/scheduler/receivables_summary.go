// Package scheduler runs the periodic jobs of the service.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/shopspring/decimal"
	"github.com/vfg2006/receivables-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/receivables-dashboard-api/internal/config"
	"github.com/vfg2006/receivables-dashboard-api/internal/domain"
	"github.com/vfg2006/receivables-dashboard-api/pkg/log"
	"github.com/vfg2006/receivables-dashboard-api/pkg/utils"
)

const refreshTimeout = 2 * time.Minute

type ReceivablesSummaryConfig struct {
	CronSchedule string
	SyncEnabled  bool
}

// ReceivablesSummaryService periodically aggregates the uploaded records
// and caches the result.
type ReceivablesSummaryService struct {
	scheduler           *gocron.Scheduler
	store               repository.RecordStore
	config              ReceivablesSummaryConfig
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastError           string
	summary             *domain.ReceivablesSummary
	now                 func() time.Time
}

func NewReceivablesSummaryService(store repository.RecordStore, cfg *config.Config) *ReceivablesSummaryService {
	summaryConfig := ReceivablesSummaryConfig{
		CronSchedule: cfg.ReceivablesSummary.CronSchedule,
		SyncEnabled:  cfg.ReceivablesSummary.Enabled,
	}

	log.L.WithField("job_cron", summaryConfig.CronSchedule).Info("summary: scheduler configured")

	return &ReceivablesSummaryService{
		scheduler: gocron.NewScheduler(time.Local),
		store:     store,
		config:    summaryConfig,
		now:       time.Now,
	}
}

// Start schedules the job and computes a first summary right away.
func (s *ReceivablesSummaryService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		log.L.Info("summary: job disabled by configuration")
		return nil
	}

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		if err := s.UpdateSummary(ctx); err != nil {
			log.L.WithError(err).Error("summary: scheduled refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule receivables summary: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		if err := s.UpdateSummary(ctx); err != nil {
			log.L.WithError(err).Warn("summary: initial refresh failed")
		}
	}()

	go func() {
		<-ctx.Done()
		log.L.Info("summary: stopping scheduler")
		s.scheduler.Stop()
	}()

	return nil
}

// UpdateSummary recomputes the summary. A call made while another one is
// running returns immediately.
func (s *ReceivablesSummaryService) UpdateSummary(ctx context.Context) error {
	if !s.begin() {
		log.L.Warn("summary: refresh already running")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	records, err := s.store.List(ctx)
	if err != nil {
		s.finish(nil, err)
		return fmt.Errorf("list records: %w", err)
	}

	summary := Summarize(records, s.now())
	s.finish(&summary, nil)

	log.L.WithFields(log.Fields{
		"record_count": summary.RecordCount,
		"job_total":    summary.TotalAmount.String(),
	}).Info("summary: refreshed")

	return nil
}

func (s *ReceivablesSummaryService) begin() bool {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	if s.syncRunning {
		return false
	}
	s.syncRunning = true
	s.lastSyncStartedAt = s.now()
	return true
}

func (s *ReceivablesSummaryService) finish(summary *domain.ReceivablesSummary, err error) {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	s.syncRunning = false
	s.lastSyncCompletedAt = s.now()
	s.lastError = ""
	if err != nil {
		s.lastError = err.Error()
		return
	}
	s.summary = summary
}

// Summarize counts the records per upload month and totals the first
// numeric amount column of each record.
func Summarize(records []domain.Record, at time.Time) domain.ReceivablesSummary {
	summary := domain.ReceivablesSummary{
		RecordCount:   len(records),
		TotalAmount:   decimal.Zero,
		CountsByMonth: make(map[string]int),
		GeneratedAt:   at,
	}

	for _, record := range records {
		if month := record.UploadMonth(); month != "" {
			summary.CountsByMonth[month]++
		}

		for _, field := range domain.AmountFields {
			if amount, ok := utils.ToFloat(record.Fields[field]); ok {
				summary.TotalAmount = summary.TotalAmount.Add(decimal.NewFromFloat(amount))
				break
			}
		}
	}

	summary.TotalAmount = summary.TotalAmount.Round(2)
	return summary
}

// TriggerManualSync starts a refresh in the background unless one is running.
func (s *ReceivablesSummaryService) TriggerManualSync() {
	s.syncMutex.Lock()
	running := s.syncRunning
	s.syncMutex.Unlock()

	if running {
		log.L.Info("summary: refresh in progress, manual trigger ignored")
		return
	}

	log.L.Info("summary: manual refresh started")
	go func() {
		if err := s.UpdateSummary(context.Background()); err != nil {
			log.L.WithError(err).Error("summary: manual refresh failed")
		}
	}()
}

// LatestSummary returns the cached summary; false until the first refresh completes.
func (s *ReceivablesSummaryService) LatestSummary() (domain.ReceivablesSummary, bool) {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	if s.summary == nil {
		return domain.ReceivablesSummary{}, false
	}

	summary := *s.summary
	summary.CountsByMonth = make(map[string]int, len(s.summary.CountsByMonth))
	for k, v := range s.summary.CountsByMonth {
		summary.CountsByMonth[k] = v
	}
	return summary, true
}

// CurrentSummary serves the cached summary, computing one first when the
// job has not produced any yet.
func (s *ReceivablesSummaryService) CurrentSummary(ctx context.Context) (domain.ReceivablesSummary, error) {
	if summary, ok := s.LatestSummary(); ok {
		return summary, nil
	}

	if err := s.UpdateSummary(ctx); err != nil {
		return domain.ReceivablesSummary{}, err
	}

	if summary, ok := s.LatestSummary(); ok {
		return summary, nil
	}

	// another refresh was in flight; summarize directly
	records, err := s.store.List(ctx)
	if err != nil {
		return domain.ReceivablesSummary{}, fmt.Errorf("list records: %w", err)
	}
	return Summarize(records, s.now()), nil
}

func (s *ReceivablesSummaryService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_running":           s.syncRunning,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_error":             s.lastError,
	}
}
