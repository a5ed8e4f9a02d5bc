package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/receivables-dashboard-api/infrastructure/blob"
	"github.com/vfg2006/receivables-dashboard-api/infrastructure/messaging"
	"github.com/vfg2006/receivables-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/receivables-dashboard-api/internal/api"
	"github.com/vfg2006/receivables-dashboard-api/internal/api/handler"
	"github.com/vfg2006/receivables-dashboard-api/internal/config"
	"github.com/vfg2006/receivables-dashboard-api/internal/fixtures"
	"github.com/vfg2006/receivables-dashboard-api/internal/scheduler"
	"github.com/vfg2006/receivables-dashboard-api/internal/usecases/authenticating"
	"github.com/vfg2006/receivables-dashboard-api/internal/usecases/dashboard"
	"github.com/vfg2006/receivables-dashboard-api/internal/usecases/ingesting"
	"github.com/vfg2006/receivables-dashboard-api/internal/usecases/notifying"
	"github.com/vfg2006/receivables-dashboard-api/pkg/log"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	log.Setup(cfg.App.LogLevel)
	log.L.Infof("log level set to %s", logrus.GetLevel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	data, err := fixtures.Generate(cfg.Fixtures.Seed)
	if err != nil {
		log.L.WithError(err).Fatal("fixtures: generate dataset")
	}
	log.L.WithFields(log.Fields{
		"customers": len(data.Customers),
		"invoices":  len(data.Invoices),
	}).Info("fixtures: dataset ready")

	stores, err := repository.Open(ctx, cfg)
	if err != nil {
		log.L.WithError(err).Fatal("store: open")
	}
	defer stores.Close()

	publisher, err := messaging.NewPublisher(cfg.AMQP)
	if err != nil {
		log.L.WithError(err).Warn("messaging: AMQP unavailable, events will be dropped")
		publisher = messaging.NopPublisher{}
	}
	defer publisher.Close()

	userRepo := repository.NewMemoryUserRepository(data.Users)
	authenticator := authenticating.NewService(userRepo, cfg.SecretKey)
	notifier := notifying.NewService(stores.Notifications, publisher)

	ingestOpts := []ingesting.Option{ingesting.WithNotifier(notifier)}
	if cfg.Upload.ArchiveEnabled {
		archive, err := blob.Open(ctx, cfg.Blob)
		if err != nil {
			log.L.WithError(err).Fatal("blob: open archive store")
		}
		log.L.WithField("driver", archive.Driver()).Info("blob: upload archive enabled")
		ingestOpts = append(ingestOpts, ingesting.WithArchive(archive))
	}
	ingester := ingesting.NewService(stores.Records, ingestOpts...)

	summaryService := scheduler.NewReceivablesSummaryService(stores.Records, cfg)
	if err := summaryService.Start(ctx); err != nil {
		log.L.WithError(err).Error("summary: scheduler failed to start")
	}

	dashboardService := dashboard.NewService(data, summaryService, cfg.Fixtures.Delay)

	server, err := api.New(cfg, api.Services{
		Authenticator: authenticator,
		Ingester:      ingester,
		Dashboard:     dashboardService,
		Notifier:      notifier,
		Summaries:     summaryService,
		CronJobs: handler.CronJobServices{
			ReceivablesSummaryService: summaryService,
		},
	})
	if err != nil {
		log.L.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		log.L.Error(err)
	}
}
