package repository

import (
	"context"
	"fmt"

	"github.com/vfg2006/receivables-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/receivables-dashboard-api/internal/config"
	"github.com/vfg2006/receivables-dashboard-api/pkg/log"
)

// Stores are the repositories selected by STORE_DRIVER.
type Stores struct {
	Records       RecordStore
	Notifications NotificationRepository
	close         func() error
}

func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open builds the memory stores, or connects to postgres and migrates the
// schema first when DATABASE_MIGRATE is set.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory, "":
		log.L.Info("store: using in-memory repositories, data is lost on restart")
		return &Stores{
			Records:       NewMemoryRecordStore(),
			Notifications: NewMemoryNotificationRepository(),
		}, nil

	case config.StoreDriverPostgres:
		if cfg.Database.MigrateOnBoot {
			if err := postgres.RunMigrations(cfg.Database.DSN); err != nil {
				return nil, fmt.Errorf("store: %w", err)
			}
			log.L.Info("store: migrations applied")
		}

		conn, err := postgres.NewConnection(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("store: connect to postgres: %w", err)
		}
		log.L.Info("store: connected to postgres")

		return &Stores{
			Records:       NewPostgresRecordStore(conn),
			Notifications: NewPostgresNotificationRepository(conn),
			close:         conn.Close,
		}, nil

	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Store.Driver)
	}
}
