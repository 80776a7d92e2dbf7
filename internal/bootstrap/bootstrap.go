package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-timesheet/internal/config"
	"github.com/cmlabs-hris/hris-timesheet/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timesheet/internal/observability/metrics"
	"github.com/cmlabs-hris/hris-timesheet/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timesheet/internal/repository/postgresql"
	"github.com/cmlabs-hris/hris-timesheet/internal/repository/sqlite"
	attendanceService "github.com/cmlabs-hris/hris-timesheet/internal/service/attendance"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
)

// Stores are the repositories of the configured database driver
type Stores struct {
	Entries attendance.TimeEntryRepository
	Shifts  attendance.ShiftRepository
	close   func()
}

// Close releases the underlying connections
func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStores connects to the database selected by DB_DRIVER and makes sure its schema exists
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{MaxConns: cfg.Database.MaxConns})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := postgresql.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}

		slog.Info("Connected to database", "driver", config.DriverPostgres, "host", cfg.Database.Host, "name", cfg.Database.Name)
		return &Stores{
			Entries: postgresql.NewTimeEntryRepository(db),
			Shifts:  postgresql.NewShiftRepository(db),
			close:   db.Close,
		}, nil

	case config.DriverSQLite:
		db, err := database.NewSQLiteDB(cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := sqlite.Migrate(db); err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get SQLite handle: %w", err)
		}

		slog.Info("Connected to database", "driver", config.DriverSQLite, "path", cfg.Database.SQLitePath)
		return &Stores{
			Entries: sqlite.NewTimeEntryRepository(db),
			Shifts:  sqlite.NewShiftRepository(db),
			close: func() {
				if err := sqlDB.Close(); err != nil {
					slog.Error("Failed to close SQLite database", "error", err)
				}
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
}

// NewAttendanceService wires the service to the stores, registering its metrics on registry
func NewAttendanceService(cfg *config.Config, stores *Stores, registry *prometheus.Registry, clk clockwork.Clock) (attendance.AttendanceService, error) {
	m, err := metrics.NewAttendanceMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register attendance metrics: %w", err)
	}

	return attendanceService.NewAttendanceService(
		stores.Entries,
		stores.Shifts,
		clk,
		m,
		attendanceService.Options{
			Location:             cfg.Location(),
			DefaultExpectedHours: cfg.Timesheet.ExpectedHours,
			CacheTTL:             cfg.Timesheet.CacheTTL,
		},
	), nil
}
