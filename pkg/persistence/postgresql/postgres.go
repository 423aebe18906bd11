// Package postgresql provides the PostgreSQL persistence implementation for
// automations and logs.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/formtrigger/pkg/models"
	"github.com/dukex/formtrigger/pkg/persistence"
	"github.com/dukex/formtrigger/pkg/persistence/sqlbase"
	_ "github.com/lib/pq"
)

var _ persistence.Persistence = (*Persistence)(nil)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db             *sql.DB
	logger         *slog.Logger
	automationRepo *AutomationRepository
	logRepo        *LogRepository
}

// NewPersistence connects to databaseURL and migrates the schema.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	postgres := newPersistence(logger, database)

	err = sqlbase.NewMigrationManager(logger, database, migrations()).RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres, nil
}

func newPersistence(logger *slog.Logger, database *sql.DB) *Persistence {
	logger = logger.With("module", "postgresql")

	return &Persistence{
		db:             database,
		logger:         logger,
		automationRepo: NewAutomationRepository(database, logger),
		logRepo:        NewLogRepository(database, logger),
	}
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) Automations(ctx context.Context) ([]*models.Automation, error) {
	return p.automationRepo.All(ctx)
}

func (p *Persistence) AutomationByID(ctx context.Context, id string) (*models.Automation, error) {
	return p.automationRepo.ByID(ctx, id)
}

func (p *Persistence) SaveAutomation(ctx context.Context, automation *models.Automation) error {
	return p.automationRepo.Save(ctx, automation)
}

func (p *Persistence) DeleteAutomation(ctx context.Context, id string) error {
	return p.automationRepo.Delete(ctx, id)
}

func (p *Persistence) TriggersByType(
	ctx context.Context,
	triggerType string,
	status models.AutomationStatus,
) ([]*models.TriggerMatch, error) {
	return p.automationRepo.TriggersByType(ctx, triggerType, status)
}

func (p *Persistence) TriggerByID(ctx context.Context, id string) (*models.TriggerMatch, error) {
	return p.automationRepo.TriggerByID(ctx, id)
}

func (p *Persistence) SaveLog(ctx context.Context, log *models.Log) error {
	return p.logRepo.Save(ctx, log)
}

func (p *Persistence) LogByID(ctx context.Context, id string) (*models.Log, error) {
	return p.logRepo.ByID(ctx, id)
}

func (p *Persistence) Logs(ctx context.Context, filter persistence.LogFilter) ([]*models.Log, error) {
	return p.logRepo.List(ctx, filter)
}

func (p *Persistence) DeleteLogsBefore(ctx context.Context, before time.Time) (int64, error) {
	return p.logRepo.DeleteBefore(ctx, before)
}
