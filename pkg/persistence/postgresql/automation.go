package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/formtrigger/pkg/models"
	"github.com/dukex/formtrigger/pkg/persistence"
	"github.com/google/uuid"
)

// AutomationRepository handles automation and trigger database operations.
type AutomationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewAutomationRepository(db *sql.DB, logger *slog.Logger) *AutomationRepository {
	return &AutomationRepository{db: db, logger: logger}
}

type scanner interface {
	Scan(dest ...any) error
}

const automationColumns = `
			a.id
		  , a.title
		  , a.status
		  , a.created_at
		  , a.updated_at`

// All returns every automation with its triggers, oldest first.
func (r *AutomationRepository) All(ctx context.Context) ([]*models.Automation, error) {
	query := `SELECT` + automationColumns + `
		FROM automations a
		ORDER BY a.created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query automations: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	automations := make([]*models.Automation, 0)

	for rows.Next() {
		automation, err := scanAutomation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan automation: %w", err)
		}

		automations = append(automations, automation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating automations: %w", err)
	}

	for _, automation := range automations {
		if err := r.loadTriggers(ctx, automation); err != nil {
			return nil, err
		}
	}

	return automations, nil
}

func (r *AutomationRepository) ByID(ctx context.Context, id string) (*models.Automation, error) {
	query := `SELECT` + automationColumns + `
		FROM automations a
		WHERE a.id = $1
	`

	automation, err := scanAutomation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewAutomationError("AutomationByID", id, persistence.ErrAutomationNotFound)
		}

		return nil, persistence.NewAutomationError("AutomationByID", id, err)
	}

	if err := r.loadTriggers(ctx, automation); err != nil {
		return nil, err
	}

	return automation, nil
}

// Save upserts the automation and replaces its triggers in one transaction.
func (r *AutomationRepository) Save(ctx context.Context, automation *models.Automation) (err error) {
	now := time.Now().UTC()
	if automation.CreatedAt.IsZero() {
		automation.CreatedAt = now
	}

	automation.UpdatedAt = now

	if automation.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate automation ID: %w", err)
		}

		automation.ID = id.String()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO automations (id, title, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`,
		automation.ID,
		automation.Title,
		string(automation.Status),
		automation.CreatedAt,
		automation.UpdatedAt,
	)
	if err != nil {
		return persistence.NewAutomationError("SaveAutomation", automation.ID, err)
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM triggers WHERE automation_id = $1", automation.ID)
	if err != nil {
		return fmt.Errorf("failed to delete existing triggers: %w", err)
	}

	for position, trigger := range automation.Triggers {
		trigger.AutomationID = automation.ID

		if trigger.ID == "" {
			trigger.ID = uuid.NewString()
		}

		options, marshalErr := json.Marshal(optionsOrEmpty(trigger.Options))
		if marshalErr != nil {
			err = fmt.Errorf("failed to marshal options of trigger %s: %w", trigger.ID, marshalErr)

			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO triggers (id, automation_id, type, options, position)
			VALUES ($1, $2, $3, $4, $5)
		`, trigger.ID, automation.ID, trigger.Type, options, position)
		if err != nil {
			return fmt.Errorf("failed to save trigger %s: %w", trigger.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete removes the automation; its triggers go with it.
func (r *AutomationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM automations WHERE id = $1", id)
	if err != nil {
		return persistence.NewAutomationError("DeleteAutomation", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.NewAutomationError("DeleteAutomation", id, persistence.ErrAutomationNotFound)
	}

	return nil
}

const triggerMatchQuery = `
		SELECT
			t.id
		  , t.automation_id
		  , t.type
		  , t.options
		  ,` + automationColumns + `
		FROM triggers t
		JOIN automations a ON a.id = t.automation_id
`

func (r *AutomationRepository) TriggersByType(
	ctx context.Context,
	triggerType string,
	status models.AutomationStatus,
) ([]*models.TriggerMatch, error) {
	query := triggerMatchQuery + `
		WHERE t.type = $1 AND ($2 = '' OR a.status = $2)
		ORDER BY a.created_at, t.position
	`

	rows, err := r.db.QueryContext(ctx, query, triggerType, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query triggers: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	var matches []*models.TriggerMatch

	for rows.Next() {
		match, err := scanTriggerMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trigger: %w", err)
		}

		matches = append(matches, match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating triggers: %w", err)
	}

	return matches, nil
}

func (r *AutomationRepository) TriggerByID(ctx context.Context, id string) (*models.TriggerMatch, error) {
	match, err := scanTriggerMatch(r.db.QueryRowContext(ctx, triggerMatchQuery+" WHERE t.id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("trigger %s: %w", id, persistence.ErrTriggerNotFound)
		}

		return nil, fmt.Errorf("failed to scan trigger %s: %w", id, err)
	}

	return match, nil
}

func (r *AutomationRepository) loadTriggers(ctx context.Context, automation *models.Automation) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, automation_id, type, options
		FROM triggers
		WHERE automation_id = $1
		ORDER BY position
	`, automation.ID)
	if err != nil {
		return fmt.Errorf("failed to query triggers of automation %s: %w", automation.ID, err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	automation.Triggers = make([]*models.Trigger, 0)

	for rows.Next() {
		trigger, err := scanTrigger(rows)
		if err != nil {
			return fmt.Errorf("failed to scan trigger: %w", err)
		}

		automation.Triggers = append(automation.Triggers, trigger)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating triggers: %w", err)
	}

	return nil
}

func scanAutomation(row scanner) (*models.Automation, error) {
	var (
		automation models.Automation
		status     string
	)

	err := row.Scan(&automation.ID, &automation.Title, &status, &automation.CreatedAt, &automation.UpdatedAt)
	if err != nil {
		return nil, err
	}

	automation.Status = models.AutomationStatus(status)

	return &automation, nil
}

func scanTrigger(row scanner) (*models.Trigger, error) {
	var (
		trigger models.Trigger
		options []byte
	)

	if err := row.Scan(&trigger.ID, &trigger.AutomationID, &trigger.Type, &options); err != nil {
		return nil, err
	}

	if err := unmarshalOptions(options, &trigger); err != nil {
		return nil, err
	}

	return &trigger, nil
}

func scanTriggerMatch(row scanner) (*models.TriggerMatch, error) {
	var (
		trigger    models.Trigger
		automation models.Automation
		options    []byte
		status     string
	)

	err := row.Scan(
		&trigger.ID, &trigger.AutomationID, &trigger.Type, &options,
		&automation.ID, &automation.Title, &status, &automation.CreatedAt, &automation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalOptions(options, &trigger); err != nil {
		return nil, err
	}

	automation.Status = models.AutomationStatus(status)

	return &models.TriggerMatch{Automation: &automation, Trigger: &trigger}, nil
}

func unmarshalOptions(data []byte, trigger *models.Trigger) error {
	trigger.Options = models.TriggerOptions{}
	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &trigger.Options); err != nil {
		return fmt.Errorf("failed to unmarshal options of trigger %s: %w", trigger.ID, err)
	}

	return nil
}

func optionsOrEmpty(options models.TriggerOptions) models.TriggerOptions {
	if options == nil {
		return models.TriggerOptions{}
	}

	return options
}
