package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/formtrigger/pkg/models"
	"github.com/dukex/formtrigger/pkg/persistence"
)

// LogRepository handles completion log database operations.
type LogRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewLogRepository(db *sql.DB, logger *slog.Logger) *LogRepository {
	return &LogRepository{db: db, logger: logger}
}

const logColumns = `
			id
		  , type
		  , object_id
		  , object_type
		  , automation_id
		  , user_id
		  , post_id
		  , title
		  , meta
		  , created_at`

func (r *LogRepository) Save(ctx context.Context, log *models.Log) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	meta := log.Meta
	if meta == nil {
		meta = map[string]any{}
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal meta of log %s: %w", log.ID, err)
	}

	var postID sql.NullInt64
	if log.PostID != nil {
		postID = sql.NullInt64{Int64: *log.PostID, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO logs (id, type, object_id, object_type, automation_id, user_id, post_id, title, meta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		log.ID,
		string(log.Type),
		log.ObjectID,
		log.ObjectType,
		log.AutomationID,
		log.UserID,
		postID,
		log.Title,
		metaJSON,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save log %s: %w", log.ID, err)
	}

	return nil
}

func (r *LogRepository) ByID(ctx context.Context, id string) (*models.Log, error) {
	query := `SELECT` + logColumns + `
		FROM logs
		WHERE id = $1
	`

	log, err := scanLog(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("log %s: %w", id, persistence.ErrLogNotFound)
		}

		return nil, fmt.Errorf("failed to scan log %s: %w", id, err)
	}

	return log, nil
}

// List returns the logs matching filter, newest first.
func (r *LogRepository) List(ctx context.Context, filter persistence.LogFilter) ([]*models.Log, error) {
	var (
		conditions []string
		args       []any
	)

	where := func(column string, value any) {
		args = append(args, value)
		conditions = append(conditions, column+" = $"+strconv.Itoa(len(args)))
	}

	if filter.Type != "" {
		where("type", string(filter.Type))
	}

	if filter.ObjectType != "" {
		where("object_type", filter.ObjectType)
	}

	if filter.AutomationID != "" {
		where("automation_id", filter.AutomationID)
	}

	if filter.UserID != 0 {
		where("user_id", filter.UserID)
	}

	query := `SELECT` + logColumns + `
		FROM logs`

	if len(conditions) > 0 {
		query += "\n\t\tWHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, filter.EffectiveLimit())
	query += "\n\t\tORDER BY created_at DESC\n\t\tLIMIT $" + strconv.Itoa(len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	logs := make([]*models.Log, 0)

	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}

		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating logs: %w", err)
	}

	return logs, nil
}

func (r *LogRepository) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM logs WHERE created_at < $1", before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete logs: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}

func scanLog(row scanner) (*models.Log, error) {
	var (
		log     models.Log
		logType string
		postID  sql.NullInt64
		meta    []byte
	)

	err := row.Scan(
		&log.ID,
		&logType,
		&log.ObjectID,
		&log.ObjectType,
		&log.AutomationID,
		&log.UserID,
		&postID,
		&log.Title,
		&meta,
		&log.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	log.Type = models.LogType(logType)

	if postID.Valid {
		log.PostID = &postID.Int64
	}

	log.Meta = map[string]any{}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &log.Meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal meta of log %s: %w", log.ID, err)
		}
	}

	return &log, nil
}
