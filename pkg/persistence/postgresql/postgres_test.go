package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dukex/formtrigger/pkg/models"
	"github.com/dukex/formtrigger/pkg/persistence"
	"github.com/dukex/formtrigger/pkg/persistence/postgresql"
	"github.com/dukex/formtrigger/pkg/testutil"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	// Drop tables in reverse dependency order (children first, parents last)
	for _, table := range []string{"logs", "triggers", "automations", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping PostgreSQL container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("formtrigger_test"),
			postgres.WithUsername("formtrigger"),
			postgres.WithPassword("formtrigger"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx, databaseURL
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		err := db.Close()
		require.NoError(t, err)
	}()

	for _, table := range []string{"automations", "triggers", "logs", "schema_migrations"} {
		var exists bool

		err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = $1)`, table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "%s table should exist", table)
	}

	var version int

	err = db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestNewPersistence_HealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	assert.NoError(t, p.HealthCheck(ctx))
}

func TestNewPersistence_AutomationLifecycle(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	formTrigger := testutil.CreateTestTrigger(testutil.WithOptions(models.TriggerOptions{
		models.OptionPost:  "12",
		models.OptionTimes: 2,
	}))
	automation := testutil.CreateTestAutomation(formTrigger)

	require.NoError(t, p.SaveAutomation(ctx, automation))

	retrieved, err := p.AutomationByID(ctx, automation.ID)
	require.NoError(t, err)
	assert.Equal(t, automation.Title, retrieved.Title)
	require.Len(t, retrieved.Triggers, 1)
	assert.Equal(t, "12", retrieved.Triggers[0].Options.String(models.OptionPost))
	assert.Equal(t, 2, retrieved.Triggers[0].Options.Times())

	matches, err := p.TriggersByType(ctx, testutil.SubmitFormTrigger, models.AutomationStatusActive)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, automation.ID, matches[0].Automation.ID)

	automation.Status = models.AutomationStatusInactive
	require.NoError(t, p.SaveAutomation(ctx, automation))

	matches, err = p.TriggersByType(ctx, testutil.SubmitFormTrigger, models.AutomationStatusActive)
	require.NoError(t, err)
	assert.Empty(t, matches)

	match, err := p.TriggerByID(ctx, formTrigger.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AutomationStatusInactive, match.Automation.Status)

	require.NoError(t, p.DeleteAutomation(ctx, automation.ID))

	_, err = p.AutomationByID(ctx, automation.ID)
	assert.True(t, persistence.IsAutomationNotFound(err))

	_, err = p.TriggerByID(ctx, formTrigger.ID)
	assert.True(t, persistence.IsTriggerNotFound(err))
}

func TestNewPersistence_Logs(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	trigger := testutil.CreateTestTrigger()
	testutil.CreateTestAutomation(trigger)

	postID := int64(12)
	old := testutil.CreateTestLog(trigger, 7)
	old.CreatedAt = time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Millisecond)
	recent := testutil.CreateTestLog(trigger, 7)
	recent.PostID = &postID
	recent.Meta = map[string]any{"form_fields": map[string]string{"name": "Ada"}}

	require.NoError(t, p.SaveLog(ctx, old))
	require.NoError(t, p.SaveLog(ctx, recent))

	loaded, err := p.LogByID(ctx, recent.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.PostID)
	assert.Equal(t, int64(12), *loaded.PostID)
	assert.Equal(t, map[string]any{"name": "Ada"}, loaded.Meta["form_fields"])

	logs, err := p.Logs(ctx, persistence.LogFilter{ObjectType: testutil.SubmitFormTrigger, UserID: 7})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, recent.ID, logs[0].ID)

	deleted, err := p.DeleteLogsBefore(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = p.LogByID(ctx, old.ID)
	assert.True(t, persistence.IsLogNotFound(err))
}
