package retention

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/dukex/formtrigger/pkg/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewPruner_Validation(t *testing.T) {
	tests := []struct {
		name      string
		schedule  string
		retention time.Duration
		wantErr   string
	}{
		{name: "valid", schedule: "0 3 * * *", retention: 24 * time.Hour},
		{name: "descriptor", schedule: "@daily", retention: time.Hour},
		{name: "missing schedule", schedule: "", retention: time.Hour, wantErr: "retention schedule is required"},
		{name: "invalid schedule", schedule: "every day", retention: time.Hour, wantErr: "invalid retention schedule"},
		{name: "zero retention", schedule: "@daily", retention: 0, wantErr: "log retention must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pruner, err := NewPruner(&mocks.MockPersistence{}, tt.schedule, tt.retention, slog.Default())

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, pruner)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.schedule, pruner.Schedule)
		})
	}
}

func TestPrune_DeletesLogsOlderThanRetention(t *testing.T) {
	store := &mocks.MockPersistence{}

	pruner, err := NewPruner(store, "@daily", 30*24*time.Hour, slog.Default())
	require.NoError(t, err)

	now := time.Date(2025, 4, 1, 3, 0, 0, 0, time.UTC)
	pruner.now = func() time.Time { return now }

	store.On("DeleteLogsBefore", mock.Anything, time.Date(2025, 3, 2, 3, 0, 0, 0, time.UTC)).
		Return(int64(4), nil).Once()

	deleted, err := pruner.Prune(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
	store.AssertExpectations(t)
}

func TestPrune_WrapsStoreErrors(t *testing.T) {
	store := &mocks.MockPersistence{}
	failure := errors.New("database unavailable")

	pruner, err := NewPruner(store, "@daily", time.Hour, slog.Default())
	require.NoError(t, err)

	store.On("DeleteLogsBefore", mock.Anything, mock.AnythingOfType("time.Time")).Return(int64(0), failure).Once()

	_, err = pruner.Prune(context.Background())
	require.ErrorIs(t, err, failure)
}

func TestStartStop(t *testing.T) {
	store := &mocks.MockPersistence{}

	pruner, err := NewPruner(store, "@every 1s", time.Hour, slog.Default())
	require.NoError(t, err)

	pruned := make(chan struct{}, 1)

	store.On("DeleteLogsBefore", mock.Anything, mock.AnythingOfType("time.Time")).
		Run(func(mock.Arguments) {
			select {
			case pruned <- struct{}{}:
			default:
			}
		}).
		Return(int64(0), nil)

	require.NoError(t, pruner.Start(context.Background()))

	select {
	case <-pruned:
	case <-time.After(5 * time.Second):
		t.Fatal("retention job did not run")
	}

	require.NoError(t, pruner.Stop(context.Background()))
}
