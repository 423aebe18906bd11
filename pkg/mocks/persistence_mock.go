package mocks

import (
	"context"
	"time"

	"github.com/dukex/formtrigger/pkg/models"
	"github.com/dukex/formtrigger/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) Automations(ctx context.Context) ([]*models.Automation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Automation), args.Error(1)
}

func (m *MockPersistence) AutomationByID(ctx context.Context, id string) (*models.Automation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Automation), args.Error(1)
}

func (m *MockPersistence) SaveAutomation(ctx context.Context, automation *models.Automation) error {
	args := m.Called(ctx, automation)

	return args.Error(0)
}

func (m *MockPersistence) DeleteAutomation(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockPersistence) TriggersByType(
	ctx context.Context,
	triggerType string,
	status models.AutomationStatus,
) ([]*models.TriggerMatch, error) {
	args := m.Called(ctx, triggerType, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.TriggerMatch), args.Error(1)
}

func (m *MockPersistence) TriggerByID(ctx context.Context, id string) (*models.TriggerMatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.TriggerMatch), args.Error(1)
}

func (m *MockPersistence) SaveLog(ctx context.Context, log *models.Log) error {
	args := m.Called(ctx, log)

	return args.Error(0)
}

func (m *MockPersistence) LogByID(ctx context.Context, id string) (*models.Log, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Log), args.Error(1)
}

func (m *MockPersistence) Logs(ctx context.Context, filter persistence.LogFilter) ([]*models.Log, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Log), args.Error(1)
}

func (m *MockPersistence) DeleteLogsBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)

	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
