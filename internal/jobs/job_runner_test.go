package jobs

import (
	"context"
	"testing"
	"time"

	"rental-engine-backend/internal/config"
	"rental-engine-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockLifecycleService struct {
	mock.Mock
}

func (m *MockLifecycleService) RunSweep(ctx context.Context) (*domain.SweepSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SweepSummary), args.Error(1)
}

func (m *MockLifecycleService) RunSweepAt(ctx context.Context, today time.Time) (*domain.SweepSummary, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SweepSummary), args.Error(1)
}

func TestJobRunner_RunLifecycleSweep(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockLifecycleService)
		svc.On("RunSweep", mock.Anything).Return(&domain.SweepSummary{RemindersSent: 2, Errors: []string{"order 3: reminder email: boom"}}, nil)

		NewJobRunner(svc, &config.Config{}).RunLifecycleSweep()
		svc.AssertExpectations(t)
	})

	t.Run("Failure", func(t *testing.T) {
		svc := new(MockLifecycleService)
		svc.On("RunSweep", mock.Anything).Return(nil, assert.AnError)

		assert.NotPanics(t, NewJobRunner(svc, &config.Config{}).RunLifecycleSweep)
	})

	t.Run("PanicRecovered", func(t *testing.T) {
		svc := new(MockLifecycleService)
		svc.On("RunSweep", mock.Anything).Run(func(mock.Arguments) { panic("boom") })

		assert.NotPanics(t, NewJobRunner(svc, &config.Config{}).RunLifecycleSweep)
	})

	t.Run("SpecificDay", func(t *testing.T) {
		day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		svc := new(MockLifecycleService)
		svc.On("RunSweepAt", mock.Anything, day).Return(&domain.SweepSummary{}, nil)

		NewJobRunner(svc, &config.Config{}).RunLifecycleSweepAt(day)
		svc.AssertExpectations(t)
	})
}
