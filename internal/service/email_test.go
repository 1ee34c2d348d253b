package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRetryingEmailService_Send(t *testing.T) {
	ctx := context.Background()
	noWait := func(int) time.Duration { return 0 }

	t.Run("SucceedsAfterRetry", func(t *testing.T) {
		inner := new(MockEmailService)
		inner.On("Send", ctx, "a@test.com", "Hi", "<p>hi</p>").Return(assert.AnError).Once()
		inner.On("Send", ctx, "a@test.com", "Hi", "<p>hi</p>").Return(nil).Once()

		svc := &retryingEmailService{inner: inner, maxRetries: 2, backoff: noWait}
		assert.NoError(t, svc.Send(ctx, "a@test.com", "Hi", "<p>hi</p>"))
		inner.AssertNumberOfCalls(t, "Send", 2)
	})

	t.Run("GivesUp", func(t *testing.T) {
		inner := new(MockEmailService)
		inner.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

		svc := &retryingEmailService{inner: inner, maxRetries: 2, backoff: noWait}
		err := svc.Send(ctx, "a@test.com", "Hi", "")
		assert.ErrorIs(t, err, assert.AnError)
		inner.AssertNumberOfCalls(t, "Send", 3)
	})

	t.Run("StopsOnCancel", func(t *testing.T) {
		inner := new(MockEmailService)
		inner.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		svc := &retryingEmailService{inner: inner, maxRetries: 5, backoff: func(int) time.Duration { return time.Hour }}
		err := svc.Send(cctx, "a@test.com", "Hi", "")
		assert.ErrorIs(t, err, context.Canceled)
		inner.AssertNumberOfCalls(t, "Send", 1)
	})

	t.Run("LogOnlyWithoutKey", func(t *testing.T) {
		assert.NoError(t, NewEmailService("", "no-reply@test.com", "Desk").Send(ctx, "a@test.com", "Hi", ""))
	})
}
