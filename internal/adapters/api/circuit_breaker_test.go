package api_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/shopfloor-go/internal/adapters/api"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

var errDown = errors.New("connection refused")

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	cb := api.NewCircuitBreaker(2, time.Minute, nil, clock)

	assert.ErrorIs(t, cb.Call(func() error { return errDown }), errDown)
	assert.Equal(t, api.CircuitClosed, cb.State())
	assert.ErrorIs(t, cb.Call(func() error { return errDown }), errDown)
	assert.Equal(t, api.CircuitOpen, cb.State())

	called := false
	err := cb.Call(func() error { called = true; return nil })

	assert.ErrorIs(t, err, api.ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	cb := api.NewCircuitBreaker(1, time.Minute, nil, clock)
	_ = cb.Call(func() error { return errDown })
	assert.Equal(t, api.CircuitOpen, cb.State())

	clock.Advance(time.Minute)
	_ = cb.Call(func() error { return errDown })
	assert.Equal(t, api.CircuitOpen, cb.State())

	clock.Advance(time.Minute)
	assert.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, api.CircuitClosed, cb.State())
	assert.Zero(t, cb.FailureCount())
}

func TestCircuitBreaker_IgnoresNonTrippingErrors(t *testing.T) {
	rejected := errors.New("422")
	cb := api.NewCircuitBreaker(1, time.Minute, func(err error) bool { return errors.Is(err, errDown) }, nil)

	assert.ErrorIs(t, cb.Call(func() error { return rejected }), rejected)
	assert.Equal(t, api.CircuitClosed, cb.State())
	assert.Zero(t, cb.FailureCount())
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := api.NewCircuitBreaker(1, time.Hour, nil, nil)
	_ = cb.Call(func() error { return errDown })
	assert.Equal(t, "open", cb.State().String())

	cb.Reset()

	assert.Equal(t, api.CircuitClosed, cb.State())
}
