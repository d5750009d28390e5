package common_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/andrescamacho/shopfloor-go/internal/application/common"
	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

type ReorderThingsCommand struct{}

func TestRequestName(t *testing.T) {
	assert.Equal(t, "ReorderThingsCommand", common.RequestName(&ReorderThingsCommand{}))
	assert.Equal(t, "UnknownRequest", common.RequestName(nil))
}

func TestActorFromContext(t *testing.T) {
	assert.Equal(t, shared.SystemActor, common.ActorFromContext(context.Background()))

	ctx := common.WithActor(context.Background(), shared.MustNewActorID("alice"))
	assert.Equal(t, "alice", common.ActorFromContext(ctx).String())
}

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	mw := common.LoggingMiddleware(zap.New(core))

	var handlerLogger *zap.Logger
	_, err := mw(context.Background(), &ReorderThingsCommand{}, func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		handlerLogger = common.LoggerFromContext(ctx)
		return nil, errors.New("boom")
	})

	require.Error(t, err)
	require.NotNil(t, handlerLogger)
	entries := logs.FilterMessage("request failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "ReorderThingsCommand", entries[0].ContextMap()["request"])
}

func TestLoggingMiddleware_KeepsTransportFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	base := zap.New(core)
	ctx := common.WithLogger(context.Background(), base.With(zap.String("request_id", "req-42")))
	mw := common.LoggingMiddleware(zap.NewNop())

	_, err := mw(ctx, &ReorderThingsCommand{}, func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		common.LoggerFromContext(ctx).Info("inside handler")
		return nil, nil
	})

	require.NoError(t, err)
	entries := logs.FilterMessage("inside handler").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "ReorderThingsCommand", entries[0].ContextMap()["request"])
}
