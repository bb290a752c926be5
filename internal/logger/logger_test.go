package logger

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit(t *testing.T) {
	originalLog := log
	defer func() { log = originalLog }()

	t.Run("Production", func(t *testing.T) {
		Init("production")
		assert.NotNil(t, log)
		assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("Development", func(t *testing.T) {
		Init("development")
		assert.NotNil(t, log)
		assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
	})
}

func TestSetDebug(t *testing.T) {
	originalLog := log
	defer func() { log = originalLog }()

	SetDebug("production")
	assert.True(t, L().Core().Enabled(zapcore.DebugLevel))
}

func TestL(t *testing.T) {
	originalLog := log
	defer func() { log = originalLog }()

	// Force nil to test lazy initialization
	log = nil
	os.Setenv("APP_ENV", "test")

	l := L()
	assert.NotNil(t, l)
	assert.NotNil(t, log)
}

func TestL_ConcurrentFirstUse(t *testing.T) {
	originalLog := log
	defer func() { log = originalLog }()
	log = nil

	var wg sync.WaitGroup
	got := make([]*zap.Logger, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = L()
		}(i)
	}
	wg.Wait()

	for _, l := range got {
		assert.Same(t, got[0], l)
	}
}

func TestReplace(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	restore := Replace(zap.New(core))

	L().Info("captured")
	restore()
	L().Info("not captured")

	assert.Equal(t, 1, observed.Len())
}

func TestContextFunctions(t *testing.T) {
	ctx := context.Background()
	reqID := "test-request-id-123"

	t.Run("WithRequestID", func(t *testing.T) {
		newCtx := WithRequestID(ctx, reqID)
		assert.NotEqual(t, ctx, newCtx)

		val := newCtx.Value(requestIDKey)
		assert.Equal(t, reqID, val)
	})

	t.Run("RequestIDFrom", func(t *testing.T) {
		ctxWithID := WithRequestID(ctx, reqID)
		assert.Equal(t, reqID, RequestIDFrom(ctxWithID))

		assert.Equal(t, "", RequestIDFrom(ctx))
	})
}

func TestFromCtx(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	restore := Replace(zap.New(core))
	defer restore()

	t.Run("WithRequestID", func(t *testing.T) {
		reqID := "req-abc-123"
		ctx := WithRequestID(context.Background(), reqID)

		FromCtx(ctx).Info("test message with id")

		logs := observed.TakeAll()
		assert.Len(t, logs, 1)
		assert.Equal(t, "test message with id", logs[0].Message)
		assert.Equal(t, reqID, logs[0].ContextMap()["request_id"])
	})

	t.Run("WithoutRequestID", func(t *testing.T) {
		FromCtx(context.Background()).Info("test message without id")

		logs := observed.TakeAll()
		assert.Len(t, logs, 1)
		_, ok := logs[0].ContextMap()["request_id"]
		assert.False(t, ok)
	})
}

func TestWith(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	With(WithRequestID(context.Background(), "rid-1"), base).Info("hello")

	logs := observed.TakeAll()
	assert.Len(t, logs, 1)
	assert.Equal(t, "rid-1", logs[0].ContextMap()["request_id"])
}

func TestSync(t *testing.T) {
	assert.NotPanics(t, func() {
		Sync()
	})
}
