package transport

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/time/rate"
)

func countingTransport(calls *int, body string, err error) Transport {
	return Func(func(context.Context, string, string, http.Header, url.Values) (string, error) {
		*calls++
		return body, err
	})
}

func TestRateLimited(t *testing.T) {
	t.Run("PassesThrough", func(t *testing.T) {
		calls := 0
		tr := RateLimited(countingTransport(&calls, "ok", nil), rate.NewLimiter(rate.Inf, 1))

		body, err := tr.Request(context.Background(), "https://x/a", http.MethodPost, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "ok", body)
		assert.Equal(t, 1, calls)
	})

	t.Run("WaitFailureIsNetworkError", func(t *testing.T) {
		calls := 0
		limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
		require.True(t, limiter.Allow()) // drain the only token

		tr := RateLimited(countingTransport(&calls, "ok", nil), limiter)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := tr.Request(ctx, "https://x/a", http.MethodPost, nil, nil)
		require.Error(t, err)

		var ne *NetworkError
		require.ErrorAs(t, err, &ne)
		assert.Equal(t, "rate limit", ne.Op)
		assert.Equal(t, 0, calls)
	})
}

func TestCircuitBreaker(t *testing.T) {
	t.Run("OpensAfterNetworkFailures", func(t *testing.T) {
		calls := 0
		netErr := &NetworkError{Op: "do request", Err: errors.New("connection refused")}
		br := CircuitBreaker(countingTransport(&calls, "", netErr), "acquiring", BreakerConfig{
			MaxFailures: 3,
			Timeout:     time.Minute,
		})

		for i := 0; i < 3; i++ {
			_, err := br.Request(context.Background(), "https://x/a", http.MethodPost, nil, nil)
			require.Error(t, err)
			assert.Same(t, netErr, err)
		}
		assert.Equal(t, 3, calls)
		assert.Equal(t, gobreaker.StateOpen, br.State())

		_, err := br.Request(context.Background(), "https://x/a", http.MethodPost, nil, nil)
		require.Error(t, err)
		assert.True(t, IsNetworkError(err))
		assert.ErrorIs(t, err, ErrCircuitOpen)
		assert.ErrorIs(t, err, gobreaker.ErrOpenState)
		assert.Equal(t, 3, calls, "transport must not be called while open")
	})

	t.Run("OtherErrorsDoNotTrip", func(t *testing.T) {
		calls := 0
		br := CircuitBreaker(countingTransport(&calls, "", errors.New("custom")), "acquiring", BreakerConfig{MaxFailures: 1})

		for i := 0; i < 3; i++ {
			_, err := br.Request(context.Background(), "https://x/a", http.MethodPost, nil, nil)
			require.Error(t, err)
		}
		assert.Equal(t, 3, calls)
		assert.Equal(t, gobreaker.StateClosed, br.State())
	})

	t.Run("CallerCancellationDoesNotTrip", func(t *testing.T) {
		for name, cause := range map[string]error{
			"Canceled":         context.Canceled,
			"DeadlineExceeded": context.DeadlineExceeded,
		} {
			t.Run(name, func(t *testing.T) {
				calls := 0
				netErr := &NetworkError{Op: "do request", Err: cause}
				br := CircuitBreaker(countingTransport(&calls, "", netErr), "acquiring", BreakerConfig{MaxFailures: 2})

				for i := 0; i < 5; i++ {
					_, err := br.Request(context.Background(), "https://x/a", http.MethodPost, nil, nil)
					require.Error(t, err)
					assert.ErrorIs(t, err, cause)
					assert.NotErrorIs(t, err, ErrCircuitOpen)
				}
				assert.Equal(t, 5, calls)
				assert.Equal(t, gobreaker.StateClosed, br.State())
			})
		}
	})

	t.Run("SuccessKeepsClosed", func(t *testing.T) {
		calls := 0
		br := CircuitBreaker(countingTransport(&calls, `{"errorCode":"0"}`, nil), "acquiring", BreakerConfig{})

		body, err := br.Request(context.Background(), "https://x/a", http.MethodPost, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, `{"errorCode":"0"}`, body)
		assert.Equal(t, uint32(1), br.Counts().TotalSuccesses)
	})
}

func TestTraced(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	t.Run("Success", func(t *testing.T) {
		calls := 0
		tr := Traced(countingTransport(&calls, `{"errorCode":"0"}`, nil))

		_, err := tr.Request(context.Background(), "https://x/register.do", http.MethodPost, nil, url.Values{"a": {"1"}})
		require.NoError(t, err)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "acquiring.transport.request", spans[0].Name())
		assert.Equal(t, codes.Ok, spans[0].Status().Code)
	})

	t.Run("Failure", func(t *testing.T) {
		calls := 0
		tr := Traced(countingTransport(&calls, "", &NetworkError{Op: "do request", Err: errors.New("timeout")}))

		_, err := tr.Request(context.Background(), "https://x/register.do", http.MethodPost, nil, nil)
		require.Error(t, err)
		assert.True(t, IsNetworkError(err))

		spans := recorder.Ended()
		require.Len(t, spans, 2)
		assert.Equal(t, codes.Error, spans[1].Status().Code)
	})
}
