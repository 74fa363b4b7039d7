package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchmove/branch-service/internal/http/ratelimit"
)

func fastConfig() ratelimit.Config {
	return ratelimit.Config{
		RequestsPerSecond: 0,
		MaxRetries:        2,
		InitialBackoffMs:  1,
		MaxBackoffMs:      5,
	}
}

func TestPostJSONRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ping", body["msg"])

		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"reply": "pong"})
	}))
	defer srv.Close()

	client := NewClient(fastConfig(), time.Second)
	var out map[string]string
	err := client.PostJSON(context.Background(), srv.URL, map[string]string{"msg": "ping"},
		http.Header{"X-Api-Key": []string{"secret"}}, &out)

	require.NoError(t, err)
	assert.Equal(t, "pong", out["reply"])
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoStopsOnNonRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()

	client := NewClient(fastConfig(), time.Second)
	_, err := client.Do(context.Background(), http.MethodPost, srv.URL, []byte(`{}`), nil)

	var retryErr *ratelimit.FetchRetryError
	require.True(t, errors.As(err, &retryErr))
	assert.Equal(t, 1, retryErr.Attempts)
	assert.Equal(t, http.StatusUnauthorized, retryErr.LastStatus)
	assert.Contains(t, retryErr.Error(), "bad key")
	assert.Equal(t, int32(1), calls.Load())
}

func TestDoGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(fastConfig(), time.Second)
	_, err := client.Do(context.Background(), http.MethodGet, srv.URL, nil, nil)

	var retryErr *ratelimit.FetchRetryError
	require.ErrorAs(t, err, &retryErr)
	assert.Equal(t, 3, retryErr.Attempts)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(fastConfig(), 5*time.Second)
	start := time.Now()
	_, err := client.Do(ctx, http.MethodGet, srv.URL, nil, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestBackoff(t *testing.T) {
	cfg := ratelimit.Config{InitialBackoffMs: 100, MaxBackoffMs: 1000}

	d := ratelimit.CalculateBackoff(0, cfg)
	assert.GreaterOrEqual(t, d, 100*time.Millisecond)
	assert.LessOrEqual(t, d, 125*time.Millisecond)

	capped := ratelimit.CalculateBackoff(10, cfg)
	assert.LessOrEqual(t, capped, 1250*time.Millisecond)

	assert.Equal(t, 3*time.Second, ratelimit.CalculateRateLimitBackoff(0, cfg, "3"))
	assert.True(t, ratelimit.IsRetryableStatus(429))
	assert.True(t, ratelimit.IsRetryableStatus(503))
	assert.False(t, ratelimit.IsRetryableStatus(404))
}
