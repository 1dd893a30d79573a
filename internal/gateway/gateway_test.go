package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/farmcrate-storefront/internal/config"
	"github.com/your-org/farmcrate-storefront/internal/identity"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestGateway(t *testing.T, baseURL string) (*Gateway, *identity.Resolver) {
	t.Helper()

	cfg := &config.Config{
		Client: config.ClientConfig{
			BaseURL:        baseURL,
			RequestTimeout: 5 * time.Second,
			InitWait:       200 * time.Millisecond,
		},
	}
	resolver := identity.NewResolver(identity.NewMemoryStorage(), testLogger())
	return New(cfg, resolver, testLogger()), resolver
}

func TestGetUnwrapsEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"ok","data":{"name":"Seasonal Harvest Box"}}`))
	}))
	defer server.Close()

	gw, _ := newTestGateway(t, server.URL)

	var out struct {
		Name string `json:"name"`
	}
	err := gw.Get(context.Background(), "/products/box-seasonal", nil, false, &out)
	require.NoError(t, err)
	assert.Equal(t, "Seasonal Harvest Box", out.Name)
}

func TestConcurrentIdenticalGetsShareOneRoundTrip(t *testing.T) {
	var hits atomic.Int64
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Write([]byte(`{"data":{"ok":true}}`))
	}))
	defer server.Close()

	gw, _ := newTestGateway(t, server.URL)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = gw.Get(context.Background(), "/products", nil, false, nil)
		}(i)
	}

	// Let every caller reach the flight before the server answers.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int64(1), hits.Load(), "identical concurrent reads must collapse into one request")
}

func TestSequentialGetsAreNotCached(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	gw, _ := newTestGateway(t, server.URL)

	require.NoError(t, gw.Get(context.Background(), "/products", nil, false, nil))
	require.NoError(t, gw.Get(context.Background(), "/products", nil, false, nil))
	assert.Equal(t, int64(2), hits.Load(), "deduplication applies to in-flight requests only")
}

func TestGetsWithDifferentQueriesAreSeparateFlights(t *testing.T) {
	var hits atomic.Int64
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	gw, _ := newTestGateway(t, server.URL)

	var wg sync.WaitGroup
	for _, session := range []string{"sess_a", "sess_b"} {
		wg.Add(1)
		go func(session string) {
			defer wg.Done()
			query := url.Values{"session_id": {session}}
			_ = gw.Get(context.Background(), "/cart", query, false, nil)
		}(session)
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(2), hits.Load())
}

func TestWritesAreNeverDeduplicated(t *testing.T) {
	var hits atomic.Int64
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	gw, _ := newTestGateway(t, server.URL)

	const callers = 3
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = gw.Post(context.Background(), "/cart/add", map[string]int{"quantity": 1}, false, nil)
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(callers), hits.Load(), "every mutation must reach the server")
}

func TestErrorNormalization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/unauthorized":
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"authentication required"}`))
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		case "/conflict":
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error":"insufficient stock for delivery day"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	gw, _ := newTestGateway(t, server.URL)
	ctx := context.Background()

	t.Run("401 is auth required", func(t *testing.T) {
		err := gw.Get(ctx, "/unauthorized", nil, false, nil)
		require.Error(t, err)
		assert.True(t, IsAuthRequired(err))
	})

	t.Run("403 is auth required", func(t *testing.T) {
		err := gw.Get(ctx, "/forbidden", nil, false, nil)
		assert.True(t, IsAuthRequired(err))
	})

	t.Run("other statuses are api errors with the server message", func(t *testing.T) {
		err := gw.Get(ctx, "/conflict", nil, false, nil)
		apiErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, KindAPI, apiErr.Kind)
		assert.Equal(t, http.StatusConflict, apiErr.Status)
		assert.Equal(t, "insufficient stock for delivery day", apiErr.Message)
	})

	t.Run("transport failure is a network error", func(t *testing.T) {
		down, _ := newTestGateway(t, "http://127.0.0.1:1")
		err := down.Get(ctx, "/products", nil, false, nil)
		assert.True(t, IsNetwork(err))
	})
}

func TestProtectedRequestWaitsForIdentity(t *testing.T) {
	var gotAuth atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	gw, resolver := newTestGateway(t, server.URL)

	done := make(chan error, 1)
	go func() {
		done <- gw.Get(context.Background(), "/cart", nil, true, nil)
	}()

	// The request must still be parked on the identity resolver.
	select {
	case <-done:
		t.Fatal("protected request dispatched before identity initialization")
	case <-time.After(50 * time.Millisecond):
	}

	resolver.SetAuthToken("token-abc")
	require.NoError(t, <-done)
	assert.Equal(t, "Bearer token-abc", gotAuth.Load())
}

func TestProtectedRequestProceedsAfterInitWaitCeiling(t *testing.T) {
	var gotAuth atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	gw, _ := newTestGateway(t, server.URL)

	start := time.Now()
	err := gw.Get(context.Background(), "/cart", nil, true, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
	assert.Equal(t, "", gotAuth.Load(), "timed-out wait dispatches without a credential")
}

func TestPublicRequestSkipsIdentityWait(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	gw, _ := newTestGateway(t, server.URL)

	start := time.Now()
	require.NoError(t, gw.Get(context.Background(), "/products", nil, false, nil))
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestCancelledContextDuringIdentityWait(t *testing.T) {
	gw, _ := newTestGateway(t, "http://localhost:0")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := gw.Get(ctx, "/cart", nil, true, nil)
	assert.True(t, IsNetwork(err))
}
