package recsvc_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"trip_planner/internal/adapters/recsvc"
	"trip_planner/internal/domain"
)

func TestClient_GetRecommendation_PathAndPayload(t *testing.T) {
	var path string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		w.WriteHeader(200)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "ok"})
	}))
	defer ts.Close()

	cl, err := recsvc.New(ts.URL+"/", recsvc.Options{RPS: 100}) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got, err := cl.GetRecommendation(ctx, "Ana María")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if m, ok := got.(map[string]any); !ok || m["message"] != "ok" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if path != "/recommendation/Ana%20Mar%C3%ADa" {
		t.Fatalf("unexpected path: %s", path)
	}
}

func TestClient_NoRetryByDefault(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(500)
	}))
	defer ts.Close()

	cl, _ := recsvc.New(ts.URL, recsvc.Options{RPS: 100})
	if _, err := cl.GetRecommendation(context.Background(), "ana"); err == nil {
		t.Fatalf("expected error for 500")
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected a single attempt, got %d", n)
	}
}

func TestClient_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(503)
		default:
			w.WriteHeader(200)
			_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{1, 2, 3}})
		}
	}))
	defer ts.Close()

	cl, err := recsvc.New(ts.URL, recsvc.Options{RPS: 100, Attempts: 4})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := cl.GetRecommendation(ctx, "ana")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	m, _ := got.(map[string]any)
	if items, ok := m["items"].([]any); !ok || len(items) != 3 {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_404IsNotFound(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl, _ := recsvc.New(ts.URL, recsvc.Options{RPS: 100})
	_, err := cl.GetRecommendation(context.Background(), "nobody")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected domain.ErrNotFound, got %v", err)
	}
}

func TestClient_AnyJSONValueIsAccepted(t *testing.T) {
	bodies := []string{`[{"name":"x"}]`, `"hello"`, `42`, `null`}
	var n int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		i := atomic.AddInt32(&n, 1) - 1
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(bodies[i]))
	}))
	defer ts.Close()

	cl, _ := recsvc.New(ts.URL, recsvc.Options{RPS: 100})
	ctx := context.Background()

	got, err := cl.GetRecommendation(ctx, "ana")
	if err != nil {
		t.Fatalf("array body: %v", err)
	}
	if arr, ok := got.([]any); !ok || len(arr) != 1 {
		t.Fatalf("unexpected array payload: %#v", got)
	}
	if got, err := cl.GetRecommendation(ctx, "ana"); err != nil || got != "hello" {
		t.Fatalf("string body: %#v %v", got, err)
	}
	if got, err := cl.GetRecommendation(ctx, "ana"); err != nil || got != float64(42) {
		t.Fatalf("number body: %#v %v", got, err)
	}
	if got, err := cl.GetRecommendation(ctx, "ana"); err != nil || got != nil {
		t.Fatalf("null body: %#v %v", got, err)
	}
}

func TestClient_UnparseableBodyFails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))
	defer ts.Close()

	cl, _ := recsvc.New(ts.URL, recsvc.Options{RPS: 100})
	if _, err := cl.GetRecommendation(context.Background(), "ana"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestClient_ErrorStatusCarriesBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/recommendation/json":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not Found"}`))
		case "/recommendation/forbidden":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("user not found"))
		}
	}))
	defer ts.Close()

	cl, _ := recsvc.New(ts.URL, recsvc.Options{RPS: 100})
	ctx := context.Background()

	_, err := cl.GetRecommendation(ctx, "json")
	var re *domain.RemoteError
	if !errors.As(err, &re) || re.Status != 404 || !re.Parsed {
		t.Fatalf("want parsed 404 remote error, got %#v", err)
	}
	if m, _ := re.Body.(map[string]any); m["detail"] != "Not Found" {
		t.Fatalf("unexpected body: %#v", re.Body)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("404 should unwrap to ErrNotFound")
	}

	if _, err := cl.GetRecommendation(ctx, "forbidden"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}

	_, err = cl.GetRecommendation(ctx, "plain")
	if !errors.As(err, &re) || re.Status != 400 || re.Parsed {
		t.Fatalf("want unparsed 400 remote error, got %#v", err)
	}
	if errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("a 400 must not read as not found, whatever its body says")
	}
}

func TestClient_BreakerOpensAfterFailures(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(502)
	}))
	defer ts.Close()

	cl, _ := recsvc.New(ts.URL, recsvc.Options{RPS: 100, BreakerFailures: 2, BreakerCooldown: time.Minute})
	ctx := context.Background()
	_, _ = cl.GetRecommendation(ctx, "a")
	_, _ = cl.GetRecommendation(ctx, "a")

	_, err := cl.GetRecommendation(ctx, "a")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Fatalf("open breaker must not reach the server, hits=%d", n)
	}
}

func TestClient_RequiresBase(t *testing.T) {
	if _, err := recsvc.New(" ", recsvc.Options{}); err == nil {
		t.Fatalf("expected error for empty base")
	}
}
