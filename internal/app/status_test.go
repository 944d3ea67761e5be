package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"trip_planner/internal/app"
	"trip_planner/internal/domain"
)

type fakeClient struct {
	calls   int32
	payload any
	err     error
	block   chan struct{}
}

func (f *fakeClient) GetRecommendation(ctx context.Context, userName string) (any, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.payload, f.err
}

func TestStatus_LabelSuccessIsCached(t *testing.T) {
	cl := &fakeClient{payload: map[string]any{"message": "hi", "recommendations": []any{1, 2}}}
	cache := &fakeCache{}
	svc := app.NewStatusService(cl, newFakeRepo(), cache, time.Minute, time.Second, 4)
	ctx := context.Background()

	if got := svc.Label(ctx, "Ana"); got != "Loaded Recommendations for Ana!" {
		t.Fatalf("unexpected label: %q", got)
	}
	if got := svc.Label(ctx, "Ana"); got != app.StatusLoaded("Ana") {
		t.Fatalf("unexpected cached label: %q", got)
	}
	if n := atomic.LoadInt32(&cl.calls); n != 1 {
		t.Fatalf("second label should come from cache, calls=%d", n)
	}
}

func TestStatus_FailureIsNotCachedAndMissLogged(t *testing.T) {
	repo := newFakeRepo()
	cl := &fakeClient{err: fmt.Errorf("recsvc: %w", domain.ErrNotFound)}
	cache := &fakeCache{}
	svc := app.NewStatusService(cl, repo, cache, time.Minute, time.Second, 4)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if got := svc.Label(ctx, "Ghost"); got != app.StatusFailed {
			t.Fatalf("want failure label, got %q", got)
		}
	}
	if n := atomic.LoadInt32(&cl.calls); n != 2 {
		t.Fatalf("failures must not be cached, calls=%d", n)
	}
	if len(repo.misses) != 2 || repo.misses[0].status != 404 || repo.misses[0].user != "Ghost" {
		t.Fatalf("unexpected misses: %+v", repo.misses)
	}

	cl.err = errors.New("remote 503")
	_ = svc.Label(ctx, "Ghost")
	if len(repo.misses) != 2 {
		t.Fatalf("transient errors should not be logged as misses: %+v", repo.misses)
	}
}

func TestStatus_NonObjectPayloadIsLoaded(t *testing.T) {
	for _, p := range []any{[]any{map[string]any{"name": "x"}}, "hello", float64(3), nil} {
		svc := app.NewStatusService(&fakeClient{payload: p}, newFakeRepo(), nil, time.Minute, time.Second, 4)
		if got := svc.Label(context.Background(), "Ana"); got != app.StatusLoaded("Ana") {
			t.Fatalf("payload %#v: unexpected label %q", p, got)
		}
	}
}

func TestStatus_ErrorStatusWithJSONBodyIsLoaded(t *testing.T) {
	repo := newFakeRepo()
	cl := &fakeClient{err: &domain.RemoteError{Status: 404, Body: map[string]any{"detail": "Not Found"}, Parsed: true}}
	cache := &fakeCache{}
	svc := app.NewStatusService(cl, repo, cache, time.Minute, time.Second, 4)

	if got := svc.Label(context.Background(), "Ana"); got != "Loaded Recommendations for Ana!" {
		t.Fatalf("unexpected label: %q", got)
	}
	if len(repo.misses) != 1 || repo.misses[0].status != 404 {
		t.Fatalf("404 should still be recorded as a miss: %+v", repo.misses)
	}
	if cache.sets != 0 {
		t.Fatalf("error replies must not be cached, sets=%d", cache.sets)
	}

	cl.err = &domain.RemoteError{Status: 502}
	if got := svc.Label(context.Background(), "Ana"); got != app.StatusFailed {
		t.Fatalf("unparseable error body should fail, got %q", got)
	}
}

func TestStatus_MissesClassifiedByStatusOnly(t *testing.T) {
	repo := newFakeRepo()
	cl := &fakeClient{}
	svc := app.NewStatusService(cl, repo, nil, time.Minute, time.Second, 4)
	ctx := context.Background()

	// the message text must not drive classification
	cl.err = &domain.RemoteError{Status: 400}
	_ = svc.Label(ctx, "a")
	cl.err = errors.New("user not found 403 forbidden")
	_ = svc.Label(ctx, "b")
	if len(repo.misses) != 0 {
		t.Fatalf("unexpected misses: %+v", repo.misses)
	}

	cl.err = &domain.RemoteError{Status: 403}
	_ = svc.Label(ctx, "c")
	cl.err = &domain.RemoteError{Status: 401}
	_ = svc.Label(ctx, "d")
	if len(repo.misses) != 2 || repo.misses[0].status != 403 || repo.misses[1].status != 401 {
		t.Fatalf("unexpected misses: %+v", repo.misses)
	}
}

func TestStatus_RefreshAsyncUpdatesSession(t *testing.T) {
	repo := newFakeRepo()
	id := seedSession(t, repo, nil, nil)
	svc := app.NewStatusService(&fakeClient{payload: map[string]any{}}, repo, nil, time.Minute, time.Second, 4)

	if !svc.RefreshAsync(id, "Ana") {
		t.Fatalf("refresh should start")
	}
	svc.Wait()

	s, _ := repo.Get(context.Background(), id)
	if s.StatusMessage != "Loaded Recommendations for Ana!" {
		t.Fatalf("unexpected status: %q", s.StatusMessage)
	}
}

func TestStatus_RefreshAsyncSkipsWhenSaturated(t *testing.T) {
	repo := newFakeRepo()
	id := seedSession(t, repo, nil, nil)
	cl := &fakeClient{payload: map[string]any{}, block: make(chan struct{})}
	svc := app.NewStatusService(cl, repo, nil, time.Minute, 5*time.Second, 1)

	if !svc.RefreshAsync(id, "Ana") {
		t.Fatalf("first refresh should start")
	}
	if svc.RefreshAsync(id, "Ana") {
		t.Fatalf("second refresh should be skipped while the first is in flight")
	}
	close(cl.block)
	svc.Wait()
}

func TestStatus_PrefetchReportsFailure(t *testing.T) {
	svc := app.NewStatusService(&fakeClient{err: errors.New("remote 500")}, newFakeRepo(), &fakeCache{}, time.Minute, time.Second, 1)
	label, err := svc.Prefetch(context.Background(), "Ana")
	if err == nil || label != app.StatusFailed {
		t.Fatalf("want failure, got %q %v", label, err)
	}
}
