package memory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"trip_planner/internal/domain"
	"trip_planner/internal/storage/memory"
)

func TestRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	r := memory.New()

	if _, err := r.Get(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := r.Create(ctx, domain.Session{ID: "s1", SavedPOIIDs: []string{}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.Create(ctx, domain.Session{ID: "s1"}); err == nil {
		t.Fatalf("duplicate create should fail")
	}

	got, err := r.Update(ctx, "s1", func(s *domain.Session) error {
		s.Trip = &domain.TripPlan{Destination: "Lisbon", Season: domain.SeasonFall, TripLength: domain.TripShort}
		return nil
	})
	if err != nil || got.Trip == nil || got.Trip.Destination != "Lisbon" {
		t.Fatalf("update: %+v err=%v", got, err)
	}

	if err := r.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := r.Delete(ctx, "s1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestRepo_UpdateErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	r := memory.New()
	_ = r.Create(ctx, domain.Session{ID: "s1", StatusMessage: "before"})

	boom := errors.New("boom")
	_, err := r.Update(ctx, "s1", func(s *domain.Session) error {
		s.StatusMessage = "after"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	s, _ := r.Get(ctx, "s1")
	if s.StatusMessage != "before" {
		t.Fatalf("failed update leaked: %q", s.StatusMessage)
	}
}

func TestRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := memory.New()
	_ = r.Create(ctx, domain.Session{ID: "s1", SavedPOIIDs: []string{"1"},
		Preferences: &domain.UserPreferences{Name: "Ana", Vibes: []string{"Foodie"}}})

	s, _ := r.Get(ctx, "s1")
	s.SavedPOIIDs[0] = "x"
	s.Preferences.Vibes[0] = "x"

	again, _ := r.Get(ctx, "s1")
	if again.SavedPOIIDs[0] != "1" || again.Preferences.Vibes[0] != "Foodie" {
		t.Fatalf("caller mutated stored session: %+v", again)
	}
}

func TestRepo_ConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	ctx := context.Background()
	r := memory.New()
	_ = r.Create(ctx, domain.Session{ID: "s1", SavedPOIIDs: []string{}})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = r.Update(ctx, "s1", func(s *domain.Session) error {
				s.SavedPOIIDs = append(s.SavedPOIIDs, fmt.Sprint(i))
				return nil
			})
		}(i)
	}
	wg.Wait()

	s, _ := r.Get(ctx, "s1")
	if len(s.SavedPOIIDs) != 50 {
		t.Fatalf("lost updates: %d ids", len(s.SavedPOIIDs))
	}
}

func TestRepo_LogMissKeepsLatestPerUser(t *testing.T) {
	ctx := context.Background()
	r := memory.New()
	_ = r.LogMiss(ctx, "ana", 500, "first")
	_ = r.LogMiss(ctx, "ana", 404, "second")
	_ = r.LogMiss(ctx, "bo", 403, "forbidden")

	m := r.Misses()
	if len(m) != 2 {
		t.Fatalf("want 2 users, got %d", len(m))
	}
	for _, x := range m {
		if x.UserName == "ana" && (x.Status != 404 || x.Reason != "second") {
			t.Fatalf("stale miss: %+v", x)
		}
	}
}
