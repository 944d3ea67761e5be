package app_test

import (
	"slices"
	"testing"

	"trip_planner/internal/app"
	"trip_planner/internal/domain"
)

func TestToggleSaved_RoundTrip(t *testing.T) {
	start := []string{"2", "5"}
	for _, id := range []string{"1", "4", "9"} {
		once := app.ToggleSaved(start, id)
		if !slices.Contains(once, id) {
			t.Fatalf("toggle %s: expected id to be added, got %v", id, once)
		}
		twice := app.ToggleSaved(once, id)
		if !slices.Equal(twice, start) {
			t.Fatalf("toggle %s twice: want %v got %v", id, start, twice)
		}
	}
}

func TestToggleSaved_RemovesPresentID(t *testing.T) {
	start := []string{"1", "3", "5"}
	got := app.ToggleSaved(start, "3")
	if !slices.Equal(got, []string{"1", "5"}) {
		t.Fatalf("unexpected: %v", got)
	}
	if !slices.Equal(start, []string{"1", "3", "5"}) {
		t.Fatalf("input mutated: %v", start)
	}
	back := app.ToggleSaved(got, "3")
	slices.Sort(back)
	if !slices.Equal(back, start) {
		t.Fatalf("as a set the round trip should restore %v, got %v", start, back)
	}
}

func TestSavedPOIs_GenerationOrder(t *testing.T) {
	all := app.GeneratePOIs("Lima", prefs(domain.BudgetModerate, []string{"Coffee"}, []string{"Museums"}))
	got := app.SavedPOIs(all, []string{"5", "1", "42"})
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "5" {
		t.Fatalf("unexpected saved pois: %+v", got)
	}
}

func TestSummarizeSaved(t *testing.T) {
	all := app.GeneratePOIs("Lima", prefs(domain.BudgetModerate, []string{"Coffee", "Fine Dining"}, []string{"Museums"}))
	// coffee "30-45 min"=30, museum "2-3 hours"=2, dining "2 hours"=2, square "1 hour"=1, park "1-2 hours"=1
	got := app.SummarizeSaved(all)
	want := domain.SavedSummary{Places: 5, EstimatedHours: 36, Categories: 5}
	if got != want {
		t.Fatalf("want %+v got %+v", want, got)
	}

	if empty := app.SummarizeSaved(nil); empty != (domain.SavedSummary{}) {
		t.Fatalf("empty summary should be zero, got %+v", empty)
	}

	odd := []domain.POI{{Type: "X", EstimatedTime: "a while"}, {Type: "X", EstimatedTime: "3 hours"}}
	if got := app.SummarizeSaved(odd); got.EstimatedHours != 4 || got.Categories != 1 {
		t.Fatalf("unexpected summary for odd input: %+v", got)
	}

	for est, want := range map[string]int{
		"30-45 min":  30,
		" 2-3 hours": 2,
		"0 hours":    1,
		"":           1,
		"-5":         1,
		"4h":         4,
	} {
		got := app.SummarizeSaved([]domain.POI{{Type: "X", EstimatedTime: est}})
		if got.EstimatedHours != want {
			t.Fatalf("%q: want %d hours, got %d", est, want, got.EstimatedHours)
		}
	}
}
