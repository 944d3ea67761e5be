package app

import (
	"slices"
	"strconv"
	"strings"
	"unicode"

	"trip_planner/internal/domain"
)

// ToggleSaved removes id when present and appends it otherwise. The input
// slice is never modified.
func ToggleSaved(ids []string, id string) []string {
	if i := slices.Index(ids, id); i >= 0 {
		out := make([]string, 0, len(ids)-1)
		out = append(out, ids[:i]...)
		return append(out, ids[i+1:]...)
	}
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids...)
	return append(out, id)
}

// SavedPOIs keeps the generation order of all, not the order things were saved.
func SavedPOIs(all []domain.POI, saved []string) []domain.POI {
	out := make([]domain.POI, 0, len(saved))
	for _, p := range all {
		if slices.Contains(saved, p.ID) {
			out = append(out, p)
		}
	}
	return out
}

func SummarizeSaved(pois []domain.POI) domain.SavedSummary {
	types := make(map[string]struct{}, len(pois))
	hours := 0
	for _, p := range pois {
		hours += leadingHours(p.EstimatedTime)
		types[p.Type] = struct{}{}
	}
	return domain.SavedSummary{Places: len(pois), EstimatedHours: hours, Categories: len(types)}
}

// leadingHours takes the integer that starts the text before the first '-':
// "2-3 hours" is 2, "1 hour" is 1, "30-45 min" is 30. Zero or no number
// counts as one hour.
func leadingHours(est string) int {
	head, _, _ := strings.Cut(est, "-")
	head = strings.TrimLeftFunc(head, unicode.IsSpace)
	head = strings.TrimPrefix(head, "+")
	end := strings.IndexFunc(head, func(r rune) bool { return r < '0' || r > '9' })
	if end < 0 {
		end = len(head)
	}
	n, err := strconv.Atoi(head[:end])
	if err != nil || n <= 0 {
		return 1
	}
	return n
}
