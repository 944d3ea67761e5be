package app

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"trip_planner/internal/domain"
)

/********** alias registries (single source of truth) **********/

// The recommendation service has no published schema; these are the shapes
// it has been seen to return.
var recommendationAliases = map[string][]string{
	"message": {"message", "msg", "recommendation", "summary", "data.message", "result.message"},
	"items":   {"recommendations", "items", "results", "data.recommendations", "data.items"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		if s := strings.TrimSpace(lookupStr(m, p)); s != "" {
			return &s
		}
	}
	return nil
}

// firstSliceLen: length of the first array found under the alias set.
func firstSliceLen(m map[string]any, aliases map[string][]string, key string) int {
	for _, p := range aliases[key] {
		if raw, ok := lookupAny(m, p).([]any); ok {
			return len(raw)
		}
	}
	return 0
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

/********** recommendation mapper **********/

// mapRecommendation summarizes any JSON value. Alias lookups only apply to
// objects; a top-level array counts as the item list.
func mapRecommendation(userName string, p any) domain.RemoteRecommendation {
	raw, err := json.Marshal(p)
	if err != nil {
		log.Error().Err(err).
			Str("context", "mapRecommendation").
			Msg("failed to marshal recommendation payload to JSON")
	}
	rec := domain.RemoteRecommendation{UserName: userName, RawJSON: raw}
	switch v := p.(type) {
	case map[string]any:
		rec.Message = firstNonEmptyAlias(v, recommendationAliases, "message")
		rec.ItemCount = firstSliceLen(v, recommendationAliases, "items")
	case []any:
		rec.ItemCount = len(v)
	case string:
		if s := strings.TrimSpace(v); s != "" {
			rec.Message = &s
		}
	}
	return rec
}
