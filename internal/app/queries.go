package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"trip_planner/internal/domain"
	"trip_planner/internal/validation"
)

type QueryService struct {
	repo     domain.SessionRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.SessionRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) Session(ctx context.Context, id string) (domain.Session, error) {
	return s.repo.Get(ctx, id)
}

func (s *QueryService) Options() domain.OptionCatalog { return domain.Catalog() }

func (s *QueryService) Recommendations(ctx context.Context, id string) (domain.RecommendationsView, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.RecommendationsView{}, err
	}
	if sess.Preferences == nil {
		return domain.RecommendationsView{}, domain.ErrProfileRequired
	}
	if sess.Trip == nil {
		return domain.RecommendationsView{}, domain.ErrTripRequired
	}
	pois := s.pois(ctx, sess.Trip.Destination, *sess.Preferences)
	v := buildView(*sess.Preferences, *sess.Trip, pois)
	v.SessionID = sess.ID
	v.SavedPOIIDs = append([]string{}, sess.SavedPOIIDs...)
	v.SavedCount = len(sess.SavedPOIIDs)
	v.Status = sess.StatusMessage
	v.UserName = sess.Preferences.Name
	return v, nil
}

// Preview runs the generator without a session.
func (s *QueryService) Preview(ctx context.Context, p domain.UserPreferences, t domain.TripPlan) (domain.RecommendationsView, error) {
	p = normalizePreferences(p)
	t.Destination = strings.TrimSpace(t.Destination)
	if err := validation.Struct(p); err != nil {
		return domain.RecommendationsView{}, err
	}
	if err := validation.Struct(t); err != nil {
		return domain.RecommendationsView{}, err
	}
	v := buildView(p, t, s.pois(ctx, t.Destination, p))
	v.SavedPOIIDs = []string{}
	return v, nil
}

// Saved lists the saved POIs of the current generation. Without a profile
// and trip there is no generation, so the list is empty.
func (s *QueryService) Saved(ctx context.Context, id string) (domain.SavedView, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.SavedView{}, err
	}
	out := domain.SavedView{SessionID: sess.ID, POIs: []domain.POI{}}
	if sess.Preferences == nil || sess.Trip == nil {
		out.Summary = SummarizeSaved(nil)
		return out, nil
	}
	out.Destination = sess.Trip.Destination
	out.POIs = SavedPOIs(s.pois(ctx, sess.Trip.Destination, *sess.Preferences), sess.SavedPOIIDs)
	out.Summary = SummarizeSaved(out.POIs)
	return out, nil
}

func buildView(p domain.UserPreferences, t domain.TripPlan, pois []domain.POI) domain.RecommendationsView {
	return domain.RecommendationsView{
		Destination:   t.Destination,
		Season:        t.Season,
		TripLength:    t.TripLength,
		Vibes:         append([]string{}, p.Vibes...),
		POIs:          pois,
		Neighborhoods: GenerateNeighborhoods(t.Destination),
		Itinerary:     BuildItinerary(pois, t.TripLength),
	}
}

// pois serves the generated list from cache when possible. Generation is
// deterministic, so the key is a digest of its inputs.
func (s *QueryService) pois(ctx context.Context, destination string, p domain.UserPreferences) []domain.POI {
	if s.cache == nil {
		return GeneratePOIs(destination, p)
	}
	key := poisKey(destination, p)
	var cached []domain.POI
	if ok, _ := s.cache.Get(ctx, key, &cached); ok && len(cached) > 0 {
		return deepCopyPOIs(cached)
	}
	out := GeneratePOIs(destination, p)
	_ = s.cache.Set(ctx, key, deepCopyPOIs(out), int(s.cacheTTL.Seconds()))
	return out
}

func poisKey(destination string, p domain.UserPreferences) string {
	b, _ := json.Marshal(struct {
		D string                 `json:"d"`
		P domain.UserPreferences `json:"p"`
	}{destination, p})
	sum := sha1.Sum(b)
	return "pois:" + hex.EncodeToString(sum[:])
}

// copy slices so callers can't mutate a cached value
func deepCopyPOIs(in []domain.POI) []domain.POI {
	out := make([]domain.POI, len(in))
	copy(out, in)
	for i := range out {
		out[i].Tags = append([]string(nil), in[i].Tags...)
	}
	return out
}
