package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"trip_planner/internal/domain"
)

const StatusFailed = "Failed to load recommendations."

func StatusLoaded(userName string) string {
	return "Loaded Recommendations for " + userName + "!"
}

// StatusService turns the recommendation service reply into the display
// label shown next to a session's recommendations. Nothing else reads the
// reply; POI generation never waits on it.
type StatusService struct {
	client  domain.RecommendationClient
	repo    domain.SessionRepository
	cache   domain.Cache
	ttl     time.Duration
	timeout time.Duration
	sem     *semaphore.Weighted
	wg      sync.WaitGroup
}

func NewStatusService(c domain.RecommendationClient, r domain.SessionRepository, cache domain.Cache,
	ttl, timeout time.Duration, maxInFlight int) *StatusService {
	if maxInFlight <= 0 {
		maxInFlight = 16
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &StatusService{
		client:  c,
		repo:    r,
		cache:   cache,
		ttl:     ttl,
		timeout: timeout,
		sem:     semaphore.NewWeighted(int64(maxInFlight)),
	}
}

// Label returns the status label for userName. Failures are never cached so
// the next view tries again.
func (s *StatusService) Label(ctx context.Context, userName string) string {
	key := statusKey(userName)
	if s.cache != nil {
		var label string
		if ok, _ := s.cache.Get(ctx, key, &label); ok && label != "" {
			return label
		}
	}

	p, err := s.client.GetRecommendation(ctx, userName)
	if err != nil {
		s.recordMiss(ctx, userName, err)
		// an error status with a JSON body still counts as loaded; only
		// transport failures and unparseable bodies fail the label
		var re *domain.RemoteError
		if !errors.As(err, &re) || !re.Parsed {
			log.Warn().Err(err).Str("user", userName).Msg("recommendation service call failed")
			return StatusFailed
		}
		log.Warn().Int("status", re.Status).Str("user", userName).Msg("recommendation service error status")
		p = re.Body
	}

	rec := mapRecommendation(userName, p)
	log.Info().
		Str("user", rec.UserName).
		Str("message", deref(rec.Message)).
		Int("items", rec.ItemCount).
		Int("bytes", len(rec.RawJSON)).
		Msg("recommendation service response")

	label := StatusLoaded(userName)
	if s.cache != nil && err == nil {
		_ = s.cache.Set(ctx, key, label, int(s.ttl.Seconds()))
	}
	return label
}

// Refresh fetches the label and stores it on the session.
func (s *StatusService) Refresh(ctx context.Context, sessionID, userName string) error {
	label := s.Label(ctx, userName)
	_, err := s.repo.Update(ctx, sessionID, func(sess *domain.Session) error {
		sess.StatusMessage = label
		return nil
	})
	return err
}

// RefreshAsync starts Refresh in the background with its own deadline and
// reports whether it did. When too many refreshes are in flight the call is
// skipped and the previous label stays.
func (s *StatusService) RefreshAsync(sessionID, userName string) bool {
	if !s.sem.TryAcquire(1) {
		log.Debug().Str("session", sessionID).Msg("status refresh skipped; too many in flight")
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.sem.Release(1)

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.Refresh(ctx, sessionID, userName); err != nil {
			log.Warn().Err(err).Str("session", sessionID).Msg("status refresh failed")
		}
	}()
	return true
}

// Wait blocks until every background refresh has finished.
func (s *StatusService) Wait() { s.wg.Wait() }

// Prefetch warms the label cache for one user and returns the label.
func (s *StatusService) Prefetch(ctx context.Context, userName string) (string, error) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, statusKey(userName))
	}
	label := s.Label(ctx, userName)
	if label == StatusFailed {
		return label, fmt.Errorf("prefetch %q: recommendation service unavailable", userName)
	}
	return label, nil
}

// recordMiss logs 404/401/403 replies to the store; other failures are
// transient and only logged.
func (s *StatusService) recordMiss(ctx context.Context, userName string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		_ = s.repo.LogMiss(ctx, userName, 404, "not found")
	case errors.Is(err, domain.ErrForbidden):
		_ = s.repo.LogMiss(ctx, userName, 403, "forbidden")
	case errors.Is(err, domain.ErrUnauthorized):
		_ = s.repo.LogMiss(ctx, userName, 401, "unauthorized")
	}
}

func statusKey(userName string) string {
	return "status:user:" + strings.ToLower(strings.TrimSpace(userName))
}
