package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"trip_planner/internal/domain"
	"trip_planner/internal/validation"
)

type PlannerService struct {
	repo  domain.SessionRepository
	now   func() time.Time
	newID func() string
}

func NewPlannerService(r domain.SessionRepository) *PlannerService {
	return &PlannerService{repo: r, now: time.Now, newID: uuid.NewString}
}

func (s *PlannerService) CreateSession(ctx context.Context) (domain.Session, error) {
	ts := s.now().UTC()
	sess := domain.Session{ID: s.newID(), SavedPOIIDs: []string{}, CreatedAt: ts, UpdatedAt: ts}
	if err := s.repo.Create(ctx, sess); err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

func (s *PlannerService) DeleteSession(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// SubmitProfile validates p and replaces the session's preferences with a
// private copy of it.
func (s *PlannerService) SubmitProfile(ctx context.Context, id string, p domain.UserPreferences) (domain.Session, error) {
	p = normalizePreferences(p)
	if err := validation.Struct(p); err != nil {
		return domain.Session{}, err
	}
	return s.repo.Update(ctx, id, func(sess *domain.Session) error {
		sess.Preferences = &p
		sess.UpdatedAt = s.now().UTC()
		return nil
	})
}

// SubmitTrip requires a profile first; the wizard cannot skip a step.
func (s *PlannerService) SubmitTrip(ctx context.Context, id string, t domain.TripPlan) (domain.Session, error) {
	t.Destination = strings.TrimSpace(t.Destination)
	if err := validation.Struct(t); err != nil {
		return domain.Session{}, err
	}
	return s.repo.Update(ctx, id, func(sess *domain.Session) error {
		if sess.Preferences == nil {
			return domain.ErrProfileRequired
		}
		sess.Trip = &t
		sess.UpdatedAt = s.now().UTC()
		return nil
	})
}

// NewTrip drops the current trip. Saved ids survive, as they did in the
// browser version.
func (s *PlannerService) NewTrip(ctx context.Context, id string) (domain.Session, error) {
	return s.repo.Update(ctx, id, func(sess *domain.Session) error {
		sess.Trip = nil
		sess.UpdatedAt = s.now().UTC()
		return nil
	})
}

func (s *PlannerService) ToggleSave(ctx context.Context, id, poiID string) (domain.Session, error) {
	poiID = strings.TrimSpace(poiID)
	if poiID == "" {
		return domain.Session{}, domain.ErrInvalidInput
	}
	return s.repo.Update(ctx, id, func(sess *domain.Session) error {
		sess.SavedPOIIDs = ToggleSaved(sess.SavedPOIIDs, poiID)
		sess.UpdatedAt = s.now().UTC()
		return nil
	})
}

func normalizePreferences(p domain.UserPreferences) domain.UserPreferences {
	p.Name = strings.TrimSpace(p.Name)
	p.Vibes = cloneStrings(p.Vibes)
	p.FoodInterests = cloneStrings(p.FoodInterests)
	p.ActivityTypes = cloneStrings(p.ActivityTypes)
	return p
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string(nil), in...)
}
