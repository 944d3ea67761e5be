package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrProfileRequired = errors.New("profile must be submitted first")
	ErrTripRequired    = errors.New("trip details must be submitted first")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
)

// RemoteError is a non-2xx reply from an upstream service. Body holds the
// decoded JSON value when the reply body parsed.
type RemoteError struct {
	Status int
	Body   any
	Parsed bool
}

func (e *RemoteError) Error() string { return fmt.Sprintf("remote status %d", e.Status) }

// Unwrap exposes the sentinel matching Status, if any.
func (e *RemoteError) Unwrap() error {
	switch e.Status {
	case 404:
		return ErrNotFound
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	}
	return nil
}

type SessionRepository interface {
	// Write paths
	Create(ctx context.Context, s Session) error
	// Update applies fn to the stored session atomically and persists the result.
	// If fn returns an error nothing is written.
	Update(ctx context.Context, id string, fn func(*Session) error) (Session, error)
	Delete(ctx context.Context, id string) error
	LogMiss(ctx context.Context, userName string, status int, reason string) error

	// Read paths
	Get(ctx context.Context, id string) (Session, error)
}

type RecommendationClient interface {
	// GetRecommendation returns the decoded JSON reply, whatever its shape.
	GetRecommendation(ctx context.Context, userName string) (any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// RemoteRecommendation is what we keep from the recommendation service
// payload; it only feeds logs and the status label.
type RemoteRecommendation struct {
	UserName  string
	Message   *string
	ItemCount int
	RawJSON   []byte
}

// Read models

type RecommendationsView struct {
	SessionID     string         `json:"sessionId,omitempty"`
	Destination   string         `json:"destination"`
	Season        Season         `json:"season"`
	TripLength    TripLength     `json:"tripLength"`
	Vibes         []string       `json:"vibes"`
	POIs          []POI          `json:"pois"`
	Neighborhoods []Neighborhood `json:"neighborhoods"`
	Itinerary     []ItineraryDay `json:"itinerary"`
	SavedPOIIDs   []string       `json:"savedPoiIds"`
	SavedCount    int            `json:"savedCount"`
	Status        string         `json:"status,omitempty"`
	// UserName feeds the status refresh; it is not part of the payload.
	UserName      string         `json:"-"`
}

type SavedView struct {
	SessionID   string       `json:"sessionId"`
	Destination string       `json:"destination,omitempty"`
	POIs        []POI        `json:"pois"`
	Summary     SavedSummary `json:"summary"`
}
