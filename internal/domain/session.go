package domain

import "time"

// Session holds one traveller's wizard state: profile, current trip and the
// saved-POI set. SavedPOIIDs keeps insertion order.
type Session struct {
	ID            string           `json:"id"`
	Preferences   *UserPreferences `json:"preferences,omitempty"`
	Trip          *TripPlan        `json:"trip,omitempty"`
	SavedPOIIDs   []string         `json:"savedPoiIds"`
	StatusMessage string           `json:"statusMessage,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}
