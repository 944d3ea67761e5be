package domain

// POI ids are only unique within one generation ("1".."5").
type POI struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Neighborhood  string   `json:"neighborhood"`
	Rating        float64  `json:"rating"`
	PriceLevel    string   `json:"priceLevel"`
	Description   string   `json:"description"`
	MatchReason   string   `json:"matchReason"`
	Distance      string   `json:"distance"`
	EstimatedTime string   `json:"estimatedTime"`
	Tags          []string `json:"tags"`
	ImageURL      string   `json:"imageUrl"`
}

type Neighborhood struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MatchScore  int    `json:"matchScore"`
}

// ItineraryDay is derived on every read and never stored.
// Slots[i] is the time-of-day label for POIs[i].
type ItineraryDay struct {
	Day   int      `json:"day"`
	Theme string   `json:"theme"`
	POIs  []POI    `json:"pois"`
	Slots []string `json:"slots"`
}

type SavedSummary struct {
	Places         int `json:"places"`
	EstimatedHours int `json:"estimatedHours"`
	Categories     int `json:"categories"`
}
