package app

import (
	"strings"

	"trip_planner/internal/domain"
)

const (
	coffeeImage   = "https://images.unsplash.com/photo-1521017432531-fbd92d768814?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&ixid=M3w3Nzg4Nzd8MHwxfHNlYXJjaHwxfHxjb2ZmZWUlMjBzaG9wJTIwaW50ZXJpb3J8ZW58MXx8fHwxNzYzMTYyNDEzfDA&ixlib=rb-4.1.0&q=80&w=1080"
	museumImage   = "https://images.unsplash.com/photo-1643820509303-79e98ac7e006?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&ixid=M3w3Nzg4Nzd8MHwxfHNlYXJjaHwxfHxtdXNldW0lMjBhcnQlMjBnYWxsZXJ5fGVufDF8fHx8MTc2MzIwMzM2Mnww&ixlib=rb-4.1.0&q=80&w=1080"
	diningImage   = "https://images.unsplash.com/photo-1555242301-090c3211ae73?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&ixid=M3w3Nzg4Nzd8MHwxfHNlYXJjaHwxfHxyZXN0YXVyYW50JTIwZm9vZCUyMGRpbmluZ3xlbnwxfHx8fDE3NjMxMTkwODZ8MA&ixlib=rb-4.1.0&q=80&w=1080"
	squareImage   = "https://images.unsplash.com/photo-1688048481392-c425462ac4f1?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&ixid=M3w3Nzg4Nzd8MHwxfHNlYXJjaHwxfHxjaXR5JTIwc2t5bGluZSUyMHRyYXZlbHxlbnwxfHx8fDE3NjMyMjA5NjV8MA&ixlib=rb-4.1.0&q=80&w=1080"
	parkImage     = "https://images.unsplash.com/photo-1606225278453-eba097f60fc3?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&ixid=M3w3Nzg4Nzd8MHwxfHNlYXJjaHwxfHx0cmF2ZWwlMjBkZXN0aW5hdGlvbnMlMjB3b3JsZHxlbnwxfHx8fDE3NjMyMzYzOTB8MA&ixlib=rb-4.1.0&q=80&w=1080"
	priceFree     = "Free"
	typeCoffee    = "Coffee Shop"
	typeMuseum    = "Museum"
	typeDining    = "Restaurant"
	typeLandmark  = "Landmark"
	typePark      = "Park"
	tagCoffee     = "Coffee"
	tagMuseums    = "Museums"
	tagFineDining = "Fine Dining"
)

// GeneratePOIs emits the optional coffee, museum and fine-dining templates
// (in that order) when the matching tag is selected, followed by the two
// attractions every trip gets. Output order is emission order.
func GeneratePOIs(destination string, p domain.UserPreferences) []domain.POI {
	pois := make([]domain.POI, 0, 5)

	if p.LikesFood(tagCoffee) {
		pois = append(pois, domain.POI{
			ID:            "1",
			Name:          destination + " Artisan Coffee",
			Type:          typeCoffee,
			Neighborhood:  "Downtown",
			Rating:        4.8,
			PriceLevel:    coffeePrice(p.BudgetLevel),
			Description:   "Locally roasted coffee in a cozy atmosphere with excellent pastries",
			MatchReason:   "Matches your coffee preference; highly rated; walkable location",
			Distance:      "0.3 miles",
			EstimatedTime: "30-45 min",
			Tags:          []string{"Coffee", "Breakfast", "Wi-Fi"},
			ImageURL:      coffeeImage,
		})
	}

	if p.LikesActivity(tagMuseums) {
		pois = append(pois, domain.POI{
			ID:            "2",
			Name:          destination + " Art Museum",
			Type:          typeMuseum,
			Neighborhood:  "Cultural District",
			Rating:        4.9,
			PriceLevel:    museumPrice(p.BudgetLevel),
			Description:   "World-class collection spanning centuries of art and culture",
			MatchReason:   "Perfect for museum lovers; matches your cultural vibe; ideal season",
			Distance:      "1.2 miles",
			EstimatedTime: "2-3 hours",
			Tags:          []string{"Art", "Culture", "Photography"},
			ImageURL:      museumImage,
		})
	}

	if p.LikesFood(tagFineDining) {
		pois = append(pois, domain.POI{
			ID:            "3",
			Name:          "The Golden Plate",
			Type:          typeDining,
			Neighborhood:  "Historic Quarter",
			Rating:        4.7,
			PriceLevel:    "$$$",
			Description:   "Award-winning seasonal menu featuring local ingredients",
			MatchReason:   "Matches fine dining preference; excellent reviews; romantic ambiance",
			Distance:      "0.8 miles",
			EstimatedTime: "2 hours",
			Tags:          []string{"Fine Dining", "Romantic", "Wine"},
			ImageURL:      diningImage,
		})
	}

	pois = append(pois,
		domain.POI{
			ID:            "4",
			Name:          destination + " Historic Square",
			Type:          typeLandmark,
			Neighborhood:  "Old Town",
			Rating:        4.6,
			PriceLevel:    priceFree,
			Description:   "Beautiful historic plaza with street performers and local vendors",
			MatchReason:   "Matches your " + strings.Join(p.Vibes, ", ") + " vibe; free to visit; centrally located",
			Distance:      "0.5 miles",
			EstimatedTime: "1 hour",
			Tags:          []string{"Historic", "Photography", "Architecture"},
			ImageURL:      squareImage,
		},
		domain.POI{
			ID:            "5",
			Name:          "Riverside Park",
			Type:          typePark,
			Neighborhood:  "Waterfront",
			Rating:        4.5,
			PriceLevel:    priceFree,
			Description:   "Scenic waterfront park perfect for walks and picnics",
			MatchReason:   "Great for relaxation; matches nature interests; weather-appropriate",
			Distance:      "1.5 miles",
			EstimatedTime: "1-2 hours",
			Tags:          []string{"Nature", "Walking", "Relaxing"},
			ImageURL:      parkImage,
		},
	)

	return pois
}

func coffeePrice(b domain.BudgetLevel) string {
	if b == domain.BudgetLow {
		return "$"
	}
	return "$$"
}

func museumPrice(b domain.BudgetLevel) string {
	if b == domain.BudgetLuxury {
		return "$$$"
	}
	return "$$"
}

// GenerateNeighborhoods ignores the destination; the four areas and their
// scores are fixed.
func GenerateNeighborhoods(_ string) []domain.Neighborhood {
	return []domain.Neighborhood{
		{Name: "Downtown", Description: "Vibrant urban center with dining and shopping", MatchScore: 95},
		{Name: "Cultural District", Description: "Museums, galleries, and historic sites", MatchScore: 88},
		{Name: "Old Town", Description: "Historic architecture and charming streets", MatchScore: 85},
		{Name: "Waterfront", Description: "Scenic views and outdoor activities", MatchScore: 82},
	}
}

const poisPerDay = 2

// DayCount maps a trip length to itinerary days. "5-7" and "week+" both get 5.
func DayCount(l domain.TripLength) int {
	switch l {
	case domain.TripShort:
		return 2
	case domain.TripMedium:
		return 3
	default:
		return 5
	}
}

func dayTheme(day int) string {
	switch day {
	case 1:
		return "Explore & Settle In"
	case 2:
		return "Cultural Immersion"
	default:
		return "Local Favorites"
	}
}

// SlotLabel is the time-of-day label for the i-th stop of a day.
func SlotLabel(i int) string {
	switch i {
	case 0:
		return "Morning"
	case 1:
		return "Afternoon"
	default:
		return "Evening"
	}
}

// BuildItinerary gives each day the next two POIs in order. Days past the
// end of the list are dropped.
func BuildItinerary(pois []domain.POI, l domain.TripLength) []domain.ItineraryDay {
	days := DayCount(l)
	out := make([]domain.ItineraryDay, 0, days)
	for day := 1; day <= days; day++ {
		start := (day - 1) * poisPerDay
		if start >= len(pois) {
			break
		}
		end := min(start+poisPerDay, len(pois))
		chunk := append([]domain.POI(nil), pois[start:end]...)
		slots := make([]string, len(chunk))
		for i := range chunk {
			slots[i] = SlotLabel(i)
		}
		out = append(out, domain.ItineraryDay{Day: day, Theme: dayTheme(day), POIs: chunk, Slots: slots})
	}
	return out
}
