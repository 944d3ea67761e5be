package domain

// Option is a selectable value plus the label a form shows for it.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type OptionCatalog struct {
	Vibes       []string `json:"vibes"`
	Foods       []string `json:"foods"`
	Activities  []string `json:"activities"`
	Budgets     []Option `json:"budgets"`
	Seasons     []Option `json:"seasons"`
	TripLengths []Option `json:"tripLengths"`
}

var (
	VibeOptions     = []string{"Relaxed", "Adventure", "Cultural", "Nightlife", "Nature", "Urban", "Historic", "Modern"}
	FoodOptions     = []string{"Coffee", "Fine Dining", "Street Food", "Vegetarian", "Seafood", "Local Cuisine", "Bakeries", "Brunch"}
	ActivityOptions = []string{"Museums", "Shopping", "Parks", "Architecture", "Live Music", "Sports", "Photography", "Walking Tours"}

	BudgetOptions = []Option{
		{Value: string(BudgetLow), Label: "Budget ($)"},
		{Value: string(BudgetModerate), Label: "Moderate ($$)"},
		{Value: string(BudgetLuxury), Label: "Luxury ($$$)"},
	}
	SeasonOptions = []Option{
		{Value: string(SeasonSpring), Label: "Spring (Mar-May)"},
		{Value: string(SeasonSummer), Label: "Summer (Jun-Aug)"},
		{Value: string(SeasonFall), Label: "Fall (Sep-Nov)"},
		{Value: string(SeasonWinter), Label: "Winter (Dec-Feb)"},
	}
	TripLengthOptions = []Option{
		{Value: string(TripShort), Label: "1-2 days"},
		{Value: string(TripMedium), Label: "3-4 days"},
		{Value: string(TripLong), Label: "5-7 days"},
		{Value: string(TripWeekPlus), Label: "1 week+"},
	}
)

// Catalog returns copies so callers can't mutate the package lists.
func Catalog() OptionCatalog {
	return OptionCatalog{
		Vibes:       append([]string(nil), VibeOptions...),
		Foods:       append([]string(nil), FoodOptions...),
		Activities:  append([]string(nil), ActivityOptions...),
		Budgets:     append([]Option(nil), BudgetOptions...),
		Seasons:     append([]Option(nil), SeasonOptions...),
		TripLengths: append([]Option(nil), TripLengthOptions...),
	}
}
