package domain

import "slices"

type BudgetLevel string

const (
	BudgetLow      BudgetLevel = "budget"
	BudgetModerate BudgetLevel = "moderate"
	BudgetLuxury   BudgetLevel = "luxury"
)

type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
	SeasonWinter Season = "winter"
)

type TripLength string

const (
	TripShort    TripLength = "1-2"
	TripMedium   TripLength = "3-4"
	TripLong     TripLength = "5-7"
	TripWeekPlus TripLength = "week+"
)

// UserPreferences is captured once at profile submission. A later submission
// replaces the whole record; nothing mutates it in place.
type UserPreferences struct {
	Name          string      `json:"name" validate:"required,notblank"`
	BudgetLevel   BudgetLevel `json:"budgetLevel" validate:"required,oneof=budget moderate luxury"`
	Vibes         []string    `json:"vibes" validate:"required,min=1,dive,notblank"`
	FoodInterests []string    `json:"foodInterests"`
	ActivityTypes []string    `json:"activityTypes"`
}

func (p UserPreferences) LikesFood(tag string) bool { return slices.Contains(p.FoodInterests, tag) }

func (p UserPreferences) LikesActivity(tag string) bool {
	return slices.Contains(p.ActivityTypes, tag)
}

// TripPlan is captured at trip-detail submission.
type TripPlan struct {
	Destination string     `json:"destination" validate:"required,notblank"`
	Season      Season     `json:"season" validate:"required,oneof=spring summer fall winter"`
	TripLength  TripLength `json:"tripLength" validate:"required,oneof=1-2 3-4 5-7 week+"`
}
