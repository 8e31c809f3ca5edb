// Package intent scores a dining request against a fixed set of intents using
// keyword tables, slot bonuses and an optional statistical scorer.
package intent

type Label string

const (
	Order               Label = "order"
	GameRecommendation  Label = "game_recommendation"
	HealthyDiet         Label = "healthy_diet"
	Festival            Label = "festival"
	Vegetarian          Label = "vegetarian"
	ChildOrElderly      Label = "child_or_elderly"
	WeightLoss          Label = "weight_loss"
	IntermittentFasting Label = "intermittent_fasting"
	SeasonalFood        Label = "seasonal_food"
	FitnessNutrition    Label = "fitness_nutrition"
	HolidayEvent        Label = "holiday_event"
	GroupGathering      Label = "group_gathering"
	TakeawayService     Label = "takeaway_service"
	AllergySafe         Label = "allergy_safe"
	NutritionalInfo     Label = "nutritional_info"
	WeatherBased        Label = "weather_based"

	// Fallback is returned when nothing scores.
	Fallback Label = "fallback"
)

// Labels is the declaration order, used to break ties between labels that are
// not part of PriorityOrder.
var Labels = []Label{
	Order, GameRecommendation, HealthyDiet, Festival, Vegetarian, ChildOrElderly,
	WeightLoss, IntermittentFasting, SeasonalFood, FitnessNutrition, HolidayEvent,
	GroupGathering, TakeawayService, AllergySafe, NutritionalInfo, WeatherBased,
}

// PriorityOrder resolves ties at the top score.
var PriorityOrder = []Label{
	Festival, GameRecommendation, HealthyDiet, Vegetarian, Order, WeatherBased, ChildOrElderly,
}

func (l Label) Valid() bool {
	return declIndex(l) >= 0
}

func declIndex(l Label) int {
	for i, known := range Labels {
		if known == l {
			return i
		}
	}
	return -1
}

// Scores maps labels to their accumulated score. Only positive scores are kept.
type Scores map[Label]float64

// Best returns the highest scoring label. Ties go to the first tied label in
// priority, then to declaration order. Empty scores yield Fallback.
func (s Scores) Best(priority []Label) Label {
	if len(s) == 0 {
		return Fallback
	}

	top := 0.0
	for _, v := range s {
		top = max(top, v)
	}

	var tied []Label
	for _, l := range Labels {
		if v, ok := s[l]; ok && v == top {
			tied = append(tied, l)
		}
	}
	if len(tied) == 0 {
		return Fallback
	}

	for _, p := range priority {
		for _, l := range tied {
			if l == p {
				return l
			}
		}
	}

	return tied[0]
}
