package templates

import (
	"fmt"
	"strings"

	"github.com/imkonsowa/waiter-prompts/intent"
	"github.com/imkonsowa/waiter-prompts/slots"
)

const (
	EnhancedBasic        = "enhanced_basic_with_all"
	PreMealGame          = "pre_meal_game_recommendation"
	HealthyDiet          = "healthy_diet_recommendation"
	WeightLoss           = "weight_loss_meal_recommendation"
	FitnessMeal          = "fitness_meal_recommendation"
	IntermittentFasting  = "intermittent_fasting_or_low_sugar_meal"
	VegetarianMeal       = "vegetarian_meal_recommendation"
	ColdWeather          = "cold_weather_meal_recommendation"
	SummerRefreshing     = "summer_refreshing_meal_recommendation"
	FestivalSpecial      = "festival_special_meal_recommendation"
	ChildOrElderlyHealth = "child_or_elderly_health_meal"
)

// selectionOrder breaks ties in SelectBySlots; earlier wins.
var selectionOrder = []string{
	PreMealGame, HealthyDiet, WeightLoss, FitnessMeal, IntermittentFasting,
	VegetarianMeal, ColdWeather, SummerRefreshing, FestivalSpecial,
	ChildOrElderlyHealth, EnhancedBasic,
}

func DefaultIntentTable() map[intent.Label]string {
	return map[intent.Label]string{
		intent.Order:               EnhancedBasic,
		intent.GameRecommendation:  PreMealGame,
		intent.HealthyDiet:         HealthyDiet,
		intent.Festival:            FestivalSpecial,
		intent.Vegetarian:          VegetarianMeal,
		intent.WeatherBased:        ColdWeather,
		intent.ChildOrElderly:      ChildOrElderlyHealth,
		intent.WeightLoss:          WeightLoss,
		intent.IntermittentFasting: IntermittentFasting,
		intent.SeasonalFood:        ColdWeather,
		intent.FitnessNutrition:    WeightLoss,
		intent.HolidayEvent:        FestivalSpecial,
		intent.GroupGathering:      EnhancedBasic,
		intent.TakeawayService:     SummerRefreshing,
		intent.AllergySafe:         HealthyDiet,
		intent.NutritionalInfo:     WeightLoss,
	}
}

type Selector struct {
	table map[intent.Label]string
}

// NewSelector checks that every intent in table is known and every target
// template exists in catalog, along with the built-in fallback.
func NewSelector(table map[intent.Label]string, catalog *Catalog) (*Selector, error) {
	if !catalog.Has(EnhancedBasic) {
		return nil, fmt.Errorf("%w: fallback %s", ErrTemplateNotFound, EnhancedBasic)
	}
	for label, name := range table {
		if !label.Valid() {
			return nil, fmt.Errorf("template table references unknown intent %q", label)
		}
		if !catalog.Has(name) {
			return nil, fmt.Errorf("%w: %s (mapped from %s)", ErrTemplateNotFound, name, label)
		}
	}

	return &Selector{table: table}, nil
}

// Select returns explicit when set, otherwise the template mapped to label.
func (s *Selector) Select(label intent.Label, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if name, ok := s.table[label]; ok {
		return name
	}
	return EnhancedBasic
}

// SelectBySlots weighs templates by the slots present. The basic template
// starts with one point so it wins when nothing else scores.
func (s *Selector) SelectBySlots(set slots.Set) string {
	score := map[string]int{EnhancedBasic: 1}

	if set.Has(slots.Game) {
		score[PreMealGame] += 10
	}

	if v, ok := set[slots.HealthPreference]; ok {
		switch v.String() {
		case "低脂":
			score[WeightLoss] += 8
		case "高蛋白":
			score[FitnessMeal] += 8
		case "无糖":
			score[IntermittentFasting] += 8
		case "清淡":
			score[ChildOrElderlyHealth] += 7
		}
		score[HealthyDiet] += 5
	}

	if v := set[slots.DietaryRestriction]; v.Contains("素食") || v.Contains("不吃肉") || v.Contains("不吃荤") {
		score[VegetarianMeal] += 7
	}

	if v, ok := set[slots.WeatherState]; ok {
		switch v.String() {
		case "寒冷", "阴雨":
			score[ColdWeather] += 6
		case "炎热", "晴朗":
			score[SummerRefreshing] += 6
		}
	}

	if set.Has(slots.SpecialEvent) {
		score[FestivalSpecial] += 9
	}

	if set[slots.DietaryRestriction].Contains("忌海鲜") {
		score[HealthyDiet] += 2
		score[WeightLoss]++
	}

	if set[slots.Allergen].Contains("花生") {
		score[HealthyDiet] += 2
	}

	if v, ok := set[slots.MealStyle]; ok {
		switch {
		case strings.Contains(v.String(), "自助餐"):
			score[EnhancedBasic] += 3
		case strings.Contains(v.String(), "围炉"):
			score[ColdWeather] += 2
		}
	}

	best, bestScore := EnhancedBasic, -1
	for _, name := range selectionOrder {
		if score[name] > bestScore {
			best, bestScore = name, score[name]
		}
	}
	return best
}
