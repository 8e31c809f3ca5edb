// Package assembler flattens slots, user history and external data into the
// variable map templates are rendered against.
package assembler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/imkonsowa/waiter-prompts/slots"
	"github.com/imkonsowa/waiter-prompts/weather"
)

const (
	NoHistory          = "无"
	NoRecommendation   = "暂无推荐"
	DefaultPartySize   = 4
	DefaultTemperature = 20.0
)

type Context map[string]any

type Input struct {
	Request      string
	Location     string
	Slots        slots.Set
	Weather      *weather.Report
	OrderHistory []string
	PlayedGames  []string
	Conversation []string
	OrderPlaced  bool
}

type Assembler struct {
	tables Tables
}

func New(tables Tables) (*Assembler, error) {
	if err := tables.validate(); err != nil {
		return nil, fmt.Errorf("invalid context tables: %w", err)
	}
	return &Assembler{tables: tables}, nil
}

// Assemble never modifies in.Slots.
func (a *Assembler) Assemble(in Input) Context {
	set := in.Slots
	if set == nil {
		set = slots.Set{}
	}

	ctx := Context{
		"user_request":         in.Request,
		"city":                 in.Location,
		"scene":                set.Get(slots.Scene),
		"people_count":         set.Get(slots.PartySize),
		"cuisine":              set.Get(slots.Cuisine),
		"taste":                set.Get(slots.Taste),
		"drink":                set.Get(slots.Drink),
		"budget":               set.Get(slots.Budget),
		"game":                 set.Get(slots.Game),
		"dietary_restriction":  set.Get(slots.DietaryRestriction),
		"allergy_avoidance":    set.Get(slots.Allergen),
		"health_preference":    set.Get(slots.HealthPreference),
		"meal_type":            set.Get(slots.MealStyle),
		"special_event":        set.Get(slots.SpecialEvent),
		"environment":          set.Get(slots.DiningEnvironment),
		"weather":              set.Get(slots.WeatherState),
		"temperature":          formatTemperature(DefaultTemperature),
		"order_history":        joinOr(in.OrderHistory, "\n", NoHistory),
		"played_games":         joinOr(in.PlayedGames, ", ", NoHistory),
		"game_recommendation":  NoRecommendation,
		"is_order_placed":      in.OrderPlaced,
		"local_dishes":         a.LocalDishes(in.Location, set.Get(slots.Cuisine)),
		"conversation_history": strings.Join(in.Conversation, "\n"),
	}

	if in.Weather != nil {
		if ctx["weather"] == "" {
			ctx["weather"] = in.Weather.Weather
		}
		ctx["temperature"] = formatTemperature(in.Weather.Temperature)
	}

	if !set.Has(slots.PartySize) && a.isGathering(set.Get(slots.Scene)) {
		n := DefaultPartySize
		if len(in.PlayedGames) > 0 {
			n = len(in.PlayedGames) + 1
		}
		ctx["people_count"] = strconv.Itoa(n)
	}

	if in.OrderPlaced {
		games := a.RecommendGames(set.Get(slots.Scene), set.Get(slots.DiningEnvironment))
		ctx["game_recommendation"] = joinOr(games, ", ", NoRecommendation)
	}

	return ctx
}

// RecommendGames returns the games for scene, narrowed to those suited to
// environment when the environment is known. Order follows the scene table.
func (a *Assembler) RecommendGames(scene, environment string) []string {
	games := a.tables.SceneGames[scene]
	allowed, ok := a.tables.EnvironmentGames[environment]
	if !ok {
		return append([]string(nil), games...)
	}

	var out []string
	for _, g := range games {
		for _, e := range allowed {
			if g == e {
				out = append(out, g)
				break
			}
		}
	}
	return out
}

// LocalDishes prefers the cuisine table over the city table.
func (a *Assembler) LocalDishes(city, cuisine string) string {
	if dishes, ok := a.tables.CuisineDishes[cuisine]; ok {
		return strings.Join(dishes, ", ")
	}
	if dishes, ok := a.tables.CityDishes[city]; ok {
		return strings.Join(dishes, ", ")
	}
	return DefaultLocalDishes
}

func (a *Assembler) isGathering(scene string) bool {
	if scene == "" {
		return false
	}
	for _, s := range a.tables.GatheringScenes {
		if strings.Contains(scene, s) {
			return true
		}
	}
	return false
}

func joinOr(items []string, sep, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, sep)
}

func formatTemperature(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}
