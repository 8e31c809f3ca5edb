// Package slots extracts named dining slots (party size, budget, cuisine,
// dietary restrictions, ...) out of a user request.
package slots

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type Name string

const (
	Scene              Name = "scene"
	PartySize          Name = "party_size"
	Budget             Name = "budget"
	Cuisine            Name = "cuisine"
	Taste              Name = "taste"
	Drink              Name = "drink"
	DiningEnvironment  Name = "dining_environment"
	MealStyle          Name = "meal_style"
	HealthPreference   Name = "health_preference"
	SpecialEvent       Name = "special_event"
	WeatherState       Name = "weather_state"
	DietaryRestriction Name = "dietary_restriction"
	Allergen           Name = "allergen"
	Game               Name = "game"
)

// Names lists every registered slot in catalogue order.
var Names = []Name{
	Scene, PartySize, Budget, Cuisine, Taste, Drink, DiningEnvironment, MealStyle,
	HealthPreference, SpecialEvent, WeatherState, DietaryRestriction, Allergen, Game,
}

const (
	MinPartySize = 1
	MaxPartySize = 20
)

func (n Name) Valid() bool {
	for _, known := range Names {
		if n == known {
			return true
		}
	}
	return false
}

// MultiValued reports whether the slot accumulates a set of values.
func (n Name) MultiValued() bool {
	return n == DietaryRestriction || n == Allergen
}

// Value is either a single string, a single number, or a set of strings.
// The zero Value is empty.
type Value struct {
	str    string
	num    int
	isNum  bool
	values map[string]struct{}
}

func StringValue(s string) Value { return Value{str: s} }

func IntValue(n int) Value { return Value{num: n, isNum: true} }

func SetValue(items ...string) Value {
	v := Value{values: make(map[string]struct{}, len(items))}
	for _, item := range items {
		v.values[item] = struct{}{}
	}
	return v
}

func (v Value) IsSet() bool { return v.values != nil }

func (v Value) IsInt() bool { return v.isNum }

func (v Value) Int() (int, bool) { return v.num, v.isNum }

// Items returns the set members in sorted order. Single values are returned as
// a one element slice.
func (v Value) Items() []string {
	if v.values == nil {
		if s := v.String(); s != "" {
			return []string{s}
		}
		return nil
	}

	out := make([]string, 0, len(v.values))
	for item := range v.values {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

func (v Value) Contains(item string) bool {
	if v.values != nil {
		_, ok := v.values[item]
		return ok
	}
	return v.String() == item
}

func (v Value) String() string {
	switch {
	case v.values != nil:
		return strings.Join(v.Items(), "、")
	case v.isNum:
		return strconv.Itoa(v.num)
	default:
		return v.str
	}
}

func (v Value) union(other Value) Value {
	merged := SetValue(v.Items()...)
	for _, item := range other.Items() {
		merged.values[item] = struct{}{}
	}
	return merged
}

// Set is the per-request mapping of slot name to value.
type Set map[Name]Value

func (s Set) Has(name Name) bool {
	_, ok := s[name]
	return ok
}

func (s Set) Get(name Name) string {
	v, ok := s[name]
	if !ok {
		return ""
	}
	return v.String()
}

func (s Set) add(name Name, value string) {
	if name.MultiValued() {
		s[name] = s[name].union(SetValue(value))
		return
	}
	s[name] = StringValue(value)
}

// Clone returns a copy that can be modified without touching s.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		if v.IsSet() {
			v = SetValue(v.Items()...)
		}
		out[k] = v
	}
	return out
}

func (s Set) String() string {
	parts := make([]string, 0, len(s))
	for _, name := range Names {
		if v, ok := s[name]; ok {
			parts = append(parts, fmt.Sprintf("%s=%s", name, v))
		}
	}
	return strings.Join(parts, " ")
}
