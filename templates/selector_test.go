package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkonsowa/waiter-prompts/intent"
	"github.com/imkonsowa/waiter-prompts/slots"
)

func allTemplatesCatalog(t *testing.T) *Catalog {
	t.Helper()
	tmpls := make(map[string]map[string]string, len(selectionOrder))
	for _, name := range selectionOrder {
		tmpls[name] = map[string]string{"zh-CN": name}
	}
	c, err := NewCatalog(tmpls)
	require.NoError(t, err)
	return c
}

func TestSelect(t *testing.T) {
	s, err := NewSelector(DefaultIntentTable(), allTemplatesCatalog(t))
	require.NoError(t, err)

	assert.Equal(t, "custom", s.Select(intent.Festival, "custom"))
	assert.Equal(t, FestivalSpecial, s.Select(intent.Festival, ""))
	assert.Equal(t, SummerRefreshing, s.Select(intent.TakeawayService, ""))
	assert.Equal(t, WeightLoss, s.Select(intent.FitnessNutrition, ""))
	assert.Equal(t, EnhancedBasic, s.Select(intent.Fallback, ""))
	assert.Equal(t, EnhancedBasic, s.Select("unknown", ""))
}

func TestNewSelectorValidation(t *testing.T) {
	c := allTemplatesCatalog(t)

	_, err := NewSelector(map[intent.Label]string{intent.Order: "nope"}, c)
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = NewSelector(map[intent.Label]string{"dessert": EnhancedBasic}, c)
	require.Error(t, err)

	empty, err := NewCatalog(map[string]map[string]string{"only": {"en-US": "x"}})
	require.NoError(t, err)
	_, err = NewSelector(nil, empty)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestSelectBySlots(t *testing.T) {
	s, err := NewSelector(DefaultIntentTable(), allTemplatesCatalog(t))
	require.NoError(t, err)

	tests := []struct {
		name string
		set  slots.Set
		want string
	}{
		{name: "nothing", set: slots.Set{}, want: EnhancedBasic},
		{name: "game", set: slots.Set{slots.Game: slots.StringValue("麻将")}, want: PreMealGame},
		{
			name: "game beats festival",
			set: slots.Set{
				slots.Game:         slots.StringValue("麻将"),
				slots.SpecialEvent: slots.StringValue("春节"),
			},
			want: PreMealGame,
		},
		{name: "festival", set: slots.Set{slots.SpecialEvent: slots.StringValue("中秋")}, want: FestivalSpecial},
		{name: "low fat", set: slots.Set{slots.HealthPreference: slots.StringValue("低脂")}, want: WeightLoss},
		{name: "high protein", set: slots.Set{slots.HealthPreference: slots.StringValue("高蛋白")}, want: FitnessMeal},
		{name: "sugar free", set: slots.Set{slots.HealthPreference: slots.StringValue("无糖")}, want: IntermittentFasting},
		{name: "light", set: slots.Set{slots.HealthPreference: slots.StringValue("清淡")}, want: ChildOrElderlyHealth},
		{name: "other health preference", set: slots.Set{slots.HealthPreference: slots.StringValue("轻食")}, want: HealthyDiet},
		{name: "vegetarian", set: slots.Set{slots.DietaryRestriction: slots.SetValue("不吃荤")}, want: VegetarianMeal},
		{name: "cold", set: slots.Set{slots.WeatherState: slots.StringValue("阴雨")}, want: ColdWeather},
		{name: "hot", set: slots.Set{slots.WeatherState: slots.StringValue("晴朗")}, want: SummerRefreshing},
		{name: "no seafood", set: slots.Set{slots.DietaryRestriction: slots.SetValue("忌海鲜")}, want: HealthyDiet},
		{name: "peanut allergy", set: slots.Set{slots.Allergen: slots.SetValue("花生")}, want: HealthyDiet},
		{name: "peanut needs exact item", set: slots.Set{slots.Allergen: slots.SetValue("花生酱")}, want: EnhancedBasic},
		{name: "vegetarian needs exact item", set: slots.Set{slots.DietaryRestriction: slots.SetValue("素食主义")}, want: EnhancedBasic},
		{name: "vegetarian among restrictions", set: slots.Set{slots.DietaryRestriction: slots.SetValue("忌海鲜", "素食")}, want: VegetarianMeal},
		{name: "buffet", set: slots.Set{slots.MealStyle: slots.StringValue("自助餐")}, want: EnhancedBasic},
		{name: "hearth", set: slots.Set{slots.MealStyle: slots.StringValue("围炉煮茶")}, want: ColdWeather},
		{
			name: "buffet outweighs peanut",
			set: slots.Set{
				slots.MealStyle: slots.StringValue("自助餐"),
				slots.Allergen:  slots.SetValue("花生"),
			},
			want: EnhancedBasic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.SelectBySlots(tt.set))
		})
	}
}
