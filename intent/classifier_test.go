package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkonsowa/waiter-prompts/slots"
)

type stubScorer struct {
	probs map[Label]float64
	err   error
}

func (s stubScorer) Score(context.Context, string) (map[Label]float64, error) {
	return s.probs, s.err
}

func newClassifier(t *testing.T, opts ...Option) *Classifier {
	t.Helper()
	c, err := NewClassifier(DefaultRules(), opts...)
	require.NoError(t, err)
	return c
}

func TestClassify(t *testing.T) {
	ctx := context.Background()
	c := newClassifier(t)

	tests := []struct {
		name  string
		text  string
		slots slots.Set
		want  Label
	}{
		{
			name:  "festival via event slot",
			text:  "情人节想吃点好的",
			slots: slots.Set{slots.SpecialEvent: slots.StringValue("情人节")},
			want:  Festival,
		},
		{
			name: "nothing scores",
			text: "你好",
			want: Fallback,
		},
		{
			name: "empty input",
			want: Fallback,
		},
		{
			name: "tie resolved by priority",
			text: "游戏 健康",
			want: GameRecommendation,
		},
		{
			name: "tie outside priority resolved by declaration order",
			text: "外卖 营养",
			want: TakeawayService,
		},
		{
			name:  "buffet meal style favours order",
			slots: slots.Set{slots.MealStyle: slots.StringValue("自助餐")},
			want:  Order,
		},
		{
			name:  "health preference favours healthy diet",
			slots: slots.Set{slots.HealthPreference: slots.StringValue("低脂")},
			want:  HealthyDiet,
		},
		{
			name:  "vegetarian restriction",
			text:  "今天不吃肉",
			slots: slots.Set{slots.DietaryRestriction: slots.SetValue("不吃肉", "忌海鲜")},
			want:  Vegetarian,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(ctx, tt.text, tt.slots))
		})
	}
}

func TestScores(t *testing.T) {
	ctx := context.Background()
	c := newClassifier(t)

	t.Run("distinct keywords each count once", func(t *testing.T) {
		s := c.Scores(ctx, "少油少盐少油少盐", nil)
		assert.Equal(t, 3.0, s[HealthyDiet])
	})

	t.Run("only positive entries", func(t *testing.T) {
		s := c.Scores(ctx, "你好", nil)
		assert.Empty(t, s)
	})

	t.Run("slot bonuses", func(t *testing.T) {
		s := c.Scores(ctx, "", slots.Set{slots.HealthPreference: slots.StringValue("低脂")})
		assert.InDelta(t, 0.3, s[WeightLoss], 1e-9)
		assert.InDelta(t, 2.0, s[HealthyDiet], 1e-9)
		assert.NotContains(t, s, FitnessNutrition)
	})

	t.Run("vegetarian bonus stacks with keywords", func(t *testing.T) {
		s := c.Scores(ctx, "不吃肉", slots.Set{slots.DietaryRestriction: slots.SetValue("不吃肉")})
		assert.Equal(t, 3.0, s[Vegetarian])
	})
}

func TestScorerBlend(t *testing.T) {
	ctx := context.Background()

	c := newClassifier(t, WithScorer(stubScorer{probs: map[Label]float64{SeasonalFood: 0.9, Order: 0.1}}))
	assert.Equal(t, SeasonalFood, c.Classify(ctx, "随便", nil))

	s := c.Scores(ctx, "素食", nil)
	assert.InDelta(t, 0.9, s[SeasonalFood], 1e-9)
	assert.InDelta(t, 1.0, s[Vegetarian], 1e-9)
	assert.Equal(t, Vegetarian, s.Best(PriorityOrder))
}

func TestScorerFailureDegrades(t *testing.T) {
	c := newClassifier(t, WithScorer(stubScorer{err: errors.New("model offline")}))

	assert.Equal(t, Vegetarian, c.Classify(context.Background(), "素食", nil))
}

func TestBestIgnoresPriorityBelowTop(t *testing.T) {
	s := Scores{Festival: 1, TakeawayService: 2}
	assert.Equal(t, TakeawayService, s.Best(PriorityOrder))
}

func TestNewClassifierValidation(t *testing.T) {
	tests := []struct {
		name  string
		rules Rules
	}{
		{
			name:  "unknown keyword label",
			rules: Rules{Keywords: map[Label][]string{"dessert": {"甜点"}}},
		},
		{
			name:  "empty keyword list",
			rules: Rules{Keywords: map[Label][]string{Order: {}}},
		},
		{
			name:  "bonus with unknown slot",
			rules: Rules{Bonuses: []Bonus{{Slot: "mood", Label: Order, Weight: 1}}},
		},
		{
			name:  "bonus with unknown label",
			rules: Rules{Bonuses: []Bonus{{Slot: slots.Scene, Label: "dessert", Weight: 1}}},
		},
		{
			name:  "duplicate priority",
			rules: Rules{Priority: []Label{Order, Order}},
		},
		{
			name:  "fallback in priority",
			rules: Rules{Priority: []Label{Fallback}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClassifier(tt.rules)
			require.Error(t, err)
		})
	}
}
