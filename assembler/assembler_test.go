package assembler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkonsowa/waiter-prompts/slots"
	"github.com/imkonsowa/waiter-prompts/weather"
)

func newAssembler(t *testing.T) *Assembler {
	t.Helper()
	a, err := New(DefaultTables())
	require.NoError(t, err)
	return a
}

func TestAssembleSlotsAndDefaults(t *testing.T) {
	a := newAssembler(t)

	ctx := a.Assemble(Input{
		Request:  "我们4个人想吃川菜，预算300元，不吃海鲜",
		Location: "北京",
		Slots: slots.Set{
			slots.PartySize:          slots.IntValue(4),
			slots.Budget:             slots.IntValue(300),
			slots.Cuisine:            slots.StringValue("川菜"),
			slots.DietaryRestriction: slots.SetValue("海鲜"),
		},
		Weather: &weather.Report{Weather: "晴朗", Temperature: 25},
	})

	assert.Equal(t, "我们4个人想吃川菜，预算300元，不吃海鲜", ctx["user_request"])
	assert.Equal(t, "北京", ctx["city"])
	assert.Equal(t, "4", ctx["people_count"])
	assert.Equal(t, "300", ctx["budget"])
	assert.Equal(t, "川菜", ctx["cuisine"])
	assert.Equal(t, "海鲜", ctx["dietary_restriction"])
	assert.Equal(t, "晴朗", ctx["weather"])
	assert.Equal(t, "25", ctx["temperature"])
	assert.Equal(t, "麻辣香锅, 水煮鱼, 麻婆豆腐", ctx["local_dishes"])
	assert.Equal(t, NoHistory, ctx["order_history"])
	assert.Equal(t, NoHistory, ctx["played_games"])
	assert.Equal(t, NoRecommendation, ctx["game_recommendation"])
	assert.Equal(t, false, ctx["is_order_placed"])
	assert.Equal(t, "", ctx["scene"])
	assert.Equal(t, "", ctx["allergy_avoidance"])
}

func TestAssembleWeather(t *testing.T) {
	a := newAssembler(t)

	ctx := a.Assemble(Input{Location: "哈尔滨"})
	assert.Equal(t, "", ctx["weather"])
	assert.Equal(t, "20", ctx["temperature"])

	ctx = a.Assemble(Input{
		Slots:   slots.Set{slots.WeatherState: slots.StringValue("阴雨")},
		Weather: &weather.Report{Weather: "寒冷", Temperature: -5},
	})
	assert.Equal(t, "阴雨", ctx["weather"], "slot wins over external report")
	assert.Equal(t, "-5", ctx["temperature"])
}

func TestAssembleOrderPlacedGameRecommendation(t *testing.T) {
	a := newAssembler(t)
	in := Input{
		Slots: slots.Set{
			slots.Scene:             slots.StringValue("朋友聚会"),
			slots.DiningEnvironment: slots.StringValue("有包间"),
		},
		PlayedGames:  []string{"麻将", "斗地主"},
		OrderHistory: []string{"水煮鱼", "宫保鸡丁"},
		OrderPlaced:  true,
	}

	ctx := a.Assemble(in)
	assert.Equal(t, "麻将, 狼人杀", ctx["game_recommendation"])
	assert.Equal(t, "麻将, 斗地主", ctx["played_games"])
	assert.Equal(t, "水煮鱼\n宫保鸡丁", ctx["order_history"])
	assert.Equal(t, true, ctx["is_order_placed"])
	assert.Equal(t, "3", ctx["people_count"])
	assert.False(t, in.Slots.Has(slots.PartySize), "slots are not mutated")

	assert.Equal(t, ctx, a.Assemble(in), "assembly is deterministic")
}

func TestAssemblePartySizeCompletion(t *testing.T) {
	a := newAssembler(t)

	tests := []struct {
		name   string
		set    slots.Set
		played []string
		want   string
	}{
		{name: "gathering without history", set: slots.Set{slots.Scene: slots.StringValue("朋友聚会")}, want: "4"},
		{name: "gathering alias", set: slots.Set{slots.Scene: slots.StringValue("多人聚餐")}, played: []string{"狼人杀"}, want: "2"},
		{name: "explicit size kept", set: slots.Set{slots.Scene: slots.StringValue("朋友聚会"), slots.PartySize: slots.IntValue(6)}, want: "6"},
		{name: "not a gathering", set: slots.Set{slots.Scene: slots.StringValue("情侣约会")}, want: ""},
		{name: "no scene", set: slots.Set{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := a.Assemble(Input{Slots: tt.set, PlayedGames: tt.played})
			assert.Equal(t, tt.want, ctx["people_count"])
		})
	}
}

func TestRecommendGames(t *testing.T) {
	a := newAssembler(t)

	assert.Equal(t, []string{"麻将", "斗地主", "狼人杀"}, a.RecommendGames("朋友聚会", ""))
	assert.Equal(t, []string{"麻将", "斗地主", "狼人杀"}, a.RecommendGames("朋友聚会", "环境优雅"))
	assert.Equal(t, []string{"你画我猜", "真心话大冒险"}, a.RecommendGames("情侣约会", "适合聊天"))
	assert.Empty(t, a.RecommendGames("公司年会", "安静"))
	assert.Empty(t, a.RecommendGames("", "有包间"))

	ctx := a.Assemble(Input{
		Slots:       slots.Set{slots.Scene: slots.StringValue("公司年会"), slots.DiningEnvironment: slots.StringValue("安静")},
		OrderPlaced: true,
	})
	assert.Equal(t, NoRecommendation, ctx["game_recommendation"])
}

func TestLocalDishes(t *testing.T) {
	a := newAssembler(t)

	assert.Equal(t, "烤鸭, 炸酱面, 涮羊肉", a.LocalDishes("北京", ""))
	assert.Equal(t, "寿司, 刺身, 味噌汤", a.LocalDishes("北京", "日料"))
	assert.Equal(t, "小笼包, 红烧肉, 腌笃鲜", a.LocalDishes("上海", "西餐"))
	assert.Equal(t, DefaultLocalDishes, a.LocalDishes("火星", ""))
	assert.Equal(t, "烧味, 白切鸡, 早茶", a.LocalDishes("火星", "粤菜"))
}

func TestConversationHistory(t *testing.T) {
	ctx := newAssembler(t).Assemble(Input{Conversation: []string{"human: 有包间吗", "ai: 有的"}})
	assert.Equal(t, "human: 有包间吗\nai: 有的", ctx["conversation_history"])
}

func TestNewValidatesTables(t *testing.T) {
	tables := DefaultTables()
	tables.SceneGames["空场景"] = nil

	_, err := New(tables)
	require.Error(t, err)
}
