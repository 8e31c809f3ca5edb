package intent

import (
	"fmt"
	"strings"

	"github.com/imkonsowa/waiter-prompts/slots"
)

// Bonus adds Weight to Label when Slot is present and, if Any is non-empty,
// one of its values contains one of Any.
type Bonus struct {
	Slot   slots.Name
	Any    []string
	Label  Label
	Weight float64
}

func (b Bonus) applies(set slots.Set) bool {
	v, ok := set[b.Slot]
	if !ok {
		return false
	}
	if len(b.Any) == 0 {
		return true
	}

	for _, item := range v.Items() {
		for _, word := range b.Any {
			if strings.Contains(item, word) {
				return true
			}
		}
	}
	return false
}

type Rules struct {
	Keywords map[Label][]string
	Bonuses  []Bonus
	Priority []Label
}

func (r Rules) validate() error {
	for label, words := range r.Keywords {
		if !label.Valid() {
			return fmt.Errorf("keyword table references unknown intent %q", label)
		}
		if len(words) == 0 {
			return fmt.Errorf("intent %q has an empty keyword list", label)
		}
	}

	for i, b := range r.Bonuses {
		if !b.Label.Valid() {
			return fmt.Errorf("bonus %d references unknown intent %q", i, b.Label)
		}
		if !b.Slot.Valid() {
			return fmt.Errorf("bonus %d references unknown slot %q", i, b.Slot)
		}
	}

	seen := make(map[Label]bool, len(r.Priority))
	for _, l := range r.Priority {
		if !l.Valid() {
			return fmt.Errorf("priority order references unknown intent %q", l)
		}
		if seen[l] {
			return fmt.Errorf("intent %q appears twice in priority order", l)
		}
		seen[l] = true
	}

	return nil
}

func DefaultRules() Rules {
	return Rules{
		Keywords: defaultKeywords,
		Bonuses:  defaultBonuses,
		Priority: PriorityOrder,
	}
}

var defaultKeywords = map[Label][]string{
	Order: {
		"点餐", "下单", "我要吃", "来一份", "点菜", "订位", "订桌", "订好了",
		"订过", "订座", "订餐", "点了", "选好了", "确定了",
	},
	GameRecommendation: {
		"玩什么", "游戏", "饭前玩", "娱乐", "打麻将", "斗地主", "狼人杀",
		"真心话大冒险", "你画我猜", "谁是卧底", "拼图游戏", "情侣互动游戏",
	},
	HealthyDiet: {
		"健康", "清淡", "少油", "少盐", "低脂", "高蛋白", "无糖", "控油",
		"控卡", "减脂", "轻食", "健身餐", "少油少盐",
	},
	Festival: {
		"节日", "圣诞", "春节", "情人节", "七夕", "圣诞节", "元旦", "生日宴", "纪念日",
	},
	Vegetarian:          {"素食", "不吃肉", "素菜", "清真", "不吃荤", "素斋", "纯素"},
	ChildOrElderly:      {"儿童", "老人", "小孩", "长者", "带小孩", "宝宝"},
	WeightLoss:          {"减肥", "减脂", "低卡", "瘦身"},
	IntermittentFasting: {"断食", "控糖", "无糖"},
	SeasonalFood:        {"夏天", "冬天", "冷饮", "热汤"},
	FitnessNutrition:    {"蛋白", "健身", "增肌"},
	HolidayEvent:        {"假期", "放假", "国庆", "五一", "中秋", "端午"},
	GroupGathering:      {"聚会", "聚餐", "团建", "一大桌", "好多人"},
	TakeawayService:     {"外卖", "打包", "带走"},
	AllergySafe:         {"过敏", "花生", "牛奶", "海鲜"},
	NutritionalInfo:     {"热量", "营养", "卡路里"},
	WeatherBased:        {"冷", "热", "下雨", "刮风", "天太热", "天太冷"},
}

var defaultBonuses = []Bonus{
	{Slot: slots.HealthPreference, Any: []string{"低脂"}, Label: WeightLoss, Weight: 0.3},
	{Slot: slots.HealthPreference, Any: []string{"高蛋白"}, Label: FitnessNutrition, Weight: 0.3},
	{Slot: slots.HealthPreference, Any: []string{"无糖"}, Label: IntermittentFasting, Weight: 0.3},
	{Slot: slots.SpecialEvent, Label: Festival, Weight: 3},
	{Slot: slots.HealthPreference, Label: HealthyDiet, Weight: 2},
	{Slot: slots.DietaryRestriction, Any: []string{"素食", "不吃肉"}, Label: Vegetarian, Weight: 2},
	{Slot: slots.MealStyle, Any: []string{"自助餐"}, Label: Order, Weight: 1},
}
