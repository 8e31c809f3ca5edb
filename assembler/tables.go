package assembler

import "fmt"

const DefaultLocalDishes = "地方特色菜"

type Tables struct {
	CityDishes       map[string][]string
	CuisineDishes    map[string][]string
	SceneGames       map[string][]string
	EnvironmentGames map[string][]string
	// GatheringScenes trigger party size completion.
	GatheringScenes []string
}

func (t Tables) validate() error {
	for name, table := range map[string]map[string][]string{
		"city dishes":       t.CityDishes,
		"cuisine dishes":    t.CuisineDishes,
		"scene games":       t.SceneGames,
		"environment games": t.EnvironmentGames,
	} {
		for key, items := range table {
			if len(items) == 0 {
				return fmt.Errorf("%s entry %q is empty", name, key)
			}
		}
	}
	return nil
}

func DefaultTables() Tables {
	return Tables{
		CityDishes: map[string][]string{
			"北京": {"烤鸭", "炸酱面", "涮羊肉"},
			"成都": {"火锅", "夫妻肺片", "担担面"},
			"广州": {"早茶", "烧味", "白切鸡"},
			"上海": {"小笼包", "红烧肉", "腌笃鲜"},
			"杭州": {"西湖醋鱼", "龙井虾仁", "东坡肉"},
		},
		CuisineDishes: map[string][]string{
			"川菜":  {"麻辣香锅", "水煮鱼", "麻婆豆腐"},
			"粤菜":  {"烧味", "白切鸡", "早茶"},
			"本帮菜": {"红烧肉", "腌笃鲜", "油爆虾"},
			"日料":  {"寿司", "刺身", "味噌汤"},
		},
		SceneGames: map[string][]string{
			"朋友聚会": {"麻将", "斗地主", "狼人杀"},
			"情侣约会": {"你画我猜", "真心话大冒险", "默契挑战"},
			"家庭聚餐": {"拼图游戏", "亲子互动游戏", "谁是卧底"},
			"公司年会": {"桌游+角色扮演", "团队推理", "卡牌竞技"},
			"商务宴请": {"轻松聊天类游戏", "背景音乐氛围互动"},
		},
		EnvironmentGames: map[string][]string{
			"有包间":  {"麻将", "狼人杀", "拼图游戏"},
			"适合聊天": {"你画我猜", "谁是卧底", "真心话大冒险"},
			"正式":   {"轻节奏桌游", "推理类", "策略型"},
			"安静":   {"拼图游戏", "卡牌类", "手机App小游戏"},
		},
		GatheringScenes: []string{"朋友聚会", "多人聚餐", "大家一块儿吃", "朋友一起玩"},
	}
}
