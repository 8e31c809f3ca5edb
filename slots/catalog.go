package slots

import "fmt"

// Keywords holds the keyword list of one slot in match-precedence order.
type Keywords struct {
	Slot  Name
	Words []string
}

// Catalog is the ordered keyword table driving keyword extraction.
type Catalog []Keywords

// NewCatalog validates entries and returns them as a Catalog.
func NewCatalog(entries ...Keywords) (Catalog, error) {
	seen := make(map[Name]bool, len(entries))
	for _, e := range entries {
		if !e.Slot.Valid() {
			return nil, fmt.Errorf("unknown slot %q in keyword catalog", e.Slot)
		}
		if e.Slot == PartySize || e.Slot == Budget {
			return nil, fmt.Errorf("slot %q is numeric and cannot carry keywords", e.Slot)
		}
		if seen[e.Slot] {
			return nil, fmt.Errorf("slot %q declared twice in keyword catalog", e.Slot)
		}
		if len(e.Words) == 0 {
			return nil, fmt.Errorf("slot %q has no keywords", e.Slot)
		}
		seen[e.Slot] = true
	}

	return Catalog(entries), nil
}

// DefaultCatalog returns the built-in dining keyword table. Aliases follow the
// canonical keyword they stand for.
func DefaultCatalog() Catalog {
	c, err := NewCatalog(defaultKeywords...)
	if err != nil {
		panic(err)
	}
	return c
}

var defaultKeywords = []Keywords{
	{Slot: Taste, Words: []string{
		"麻辣", "清淡", "酸甜", "重口味", "不辣", "咸鲜", "香辣", "微辣",
		"清口", "少油", "不要太油腻", "轻一点",
		"辣的", "够劲爆", "四川那种味道", "重口",
		"不辣的", "不能吃辣", "不要放辣", "微辣就行",
	}},
	{Slot: Cuisine, Words: []string{
		"川菜", "湘菜", "粤菜", "东北菜", "日料", "西餐", "本帮菜", "火锅", "烧烤",
		"四川菜", "辣子多",
		"湖南菜", "辣得狠",
		"广东菜", "广府菜",
		"北方菜", "大锅炖", "家常菜",
		"寿司", "刺身", "日本料理",
		"牛排", "意面", "洋餐",
		"涮锅", "麻辣烫", "热锅",
		"烤串", "撸串", "BBQ",
	}},
	{Slot: Drink, Words: []string{
		"啤酒", "果汁", "奶茶", "红酒", "白酒", "可乐", "咖啡", "气泡水",
		"啤的", "喝两瓶啤", "来点冰的",
		"高度酒", "烧喉", "一口闷",
		"奶盖", "芝士奶盖", "茶饮",
		"鲜榨", "果茶", "水果汁",
	}},
	{Slot: Game, Words: []string{
		"麻将", "斗地主", "狼人杀", "你画我猜", "谁是卧底", "拼图游戏",
	}},
	{Slot: Scene, Words: []string{
		"朋友聚会", "公司年会", "家庭聚餐", "情侣约会", "生日宴", "商务宴请",
		"大家一块儿吃", "朋友一起玩", "多人聚餐", "聚餐",
		"二人世界", "小两口吃饭", "约会吃饭",
		"带娃吃饭", "一家老小聚餐", "家庭聚会", "亲子聚餐", "亲子活动", "一家小聚", "家庭餐",
	}},
	{Slot: DiningEnvironment, Words: []string{
		"有包间", "安静", "适合聊天", "亲子环境", "环境优雅", "有音乐", "正式",
	}},
	{Slot: MealStyle, Words: []string{
		"桌餐", "围炉", "自助餐", "火锅", "烧烤", "快餐",
		"围炉煮茶", "炭火煮茶", "围炉夜话",
		"随便拿", "想吃多少拿多少", "任吃",
	}},
	{Slot: HealthPreference, Words: []string{
		"低脂", "高蛋白", "无糖", "清淡",
		"少油少盐", "减肥餐", "轻食", "低卡",
		"不加糖", "少糖", "控糖",
	}},
	{Slot: SpecialEvent, Words: []string{
		"情人节", "七夕", "圣诞节", "元旦", "春节", "中秋",
	}},
	{Slot: WeatherState, Words: []string{
		"寒冷", "炎热", "阴雨", "晴朗",
	}},
	{Slot: DietaryRestriction, Words: []string{
		"不吃辣", "忌海鲜", "海鲜", "素食", "不吃肉", "不吃荤",
		"怕辣", "不太能吃辣", "辣的不行",
		"不吃鱼虾", "甲壳类不要",
	}},
	{Slot: Allergen, Words: []string{
		"花生", "牛奶", "海鲜过敏",
		"坚果", "nuts", "花仁",
		"乳制品", "奶制品", "dairy",
	}},
}
