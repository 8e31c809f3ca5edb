package prompt

import "strings"

// OrderKeywords mark a request made after the table has ordered.
var OrderKeywords = []string{
	"下单", "点菜", "订位", "订桌", "订好了", "订过", "订座", "订餐",
	"点了", "选好了", "确定了", "已经订", "准备点菜",
}

func DetectOrder(text string) bool {
	if text == "" {
		return false
	}
	for _, kw := range OrderKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
