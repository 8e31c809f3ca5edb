package slots

import (
	"regexp"
	"strconv"

	"golang.org/x/text/width"
)

var (
	rePartySize        = regexp.MustCompile(`(\d+)个?[人位份杯瓶盘碗]`)
	reChinesePartySize = regexp.MustCompile(`([零一二两三四五六七八九十]+)[人位杯]`)
	reBudget           = regexp.MustCompile(`(?:^|\D)(\d{2,4})元`)
)

var chineseDigits = map[rune]int{
	'零': 0, '一': 1, '二': 2, '两': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9, '十': 10,
}

// ChineseToArabic converts simple Chinese numerals ("四", "十四", "二十") to an
// integer. Hundreds and above are not supported.
func ChineseToArabic(s string) int {
	result, pending := 0, 0
	for _, r := range s {
		val := chineseDigits[r]
		if val == 10 {
			if pending == 0 {
				pending = 1
			}
			result += pending * val
			pending = 0
			continue
		}
		pending += val
	}

	return result + pending
}

// extractNumeric reads party size and budget. Full-width digits are folded
// to ASCII first since \d only matches ASCII.
func extractNumeric(text string, out Set) {
	text = width.Fold.String(text)

	if m := rePartySize.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && validPartySize(n) {
			out[PartySize] = IntValue(n)
		}
	}

	if m := reChinesePartySize.FindStringSubmatch(text); m != nil {
		if n := ChineseToArabic(m[1]); validPartySize(n) {
			out[PartySize] = IntValue(n)
		}
	}

	if m := reBudget.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			out[Budget] = IntValue(n)
		}
	}
}

func validPartySize(n int) bool {
	return n >= MinPartySize && n <= MaxPartySize
}
