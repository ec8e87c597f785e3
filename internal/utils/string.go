package utils

import (
	"strconv"
	"strings"
	"unicode"
)

func RemoveQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		// 去掉首尾的双引号
		return s[1 : len(s)-1]
	}
	return s
}

// UnquoteTag returns the content of a struct tag literal, `json:"id"` -> json:"id".
func UnquoteTag(lit string) string {
	if s, err := strconv.Unquote(lit); err == nil {
		return s
	}
	return strings.Trim(lit, "`")
}

// ToSnakeCase 将驼峰命名转换为蛇形命名,正确处理连续大写字母(缩写词)
// 例如: HTTPServer -> http_server, DefaultID -> default_id
func ToSnakeCase(str string) string {
	var result strings.Builder
	runes := []rune(str)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			// 缩写词的最后一个字母后跟小写字母时也需要分隔
			if nextLower || prevLower {
				result.WriteRune('_')
			}
		}
		result.WriteRune(unicode.ToLower(r))
	}

	return result.String()
}
