package templates

import (
	"fmt"
	"strings"
	"text/template"
)

// GetNotificationFuncMap returns the template functions for failure notifications
func GetNotificationFuncMap() template.FuncMap {
	return template.FuncMap{
		"formatNumber": FormatNumber,
		"truncate":     Truncate,
	}
}

// FormatNumber adds comma separators to large numbers
func FormatNumber(n int) string {
	str := fmt.Sprintf("%d", n)
	sign := ""
	if strings.HasPrefix(str, "-") {
		sign, str = "-", str[1:]
	}
	if len(str) <= 3 {
		return sign + str
	}

	var result []string
	for i := len(str); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		result = append([]string{str[start:i]}, result...)
	}
	return sign + strings.Join(result, ",")
}

// Truncate shortens s to at most limit runes, marking the cut with "..."
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
