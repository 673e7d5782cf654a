package v2md

import (
	"strings"
	"unicode"
)

// Markdown 特殊字符
var markdownReplacements = map[rune]string{
	'\\': "\\\\",
	'`':  "\\`",
	'*':  "\\*",
	'_':  "\\_",
	'{':  "\\{",
	'}':  "\\}",
	'[':  "\\[",
	']':  "\\]",
	'(':  "\\(",
	')':  "\\)",
	'#':  "\\#",
	'+':  "\\+",
	'-':  "\\-",
	'.':  "\\.",
	'!':  "\\!",
	'|':  "\\|",
}

// EscapeMarkdown 转义Markdown特殊字符
func EscapeMarkdown(text string) string {
	var result strings.Builder
	result.Grow(len(text) * 2)

	for _, char := range text {
		if replacement, exists := markdownReplacements[char]; exists {
			result.WriteString(replacement)
		} else {
			result.WriteRune(char)
		}
	}
	return result.String()
}

// NormalizeText 合并连续空白为单个空格
func NormalizeText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text))

	prevSpace := false
	for _, char := range text {
		if unicode.IsSpace(char) {
			if !prevSpace {
				result.WriteRune(' ')
				prevSpace = true
			}
		} else {
			result.WriteRune(char)
			prevSpace = false
		}
	}
	return result.String()
}

// TruncateText 按字符截断文本并添加省略号
func TruncateText(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength]) + "..."
}
