package v2md

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `\[a\]\(b\) \*c\* \#1`, EscapeMarkdown("[a](b) *c* #1"))
	assert.Equal(t, "中文", EscapeMarkdown("中文"))
}

func TestNormalizeAndTruncate(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeText("  a \n\t b   c "))
	assert.Empty(t, NormalizeText(" \n "))
	assert.Equal(t, "你好...", TruncateText("你好世界", 2))
	assert.Equal(t, "你好", TruncateText("你好", 2))
}

func TestIsErrorTypeThroughWrapping(t *testing.T) {
	base := NewNetworkError("GET / 请求失败", errors.New("timeout"))
	wrapped := fmt.Errorf("fetch /: %w", base)

	assert.True(t, IsErrorType(wrapped, NetworkError))
	assert.False(t, IsErrorType(wrapped, ParseError))
	assert.False(t, IsErrorType(errors.New("plain"), NetworkError))
	assert.ErrorContains(t, wrapped, "timeout")
	assert.Equal(t, "[validation_error] bad", NewValidationError("bad").Error())
}
