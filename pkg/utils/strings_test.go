package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeUTF8(t *testing.T) {
	assert.Equal(t, "hello", SanitizeUTF8("hello"))
	assert.Equal(t, "价格", SanitizeUTF8("价格"))
	assert.Equal(t, "ab", SanitizeUTF8("a\xffb"))
	assert.Equal(t, "", SanitizeUTF8("\xff\xfe\xfd"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab...", Truncate("abcd", 2))
	assert.Equal(t, "价...", Truncate("价格", 1))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestLogFrame(t *testing.T) {
	assert.Equal(t, `{"e"...`, LogFrame([]byte("{\xff\"e\":\"trade\"}"), 4))
	assert.Equal(t, "1690000000000", LogFrame([]byte("1690000000000"), 64))
}
