package utils

import (
	"unicode/utf8"
)

// SanitizeUTF8 去掉无效的 UTF-8 字节
func SanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	result := make([]byte, 0, len(s))
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			s = s[1:]
			continue
		}
		result = append(result, s[:size]...)
		s = s[size:]
	}
	return string(result)
}

// Truncate 按字符截断到最多 max 个字符，截断时追加 "..."
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + "..."
		}
		n++
	}
	return s
}

// LogFrame 日志中输出的帧内容，清理无效字节并限制长度
func LogFrame(frame []byte, max int) string {
	return Truncate(SanitizeUTF8(string(frame)), max)
}
