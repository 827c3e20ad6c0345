package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"strips control chars", "a\x00b�c\x1bd", "abcd"},
		{"normalizes line breaks", "dòng một\r\ndòng hai\rdòng ba", "dòng một\ndòng hai\ndòng ba"},
		{"collapses space runs", "một   hai\t\tba", "một hai ba"},
		{"collapses blank lines", "đoạn một\n\n\n\nđoạn hai", "đoạn một\n\nđoạn hai"},
		{"keeps single blank line", "đoạn một\n\nđoạn hai", "đoạn một\n\nđoạn hai"},
		{"trims", "  nội dung  ", "nội dung"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 0, CountWords("   "))
	assert.Equal(t, 4, CountWords("bốn từ ở đây"))
	assert.Equal(t, 3, CountWords("xuống\ndòng\tmới"))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "ngắn", TruncateRunes("ngắn", 10))
	assert.Equal(t, "ngắn", TruncateRunes("ngắn", 4))
	// cuts on rune boundaries, not bytes
	assert.Equal(t, "ngắ...", TruncateRunes("ngắn hơn", 3))
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "b_o_c_o_3.pdf", SanitizeFileName("báo cáo 3.pdf"))
	assert.Equal(t, "a-b_c.txt", SanitizeFileName("a-b c.txt"))
}
