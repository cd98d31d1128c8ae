package sanitize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Clean очищает текст ответа ассистента от проблемных Unicode-символов:
// нормализация NFKC, затем удаление управляющих (Cc) и форматирующих (Cf)
// символов, кроме переводов строк и табуляции.
func Clean(text string) string {
	if text == "" {
		return text
	}
	normalized := norm.NFKC.String(text)
	var b strings.Builder
	b.Grow(len(normalized))
	for _, r := range normalized {
		switch r {
		case '\n', '\r', '\t':
			b.WriteRune(r)
			continue
		}
		if unicode.Is(unicode.Cc, r) || unicode.Is(unicode.Cf, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
