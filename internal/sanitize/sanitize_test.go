package sanitize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	t.Run("управляющие символы удаляются", testCleanControl)
	t.Run("переводы строк и табуляция остаются", testCleanKeepsWhitespace)
	t.Run("форматирующие символы удаляются", testCleanFormat)
	t.Run("совместимые формы нормализуются", testCleanNFKC)
	t.Run("пустая строка проходит как есть", testCleanEmpty)
}

func testCleanControl(t *testing.T) {
	require.Equal(t, "Процедура Тест()", Clean("Процедура\x00 Тест()\a"))
}

func testCleanKeepsWhitespace(t *testing.T) {
	text := "Строка 1\nСтрока 2\r\n\tОтступ"
	require.Equal(t, text, Clean(text))
}

func testCleanFormat(t *testing.T) {
	// U+200B - zero width space, U+FEFF - BOM: категория Cf.
	require.Equal(t, "ответ", Clean("\uFEFFот\u200Bвет"))
}

func testCleanNFKC(t *testing.T) {
	// Лигатура U+FB01 разворачивается в "fi".
	require.Equal(t, "file", Clean("\uFB01le"))
}

func testCleanEmpty(t *testing.T) {
	require.Equal(t, "", Clean(""))
}
