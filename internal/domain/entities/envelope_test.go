package entities

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseQuery(t *testing.T) {
	t.Run("порядок параметров сохраняется", testParseQueryOrder)
	t.Run("экранирование снимается", testParseQueryUnescape)
	t.Run("пустая строка дает nil", testParseQueryEmpty)
}

func testParseQueryOrder(t *testing.T) {
	params := ParseQuery("top=5&skip=10&filter=Name eq 'X'&top=7")
	require.Equal(t, []QueryParam{
		{Key: "top", Value: "5"},
		{Key: "skip", Value: "10"},
		{Key: "filter", Value: "Name eq 'X'"},
		{Key: "top", Value: "7"},
	}, params)
}

func testParseQueryUnescape(t *testing.T) {
	params := ParseQuery("%24filter=%D0%98%D0%BC%D1%8F%20eq%20%27%D0%90%27&flag")
	require.Equal(t, []QueryParam{
		{Key: "$filter", Value: "Имя eq 'А'"},
		{Key: "flag", Value: ""},
	}, params)
}

func testParseQueryEmpty(t *testing.T) {
	require.Nil(t, ParseQuery(""))
}

func TestCredentialsKey(t *testing.T) {
	a := Credentials{Token: "token-a"}
	b := Credentials{Token: "token-b"}

	require.Equal(t, a.Key(), a.Key())
	require.NotEqual(t, a.Key(), b.Key())
	// Сырой токен не должен просматриваться в ключе.
	require.NotContains(t, a.Key(), "token-a")
	require.Len(t, a.Key(), 32)

	// Язык программирования - подсказка рукопожатия, на ключ не влияет.
	withLang := Credentials{Token: "token-a", ProgrammingLanguage: "1c"}
	require.Equal(t, a.Key(), withLang.Key())
}
