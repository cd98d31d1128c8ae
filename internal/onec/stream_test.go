package onec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadAssistantText(t *testing.T) {
	t.Run("накопительный текст заменяется каждым чанком", testStreamCumulative)
	t.Run("чужие роли и мусорные строки пропускаются", testStreamSkipsNoise)
	t.Run("пустой текст не затирает накопленный", testStreamKeepsLastText)
	t.Run("пустой поток дает пустой результат", testStreamEmpty)
}

func testStreamCumulative(t *testing.T) {
	stream := strings.Join([]string{
		`data: {"uuid":"m1","role":"assistant","content":{"text":"Прив"},"finished":false}`,
		``,
		`data: {"uuid":"m1","role":"assistant","content":{"text":"Привет, мир"},"finished":false}`,
		``,
		`data: {"uuid":"m1","role":"assistant","content":{"text":"Привет, мир!\n"},"finished":true}`,
		``,
	}, "\n")

	text, err := readAssistantText(strings.NewReader(stream))
	require.NoError(t, err)
	// Чанки несут полный текст, а не дельты: остается последний, без хвостовых пробелов.
	require.Equal(t, "Привет, мир!", text)
}

func testStreamSkipsNoise(t *testing.T) {
	stream := strings.Join([]string{
		`: keep-alive`,
		`data: {"uuid":"u1","role":"user","content":{"text":"вопрос"},"finished":false}`,
		`data: это не JSON`,
		`data: {"uuid":"m1","role":"assistant","content":{"text":"ответ"},"finished":false}`,
		`data: {"uuid":"m1","role":"assistant","content":{"text":"ответ готов"},"finished":true}`,
		`data: {"uuid":"m2","role":"assistant","content":{"text":"после финала"},"finished":false}`,
	}, "\n")

	text, err := readAssistantText(strings.NewReader(stream))
	require.NoError(t, err)
	require.Equal(t, "ответ готов", text)
}

func testStreamKeepsLastText(t *testing.T) {
	stream := strings.Join([]string{
		`data: {"uuid":"m1","role":"assistant","content":{"text":"итоговый ответ"},"finished":false}`,
		`data: {"uuid":"m1","role":"assistant","content":{"text":""},"finished":true}`,
	}, "\n")

	text, err := readAssistantText(strings.NewReader(stream))
	require.NoError(t, err)
	require.Equal(t, "итоговый ответ", text)
}

func testStreamEmpty(t *testing.T) {
	text, err := readAssistantText(strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, "", text)
}
