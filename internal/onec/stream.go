package onec

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

const ssePrefix = "data: "

// readAssistantText читает SSE-поток дискуссии и возвращает финальный текст
// ассистента. Чанки несут накопленный текст целиком, поэтому каждый новый
// непустой текст замещает предыдущий. Битые чанки пропускаются.
func readAssistantText(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	// Ответы ассистента бывают длинными, одна строка data: может занимать
	// сотни килобайт.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var fullText string
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, ssePrefix) {
			continue
		}
		var chunk messageChunk
		if err := json.Unmarshal([]byte(line[len(ssePrefix):]), &chunk); err != nil {
			continue
		}
		if chunk.Role != "assistant" || chunk.Content == nil {
			continue
		}
		text, ok := chunk.Content["text"].(string)
		if !ok {
			continue
		}
		if text != "" {
			fullText = text
		}
		if chunk.Finished {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return strings.TrimSpace(fullText), nil
}
