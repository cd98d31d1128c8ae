package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/rentgengl/copilot-1c-proxy/internal/config"
	"github.com/rentgengl/copilot-1c-proxy/internal/onec"
)

// Одноразовая проверка связки "конфигурация + апстрим": читает конфигурацию,
// проверяет достижимость апстрима и открывает пробную сессию. Сам шлюз
// запускается из cmd/app.
func main() {
	// 1. Загружаем конфигурацию
	cfg, err := config.LoadConfiguration()
	if err != nil {
		log.Fatalf("Не удалось загрузить конфигурацию: %v", err)
	}

	fmt.Printf("Найдено %d ресурсов в таблице соответствия.\n", len(cfg.Resources))
	fmt.Printf("Апстрим: %s\n", cfg.BaseURL)
	fmt.Println("-------------------------------------------------")

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Не удалось создать логгер: %v", err)
	}
	defer logger.Sync()

	client := onec.NewClient(cfg, logger)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.UpstreamTimeout())
	defer cancel()

	// 2. Проверяем достижимость апстрима
	if err := client.Probe(ctx); err != nil {
		log.Fatalf("ОШИБКА: апстрим недоступен: %v", err)
	}
	fmt.Println("Апстрим достижим.")

	// 3. Открываем пробную сессию
	conversationID, err := client.CreateConversation(ctx, cfg.Token, cfg.ProgrammingLanguage)
	if err != nil {
		log.Fatalf("ОШИБКА при открытии сессии: %v", err)
	}

	// 4. Выводим результат в формате JSON
	report, err := json.MarshalIndent(map[string]any{
		"conversation_id": conversationID,
		"checked_at":      time.Now().UTC().Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		log.Fatalf("ОШИБКА при конвертации в JSON: %v", err)
	}

	fmt.Println("Пробная сессия открыта:")
	fmt.Println(string(report))
	fmt.Println("-------------------------------------------------")
}
