package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rentgengl/copilot-1c-proxy/internal/domain/entities"
)

// AppConfig содержит конфигурацию приложения. Значения берутся из JSON-файла
// и переопределяются переменными окружения (переменные окружения главнее).
type AppConfig struct {
	ServerPort          string                     `json:"server_port"`
	BaseURL             string                     `json:"base_url"`
	Token               string                     `json:"token"`
	TimeoutSeconds      int                        `json:"timeout_seconds"`
	UILanguage          string                     `json:"ui_language"`
	ProgrammingLanguage string                     `json:"programming_language"`
	ScriptLanguage      string                     `json:"script_language"`
	MaxActiveSessions   int                        `json:"max_active_sessions"`
	SessionTTLSeconds   int                        `json:"session_ttl_seconds"`
	KafkaBrokers        []string                   `json:"kafka_brokers"`
	KafkaTopic          string                     `json:"kafka_topic"`
	Resources           []entities.ResourceMapping `json:"resources"`
}

// UpstreamTimeout возвращает предельное время одного вызова апстрима.
func (c *AppConfig) UpstreamTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SessionTTL возвращает срок жизни неиспользуемой сессии.
func (c *AppConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		ServerPort:        "8000",
		BaseURL:           "https://code.1c.ai",
		TimeoutSeconds:    30,
		UILanguage:        "russian",
		MaxActiveSessions: 10,
		SessionTTLSeconds: 3600,
	}
}

// LoadConfiguration загружает конфигурацию: значения по умолчанию, затем
// JSON-файл (путь из ONEC_GATEWAY_CONFIG, по умолчанию config.json; отсутствие
// файла не является ошибкой), затем переменные окружения.
func LoadConfiguration() (*AppConfig, error) {
	config := defaultConfig()

	path := envString("ONEC_GATEWAY_CONFIG", "config.json")
	configFile, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(configFile, config); err != nil {
			return nil, fmt.Errorf("не удалось разобрать файл конфигурации %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Конфигурация целиком из окружения - сценарий контейнера.
	default:
		return nil, err
	}

	applyEnv(config)

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func applyEnv(c *AppConfig) {
	c.ServerPort = envString("SERVER_PORT", c.ServerPort)
	c.BaseURL = strings.TrimRight(envString("ONEC_AI_BASE_URL", c.BaseURL), "/")
	c.Token = envString("ONEC_AI_TOKEN", c.Token)
	c.TimeoutSeconds = envInt("ONEC_AI_TIMEOUT", c.TimeoutSeconds)
	c.UILanguage = envString("ONEC_AI_UI_LANGUAGE", c.UILanguage)
	c.ProgrammingLanguage = envString("ONEC_AI_PROGRAMMING_LANGUAGE", c.ProgrammingLanguage)
	c.ScriptLanguage = envString("ONEC_AI_SCRIPT_LANGUAGE", c.ScriptLanguage)
	c.MaxActiveSessions = envInt("MAX_ACTIVE_SESSIONS", c.MaxActiveSessions)
	c.SessionTTLSeconds = envInt("SESSION_TTL", c.SessionTTLSeconds)
	if brokers := envString("KAFKA_BROKERS", ""); brokers != "" {
		c.KafkaBrokers = splitList(brokers)
	}
	c.KafkaTopic = envString("KAFKA_TOPIC", c.KafkaTopic)
}

func (c *AppConfig) validate() error {
	if c.Token == "" {
		return fmt.Errorf("не задан токен апстрима (ONEC_AI_TOKEN)")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("не задан адрес апстрима (ONEC_AI_BASE_URL)")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("таймаут апстрима должен быть положительным")
	}
	if c.MaxActiveSessions <= 0 {
		return fmt.Errorf("лимит активных сессий должен быть положительным")
	}
	if c.SessionTTLSeconds <= 0 {
		return fmt.Errorf("срок жизни сессии должен быть положительным")
	}
	// Целостность таблицы ресурсов проверяет ее конструктор.
	if _, err := entities.NewMappingTable(c.Resources); err != nil {
		return err
	}
	return nil
}

// NewMappingTable отдает неизменяемую таблицу ресурсов для транслятора.
func NewMappingTable(c *AppConfig) (*entities.MappingTable, error) {
	return entities.NewMappingTable(c.Resources)
}

func envString(name, fallback string) string {
	if value, ok := os.LookupEnv(name); ok && value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
