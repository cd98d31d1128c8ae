package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// setBaseEnv направляет загрузчик на отсутствующий файл и задает минимум,
// который проходит валидацию. Переопределяется в конкретных тестах.
func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ONEC_GATEWAY_CONFIG", filepath.Join(t.TempDir(), "нет.json"))
	t.Setenv("ONEC_AI_TOKEN", "token-a")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("ONEC_AI_BASE_URL", "")
	t.Setenv("ONEC_AI_TIMEOUT", "")
	t.Setenv("MAX_ACTIVE_SESSIONS", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_TOPIC", "")
}

func TestLoadConfiguration(t *testing.T) {
	t.Run("значения по умолчанию", testLoadDefaults)
	t.Run("переменные окружения главнее", testLoadEnvOverrides)
	t.Run("файл конфигурации с ресурсами", testLoadFile)
	t.Run("валидация отклоняет кривую конфигурацию", testLoadValidation)
}

func testLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadConfiguration()
	require.NoError(t, err)

	require.Equal(t, "8000", cfg.ServerPort)
	require.Equal(t, "https://code.1c.ai", cfg.BaseURL)
	require.Equal(t, 30, cfg.TimeoutSeconds)
	require.Equal(t, "russian", cfg.UILanguage)
	require.Equal(t, 10, cfg.MaxActiveSessions)
	require.Equal(t, 3600, cfg.SessionTTLSeconds)
	require.Equal(t, 30*time.Second, cfg.UpstreamTimeout())
	require.Equal(t, time.Hour, cfg.SessionTTL())
	require.Empty(t, cfg.KafkaBrokers)
}

func testLoadEnvOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ONEC_AI_BASE_URL", "https://пример.рф/ai/")
	t.Setenv("ONEC_AI_TIMEOUT", "7")
	t.Setenv("MAX_ACTIVE_SESSIONS", "3")
	t.Setenv("SESSION_TTL", "120")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("KAFKA_TOPIC", "gateway-audit")

	cfg, err := LoadConfiguration()
	require.NoError(t, err)

	require.Equal(t, "9090", cfg.ServerPort)
	// Хвостовая косая черта срезается, чтобы не дублировать ее в путях.
	require.Equal(t, "https://пример.рф/ai", cfg.BaseURL)
	require.Equal(t, 7, cfg.TimeoutSeconds)
	require.Equal(t, 3, cfg.MaxActiveSessions)
	require.Equal(t, 120, cfg.SessionTTLSeconds)
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "gateway-audit", cfg.KafkaTopic)
}

func testLoadFile(t *testing.T) {
	setBaseEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server_port": "8100",
		"token": "token-из-файла",
		"resources": [
			{
				"resource": "items",
				"entity": "Catalog.Номенклатура",
				"fields": [
					{"rest": "id", "native": "Ref", "type": "string"},
					{"rest": "name", "native": "Name", "type": "string", "required": true}
				]
			}
		]
	}`), 0o600))
	t.Setenv("ONEC_GATEWAY_CONFIG", path)

	cfg, err := LoadConfiguration()
	require.NoError(t, err)

	require.Equal(t, "8100", cfg.ServerPort)
	// Переменная окружения главнее значения из файла.
	require.Equal(t, "token-a", cfg.Token)
	require.Len(t, cfg.Resources, 1)
	require.Equal(t, "items", cfg.Resources[0].Resource)
	require.True(t, cfg.Resources[0].Fields[1].Required)

	table, err := NewMappingTable(cfg)
	require.NoError(t, err)
	_, found := table.Lookup("items")
	require.True(t, found)
}

func testLoadValidation(t *testing.T) {
	t.Run("без токена", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("ONEC_AI_TOKEN", "")

		_, err := LoadConfiguration()
		require.Error(t, err)
		require.Contains(t, err.Error(), "токен")
	})

	t.Run("отрицательный таймаут", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("ONEC_AI_TIMEOUT", "-1")

		_, err := LoadConfiguration()
		require.Error(t, err)
	})

	t.Run("ресурс не в нижнем регистре", func(t *testing.T) {
		setBaseEnv(t)
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{
			"resources": [{"resource": "Items", "entity": "Catalog.Номенклатура"}]
		}`), 0o600))
		t.Setenv("ONEC_GATEWAY_CONFIG", path)

		_, err := LoadConfiguration()
		require.Error(t, err)
		require.Contains(t, err.Error(), "нижнем регистре")
	})

	t.Run("повторный ресурс", func(t *testing.T) {
		setBaseEnv(t)
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{
			"resources": [
				{"resource": "items", "entity": "Catalog.А"},
				{"resource": "items", "entity": "Catalog.Б"}
			]
		}`), 0o600))
		t.Setenv("ONEC_GATEWAY_CONFIG", path)

		_, err := LoadConfiguration()
		require.Error(t, err)
	})

	t.Run("битый JSON", func(t *testing.T) {
		setBaseEnv(t)
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{обрыв`), 0o600))
		t.Setenv("ONEC_GATEWAY_CONFIG", path)

		_, err := LoadConfiguration()
		require.Error(t, err)
		require.Contains(t, err.Error(), "разобрать")
	})
}
