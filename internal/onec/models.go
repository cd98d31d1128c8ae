package onec

import (
	"errors"
	"fmt"
)

// Запрос на создание новой дискуссии.
type conversationRequest struct {
	ToolName            string `json:"tool_name"`
	UILanguage          string `json:"ui_language"`
	ProgrammingLanguage string `json:"programming_language"`
	ScriptLanguage      string `json:"script_language"`
}

// Ответ апстрима при создании дискуссии.
type conversationResponse struct {
	UUID string `json:"uuid"`
}

// Запрос на отправку сообщения в дискуссию.
type messageRequest struct {
	ParentUUID  *string           `json:"parent_uuid"`
	ToolContent map[string]string `json:"tool_content"`
}

// Часть сообщения из SSE-потока.
type messageChunk struct {
	UUID       string         `json:"uuid"`
	Role       string         `json:"role"`
	Content    map[string]any `json:"content"`
	ParentUUID *string        `json:"parent_uuid"`
	CreateTime string         `json:"create_time"`
	Finished   bool           `json:"finished"`
}

// ErrBadPayload сигнализирует, что тело ответа апстрима не удалось разобрать
// как корректный вывод нативного протокола.
var ErrBadPayload = errors.New("некорректный ответ апстрима")

// APIError - ответ апстрима со статусом вне 2xx. Snippet предназначен только
// для логов и никогда не возвращается клиентам шлюза.
type APIError struct {
	StatusCode int
	Snippet    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("апстрим ответил статусом %d", e.StatusCode)
}

// Нестандартный код "Authentication Timeout", которым некоторые прокси
// сигналят истечение сессии.
const statusAuthTimeout = 419

// IsAuthExpired сообщает, что апстрим просигналил истечение аутентификации.
func IsAuthExpired(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && (apiErr.StatusCode == 401 || apiErr.StatusCode == statusAuthTimeout)
}

// IsAuthRejected сообщает, что апстрим отверг учетные данные.
func IsAuthRejected(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.StatusCode {
	case 401, 403, statusAuthTimeout:
		return true
	}
	return false
}
