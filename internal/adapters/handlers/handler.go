package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rentgengl/copilot-1c-proxy/internal/domain/entities"
	apperrors "github.com/rentgengl/copilot-1c-proxy/internal/domain/errors"
	"github.com/rentgengl/copilot-1c-proxy/internal/interfaces"
	"github.com/rentgengl/copilot-1c-proxy/internal/requestmeta"
)

type Handler struct {
	usecases interfaces.Usecases
	table    *entities.MappingTable
	log      *zap.Logger
}

func NewHandler(usecases interfaces.Usecases, table *entities.MappingTable, log *zap.Logger) *Handler {
	return &Handler{usecases: usecases, table: table, log: log.Named("handlers")}
}

// HandleResource обрабатывает весь объектный REST-интерфейс: метод и путь
// собираются в нормализованный конверт, дальше работает диспетчер.
func (h *Handler) HandleResource(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.renderError(c, apperrors.Wrap(apperrors.KindSchemaMismatch, "не удалось прочитать тело запроса", err))
		return
	}

	envelope := entities.RequestEnvelope{
		Method: c.Request.Method,
		Resource: entities.ResourceReference{
			Resource: c.Param("resource"),
			ID:       c.Param("id"),
		},
		Query: entities.ParseQuery(c.Request.URL.RawQuery),
		Body:  body,
	}

	response, err := h.usecases.HandleResource(c.Request.Context(), envelope)
	if err != nil {
		h.renderError(c, err)
		return
	}

	for name, value := range response.Headers {
		c.Header(name, value)
	}
	if response.Status == http.StatusNoContent {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(response.Status, response.Body)
}

// AskAI обрабатывает вопрос к ассистенту 1С.ai.
func (h *Handler) AskAI(c *gin.Context) {
	var req entities.AskAIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.renderAssistError(c, apperrors.Wrap(apperrors.KindSchemaMismatch, "некорректное тело запроса", err))
		return
	}
	result, err := h.usecases.AskAI(c.Request.Context(), req)
	if err != nil {
		h.renderAssistError(c, err)
		return
	}
	c.JSON(http.StatusOK, entities.AssistResponse{Result: result})
}

// ExplainSyntax обрабатывает запрос на объяснение синтаксиса 1С.
func (h *Handler) ExplainSyntax(c *gin.Context) {
	var req entities.ExplainSyntaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.renderAssistError(c, apperrors.Wrap(apperrors.KindSchemaMismatch, "некорректное тело запроса", err))
		return
	}
	result, err := h.usecases.ExplainSyntax(c.Request.Context(), req)
	if err != nil {
		h.renderAssistError(c, err)
		return
	}
	c.JSON(http.StatusOK, entities.AssistResponse{Result: result})
}

// CheckCode обрабатывает запрос на проверку кода 1С.
func (h *Handler) CheckCode(c *gin.Context) {
	var req entities.CheckCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.renderAssistError(c, apperrors.Wrap(apperrors.KindSchemaMismatch, "некорректное тело запроса", err))
		return
	}
	result, err := h.usecases.CheckCode(c.Request.Context(), req)
	if err != nil {
		h.renderAssistError(c, err)
		return
	}
	c.JSON(http.StatusOK, entities.AssistResponse{Result: result})
}

// Sessions возвращает снимки всех активных сессий пула.
func (h *Handler) Sessions(c *gin.Context) {
	sessions := h.usecases.Sessions()
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

// DropSession принудительно аннулирует сессию по ключу.
func (h *Handler) DropSession(c *gin.Context) {
	key := c.Param("key")
	if !h.usecases.DropSession(key) {
		h.renderError(c, apperrors.Newf(apperrors.KindUnknownResource, "сессия '%s' не найдена", key))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "сессия " + key + " аннулирована"})
}

// Health возвращает состояние шлюза; с ?probe=1 дополнительно проверяет
// достижимость апстрима.
func (h *Handler) Health(c *gin.Context) {
	probe := c.Query("probe") != ""
	status := h.usecases.Health(c.Request.Context(), probe)
	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

// Root возвращает карту интерфейса шлюза.
func (h *Handler) Root(c *gin.Context) {
	resources := h.table.Resources()
	sort.Strings(resources)
	c.JSON(http.StatusOK, gin.H{
		"message": "Добро пожаловать в REST-шлюз 1С",
		"endpoints": gin.H{
			"/api/:resource":  "Объектные операции (GET, POST, PUT, PATCH, DELETE)",
			"/ask-ai":         "Задать вопрос ИИ",
			"/explain-syntax": "Объяснить синтаксис 1С",
			"/check-code":     "Проверить код на ошибки",
			"/sessions":       "Активные сессии апстрима",
			"/health":         "Проверка состояния",
			"/metrics":        "Метрики Prometheus",
		},
		"resources": resources,
	})
}

// renderError отдает нормализованную ошибку шлюза. Полная цепочка причин
// уходит только в лог, клиент видит вид ошибки и публичное сообщение.
func (h *Handler) renderError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	h.logError(c, kind, err)
	c.JSON(apperrors.HTTPStatus(kind), gin.H{
		"error": gin.H{"kind": string(kind), "message": apperrors.PublicMessage(err)},
	})
}

// renderAssistError отдает ошибку эндпоинтов ассистента в их историческом
// формате {result, error}, но со статусом из общей таксономии.
func (h *Handler) renderAssistError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	h.logError(c, kind, err)
	c.JSON(apperrors.HTTPStatus(kind), entities.AssistResponse{Error: apperrors.PublicMessage(err)})
}

func (h *Handler) logError(c *gin.Context, kind apperrors.Kind, err error) {
	h.log.Warn("запрос завершился ошибкой",
		zap.String("request_id", requestmeta.RequestID(c.Request.Context())),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("kind", string(kind)),
		zap.Error(err),
	)
}
