package onec

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rentgengl/copilot-1c-proxy/internal/config"
	"github.com/rentgengl/copilot-1c-proxy/internal/domain/entities"
)

// Путь стандартного OData-сервиса 1С; точки в имени сущности заменяются
// подчеркиванием ("Catalog.Items" -> "Catalog_Items").
const odataServicePath = "/odata/standard.odata/"

const conversationsPath = "/chat_api/v1/conversations/"

// Client - клиент нативного протокола 1С: OData-операции над объектами,
// создание дискуссий и отправка сообщений ассистенту (SSE). Политику ошибок
// и повторов определяет коннектор, клиент возвращает сырые ошибки протокола.
type Client struct {
	baseURL             string
	uiLanguage          string
	programmingLanguage string
	scriptLanguage      string
	httpClient          *http.Client
	log                 *zap.Logger
}

// NewClient создает клиент апстрима из конфигурации приложения.
func NewClient(cfg *config.AppConfig, log *zap.Logger) *Client {
	return &Client{
		baseURL:             strings.TrimRight(cfg.BaseURL, "/"),
		uiLanguage:          cfg.UILanguage,
		programmingLanguage: cfg.ProgrammingLanguage,
		scriptLanguage:      cfg.ScriptLanguage,
		httpClient:          newHTTPClient(cfg.UpstreamTimeout()),
		log:                 log.Named("onec"),
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		// Общий предел на вызов, включая чтение SSE-потока. Дедлайн контекста
		// коннектора срабатывает тем же значением.
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   15 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        64,
			MaxIdleConnsPerHost: 16,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		},
	}
}

// CreateConversation выполняет аутентификационное рукопожатие: создает новую
// дискуссию и возвращает ее идентификатор.
func (c *Client) CreateConversation(ctx context.Context, token, programmingLanguage string) (string, error) {
	if programmingLanguage == "" {
		programmingLanguage = c.programmingLanguage
	}
	payload := conversationRequest{
		ToolName:            "custom",
		UILanguage:          c.uiLanguage,
		ProgrammingLanguage: programmingLanguage,
		ScriptLanguage:      c.scriptLanguage,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("сериализация запроса дискуссии: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+conversationsPath, token, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Session-Id", "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.apiError(resp)
	}

	var conversation conversationResponse
	if err := json.NewDecoder(resp.Body).Decode(&conversation); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if conversation.UUID == "" {
		return "", fmt.Errorf("%w: пустой идентификатор дискуссии", ErrBadPayload)
	}
	return conversation.UUID, nil
}

// SendMessage отправляет инструкцию в дискуссию и читает SSE-поток до
// финального текста ассистента.
func (c *Client) SendMessage(ctx context.Context, token, conversationID, instruction string) (string, error) {
	payload := messageRequest{ToolContent: map[string]string{"instruction": instruction}}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("сериализация сообщения: %w", err)
	}

	endpoint := c.baseURL + conversationsPath + url.PathEscape(conversationID) + "/messages"
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, token, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.apiError(resp)
	}

	text, err := readAssistantText(resp.Body)
	if err != nil {
		return "", err
	}
	return text, nil
}

// EntityCall выполняет оттранслированную операцию над объектом апстрима.
// Возвращает разобранный документ только для ответов 2xx; остальные статусы
// приходят как *APIError и интерпретируются коннектором.
func (c *Client) EntityCall(ctx context.Context, token, sessionID string, call entities.NativeCall) (*entities.NativeResponse, error) {
	method, err := httpMethodFor(call.Op)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if call.Payload != nil {
		encoded, err := json.Marshal(call.Payload)
		if err != nil {
			return nil, fmt.Errorf("сериализация нативного вызова: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := c.newRequest(ctx, method, c.entityURL(call), token, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Session-Id", sessionID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.apiError(resp)
	}

	native := &entities.NativeResponse{Status: resp.StatusCode}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return native, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&native.Document); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return native, nil
}

// Probe проверяет достижимость апстрима. Любой HTTP-ответ считается
// признаком жизни, ошибкой является только сетевой сбой.
func (c *Client) Probe(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL, "", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("апстрим %s недоступен: %w", c.baseURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
	return nil
}

func (c *Client) entityURL(call entities.NativeCall) string {
	path := strings.ReplaceAll(call.Entity, ".", "_")
	if call.Key != "" {
		// Одинарные кавычки в ключе экранируются удвоением по правилам OData.
		path += "('" + strings.ReplaceAll(call.Key, "'", "''") + "')"
	}
	endpoint := c.baseURL + odataServicePath + path
	if raw := rawQuery(call.Query); raw != "" {
		endpoint += "?" + raw
	}
	return endpoint
}

// rawQuery собирает строку запроса, сохраняя порядок параметров исходного
// запроса.
func rawQuery(params []entities.QueryParam) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, url.QueryEscape(p.Key)+"="+url.QueryEscape(p.Value))
	}
	return strings.Join(parts, "&")
}

func httpMethodFor(op entities.OpKind) (string, error) {
	switch op {
	case entities.OpRead, entities.OpList:
		return http.MethodGet, nil
	case entities.OpCreate:
		return http.MethodPost, nil
	case entities.OpUpdate:
		return http.MethodPatch, nil
	case entities.OpDelete:
		return http.MethodDelete, nil
	default:
		return "", fmt.Errorf("операция '%s' не выполняется над объектами", op)
	}
}

// newRequest создает запрос со стандартными заголовками протокола 1С.ai.
func (c *Client) newRequest(ctx context.Context, method, endpoint, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("создание запроса к %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Charset", "utf-8")
	req.Header.Set("Accept-Language", "ru-ru,en-us;q=0.8,en;q=0.7")
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Origin", c.baseURL)
	req.Header.Set("Referer", c.baseURL+"/chat/")
	req.Header.Set("User-Agent", "Mozilla/5.0")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	return req, nil
}

// apiError читает ограниченный фрагмент тела для лога и возвращает
// нормализуемую ошибку статуса. Сырой текст апстрима наружу не уходит.
func (c *Client) apiError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	c.log.Warn("апстрим вернул ошибку",
		zap.Int("status", resp.StatusCode),
		zap.String("url", resp.Request.URL.Path),
		zap.ByteString("body", snippet),
	)
	return &APIError{StatusCode: resp.StatusCode, Snippet: string(snippet)}
}
