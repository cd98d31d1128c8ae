package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rentgengl/copilot-1c-proxy/internal/adapters/producers"
	"github.com/rentgengl/copilot-1c-proxy/internal/adapters/repositories/sessionstore"
	"github.com/rentgengl/copilot-1c-proxy/internal/config"
	"github.com/rentgengl/copilot-1c-proxy/internal/domain/entities"
	"github.com/rentgengl/copilot-1c-proxy/internal/metrics"
	"github.com/rentgengl/copilot-1c-proxy/internal/onec"
	"github.com/rentgengl/copilot-1c-proxy/internal/services"
	"github.com/rentgengl/copilot-1c-proxy/internal/usecases"
)

// upstreamRecorder копит запросы, пришедшие в поддельный апстрим. Проверки
// выполняются из горутины теста после ответа.
type upstreamRecorder struct {
	mu         sync.Mutex
	handshakes int
	methods    []string
	paths      []string
	queries    []string
	auths      []string
	sessionIDs []string
	bodies     []string
}

// fakeOneCServer отвечает по нативному протоколу: рукопожатие дискуссии и
// OData-операции над объектами.
func fakeOneCServer(rec *upstreamRecorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		rec.mu.Lock()
		rec.methods = append(rec.methods, r.Method)
		rec.paths = append(rec.paths, r.URL.Path)
		rec.queries = append(rec.queries, r.URL.RawQuery)
		rec.auths = append(rec.auths, r.Header.Get("Authorization"))
		rec.sessionIDs = append(rec.sessionIDs, r.Header.Get("Session-Id"))
		rec.bodies = append(rec.bodies, string(body))
		handshake := r.URL.Path == "/chat_api/v1/conversations/"
		if handshake {
			rec.handshakes++
		}
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case handshake:
			_, _ = w.Write([]byte(`{"uuid":"conv-e2e"}`))
		case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "('42')"):
			_, _ = w.Write([]byte(`{"Ref":"42","Наименование":"Гайка М6","Цена":10.50,"Служебное":"x"}`))
		case r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"value":[{"Ref":"42","Наименование":"Гайка М6"},{"Ref":"43","Наименование":"Болт М6"}]}`))
		case r.Method == http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"Ref":"77","Наименование":"Болт","Цена":3}`))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// newLiveRouter собирает шлюз целиком, без подделок: живые сервисы, живой
// клиент апстрима, поддельный только сам апстрим.
func newLiveRouter(t *testing.T, upstreamURL string) http.Handler {
	t.Helper()
	cfg := &config.AppConfig{
		BaseURL:           upstreamURL,
		Token:             "token-e2e",
		TimeoutSeconds:    5,
		UILanguage:        "russian",
		MaxActiveSessions: 4,
		SessionTTLSeconds: 3600,
		Resources: []entities.ResourceMapping{
			{
				Resource: "items",
				Entity:   "Catalog.Номенклатура",
				Fields: []entities.FieldMapping{
					{Rest: "id", Native: "Ref", Type: entities.FieldString},
					{Rest: "name", Native: "Наименование", Type: entities.FieldString, Required: true},
					{Rest: "price", Native: "Цена", Type: entities.FieldNumber},
				},
			},
		},
	}
	table, err := entities.NewMappingTable(cfg.Resources)
	require.NoError(t, err)

	log := zap.NewNop()
	client := onec.NewClient(cfg, log)
	repo := sessionstore.NewSessionStore()
	pool := services.NewSessionService(cfg, repo, client, log)
	m := metrics.New()
	connector := services.NewConnectorService(cfg, pool, client, m, log)
	translator := services.NewTranslatorService(table)
	all := usecases.NewUsecases(cfg, connector, translator, pool, client, &producers.NoopProducer{}, log)
	return ProvideRouter(NewHandler(all, table, log), m, log)
}

func TestGatewayFlow(t *testing.T) {
	t.Run("чтение объекта проходит всю цепочку", testFlowRead)
	t.Run("сессия переживает несколько запросов", testFlowSessionReuse)
	t.Run("создание переименовывает поля в обе стороны", testFlowCreate)
}

func testFlowRead(t *testing.T) {
	rec := &upstreamRecorder{}
	upstream := httptest.NewServer(fakeOneCServer(rec))
	defer upstream.Close()
	router := newLiveRouter(t, upstream.URL)

	res := perform(router, http.MethodGet, "/api/items/42?$select=name", "")
	require.Equal(t, http.StatusOK, res.Code)
	// Служебное поле апстрима наружу не проходит, числа не теряют точность.
	require.JSONEq(t, `{"id":"42","name":"Гайка М6","price":10.50}`, res.Body.String())
	require.NotEmpty(t, res.Header().Get("X-Request-Id"))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Equal(t, 1, rec.handshakes)
	require.Equal(t, []string{
		"/chat_api/v1/conversations/",
		"/odata/standard.odata/Catalog_Номенклатура('42')",
	}, rec.paths)
	require.Equal(t, "token-e2e", rec.auths[0])
	require.Equal(t, "conv-e2e", rec.sessionIDs[1])

	values, err := url.ParseQuery(rec.queries[1])
	require.NoError(t, err)
	require.Equal(t, "name", values.Get("$select"))
}

func testFlowSessionReuse(t *testing.T) {
	rec := &upstreamRecorder{}
	upstream := httptest.NewServer(fakeOneCServer(rec))
	defer upstream.Close()
	router := newLiveRouter(t, upstream.URL)

	res := perform(router, http.MethodGet, "/api/items/42", "")
	require.Equal(t, http.StatusOK, res.Code)

	res = perform(router, http.MethodGet, "/api/items", "")
	require.Equal(t, http.StatusOK, res.Code)
	require.JSONEq(t, `[{"id":"42","name":"Гайка М6"},{"id":"43","name":"Болт М6"}]`, res.Body.String())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	// Рукопожатие было одно, обе операции шли в одной дискуссии.
	require.Equal(t, 1, rec.handshakes)
	require.Equal(t, "conv-e2e", rec.sessionIDs[1])
	require.Equal(t, "conv-e2e", rec.sessionIDs[2])
}

func testFlowCreate(t *testing.T) {
	rec := &upstreamRecorder{}
	upstream := httptest.NewServer(fakeOneCServer(rec))
	defer upstream.Close()
	router := newLiveRouter(t, upstream.URL)

	res := perform(router, http.MethodPost, "/api/items", `{"name":"Болт","price":3,"comment":"лишнее"}`)
	require.Equal(t, http.StatusCreated, res.Code)
	require.JSONEq(t, `{"id":"77","name":"Болт","price":3}`, res.Body.String())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Equal(t, http.MethodPost, rec.methods[1])
	require.Equal(t, "/odata/standard.odata/Catalog_Номенклатура", rec.paths[1])
	// Поля переименованы в нативные, необъявленный comment отброшен.
	require.JSONEq(t, `{"Наименование":"Болт","Цена":3}`, rec.bodies[1])
}
