package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics - счетчики шлюза. Собственный Registry вместо глобального, чтобы
// экземпляры не конфликтовали регистрацией в тестах.
type Metrics struct {
	registry *prometheus.Registry

	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	upstreamCalls   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onec_gateway",
			Name:      "requests_total",
			Help:      "Обработанные HTTP-запросы по методу, ресурсу и статусу.",
		}, []string{"method", "resource", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "onec_gateway",
			Name:      "request_duration_seconds",
			Help:      "Длительность обработки HTTP-запроса.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "resource"}),
		upstreamCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onec_gateway",
			Name:      "upstream_calls_total",
			Help:      "Вызовы апстрима по операции и исходу.",
		}, []string{"op", "outcome"}),
	}

	m.registry.MustRegister(m.requestCounter, m.requestDuration, m.upstreamCalls)
	return m
}

// ObserveRequest учитывает один обработанный HTTP-запрос.
func (m *Metrics) ObserveRequest(method, resource string, status int, elapsed time.Duration) {
	m.requestCounter.WithLabelValues(method, resource, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, resource).Observe(elapsed.Seconds())
}

// UpstreamCall учитывает один вызов апстрима. outcome - "ok" либо вид ошибки.
func (m *Metrics) UpstreamCall(op, outcome string) {
	m.upstreamCalls.WithLabelValues(op, outcome).Inc()
}

// RegisterSessionGauge подключает датчик размера пула сессий. Вызывается один
// раз при сборке приложения, когда сервис сессий уже существует.
func (m *Metrics) RegisterSessionGauge(size func() float64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "onec_gateway",
		Name:      "active_sessions",
		Help:      "Число живых сессий в пуле.",
	}, size))
}

// Handler отдает метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
