package app

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/rentgengl/copilot-1c-proxy/internal/adapters/handlers"
	"github.com/rentgengl/copilot-1c-proxy/internal/adapters/producers"
	"github.com/rentgengl/copilot-1c-proxy/internal/adapters/repositories/sessionstore"
	"github.com/rentgengl/copilot-1c-proxy/internal/config"
	"github.com/rentgengl/copilot-1c-proxy/internal/interfaces"
	"github.com/rentgengl/copilot-1c-proxy/internal/metrics"
	"github.com/rentgengl/copilot-1c-proxy/internal/onec"
	"github.com/rentgengl/copilot-1c-proxy/internal/services"
	"github.com/rentgengl/copilot-1c-proxy/internal/usecases"
)

// New создает новый экземпляр fx.App
func New() *fx.App {
	return fx.New(
		// Регистрируем все модули приложения
		ConfigModule,
		LoggerModule,
		MetricsModule,
		RepositoryModule,
		UpstreamModule,
		ProducerModule,
		ServiceModule,
		UsecaseModule,
		HttpServerModule,
		// События самого fx уходят в общий логгер
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	)
}

// --- Модули FX ---

var ConfigModule = fx.Module("config_module",
	fx.Provide(
		// Загрузчик конфигурации
		config.LoadConfiguration,
		// Таблица соответствия ресурсов, собранная из конфигурации
		config.NewMappingTable,
	),
)

var LoggerModule = fx.Module("logger_module",
	fx.Provide(NewLogger),
)

var MetricsModule = fx.Module("metrics_module",
	fx.Provide(metrics.New),
	fx.Invoke(RegisterSessionGauge),
)

var RepositoryModule = fx.Module("repository_module",
	fx.Provide(
		// Конструктор для нашего in-memory хранилища сессий
		sessionstore.NewSessionStore,
	),
)

var UpstreamModule = fx.Module("upstream_module",
	fx.Provide(
		// HTTP-клиент апстрима 1С
		onec.NewClient,
		// Предоставляем клиента как реализацию интерфейса UpstreamClient
		func(client *onec.Client) interfaces.UpstreamClient { return client },
	),
)

var ProducerModule = fx.Module("producer_module",
	fx.Provide(producers.NewAuditProducer),
	fx.Invoke(InvokeAuditProducer),
)

var ServiceModule = fx.Module("service_module",
	fx.Provide(
		// Пул сессий апстрима
		services.NewSessionService,
		// Коннектор: acquire/execute/release поверх пула
		services.NewConnectorService,
		// Транслятор REST <-> нативный вызов
		services.NewTranslatorService,
		// Фоновая уборка пула
		services.NewJanitorService,
	),
	fx.Invoke(InvokeSessionPool, InvokeJanitor),
)

var UsecaseModule = fx.Module("usecases_module",
	fx.Provide(
		// Конструктор для бизнес-логики (use cases)
		usecases.NewUsecases,
	),
)

var HttpServerModule = fx.Module("http_server_module",
	fx.Provide(
		// Обработчики HTTP-запросов
		handlers.NewHandler,
		// Роутер
		handlers.ProvideRouter,
	),
	// Запускаем сервер при старте приложения
	fx.Invoke(InvokeHttpServer),
)

// NewLogger создает логгер приложения и сбрасывает буферы при остановке.
func NewLogger(lc fx.Lifecycle) (*zap.Logger, error) {
	log, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			// Sync на stderr возвращает ошибку на части платформ, игнорируем.
			_ = log.Sync()
			return nil
		},
	})
	return log, nil
}

// RegisterSessionGauge подключает датчик размера пула к метрикам.
func RegisterSessionGauge(m *metrics.Metrics, sessions interfaces.SessionService) {
	m.RegisterSessionGauge(func() float64 {
		return float64(len(sessions.Sessions()))
	})
}

// InvokeHttpServer запускает HTTP-сервер
func InvokeHttpServer(lc fx.Lifecycle, cfg *config.AppConfig, h http.Handler, log *zap.Logger) {
	serverAddr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     h,
		ReadTimeout: 30 * time.Second,
		// Ответ может включать рукопожатие и один повтор после истекшей сессии.
		WriteTimeout: 3*cfg.UpstreamTimeout() + 15*time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("HTTP-сервер запущен", zap.String("addr", serverAddr))
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("не удалось запустить сервер", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("остановка HTTP-сервера")
			return server.Shutdown(ctx)
		},
	})
}

// InvokeJanitor запускает фоновую уборку пула сессий
func InvokeJanitor(lc fx.Lifecycle, janitor interfaces.Janitor, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("запуск уборщика пула сессий")
			janitor.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("остановка уборщика пула сессий")
			janitor.Stop()
			return nil
		},
	})
}

// InvokeSessionPool очищает пул сессий при остановке приложения
func InvokeSessionPool(lc fx.Lifecycle, sessions interfaces.SessionService, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("очистка пула сессий")
			sessions.Shutdown()
			return nil
		},
	})
}

// InvokeAuditProducer закрывает продюсер аудита при остановке приложения
func InvokeAuditProducer(lc fx.Lifecycle, producer interfaces.AuditProducer, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("закрытие продюсера аудита")
			return producer.Close()
		},
	})
}
