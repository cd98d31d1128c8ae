package interfaces

import "github.com/rentgengl/copilot-1c-proxy/internal/domain/entities"

// Translator определяет контракт транслятора запросов. Обе операции чистые:
// без ввода-вывода, без состояния, результат определяется только аргументами
// и таблицей соответствия.
type Translator interface {
	// ToNativeCall транслирует нормализованный REST-запрос в нативный вызов.
	ToNativeCall(envelope entities.RequestEnvelope) (entities.NativeCall, error)
	// ToResponseEnvelope транслирует нативный ответ обратно в REST-представление.
	ToResponseEnvelope(call entities.NativeCall, native *entities.NativeResponse) (entities.ResponseEnvelope, error)
}
