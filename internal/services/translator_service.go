package services

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/rentgengl/copilot-1c-proxy/internal/domain/entities"
	apperrors "github.com/rentgengl/copilot-1c-proxy/internal/domain/errors"
	"github.com/rentgengl/copilot-1c-proxy/internal/interfaces"
)

// TranslatorService - транслятор запросов. Чистый компонент: никакого
// ввода-вывода и состояния, результат полностью определяется аргументами и
// таблицей соответствия, загруженной при старте.
type TranslatorService struct {
	table *entities.MappingTable
}

func NewTranslatorService(table *entities.MappingTable) interfaces.Translator {
	return &TranslatorService{table: table}
}

// ToNativeCall транслирует нормализованный REST-запрос в нативный вызов:
// ресурс - в сущность, HTTP-метод - в операцию, поля тела - по таблице
// соответствия. Необъявленные поля отбрасываются.
func (t *TranslatorService) ToNativeCall(envelope entities.RequestEnvelope) (entities.NativeCall, error) {
	mapping, found := t.table.Lookup(envelope.Resource.Resource)
	if !found {
		return entities.NativeCall{}, apperrors.Newf(apperrors.KindUnknownResource,
			"ресурс '%s' не объявлен в таблице соответствия", envelope.Resource.Resource)
	}

	op, err := opFor(envelope.Method, envelope.Resource.ID)
	if err != nil {
		return entities.NativeCall{}, err
	}

	call := entities.NativeCall{
		Op:     op,
		Entity: mapping.Entity,
		Key:    envelope.Resource.ID,
		Query:  envelope.Query,
	}

	if op == entities.OpCreate || op == entities.OpUpdate {
		payload, err := decodeBody(envelope.Body)
		if err != nil {
			return entities.NativeCall{}, err
		}
		call.Payload, err = translateFields(mapping, payload, op == entities.OpCreate)
		if err != nil {
			return entities.NativeCall{}, err
		}
	}
	return call, nil
}

// ToResponseEnvelope транслирует нативный ответ обратно в REST-представление.
// Статус определяется операцией, поля документа переименовываются по таблице,
// необъявленные поля апстрима наружу не проходят.
func (t *TranslatorService) ToResponseEnvelope(call entities.NativeCall, native *entities.NativeResponse) (entities.ResponseEnvelope, error) {
	mapping, found := t.table.LookupEntity(call.Entity)
	if !found {
		return entities.ResponseEnvelope{}, apperrors.Newf(apperrors.KindInternal,
			"сущность '%s' отсутствует в таблице соответствия", call.Entity)
	}

	switch call.Op {
	case entities.OpDelete:
		return entities.ResponseEnvelope{Status: http.StatusNoContent}, nil

	case entities.OpCreate, entities.OpRead, entities.OpUpdate:
		document, ok := native.Document.(map[string]any)
		if !ok {
			return entities.ResponseEnvelope{}, apperrors.Newf(apperrors.KindUpstreamProtocol,
				"апстрим вернул не объект для ресурса '%s'", mapping.Resource)
		}
		status := http.StatusOK
		if call.Op == entities.OpCreate {
			status = http.StatusCreated
		}
		return entities.ResponseEnvelope{Status: status, Body: restDocument(mapping, document)}, nil

	case entities.OpList:
		items, err := listItems(mapping, native.Document)
		if err != nil {
			return entities.ResponseEnvelope{}, err
		}
		return entities.ResponseEnvelope{Status: http.StatusOK, Body: items}, nil

	default:
		return entities.ResponseEnvelope{}, apperrors.Newf(apperrors.KindInternal,
			"операция '%s' не транслируется в REST-ответ", call.Op)
	}
}

// opFor сопоставляет HTTP-метод и наличие ключа операции нативного протокола.
func opFor(method, id string) (entities.OpKind, error) {
	hasID := id != ""
	switch method {
	case http.MethodGet:
		if hasID {
			return entities.OpRead, nil
		}
		return entities.OpList, nil
	case http.MethodPost:
		if hasID {
			return "", apperrors.New(apperrors.KindSchemaMismatch,
				"создание объекта не принимает ключ в пути")
		}
		return entities.OpCreate, nil
	case http.MethodPut, http.MethodPatch:
		if !hasID {
			return "", apperrors.New(apperrors.KindSchemaMismatch,
				"обновление объекта требует ключ в пути")
		}
		return entities.OpUpdate, nil
	case http.MethodDelete:
		if !hasID {
			return "", apperrors.New(apperrors.KindSchemaMismatch,
				"удаление объекта требует ключ в пути")
		}
		return entities.OpDelete, nil
	default:
		return "", apperrors.Newf(apperrors.KindSchemaMismatch,
			"метод %s не поддерживается", method)
	}
}

// decodeBody разбирает тело запроса как JSON-объект с сохранением чисел
// в исходном представлении.
func decodeBody(body json.RawMessage) (map[string]any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, apperrors.New(apperrors.KindSchemaMismatch, "тело запроса обязательно")
	}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var payload map[string]any
	if err := decoder.Decode(&payload); err != nil {
		return nil, apperrors.Wrap(apperrors.KindSchemaMismatch, "тело запроса не является JSON-объектом", err)
	}
	return payload, nil
}

// translateFields переводит поля REST-схемы в нативные имена. requireAll
// включает проверку обязательных полей (создание объекта).
func translateFields(mapping entities.ResourceMapping, payload map[string]any, requireAll bool) (map[string]any, error) {
	translated := make(map[string]any, len(payload))
	for _, field := range mapping.Fields {
		value, present := payload[field.Rest]
		if !present || value == nil {
			if requireAll && field.Required {
				return nil, apperrors.Newf(apperrors.KindSchemaMismatch,
					"обязательное поле '%s' отсутствует", field.Rest)
			}
			continue
		}
		if err := checkFieldType(field, value); err != nil {
			return nil, err
		}
		translated[field.Native] = value
	}
	return translated, nil
}

// checkFieldType сверяет значение с объявленным типом поля.
func checkFieldType(field entities.FieldMapping, value any) error {
	switch field.Type {
	case entities.FieldString:
		if _, ok := value.(string); !ok {
			return apperrors.Newf(apperrors.KindSchemaMismatch, "поле '%s' должно быть строкой", field.Rest)
		}
	case entities.FieldNumber:
		switch value.(type) {
		case json.Number, float64:
		default:
			return apperrors.Newf(apperrors.KindSchemaMismatch, "поле '%s' должно быть числом", field.Rest)
		}
	case entities.FieldBool:
		if _, ok := value.(bool); !ok {
			return apperrors.Newf(apperrors.KindSchemaMismatch, "поле '%s' должно быть булевым", field.Rest)
		}
	}
	return nil
}

// restDocument переводит документ апстрима в REST-представление. Проходят
// только объявленные в таблице поля.
func restDocument(mapping entities.ResourceMapping, document map[string]any) map[string]any {
	rest := make(map[string]any, len(mapping.Fields))
	for _, field := range mapping.Fields {
		if value, present := document[field.Native]; present {
			rest[field.Rest] = value
		}
	}
	return rest
}

// listItems разворачивает коллекцию апстрима в массив REST-документов.
// Апстрим отдает коллекции в обертке {"value": [...]}.
func listItems(mapping entities.ResourceMapping, document any) ([]map[string]any, error) {
	var raw []any
	switch doc := document.(type) {
	case map[string]any:
		value, found := doc["value"]
		if !found {
			return nil, apperrors.Newf(apperrors.KindUpstreamProtocol,
				"коллекция ресурса '%s' без поля value", mapping.Resource)
		}
		items, ok := value.([]any)
		if !ok {
			return nil, apperrors.Newf(apperrors.KindUpstreamProtocol,
				"коллекция ресурса '%s' имеет некорректную форму", mapping.Resource)
		}
		raw = items
	case []any:
		raw = doc
	default:
		return nil, apperrors.Newf(apperrors.KindUpstreamProtocol,
			"коллекция ресурса '%s' имеет некорректную форму", mapping.Resource)
	}

	items := make([]map[string]any, 0, len(raw))
	for _, element := range raw {
		document, ok := element.(map[string]any)
		if !ok {
			return nil, apperrors.Newf(apperrors.KindUpstreamProtocol,
				"элемент коллекции ресурса '%s' не является объектом", mapping.Resource)
		}
		items = append(items, restDocument(mapping, document))
	}
	return items, nil
}
