package entities

import (
	"encoding/json"
	"net/url"
	"strings"
)

// ResourceReference идентифицирует целевой объект апстрима, построенный из
// пути входящего запроса. Неизменяем после создания.
type ResourceReference struct {
	Resource string
	ID       string
}

// QueryParam - один параметр строки запроса. Порядок и регистр сохраняются
// как в исходном запросе.
type QueryParam struct {
	Key   string
	Value string
}

// RequestEnvelope - нормализованное представление входящего вызова.
// Тело остается непрозрачным до трансляции.
type RequestEnvelope struct {
	Method   string
	Resource ResourceReference
	Query    []QueryParam
	Body     json.RawMessage
}

// ResponseEnvelope - нормализованный ответ: статус, заголовки и тело,
// сериализуемое в JSON. Потребляется диспетчером ровно один раз.
type ResponseEnvelope struct {
	Status  int
	Headers map[string]string
	Body    any
}

// ParseQuery разбирает строку запроса, сохраняя порядок и регистр параметров.
// Стандартный url.Values порядок не сохраняет, поэтому разбор ручной.
func ParseQuery(rawQuery string) []QueryParam {
	if rawQuery == "" {
		return nil
	}
	var params []QueryParam
	for _, segment := range strings.Split(rawQuery, "&") {
		if segment == "" {
			continue
		}
		key, value, _ := strings.Cut(segment, "=")
		if unescaped, err := url.QueryUnescape(key); err == nil {
			key = unescaped
		}
		if unescaped, err := url.QueryUnescape(value); err == nil {
			value = unescaped
		}
		params = append(params, QueryParam{Key: key, Value: value})
	}
	return params
}
