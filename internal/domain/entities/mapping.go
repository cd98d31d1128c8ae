package entities

import (
	"fmt"
	"strings"
)

// FieldType - объявленный тип поля в таблице соответствия схем.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldNumber FieldType = "number"
	FieldBool   FieldType = "bool"
	FieldAny    FieldType = "any"
)

// FieldMapping - декларативное соответствие одного поля REST-схемы полю
// нативной схемы апстрима.
type FieldMapping struct {
	Rest     string    `json:"rest"`
	Native   string    `json:"native"`
	Type     FieldType `json:"type,omitempty"`
	Required bool      `json:"required,omitempty"`
}

// ResourceMapping - соответствие REST-ресурса нативной сущности апстрима.
type ResourceMapping struct {
	Resource string         `json:"resource"`
	Entity   string         `json:"entity"`
	Fields   []FieldMapping `json:"fields"`
}

// MappingTable - неизменяемая таблица соответствия ресурсов, загруженная из
// конфигурации при старте. Соответствие ресурс-сущность взаимно однозначное,
// поэтому обратная трансляция не требует провенанса.
type MappingTable struct {
	byResource map[string]ResourceMapping
	byEntity   map[string]ResourceMapping
}

// NewMappingTable строит таблицу и проверяет ее целостность.
func NewMappingTable(mappings []ResourceMapping) (*MappingTable, error) {
	byResource := make(map[string]ResourceMapping, len(mappings))
	byEntity := make(map[string]ResourceMapping, len(mappings))
	for _, m := range mappings {
		if m.Resource == "" || m.Entity == "" {
			return nil, fmt.Errorf("ресурс и сущность не могут быть пустыми")
		}
		if m.Resource != strings.ToLower(m.Resource) {
			return nil, fmt.Errorf("имя ресурса '%s' должно быть в нижнем регистре", m.Resource)
		}
		if _, exists := byResource[m.Resource]; exists {
			return nil, fmt.Errorf("ресурс '%s' объявлен в таблице дважды", m.Resource)
		}
		if clash, exists := byEntity[m.Entity]; exists {
			return nil, fmt.Errorf("сущность '%s' закреплена за ресурсами '%s' и '%s'", m.Entity, clash.Resource, m.Resource)
		}
		for _, f := range m.Fields {
			switch f.Type {
			case "", FieldString, FieldNumber, FieldBool, FieldAny:
			default:
				return nil, fmt.Errorf("ресурс '%s': неизвестный тип поля '%s'", m.Resource, f.Type)
			}
		}
		byResource[m.Resource] = m
		byEntity[m.Entity] = m
	}
	return &MappingTable{byResource: byResource, byEntity: byEntity}, nil
}

// Lookup возвращает соответствие для ресурса.
func (t *MappingTable) Lookup(resource string) (ResourceMapping, bool) {
	m, ok := t.byResource[resource]
	return m, ok
}

// LookupEntity возвращает соответствие для нативной сущности.
func (t *MappingTable) LookupEntity(entity string) (ResourceMapping, bool) {
	m, ok := t.byEntity[entity]
	return m, ok
}

// Resources возвращает список объявленных ресурсов.
func (t *MappingTable) Resources() []string {
	resources := make([]string, 0, len(t.byResource))
	for r := range t.byResource {
		resources = append(resources, r)
	}
	return resources
}
