package entities

// OpKind - вид операции нативного протокола апстрима.
type OpKind string

const (
	OpRead        OpKind = "read"
	OpList        OpKind = "list"
	OpCreate      OpKind = "create"
	OpUpdate      OpKind = "update"
	OpDelete      OpKind = "delete"
	OpMessageSend OpKind = "message.send"
)

// NativeCall - оттранслированный вызов в терминах апстрима. Для операций над
// объектами заполняются Entity/Key/Payload/Query; для отправки сообщения
// ассистенту - Instruction (идентификатор дискуссии подставляет коннектор
// из сессии).
type NativeCall struct {
	Op          OpKind
	Entity      string
	Key         string
	Payload     map[string]any
	Query       []QueryParam
	Instruction string
}

// NativeResponse - сырой ответ апстрима. Document - разобранный JSON-документ
// для операций над объектами, Text - финальный текст ассистента для message.send.
type NativeResponse struct {
	Status   int
	Document any
	Text     string
}
