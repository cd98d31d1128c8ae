package entities

// AskAIRequest - запрос на вопрос к ассистенту 1С.ai. Пустые значения
// проверяет usecase, чтобы сообщения об ошибках оставались осмысленными.
type AskAIRequest struct {
	Question            string `json:"question"`
	ProgrammingLanguage string `json:"programming_language,omitempty"`
	CreateNewSession    bool   `json:"create_new_session,omitempty"`
}

// ExplainSyntaxRequest - запрос на объяснение элемента синтаксиса 1С.
type ExplainSyntaxRequest struct {
	SyntaxElement string `json:"syntax_element"`
	Context       string `json:"context,omitempty"`
}

// CheckCodeRequest - запрос на проверку кода 1С.
type CheckCodeRequest struct {
	Code      string `json:"code"`
	CheckType string `json:"check_type,omitempty"`
}

// AssistResponse - ответ эндпоинтов ассистента.
type AssistResponse struct {
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
}
