package types

import "encoding/json"

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Driver    string `json:"driver"`
	Launched  bool   `json:"launched"`
	Timestamp string `json:"timestamp"`
}

// Browser

// BrowserActionRequest is the body of POST /api/browser/action.
// X and Y are pointers so a click at 0,0 differs from no coordinates.
type BrowserActionRequest struct {
	Action   string   `json:"action" validate:"required,oneof=navigate click type scroll screenshot back forward reload evaluate"`
	Url      string   `json:"url,omitempty" validate:"omitempty,max=8192"`
	Selector string   `json:"selector,omitempty"`
	Text     string   `json:"text,omitempty"`
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Script   string   `json:"script,omitempty"`
}

type BrowserState struct {
	Url        string          `json:"url"`
	Title      string          `json:"title"`
	Screenshot string          `json:"screenshot,omitempty"`
	Html       string          `json:"html,omitempty"`
	IsLoading  bool            `json:"isLoading"`
	Result     json.RawMessage `json:"result,omitempty"`
}

// AI

type ChatRequest struct {
	Message string        `json:"message" validate:"required"`
	Context *BrowserState `json:"context,omitempty"`
}

type ChatResponse struct {
	Message string                `json:"message"`
	Action  *BrowserActionRequest `json:"action,omitempty"`
}

type ListAIMessagesRequest struct {
	Limit int `form:"limit"`
}

type AIMessage struct {
	Id        int64                 `json:"id"`
	Message   string                `json:"message"`
	Reply     string                `json:"reply"`
	Action    *BrowserActionRequest `json:"action,omitempty"`
	PageUrl   string                `json:"pageUrl,omitempty"`
	Provider  string                `json:"provider"`
	Model     string                `json:"model,omitempty"`
	CreatedAt string                `json:"createdAt"`
}

// History

type HistoryEntry struct {
	Id         int64   `json:"id"`
	Url        string  `json:"url"`
	Title      *string `json:"title"`
	VisitTime  string  `json:"visitTime"`
	Screenshot *string `json:"screenshot"`
}
