package mcpctx

import "github.com/neboloop/browserpilot/internal/svc"

// ToolContext carries per-session context for MCP tools.
type ToolContext struct {
	svc       *svc.ServiceContext
	requestID string
	userAgent string
	sessionID string
}

// NewToolContext creates a tool context for one MCP session.
func NewToolContext(svc *svc.ServiceContext, requestID, userAgent, sessionID string) *ToolContext {
	return &ToolContext{
		svc:       svc,
		requestID: requestID,
		userAgent: userAgent,
		sessionID: sessionID,
	}
}

// SessionID returns the MCP session ID.
func (t *ToolContext) SessionID() string {
	return t.sessionID
}

// Svc returns the service context.
func (t *ToolContext) Svc() *svc.ServiceContext {
	return t.svc
}

// RequestID returns the ID of the request that opened the session.
func (t *ToolContext) RequestID() string {
	return t.requestID
}

// UserAgent returns the client's user agent string.
func (t *ToolContext) UserAgent() string {
	return t.userAgent
}

// ToolError represents a structured error for MCP tool responses.
type ToolError struct {
	Code    string `json:"code"`    // "validation"
	Message string `json:"message"` // Human-readable description
	Field   string `json:"field"`   // For validation errors
}

func (e *ToolError) Error() string {
	if e.Field != "" {
		return e.Code + ": " + e.Message + " (field: " + e.Field + ")"
	}
	return e.Code + ": " + e.Message
}

// NewValidationError creates a validation error for a specific field.
func NewValidationError(message, field string) *ToolError {
	return &ToolError{Code: "validation", Message: message, Field: field}
}
