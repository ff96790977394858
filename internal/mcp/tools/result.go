package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/neboloop/browserpilot/internal/mcp/mcpctx"
	"github.com/neboloop/browserpilot/internal/types"
)

// jsonResult renders v as the tool's text content.
func jsonResult(v any, extra ...mcp.Content) (*mcp.CallToolResult, any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encode result: %w", err)
	}
	content := append([]mcp.Content{&mcp.TextContent{Text: string(b)}}, extra...)
	return &mcp.CallToolResult{Content: content}, nil, nil
}

// toolError maps request validation failures to a validation ToolError.
func toolError(err error) error {
	var verr *types.ValidationError
	if errors.As(err, &verr) {
		return mcpctx.NewValidationError(verr.Message, verr.Field)
	}
	return err
}
