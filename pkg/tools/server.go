package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

// Attach registers every tool in the registry on the MCP server. Tool
// execution errors are reported as error results (IsError), never as
// protocol failures.
func Attach(server *mcp.Server, registry *Registry) {
	for _, tool := range registry.All() {
		server.AddTool(&tool.Tool, handlerFor(tool))
	}
}

func handlerFor(tool *Tool) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		input, err := decodeArguments(req.Params.Arguments)
		if err != nil {
			return errorCallResult(fmt.Sprintf("invalid arguments for %s: %v", tool.Name, err)), nil
		}

		result, err := tool.Execute(ctx, input)
		if err != nil {
			zerolog.Ctx(ctx).Err(err).Str("tool", tool.Name).Msg("Tool execution failed")
			return errorCallResult(err.Error()), nil
		}
		if result == nil {
			return errorCallResult(fmt.Sprintf("tool %s returned no result", tool.Name)), nil
		}

		content := make([]mcp.Content, 0, len(result.Content))
		for _, block := range result.Content {
			if block.Type == "text" {
				content = append(content, &mcp.TextContent{Text: block.Text})
			}
		}
		return &mcp.CallToolResult{
			Content: content,
			IsError: result.IsError(),
		}, nil
	}
}

// decodeArguments normalizes the SDK's argument payload into a map.
// Depending on the transport the arguments arrive either raw or already
// decoded.
func decodeArguments(args any) (map[string]any, error) {
	switch v := args.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case json.RawMessage:
		return unmarshalArguments([]byte(v))
	case []byte:
		return unmarshalArguments(v)
	case string:
		return unmarshalArguments([]byte(v))
	}
	return nil, fmt.Errorf("unsupported argument type %T", args)
}

func unmarshalArguments(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return map[string]any{}, nil
	}
	var input map[string]any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, err
	}
	if input == nil {
		input = map[string]any{}
	}
	return input, nil
}

func errorCallResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
		IsError: true,
	}
}
