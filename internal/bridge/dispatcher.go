package bridge

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/equipbook/bookings-mcp/internal/common"
)

// Dispatcher routes tool calls through the catalog, mapper, and executor.
// It holds no mutable state; concurrent calls are independent.
type Dispatcher struct {
	catalog  *Catalog
	executor *Executor
	logger   *common.Logger
}

// NewDispatcher creates a dispatcher over a validated catalog.
func NewDispatcher(catalog *Catalog, executor *Executor, logger *common.Logger) *Dispatcher {
	return &Dispatcher{
		catalog:  catalog,
		executor: executor,
		logger:   logger,
	}
}

// ListTools translates every catalog endpoint into a tool, in catalog order.
func (d *Dispatcher) ListTools() []mcp.Tool {
	specs := d.catalog.List()
	tools := make([]mcp.Tool, 0, len(specs))
	for _, spec := range specs {
		tools = append(tools, Translate(spec))
	}
	return tools
}

// Dispatch resolves a tool name and runs the call. An unknown name fails
// with unknown_tool before any mapping or network work happens.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]interface{}) Result {
	spec, ok := d.catalog.Lookup(name)
	if !ok {
		return failureResult(newCallError(KindUnknownTool, "no such tool %q", name))
	}
	return d.dispatchSpec(ctx, spec, args)
}

// dispatchSpec maps arguments and executes the request for a resolved spec.
func (d *Dispatcher) dispatchSpec(ctx context.Context, spec EndpointSpec, args map[string]interface{}) Result {
	rd, err := MapArguments(spec, args)
	if err != nil {
		callErr, ok := err.(*CallError)
		if !ok {
			callErr = &CallError{Kind: KindValidation, Message: err.Error(), Err: err}
		}
		return failureResult(callErr)
	}
	return d.executor.Execute(ctx, rd)
}

// Register adds every catalog tool plus the built-in get_version tool to the
// MCP server. Returns the number of catalog tools registered.
func (d *Dispatcher) Register(s *server.MCPServer) int {
	specs := d.catalog.List()
	for _, spec := range specs {
		s.AddTool(Translate(spec), d.toolHandler(spec))
	}
	s.AddTool(VersionTool(), VersionToolHandler(d.executor))
	return len(specs)
}

// toolHandler creates the MCP handler for one endpoint. Each call gets a
// correlation ID so its log events can be traced end to end.
func (d *Dispatcher) toolHandler(spec EndpointSpec) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		correlationID := uuid.NewString()
		logger := d.logger.WithCorrelationId(correlationID)
		logger.Debug().Str("tool", spec.Name).Msg("tool call")

		result := d.dispatchSpec(ctx, spec, r.GetArguments())
		if result.Err != nil {
			logger.Warn().Str("tool", spec.Name).Str("kind", string(result.Err.Kind)).Str("error", result.Err.Message).Msg("tool call failed")
		}
		return toCallToolResult(result), nil
	}
}

// toCallToolResult converts a Result into the MCP wire shape.
// Failures are IsError text results so the client sees a tool-level error,
// not a protocol-level one.
func toCallToolResult(result Result) *mcp.CallToolResult {
	if result.Err != nil {
		return errorResult(result.Err.Error())
	}

	switch payload := result.Payload.(type) {
	case nil:
		return textResult("")
	case string:
		return textResult(payload)
	default:
		out, err := json.Marshal(payload)
		if err != nil {
			return errorResult("failed to encode response payload")
		}
		return textResult(string(out))
	}
}

// errorResult creates an MCP error result.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// textResult creates a plain MCP text result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}
