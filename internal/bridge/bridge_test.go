package bridge

import (
	"encoding/json"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/equipbook/bookings-mcp/internal/common"
	"github.com/equipbook/bookings-mcp/internal/config"
)

// --- Helpers ---

func testLogger() *common.Logger {
	return common.NewSilentLogger()
}

func testConfig(apiURL string) *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.API.URL = apiURL
	cfg.API.Timeout = "5s"
	cfg.API.BearerToken = "test-token"
	return cfg
}

func testExecutor(apiURL string) *Executor {
	return NewExecutor(testConfig(apiURL), testLogger())
}

// testCatalog builds a catalog from specs, failing the test on invalid input.
func testCatalog(t *testing.T, specs []EndpointSpec) *Catalog {
	t.Helper()
	catalog, err := NewCatalog(specs)
	if err != nil {
		t.Fatalf("failed to build test catalog: %v", err)
	}
	return catalog
}

// testServer builds an MCPServer with all catalog tools registered.
func testServer(t *testing.T, specs []EndpointSpec, apiURL string) *mcpserver.MCPServer {
	t.Helper()
	catalog := testCatalog(t, specs)
	d := NewDispatcher(catalog, testExecutor(apiURL), testLogger())
	s := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithToolCapabilities(true))
	d.Register(s)
	return s
}

// listTools calls tools/list on the MCPServer and returns the tools.
func listTools(t *testing.T, s *mcpserver.MCPServer) []mcpgo.Tool {
	t.Helper()

	msg := json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`)
	result := s.HandleMessage(t.Context(), msg)

	resp, ok := result.(mcpgo.JSONRPCResponse)
	if !ok {
		t.Fatalf("expected JSONRPCResponse, got %T", result)
	}

	resultJSON, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("failed to marshal result: %v", err)
	}

	var toolsResult mcpgo.ListToolsResult
	if err := json.Unmarshal(resultJSON, &toolsResult); err != nil {
		t.Fatalf("failed to unmarshal ListToolsResult: %v", err)
	}

	return toolsResult.Tools
}

// callTool calls a tool on the MCPServer and returns the result.
func callTool(t *testing.T, s *mcpserver.MCPServer, name string, args map[string]interface{}) *mcpgo.CallToolResult {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, _ := json.Marshal(params)

	msg := json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":` + string(paramsJSON) + `}`)
	result := s.HandleMessage(t.Context(), msg)

	resp, ok := result.(mcpgo.JSONRPCResponse)
	if !ok {
		t.Fatalf("expected JSONRPCResponse, got %T", result)
	}

	resultJSON, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("failed to marshal result: %v", err)
	}

	var toolResult mcpgo.CallToolResult
	if err := json.Unmarshal(resultJSON, &toolResult); err != nil {
		t.Fatalf("failed to unmarshal CallToolResult: %v", err)
	}

	return &toolResult
}

// extractText extracts the text field from an MCP content block.
func extractText(t *testing.T, content mcpgo.Content) string {
	t.Helper()
	contentJSON, _ := json.Marshal(content)
	var tc struct {
		Text string `json:"text"`
	}
	json.Unmarshal(contentJSON, &tc)
	return tc.Text
}

// statusSpec is a minimal one-endpoint catalog used across tests.
func statusSpec() EndpointSpec {
	return EndpointSpec{
		Name:        "get_status",
		Description: "Get service status.",
		Method:      "GET",
		Path:        "/status",
		Params:      []ParamSpec{},
	}
}

// itemSpec returns an endpoint with one required path param.
func itemSpec() EndpointSpec {
	return EndpointSpec{
		Name:        "get_item",
		Description: "Get an item by ID.",
		Method:      "GET",
		Path:        "/items/{id}",
		Params: []ParamSpec{
			{Name: "id", Type: "string", Description: "Item ID", Required: true, In: "path"},
		},
	}
}

// bookingSpec returns an endpoint with body params across types.
func bookingSpec() EndpointSpec {
	return EndpointSpec{
		Name:        "book_equipment",
		Description: "Create a booking.",
		Method:      "POST",
		Path:        "/bookings",
		Params: []ParamSpec{
			{Name: "tool_ids", Type: "array", Required: true, In: "body"},
			{Name: "date", Type: "string", Required: true, In: "body"},
			{Name: "number_of_people", Type: "number", Required: false, In: "body"},
			{Name: "confirm", Type: "boolean", Required: false, In: "body"},
		},
	}
}
