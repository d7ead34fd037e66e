package bridge

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/equipbook/bookings-mcp/internal/common"
)

// versionInfo holds version fields for one component.
type versionInfo struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
}

// VersionTool returns the mcp.Tool definition for the built-in get_version tool.
func VersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the bookings MCP bridge version and backend status. Use this to verify connectivity."),
	)
}

// VersionToolHandler returns a handler that reports the bridge version and,
// when reachable, the backend health payload.
func VersionToolHandler(executor *Executor) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := map[string]interface{}{
			"bridge": versionInfo{
				Version: common.GetVersion(),
				Build:   common.GetBuild(),
				Commit:  common.GetGitCommit(),
			},
		}

		// Backend health — graceful degradation if unreachable.
		health := executor.Execute(ctx, &RequestDescriptor{Method: "GET", Path: "/health"})
		if health.OK() {
			result["backend"] = health.Payload
		} else {
			result["backend_error"] = health.Err.Error()
		}

		out, err := json.Marshal(result)
		if err != nil {
			return errorResult("failed to marshal version info"), nil
		}
		return textResult(string(out)), nil
	}
}
