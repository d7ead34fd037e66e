package bridge

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// normalizeType maps a declared param type to the canonical schema type.
// Unknown types degrade to string so the tool stays callable.
func normalizeType(t string) string {
	switch strings.ToLower(t) {
	case "string", "number", "boolean", "array", "object":
		return strings.ToLower(t)
	case "integer":
		return "number"
	default:
		return "string"
	}
}

// Translate converts an EndpointSpec into an mcp.Tool with the appropriate
// input schema. Pure: the same spec always yields the same tool.
func Translate(spec EndpointSpec) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(spec.Description)}
	for _, p := range spec.Params {
		opts = append(opts, paramOption(p))
	}
	return mcp.NewTool(spec.Name, opts...)
}

// paramOption maps a ParamSpec to the appropriate mcp-go tool option.
func paramOption(p ParamSpec) mcp.ToolOption {
	desc := p.Description
	normalized := normalizeType(p.Type)
	if normalized == "string" && p.Type != "" && strings.ToLower(p.Type) != "string" && strings.ToLower(p.Type) != "object" {
		// Declared type has no schema equivalent; make the degradation visible.
		if desc != "" {
			desc += " "
		}
		desc += "(value passed as string)"
	}

	var opts []mcp.PropertyOption
	if desc != "" {
		opts = append(opts, mcp.Description(desc))
	}
	if p.Required {
		opts = append(opts, mcp.Required())
	}

	switch normalized {
	case "number":
		return mcp.WithNumber(p.Name, opts...)
	case "boolean":
		return mcp.WithBoolean(p.Name, opts...)
	case "array":
		opts = append([]mcp.PropertyOption{mcp.WithStringItems()}, opts...)
		return mcp.WithArray(p.Name, opts...)
	default:
		// string, object, or unknown — all passed as string
		return mcp.WithString(p.Name, opts...)
	}
}
