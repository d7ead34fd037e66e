package bridge

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// RequestDescriptor is the mapper's output: everything the executor needs
// to issue one HTTP request. Path includes the query string when present.
type RequestDescriptor struct {
	Method string
	Path   string
	Body   map[string]interface{}
}

// MapArguments validates tool-call arguments against an endpoint spec and
// assembles a request descriptor. Pure and synchronous; never touches the
// network. All rejections are ValidationError.
func MapArguments(spec EndpointSpec, args map[string]interface{}) (*RequestDescriptor, error) {
	declared := make(map[string]bool, len(spec.Params))
	for _, p := range spec.Params {
		declared[p.Name] = true
	}
	for name := range args {
		if !declared[name] {
			return nil, newCallError(KindValidation, "unknown argument %q for tool %q", name, spec.Name)
		}
	}

	path := spec.Path
	var query []string
	body := map[string]interface{}{}

	for _, p := range spec.Params {
		val, present := args[p.Name]
		if !present || val == nil {
			if p.Required {
				return nil, newCallError(KindValidation, "missing required argument %q", p.Name)
			}
			continue
		}

		coerced, err := coerceValue(p, val)
		if err != nil {
			return nil, err
		}

		switch p.In {
		case "path":
			strVal := formatValue(coerced)
			if strVal == "" {
				return nil, newCallError(KindValidation, "argument %q must not be empty", p.Name)
			}
			path = strings.ReplaceAll(path, "{"+p.Name+"}", url.PathEscape(strVal))
		case "query":
			strVal := formatValue(coerced)
			if strVal != "" {
				query = append(query, url.QueryEscape(p.Name)+"="+url.QueryEscape(strVal))
			}
		case "body":
			body[p.Name] = coerced
		}
	}

	if len(query) > 0 {
		// Declaration order, not url.Values' sorted order.
		path += "?" + strings.Join(query, "&")
	}
	if len(body) == 0 {
		body = nil
	}

	return &RequestDescriptor{
		Method: strings.ToUpper(spec.Method),
		Path:   path,
		Body:   body,
	}, nil
}

// coerceValue converts a raw argument to the param's declared type.
// Returns ValidationError when the value cannot represent that type.
func coerceValue(p ParamSpec, val interface{}) (interface{}, error) {
	switch normalizeType(p.Type) {
	case "number":
		switch v := val.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return nil, newCallError(KindValidation, "argument %q: %q is not a number", p.Name, v.String())
			}
			return f, nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, newCallError(KindValidation, "argument %q: %q is not a number", p.Name, v)
			}
			return f, nil
		default:
			return nil, newCallError(KindValidation, "argument %q: expected a number, got %T", p.Name, val)
		}

	case "boolean":
		switch v := val.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, newCallError(KindValidation, "argument %q: %q is not a boolean", p.Name, v)
			}
			return b, nil
		default:
			return nil, newCallError(KindValidation, "argument %q: expected a boolean, got %T", p.Name, val)
		}

	case "array":
		switch v := val.(type) {
		case []interface{}:
			return v, nil
		case []string:
			out := make([]interface{}, len(v))
			for i, s := range v {
				out[i] = s
			}
			return out, nil
		case string:
			// Accept a comma-separated string; clients often send lists that way.
			parts := strings.Split(v, ",")
			out := make([]interface{}, 0, len(parts))
			for _, part := range parts {
				if trimmed := strings.TrimSpace(part); trimmed != "" {
					out = append(out, trimmed)
				}
			}
			return out, nil
		default:
			return nil, newCallError(KindValidation, "argument %q: expected an array, got %T", p.Name, val)
		}

	case "object":
		switch v := val.(type) {
		case map[string]interface{}:
			return v, nil
		case string:
			// The schema exposes object params as strings; accept JSON text.
			var obj map[string]interface{}
			if err := json.Unmarshal([]byte(v), &obj); err != nil {
				return nil, newCallError(KindValidation, "argument %q: not a JSON object", p.Name)
			}
			return obj, nil
		default:
			return nil, newCallError(KindValidation, "argument %q: expected an object, got %T", p.Name, val)
		}

	default:
		// string or unknown
		switch v := val.(type) {
		case string:
			return v, nil
		case float64:
			return formatValue(v), nil
		case bool:
			return strconv.FormatBool(v), nil
		default:
			return nil, newCallError(KindValidation, "argument %q: expected a string, got %T", p.Name, val)
		}
	}
}

// formatValue renders a coerced value for use in a path or query segment.
func formatValue(val interface{}) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		out, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(out)
	}
}
