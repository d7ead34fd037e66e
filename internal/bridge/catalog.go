package bridge

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/equipbook/bookings-mcp/internal/common"
	"github.com/equipbook/bookings-mcp/internal/config"
)

// maxCatalogSize is the maximum allowed size for a catalog document (1MB).
const maxCatalogSize = 1 << 20

// catalogRetryDelay is the pause between catalog fetch attempts.
const catalogRetryDelay = 2 * time.Second

// allowedMethods is the whitelist of HTTP methods for catalog endpoints.
var allowedMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true,
}

//go:embed endpoints.json
var embeddedCatalog []byte

// EndpointSpec describes one HTTP endpoint exposed as an MCP tool.
type EndpointSpec struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Method      string      `json:"method"`
	Path        string      `json:"path"` // template with {param} segments
	Params      []ParamSpec `json:"params"`
}

// ParamSpec describes one parameter of an endpoint.
type ParamSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // string, number, boolean, array, object
	Description string `json:"description"`
	Required    bool   `json:"required"`
	In          string `json:"in"` // path, query, body
}

// Catalog is an immutable, ordered collection of endpoint specs.
type Catalog struct {
	specs []EndpointSpec
	index map[string]int
}

// NewCatalog validates the specs and builds a catalog from them.
// Any invalid entry fails the whole catalog.
func NewCatalog(specs []EndpointSpec) (*Catalog, error) {
	index := make(map[string]int, len(specs))
	for i, spec := range specs {
		if err := ValidateEndpointSpec(spec); err != nil {
			return nil, &CallError{Kind: KindCatalog, Message: err.Error(), Err: err}
		}
		if _, dup := index[spec.Name]; dup {
			return nil, newCallError(KindCatalog, "duplicate endpoint name %q", spec.Name)
		}
		index[spec.Name] = i
	}
	return &Catalog{specs: specs, index: index}, nil
}

// List returns all endpoint specs in declaration order.
func (c *Catalog) List() []EndpointSpec {
	return c.specs
}

// Lookup resolves an endpoint spec by tool name.
func (c *Catalog) Lookup(name string) (EndpointSpec, bool) {
	i, ok := c.index[name]
	if !ok {
		return EndpointSpec{}, false
	}
	return c.specs[i], true
}

// Len returns the number of endpoints in the catalog.
func (c *Catalog) Len() int {
	return len(c.specs)
}

// ValidateEndpointSpec validates a single endpoint spec.
func ValidateEndpointSpec(spec EndpointSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("endpoint has empty name")
	}
	if spec.Method == "" {
		return fmt.Errorf("endpoint %q has empty method", spec.Name)
	}
	if !allowedMethods[strings.ToUpper(spec.Method)] {
		return fmt.Errorf("endpoint %q has unsupported method %q", spec.Name, spec.Method)
	}
	if spec.Path == "" {
		return fmt.Errorf("endpoint %q has empty path", spec.Name)
	}
	if !strings.HasPrefix(spec.Path, "/") {
		return fmt.Errorf("endpoint %q has invalid path %q (must start with /)", spec.Name, spec.Path)
	}
	if strings.Contains(spec.Path, "..") {
		return fmt.Errorf("endpoint %q has invalid path %q (contains ..)", spec.Name, spec.Path)
	}

	seen := make(map[string]bool, len(spec.Params))
	for _, p := range spec.Params {
		if p.Name == "" {
			return fmt.Errorf("endpoint %q has a param with empty name", spec.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("endpoint %q has duplicate param %q", spec.Name, p.Name)
		}
		seen[p.Name] = true
		switch p.In {
		case "path":
			if !strings.Contains(spec.Path, "{"+p.Name+"}") {
				return fmt.Errorf("endpoint %q declares path param %q not present in path %q", spec.Name, p.Name, spec.Path)
			}
			if !p.Required {
				return fmt.Errorf("endpoint %q has optional path param %q (path params must be required)", spec.Name, p.Name)
			}
		case "query", "body":
		default:
			return fmt.Errorf("endpoint %q param %q has invalid location %q", spec.Name, p.Name, p.In)
		}
	}
	return nil
}

// ParseCatalog parses a JSON catalog document into a validated Catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	if len(data) > maxCatalogSize {
		return nil, newCallError(KindCatalog, "catalog document too large: %d bytes (max %d)", len(data), maxCatalogSize)
	}
	var specs []EndpointSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, &CallError{Kind: KindCatalog, Message: fmt.Sprintf("failed to parse catalog: %v", err), Err: err}
	}
	return NewCatalog(specs)
}

// LoadCatalog loads the endpoint catalog per config.
// Sources: "embedded" (compiled-in bookings catalog), "file", "url".
// Any failure here is fatal to startup.
func LoadCatalog(ctx context.Context, cfg config.CatalogConfig, logger *common.Logger) (*Catalog, error) {
	source := cfg.Source
	if source == "" {
		source = "embedded"
	}

	switch source {
	case "embedded":
		catalog, err := ParseCatalog(embeddedCatalog)
		if err != nil {
			return nil, err
		}
		logger.Info().Int("endpoints", catalog.Len()).Msg("loaded embedded catalog")
		return catalog, nil

	case "file":
		data, err := os.ReadFile(cfg.Path)
		if err != nil {
			return nil, &CallError{Kind: KindCatalog, Message: fmt.Sprintf("failed to read catalog file %s: %v", cfg.Path, err), Err: err}
		}
		catalog, err := ParseCatalog(data)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("path", cfg.Path).Int("endpoints", catalog.Len()).Msg("loaded catalog file")
		return catalog, nil

	case "url":
		return fetchCatalog(ctx, cfg, logger)

	default:
		return nil, newCallError(KindCatalog, "unknown catalog source %q", source)
	}
}

// fetchCatalog fetches the catalog document over HTTP with retries.
func fetchCatalog(ctx context.Context, cfg config.CatalogConfig, logger *common.Logger) (*Catalog, error) {
	retries := cfg.Retries
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		data, err := fetchCatalogOnce(ctx, cfg.URL)
		if err == nil {
			catalog, perr := ParseCatalog(data)
			if perr != nil {
				return nil, perr
			}
			logger.Info().Str("url", cfg.URL).Int("endpoints", catalog.Len()).Msg("fetched catalog")
			return catalog, nil
		}
		lastErr = err
		logger.Warn().Int("attempt", attempt).Str("error", err.Error()).Msg("catalog fetch failed")

		if attempt < retries {
			select {
			case <-time.After(catalogRetryDelay):
			case <-ctx.Done():
				return nil, &CallError{Kind: KindCatalog, Message: "catalog fetch cancelled", Err: ctx.Err()}
			}
		}
	}
	return nil, &CallError{Kind: KindCatalog, Message: fmt.Sprintf("failed to fetch catalog from %s: %v", cfg.URL, lastErr), Err: lastErr}
}

// fetchCatalogOnce performs a single catalog fetch with a bounded body read.
func fetchCatalogOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog response: %w", err)
	}
	if len(body) > maxCatalogSize {
		return nil, fmt.Errorf("catalog response too large: over %d bytes", maxCatalogSize)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("catalog endpoint returned %d", resp.StatusCode)
	}
	return body, nil
}
