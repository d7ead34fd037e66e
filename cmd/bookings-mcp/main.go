package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/equipbook/bookings-mcp/internal/bridge"
	"github.com/equipbook/bookings-mcp/internal/common"
	"github.com/equipbook/bookings-mcp/internal/config"
)

func main() {
	stdio := flag.Bool("stdio", false, "Use stdio transport (for Claude Desktop)")
	configFile := flag.String("config", "bookings-mcp.toml", "Path to config file")
	port := flag.String("port", "", "Override HTTP listen port")
	flag.Parse()

	cfg, err := config.LoadFromFile(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.ApplyFlagOverrides(cfg, *port)

	common.LoadVersionFromFile()

	logger := common.NewLoggerFromConfig(cfg.Logging)

	// Catalog failures are fatal: without a valid catalog there is nothing to serve.
	catalog, err := bridge.LoadCatalog(context.Background(), cfg.Catalog, logger)
	if err != nil {
		logger.Error().Str("error", err.Error()).Msg("failed to load endpoint catalog")
		log.Fatalf("Failed to load endpoint catalog: %v", err)
	}

	executor := bridge.NewExecutor(cfg, logger)
	dispatcher := bridge.NewDispatcher(catalog, executor, logger)

	mcpServer := server.NewMCPServer(
		cfg.Server.Name,
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	count := dispatcher.Register(mcpServer)
	logger.Info().Int("tools", count).Str("api_url", cfg.API.URL).Msg("registered catalog tools")

	if *stdio {
		// Stdio transport — reads stdin, writes stdout
		if err := server.ServeStdio(mcpServer); err != nil {
			fmt.Fprintf(os.Stderr, "stdio server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Streamable HTTP transport — listens on configured port
	httpServer := server.NewStreamableHTTPServer(mcpServer,
		server.WithStateLess(true),
	)

	logger.Info().Str("port", cfg.Server.Port).Msg("starting MCP streamable HTTP")
	fmt.Fprintf(os.Stderr, "Starting MCP Streamable HTTP on :%s\n", cfg.Server.Port)

	if err := httpServer.Start(":" + cfg.Server.Port); err != nil {
		fmt.Fprintf(os.Stderr, "http server error: %v\n", err)
		os.Exit(1)
	}
}
