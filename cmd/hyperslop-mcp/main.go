// Command hyperslop-mcp serves the HyperSlop filesystem tools over the MCP
// stdio transport. Each node in the network has its own filesystem; the
// node named in api.json is the only one this process may modify.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/assemblycapital/hyperslop-mcp/internal/httpx"
	"github.com/assemblycapital/hyperslop-mcp/internal/logger"
	"github.com/assemblycapital/hyperslop-mcp/internal/tools"
	"github.com/assemblycapital/hyperslop-mcp/pkg/config"
	"github.com/assemblycapital/hyperslop-mcp/pkg/gateway"
)

const version = "0.2.0"

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to api.json")
	flag.Parse()

	// A broken configuration degrades the tool surface instead of killing
	// the process: every tool then answers with the unconfigured error.
	client := initClient(*configPath)

	s := server.NewMCPServer("HyperSlop Server", version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	tools.Register(s, tools.NewService(client))

	logger.Info("starting HyperSlop MCP server on stdio")
	if err := server.ServeStdio(s); err != nil {
		logger.Error("server stopped: %v", err)
		os.Exit(1)
	}
}

func initClient(path string) *gateway.Client {
	logger.Info("loading configuration from %s", path)
	cfg, err := config.Load(path)
	if err != nil {
		logger.Error("load configuration: %v", err)
		return nil
	}
	logger.SetLevel(cfg.Logging.Level)

	client, err := gateway.New(cfg.URL, cfg.Key, cfg.Node, httpx.WithTimeout(cfg.Timeout()))
	if err != nil {
		logger.Error("initialize gateway client: %v", err)
		return nil
	}
	logger.Info("gateway client initialized with node %s", cfg.Node)
	return client
}

// defaultConfigPath resolves api.json next to the binary, falling back to
// the working directory.
func defaultConfigPath() string {
	if env := os.Getenv("HYPERSLOP_CONFIG"); env != "" {
		return env
	}
	exe, err := os.Executable()
	if err != nil {
		return "api.json"
	}
	return filepath.Join(filepath.Dir(exe), "api.json")
}
