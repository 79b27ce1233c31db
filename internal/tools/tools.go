// Package tools exposes the gateway filesystem operations as MCP tools.
// It owns the authorization boundary: mutations are checked against the
// configured home node before any network call, and every outcome is
// reported as either a structured success payload or an error result,
// never both.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/assemblycapital/hyperslop-mcp/internal/logger"
	"github.com/assemblycapital/hyperslop-mcp/pkg/gateway"
)

const notConfiguredMsg = "Gateway client not configured"

// Service dispatches tool calls to the gateway client. A nil client means
// configuration failed at startup; every tool then reports the
// unconfigured error without touching the network.
type Service struct {
	client *gateway.Client
}

// NewService wraps a gateway client. client may be nil.
func NewService(client *gateway.Client) *Service {
	return &Service{client: client}
}

// Register adds every HyperSlop tool to the MCP server.
func Register(s *server.MCPServer, svc *Service) {
	s.AddTool(mcp.NewTool("get_our_node_name",
		mcp.WithDescription("Get your node's name as configured in api.json. This is your identity in the HyperSlop network and determines which filesystem you can modify."),
	), svc.GetOurNodeName)

	s.AddTool(mcp.NewTool("read_directory",
		mcp.WithDescription("List contents of a directory on any node in the HyperSlop network."),
		mcp.WithString("node", mcp.Required(), mcp.Description("The name of the node to read from. You can read from any node in the network. Use get_our_node_name to get your node's name.")),
		mcp.WithString("path", mcp.Required(), mcp.Description("The directory path to list contents from.")),
	), svc.ReadDirectory)

	s.AddTool(mcp.NewTool("create_directory",
		mcp.WithDescription("Create a new directory on your node."),
		mcp.WithString("node", mcp.Required(), mcp.Description("Must match your node name from api.json. You can only create directories on your own node.")),
		mcp.WithString("path", mcp.Required(), mcp.Description("The directory path to create.")),
	), svc.CreateDirectory)

	s.AddTool(mcp.NewTool("delete_directory",
		mcp.WithDescription("Delete a directory and its contents from your node."),
		mcp.WithString("node", mcp.Required(), mcp.Description("Must match your node name from api.json. You can only delete directories on your own node.")),
		mcp.WithString("path", mcp.Required(), mcp.Description("The directory path to delete.")),
	), svc.DeleteDirectory)

	s.AddTool(mcp.NewTool("read_file",
		mcp.WithDescription("Read contents of a text file from any node in the HyperSlop network."),
		mcp.WithString("node", mcp.Required(), mcp.Description("The name of the node to read from. You can read from any node in the network.")),
		mcp.WithString("path", mcp.Required(), mcp.Description("The file path to read.")),
	), svc.ReadFile)

	s.AddTool(mcp.NewTool("create_file",
		mcp.WithDescription("Create a new file with content on your node."),
		mcp.WithString("node", mcp.Required(), mcp.Description("Must match your node name from api.json. You can only create files on your own node.")),
		mcp.WithString("path", mcp.Required(), mcp.Description("The file path to create.")),
		mcp.WithString("content", mcp.Description("The content to write to the new file.")),
	), svc.CreateFile)

	s.AddTool(mcp.NewTool("write_file",
		mcp.WithDescription("Write content to an existing file on your node."),
		mcp.WithString("node", mcp.Required(), mcp.Description("Must match your node name from api.json. You can only write to files on your own node.")),
		mcp.WithString("path", mcp.Required(), mcp.Description("The file path to write to.")),
		mcp.WithString("content", mcp.Required(), mcp.Description("The content to write to the file.")),
	), svc.WriteFile)

	s.AddTool(mcp.NewTool("delete_file",
		mcp.WithDescription("Delete a file from your node."),
		mcp.WithString("node", mcp.Required(), mcp.Description("Must match your node name from api.json. You can only delete files on your own node.")),
		mcp.WithString("path", mcp.Required(), mcp.Description("The file path to delete.")),
	), svc.DeleteFile)

	s.AddTool(mcp.NewTool("read_file_tree",
		mcp.WithDescription("Read the file tree structure from any node in the HyperSlop network. Returns only the structure (names, types, and paths), not file contents."),
		mcp.WithString("node", mcp.Required(), mcp.Description("The name of the node to read from. You can read from any node in the network.")),
	), svc.ReadFileTree)
}

// GetOurNodeName returns the configured home node identifier. Local lookup,
// no network call.
func (svc *Service) GetOurNodeName(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if svc.client == nil {
		logger.Error("get_our_node_name called before gateway client initialization")
		return mcp.NewToolResultError(notConfiguredMsg), nil
	}
	node := svc.client.Node()
	logger.Info("get_our_node_name: %s", node)
	return mcp.NewToolResultText(node), nil
}

func (svc *Service) ReadDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	node, path, res := svc.nodeAndPath(req, "read_directory")
	if res != nil {
		return res, nil
	}
	logger.Info("read_directory: %s on node %s", path, node)
	entries, err := svc.client.ReadDir(ctx, node, path)
	if err != nil {
		return toolError("read_directory", node, path, err), nil
	}
	return entriesResult(entries)
}

func (svc *Service) CreateDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	node, path, res := svc.nodeAndPath(req, "create_directory")
	if res != nil {
		return res, nil
	}
	if res := svc.requireHomeNode(node, "create directories"); res != nil {
		return res, nil
	}
	logger.Info("create_directory: %s on node %s", path, node)
	if err := svc.client.CreateDir(ctx, node, path); err != nil {
		return toolError("create_directory", node, path, err), nil
	}
	return okResult(node, path)
}

func (svc *Service) DeleteDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	node, path, res := svc.nodeAndPath(req, "delete_directory")
	if res != nil {
		return res, nil
	}
	if res := svc.requireHomeNode(node, "delete directories"); res != nil {
		return res, nil
	}
	logger.Info("delete_directory: %s on node %s", path, node)
	if err := svc.client.DeleteDir(ctx, node, path); err != nil {
		return toolError("delete_directory", node, path, err), nil
	}
	return okResult(node, path)
}

func (svc *Service) ReadFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	node, path, res := svc.nodeAndPath(req, "read_file")
	if res != nil {
		return res, nil
	}
	logger.Info("read_file: %s on node %s", path, node)
	content, err := svc.client.ReadFile(ctx, node, path)
	if err != nil {
		return toolError("read_file", node, path, err), nil
	}
	return jsonResult(content)
}

func (svc *Service) CreateFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	node, path, res := svc.nodeAndPath(req, "create_file")
	if res != nil {
		return res, nil
	}
	if res := svc.requireHomeNode(node, "create files"); res != nil {
		return res, nil
	}
	content := req.GetString("content", "")
	logger.Info("create_file: %s on node %s", path, node)
	if err := svc.client.CreateFile(ctx, node, path, content); err != nil {
		return toolError("create_file", node, path, err), nil
	}
	return okResult(node, path)
}

func (svc *Service) WriteFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	node, path, res := svc.nodeAndPath(req, "write_file")
	if res != nil {
		return res, nil
	}
	if res := svc.requireHomeNode(node, "write to files"); res != nil {
		return res, nil
	}
	content := req.GetString("content", "")
	if strings.TrimSpace(content) == "" {
		logger.Warn("write_file: no content provided for %s on node %s", path, node)
		return mcp.NewToolResultError("No content provided"), nil
	}
	logger.Info("write_file: %s on node %s", path, node)
	if err := svc.client.WriteFile(ctx, node, path, content); err != nil {
		return toolError("write_file", node, path, err), nil
	}
	return okResult(node, path)
}

func (svc *Service) DeleteFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	node, path, res := svc.nodeAndPath(req, "delete_file")
	if res != nil {
		return res, nil
	}
	if res := svc.requireHomeNode(node, "delete files"); res != nil {
		return res, nil
	}
	logger.Info("delete_file: %s on node %s", path, node)
	if err := svc.client.DeleteFile(ctx, node, path); err != nil {
		return toolError("delete_file", node, path, err), nil
	}
	return okResult(node, path)
}

func (svc *Service) ReadFileTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if svc.client == nil {
		logger.Error("read_file_tree called before gateway client initialization")
		return mcp.NewToolResultError(notConfiguredMsg), nil
	}
	node, err := req.RequireString("node")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	logger.Info("read_file_tree: node %s", node)
	entries, err := svc.client.ReadFileTree(ctx, node)
	if err != nil {
		return toolError("read_file_tree", node, "", err), nil
	}
	return entriesResult(entries)
}

// nodeAndPath extracts the common arguments, returning a ready error result
// when the client is unconfigured or an argument is missing.
func (svc *Service) nodeAndPath(req mcp.CallToolRequest, tool string) (node, path string, res *mcp.CallToolResult) {
	if svc.client == nil {
		logger.Error("%s called before gateway client initialization", tool)
		return "", "", mcp.NewToolResultError(notConfiguredMsg)
	}
	node, err := req.RequireString("node")
	if err != nil {
		return "", "", mcp.NewToolResultError(err.Error())
	}
	path, err = req.RequireString("path")
	if err != nil {
		return "", "", mcp.NewToolResultError(err.Error())
	}
	return node, path, nil
}

// requireHomeNode rejects mutations targeting any node other than the
// configured home node, before any network call.
func (svc *Service) requireHomeNode(node, verb string) *mcp.CallToolResult {
	if node == svc.client.Node() {
		return nil
	}
	logger.Warn("mutation rejected: node %s is not home node %s", node, svc.client.Node())
	return mcp.NewToolResultError(fmt.Sprintf("You can only %s on your own node", verb))
}

func toolError(tool, node, path string, err error) *mcp.CallToolResult {
	if path != "" {
		logger.Error("%s failed for %s on node %s: %v", tool, path, node, err)
	} else {
		logger.Error("%s failed on node %s: %v", tool, node, err)
	}
	return mcp.NewToolResultError(err.Error())
}

func entriesResult(entries []gateway.Entry) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]any{"entries": entries})
}

func okResult(node, path string) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]any{"ok": true, "node": node, "path": path})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
