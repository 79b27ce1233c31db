package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/assemblycapital/hyperslop-mcp/internal/httpx"
)

// RPC operation discriminators understood by the gateway.
const (
	opReadDir    = "read_dir"
	opCreateDir  = "create_dir"
	opDeleteDir  = "delete_dir"
	opCreateFile = "create_file"
	opWriteFile  = "write_file"
	opDeleteFile = "delete_file"
	opFileTree   = "file_tree"
)

// Client provides access to the HyperSlop gateway API. It carries the home
// node identifier from local configuration; ownership of that node is
// enforced by callers (the tool surface), not here.
type Client struct {
	backend Backend
	node    string
}

// New constructs an HTTP-backed client. The API key is attached as the
// X-API-Key header on every call.
func New(baseURL, apiKey, node string, opts ...httpx.Option) (*Client, error) {
	if strings.TrimSpace(node) == "" {
		return nil, fmt.Errorf("gateway: home node is required")
	}
	headers := http.Header{}
	headers.Set("X-API-Key", apiKey)

	cl, err := httpx.NewClient(baseURL, append([]httpx.Option{httpx.WithHeaders(headers)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Client{backend: &httpBackend{client: cl}, node: node}, nil
}

// NewWithBackend allows callers to provide a custom backend (e.g., mocks).
func NewWithBackend(b Backend, node string) *Client {
	return &Client{backend: b, node: node}
}

// Node returns the configured home node identifier. This is a local lookup;
// no network call is made.
func (c *Client) Node() string {
	return c.node
}

// ReadDir lists the entries directly under path on any node.
func (c *Client) ReadDir(ctx context.Context, node, path string) ([]Entry, error) {
	if err := c.check(node); err != nil {
		return nil, err
	}
	return c.backend.ReadDir(ctx, node, path)
}

// CreateDir creates a directory on a node.
func (c *Client) CreateDir(ctx context.Context, node, path string) error {
	if err := c.check(node); err != nil {
		return err
	}
	return c.backend.CreateDir(ctx, node, path)
}

// DeleteDir removes a directory and its contents from a node.
func (c *Client) DeleteDir(ctx context.Context, node, path string) error {
	if err := c.check(node); err != nil {
		return err
	}
	return c.backend.DeleteDir(ctx, node, path)
}

// ReadFile fetches a text file's content from any node. Files whose content
// type is not text are rejected with ErrUnsupportedContent.
func (c *Client) ReadFile(ctx context.Context, node, path string) (*FileContent, error) {
	if err := c.check(node); err != nil {
		return nil, err
	}
	return c.backend.ReadFile(ctx, node, path)
}

// CreateFile creates a new file with content on a node.
func (c *Client) CreateFile(ctx context.Context, node, path, content string) error {
	if err := c.check(node); err != nil {
		return err
	}
	return c.backend.CreateFile(ctx, node, path, content)
}

// WriteFile replaces the content of an existing file on a node.
func (c *Client) WriteFile(ctx context.Context, node, path, content string) error {
	if err := c.check(node); err != nil {
		return err
	}
	return c.backend.WriteFile(ctx, node, path, content)
}

// DeleteFile removes a file from a node.
func (c *Client) DeleteFile(ctx context.Context, node, path string) error {
	if err := c.check(node); err != nil {
		return err
	}
	return c.backend.DeleteFile(ctx, node, path)
}

// ReadFileTree lists the whole structure of a node: names, types and paths,
// never file contents.
func (c *Client) ReadFileTree(ctx context.Context, node string) ([]Entry, error) {
	if err := c.check(node); err != nil {
		return nil, err
	}
	return c.backend.ReadFileTree(ctx, node)
}

func (c *Client) check(node string) error {
	if c == nil || c.backend == nil {
		return fmt.Errorf("gateway: client is nil")
	}
	if strings.TrimSpace(node) == "" {
		return fmt.Errorf("gateway: node is required")
	}
	return nil
}

// Backend abstracts the wire protocol so tests and the sandbox can swap in
// an in-memory implementation.
type Backend interface {
	ReadDir(ctx context.Context, node, path string) ([]Entry, error)
	CreateDir(ctx context.Context, node, path string) error
	DeleteDir(ctx context.Context, node, path string) error
	ReadFile(ctx context.Context, node, path string) (*FileContent, error)
	CreateFile(ctx context.Context, node, path, content string) error
	WriteFile(ctx context.Context, node, path, content string) error
	DeleteFile(ctx context.Context, node, path string) error
	ReadFileTree(ctx context.Context, node string) ([]Entry, error)
}

type httpBackend struct {
	client *httpx.Client
}

type rpcRequest struct {
	Node    string     `json:"node"`
	Request rpcPayload `json:"request"`
}

type rpcPayload struct {
	RequestType string `json:"request_type"`
	Path        string `json:"path,omitempty"`
	Content     string `json:"content,omitempty"`
}

type entriesResponse struct {
	Entries []Entry `json:"entries"`
}

func (b *httpBackend) ReadDir(ctx context.Context, node, path string) ([]Entry, error) {
	body, err := b.rpc(ctx, rpcRequest{Node: node, Request: rpcPayload{RequestType: opReadDir, Path: path}})
	if err != nil {
		return nil, fmt.Errorf("gateway: read directory %q on %s: %w", path, node, err)
	}
	return decodeEntries(body, opReadDir)
}

func (b *httpBackend) CreateDir(ctx context.Context, node, path string) error {
	_, err := b.rpc(ctx, rpcRequest{Node: node, Request: rpcPayload{RequestType: opCreateDir, Path: path}})
	if err != nil {
		return fmt.Errorf("gateway: create directory %q on %s: %w", path, node, err)
	}
	return nil
}

func (b *httpBackend) DeleteDir(ctx context.Context, node, path string) error {
	_, err := b.rpc(ctx, rpcRequest{Node: node, Request: rpcPayload{RequestType: opDeleteDir, Path: path}})
	if err != nil {
		return fmt.Errorf("gateway: delete directory %q on %s: %w", path, node, err)
	}
	return nil
}

func (b *httpBackend) ReadFile(ctx context.Context, node, path string) (*FileContent, error) {
	resp, err := b.client.Do(ctx, &httpx.Request{
		Method: http.MethodGet,
		Path:   readPath(node, path),
	})
	if err != nil {
		if httpx.StatusOf(err) == http.StatusNotFound {
			return nil, fmt.Errorf("gateway: file %q not found on %s: %w", path, node, ErrNotFound)
		}
		return nil, fmt.Errorf("gateway: read file %q on %s: %w", path, node, err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if !isTextMime(mimeType) {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("gateway: file %q on %s has content type %q, only text files can be read: %w",
			path, node, mimeType, ErrUnsupportedContent)
	}

	data, err := httpx.ReadAllAndClose(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gateway: read file %q on %s: %w", path, node, err)
	}
	return &FileContent{Path: path, MimeType: mimeType, Content: string(data)}, nil
}

func (b *httpBackend) CreateFile(ctx context.Context, node, path, content string) error {
	_, err := b.rpc(ctx, rpcRequest{Node: node, Request: rpcPayload{RequestType: opCreateFile, Path: path, Content: content}})
	if err != nil {
		return fmt.Errorf("gateway: create file %q on %s: %w", path, node, err)
	}
	return nil
}

func (b *httpBackend) WriteFile(ctx context.Context, node, path, content string) error {
	_, err := b.rpc(ctx, rpcRequest{Node: node, Request: rpcPayload{RequestType: opWriteFile, Path: path, Content: content}})
	if err != nil {
		return fmt.Errorf("gateway: write file %q on %s: %w", path, node, err)
	}
	return nil
}

func (b *httpBackend) DeleteFile(ctx context.Context, node, path string) error {
	_, err := b.rpc(ctx, rpcRequest{Node: node, Request: rpcPayload{RequestType: opDeleteFile, Path: path}})
	if err != nil {
		return fmt.Errorf("gateway: delete file %q on %s: %w", path, node, err)
	}
	return nil
}

func (b *httpBackend) ReadFileTree(ctx context.Context, node string) ([]Entry, error) {
	body, err := b.rpc(ctx, rpcRequest{Node: node, Request: rpcPayload{RequestType: opFileTree}})
	if err != nil {
		return nil, fmt.Errorf("gateway: read file tree of %s: %w", node, err)
	}
	return decodeEntries(body, opFileTree)
}

func (b *httpBackend) rpc(ctx context.Context, req rpcRequest) ([]byte, error) {
	if b == nil || b.client == nil {
		return nil, errors.New("http backend not configured")
	}
	body, contentType, err := httpx.WithJSONBody(req)
	if err != nil {
		return nil, err
	}
	resp, err := b.client.Do(ctx, &httpx.Request{
		Method: http.MethodPost,
		Path:   "rpc",
		Header: http.Header{"Content-Type": []string{contentType}},
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	return httpx.ReadAllAndClose(resp.Body)
}

// decodeEntries parses a listing response and strips the internal VFS
// prefix so entry paths are relative to the node's public root.
func decodeEntries(body []byte, op string) ([]Entry, error) {
	var result entriesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("gateway: decode %s response: %w", op, err)
	}
	entries := result.Entries
	for i := range entries {
		entries[i].Path = strings.TrimPrefix(entries[i].Path, treePrefix)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// readPath builds the raw read endpoint path, escaping the node and each
// path segment individually so slashes keep their meaning.
func readPath(node, path string) string {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return "read/" + url.PathEscape(node) + "/" + strings.Join(segments, "/")
}

func isTextMime(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		// Gateways that omit the header serve plain text.
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "text/")
}
