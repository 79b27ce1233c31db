package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/assemblycapital/hyperslop-mcp/pkg/gateway"
)

type rpcBody struct {
	Node    string `json:"node"`
	Request struct {
		RequestType string `json:"request_type"`
		Path        string `json:"path"`
		Content     string `json:"content"`
	} `json:"request"`
}

func TestRPCOperations(t *testing.T) {
	var calls []rpcBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "sekrit" {
			http.Error(w, "invalid API key", http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/rpc" || r.Method != http.MethodPost {
			http.Error(w, "unexpected route", http.StatusNotFound)
			return
		}
		defer r.Body.Close()
		var body rpcBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		calls = append(calls, body)

		w.Header().Set("Content-Type", "application/json")
		switch body.Request.RequestType {
		case "read_dir":
			json.NewEncoder(w).Encode(map[string]any{
				"entries": []map[string]string{
					{"path": "docs", "type": "directory"},
					{"path": "readme.txt", "type": "file"},
				},
			})
		default:
			json.NewEncoder(w).Encode(map[string]any{"ok": true})
		}
	}))
	defer srv.Close()

	client, err := gateway.New(srv.URL, "sekrit", "mynode.os")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	if err := client.CreateDir(ctx, "mynode.os", "docs"); err != nil {
		t.Fatalf("CreateDir: %v", err)
	}
	if err := client.CreateFile(ctx, "mynode.os", "docs/a.txt", "hello"); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if err := client.WriteFile(ctx, "mynode.os", "docs/a.txt", "hello again"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	entries, err := client.ReadDir(ctx, "othernode.os", "")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if err := client.DeleteFile(ctx, "mynode.os", "docs/a.txt"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if err := client.DeleteDir(ctx, "mynode.os", "docs"); err != nil {
		t.Fatalf("DeleteDir: %v", err)
	}

	if len(entries) != 2 || entries[0].Path != "docs" || entries[1].Type != gateway.EntryTypeFile {
		t.Fatalf("unexpected ReadDir entries: %#v", entries)
	}

	expected := []struct {
		node, op, path, content string
	}{
		{"mynode.os", "create_dir", "docs", ""},
		{"mynode.os", "create_file", "docs/a.txt", "hello"},
		{"mynode.os", "write_file", "docs/a.txt", "hello again"},
		{"othernode.os", "read_dir", "", ""},
		{"mynode.os", "delete_file", "docs/a.txt", ""},
		{"mynode.os", "delete_dir", "docs", ""},
	}
	if len(calls) != len(expected) {
		t.Fatalf("expected %d RPC calls, got %d", len(expected), len(calls))
	}
	for i, want := range expected {
		got := calls[i]
		if got.Node != want.node || got.Request.RequestType != want.op ||
			got.Request.Path != want.path || got.Request.Content != want.content {
			t.Fatalf("call %d mismatch: %#v", i, got)
		}
	}
}

func TestReadFileText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/read/mynode.os/notes/hello.txt" {
			http.Error(w, "unexpected path "+r.URL.Path, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	client, err := gateway.New(srv.URL, "k", "mynode.os")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	content, err := client.ReadFile(context.Background(), "mynode.os", "notes/hello.txt")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if content.Content != "hello world" {
		t.Fatalf("unexpected content %q", content.Content)
	}
	if content.MimeType != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected mime type %q", content.MimeType)
	}
	if content.Path != "notes/hello.txt" {
		t.Fatalf("unexpected path %q", content.Path)
	}
}

func TestReadFileNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client, err := gateway.New(srv.URL, "k", "mynode.os")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.ReadFile(context.Background(), "mynode.os", "missing.txt")
	if !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "missing.txt") {
		t.Fatalf("error does not name the path: %v", err)
	}
}

func TestReadFileRejectsBinaryContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte{0x00, 0x01, 0x02})
	}))
	defer srv.Close()

	client, err := gateway.New(srv.URL, "k", "mynode.os")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.ReadFile(context.Background(), "mynode.os", "blob.bin")
	if !errors.Is(err, gateway.ErrUnsupportedContent) {
		t.Fatalf("expected ErrUnsupportedContent, got %v", err)
	}
	if !strings.Contains(err.Error(), "application/octet-stream") {
		t.Fatalf("error does not name the content type: %v", err)
	}
}

func TestReadFileTreeStripsPrefix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"entries": []map[string]string{
				{"path": "hyperslop:gliderlabs.os/public/foo", "type": "directory"},
				{"path": "hyperslop:gliderlabs.os/public/foo/bar.txt", "type": "file"},
				{"path": "unprefixed.txt", "type": "file"},
			},
		})
	}))
	defer srv.Close()

	client, err := gateway.New(srv.URL, "k", "mynode.os")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	entries, err := client.ReadFileTree(context.Background(), "othernode.os")
	if err != nil {
		t.Fatalf("ReadFileTree: %v", err)
	}
	expected := []string{"foo", "foo/bar.txt", "unprefixed.txt"}
	if len(entries) != len(expected) {
		t.Fatalf("expected %d entries, got %#v", len(expected), entries)
	}
	for i, path := range expected {
		if entries[i].Path != path {
			t.Fatalf("entry %d: expected %q, got %q", i, path, entries[i].Path)
		}
	}
}

func TestTransportFailureIsNotNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client, err := gateway.New(srv.URL, "k", "mynode.os")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.ReadFile(context.Background(), "mynode.os", "any.txt")
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("connection failure must not look like not-found: %v", err)
	}
}

func TestNodeIsLocal(t *testing.T) {
	// No server at all: Node must never touch the network.
	client, err := gateway.New("http://myapp.localhost:9000", "k", "mynode.os")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.Node() != "mynode.os" {
		t.Fatalf("unexpected node %q", client.Node())
	}
}

func TestNewRequiresNode(t *testing.T) {
	if _, err := gateway.New("http://localhost:9000", "k", "   "); err == nil {
		t.Fatalf("expected error for empty node")
	}
}

func TestEmptyNodeRejected(t *testing.T) {
	client, err := gateway.New("http://localhost:9000", "k", "mynode.os")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.ReadDir(context.Background(), "", "docs"); err == nil {
		t.Fatalf("expected error for empty node argument")
	}
}
