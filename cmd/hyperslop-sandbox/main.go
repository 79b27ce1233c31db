// Command hyperslop-sandbox runs a local fake HyperSlop gateway backed by
// in-memory node filesystems. It speaks the same wire protocol as the real
// gateway (POST /rpc, GET /read/{node}/{path}) so the MCP server and the
// examples can be exercised offline, optionally with injected latency and
// failures.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/assemblycapital/hyperslop-mcp/internal/devseed"
	"github.com/assemblycapital/hyperslop-mcp/pkg/gateway"
	gatewaymock "github.com/assemblycapital/hyperslop-mcp/pkg/gateway/mock"
)

type failConfig struct {
	rate float64
	code int
}

func main() {
	addr := flag.String("addr", ":8787", "listen address")
	seed := flag.String("seed", "", "path to JSON seed describing node filesystems")
	apiKey := flag.String("key", "", "require this X-API-Key on every request (empty disables the check)")
	homeNode := flag.String("node", "sandbox.os", "node namespace created at startup")
	latency := flag.Duration("latency", 0, "artificial latency to inject per request")
	fail := flag.String("fail", "", "failure injection (rate=<float>,code=<httpStatus>)")
	flag.Parse()

	network := gatewaymock.New()
	network.AddNode(*homeNode)
	if *seed != "" {
		entries, err := devseed.LoadFSSeed(*seed)
		if err != nil {
			log.Fatalf("load seed: %v", err)
		}
		if err := network.Seed(entries); err != nil {
			log.Fatalf("apply seed: %v", err)
		}
	}

	failCfg, err := parseFailConfig(*fail)
	if err != nil {
		log.Fatalf("parse fail flag: %v", err)
	}

	srv := &sandbox{network: network, apiKey: *apiKey}
	mux := http.NewServeMux()
	mux.HandleFunc("/rpc", withMiddleware(*latency, failCfg, srv.handleRPC))
	mux.HandleFunc("/read/", withMiddleware(*latency, failCfg, srv.handleRead))

	log.Printf("hyperslop sandbox gateway listening on %s (home node %s)", *addr, *homeNode)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		log.Fatalf("listen: %v", err)
	}
}

type sandbox struct {
	network *gatewaymock.Mock
	apiKey  string
}

type rpcRequest struct {
	Node    string `json:"node"`
	Request struct {
		RequestType string `json:"request_type"`
		Path        string `json:"path"`
		Content     string `json:"content"`
	} `json:"request"`
}

func (s *sandbox) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorized(w, r) {
		return
	}

	defer r.Body.Close()
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Node) == "" {
		http.Error(w, "node required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	switch req.Request.RequestType {
	case "read_dir":
		entries, err := s.network.ReadDir(ctx, req.Node, req.Request.Path)
		if err != nil {
			writeError(w, err)
			return
		}
		writeEntries(w, entries, false)
	case "file_tree":
		entries, err := s.network.ReadFileTree(ctx, req.Node)
		if err != nil {
			writeError(w, err)
			return
		}
		// The real gateway reports VFS-internal paths.
		writeEntries(w, entries, true)
	case "create_dir":
		writeOutcome(w, s.network.CreateDir(ctx, req.Node, req.Request.Path))
	case "delete_dir":
		writeOutcome(w, s.network.DeleteDir(ctx, req.Node, req.Request.Path))
	case "create_file":
		writeOutcome(w, s.network.CreateFile(ctx, req.Node, req.Request.Path, req.Request.Content))
	case "write_file":
		writeOutcome(w, s.network.WriteFile(ctx, req.Node, req.Request.Path, req.Request.Content))
	case "delete_file":
		writeOutcome(w, s.network.DeleteFile(ctx, req.Node, req.Request.Path))
	default:
		http.Error(w, fmt.Sprintf("unknown request_type %q", req.Request.RequestType), http.StatusBadRequest)
	}
}

func (s *sandbox) handleRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorized(w, r) {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/read/")
	node, path, ok := strings.Cut(rest, "/")
	if !ok || node == "" || path == "" {
		http.Error(w, "expected /read/{node}/{path}", http.StatusBadRequest)
		return
	}

	data, contentType, err := s.network.RawFile(r.Context(), node, path)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}

func (s *sandbox) authorized(w http.ResponseWriter, r *http.Request) bool {
	if s.apiKey == "" {
		return true
	}
	if r.Header.Get("X-API-Key") != s.apiKey {
		http.Error(w, "invalid API key", http.StatusUnauthorized)
		return false
	}
	return true
}

func writeEntries(w http.ResponseWriter, entries []gateway.Entry, prefixed bool) {
	if prefixed {
		for i := range entries {
			entries[i].Path = "hyperslop:gliderlabs.os/public/" + entries[i].Path
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"entries": entries})
}

func writeOutcome(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusBadRequest
	if errors.Is(err, gateway.ErrNotFound) {
		code = http.StatusNotFound
	}
	http.Error(w, err.Error(), code)
}

func withMiddleware(latency time.Duration, fail failConfig, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if latency > 0 {
			time.Sleep(latency)
		}
		if fail.rate > 0 && rand.Float64() < fail.rate {
			http.Error(w, "injected failure", fail.code)
			return
		}
		next(w, r)
	}
}

func parseFailConfig(raw string) (failConfig, error) {
	cfg := failConfig{code: http.StatusInternalServerError}
	if strings.TrimSpace(raw) == "" {
		return cfg, nil
	}
	for _, part := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return cfg, fmt.Errorf("invalid segment %q", part)
		}
		switch key {
		case "rate":
			rate, err := strconv.ParseFloat(value, 64)
			if err != nil || rate < 0 || rate > 1 {
				return cfg, fmt.Errorf("invalid rate %q", value)
			}
			cfg.rate = rate
		case "code":
			code, err := strconv.Atoi(value)
			if err != nil || code < 400 || code > 599 {
				return cfg, fmt.Errorf("invalid code %q", value)
			}
			cfg.code = code
		default:
			return cfg, fmt.Errorf("unknown key %q", key)
		}
	}
	return cfg, nil
}
