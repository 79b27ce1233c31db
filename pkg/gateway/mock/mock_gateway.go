// Package mock implements an in-memory HyperSlop network for tests and
// sandboxing: a set of named nodes, each with its own filesystem namespace.
package mock

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/assemblycapital/hyperslop-mcp/internal/devseed"
	"github.com/assemblycapital/hyperslop-mcp/pkg/gateway"
)

type fileEntry struct {
	data        []byte
	contentType string
}

type nodeFS struct {
	files map[string]*fileEntry
	dirs  map[string]bool
}

func newNodeFS() *nodeFS {
	return &nodeFS{
		files: make(map[string]*fileEntry),
		dirs:  map[string]bool{"": true},
	}
}

// Mock implements gateway.Backend over in-memory node filesystems.
type Mock struct {
	mu    sync.RWMutex
	nodes map[string]*nodeFS
}

// New constructs an empty network.
func New() *Mock {
	return &Mock{nodes: make(map[string]*nodeFS)}
}

// Seed loads nodes, directories and files from seed entries.
func (m *Mock) Seed(entries []devseed.FSSeedEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range entries {
		if strings.TrimSpace(e.Node) == "" {
			return fmt.Errorf("mock gateway: seed entry %d missing node", i)
		}
		fs := m.nodeLocked(e.Node)
		path := normalizePath(e.Path)
		if path == "" {
			return fmt.Errorf("mock gateway: seed entry %d missing path", i)
		}
		if e.Dir {
			addDirs(fs, path)
			continue
		}
		addDirs(fs, parentOf(path))
		contentType := e.ContentType
		if contentType == "" {
			contentType = "text/plain"
		}
		fs.files[path] = &fileEntry{
			data:        []byte(e.Content),
			contentType: contentType,
		}
	}
	return nil
}

// AddNode registers an empty node namespace.
func (m *Mock) AddNode(node string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodeLocked(node)
}

// ReadDir lists the entries directly under path.
func (m *Mock) ReadDir(ctx context.Context, node, path string) ([]gateway.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	fs, err := m.lookupLocked(node)
	if err != nil {
		return nil, err
	}
	dir := normalizePath(path)
	if !fs.dirs[dir] {
		return nil, fmt.Errorf("mock gateway: directory %q on %s: %w", path, node, gateway.ErrNotFound)
	}

	entries := []gateway.Entry{}
	for d := range fs.dirs {
		if d != "" && parentOf(d) == dir {
			entries = append(entries, gateway.Entry{Path: d, Type: gateway.EntryTypeDirectory})
		}
	}
	for f := range fs.files {
		if parentOf(f) == dir {
			entries = append(entries, gateway.Entry{Path: f, Type: gateway.EntryTypeFile})
		}
	}
	sortEntries(entries)
	return entries, nil
}

// CreateDir creates a directory, including missing parents.
func (m *Mock) CreateDir(ctx context.Context, node, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	fs := m.nodeLocked(node)
	dir := normalizePath(path)
	if dir == "" {
		return fmt.Errorf("mock gateway: directory path is required")
	}
	if _, exists := fs.files[dir]; exists {
		return fmt.Errorf("mock gateway: %q on %s is a file", path, node)
	}
	addDirs(fs, dir)
	return nil
}

// DeleteDir removes a directory and everything under it.
func (m *Mock) DeleteDir(ctx context.Context, node, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	fs, err := m.lookupLocked(node)
	if err != nil {
		return err
	}
	dir := normalizePath(path)
	if dir == "" {
		return fmt.Errorf("mock gateway: refusing to delete node root")
	}
	if !fs.dirs[dir] {
		return fmt.Errorf("mock gateway: directory %q on %s: %w", path, node, gateway.ErrNotFound)
	}

	prefix := dir + "/"
	delete(fs.dirs, dir)
	for d := range fs.dirs {
		if strings.HasPrefix(d, prefix) {
			delete(fs.dirs, d)
		}
	}
	for f := range fs.files {
		if strings.HasPrefix(f, prefix) {
			delete(fs.files, f)
		}
	}
	return nil
}

// ReadFile returns a text file's content. Non-text files are rejected the
// same way the HTTP client rejects them.
func (m *Mock) ReadFile(ctx context.Context, node, path string) (*gateway.FileContent, error) {
	data, contentType, err := m.RawFile(ctx, node, path)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(contentType, "text/") {
		return nil, fmt.Errorf("mock gateway: file %q on %s has content type %q: %w",
			path, node, contentType, gateway.ErrUnsupportedContent)
	}
	return &gateway.FileContent{
		Path:     normalizePath(path),
		MimeType: contentType,
		Content:  string(data),
	}, nil
}

// RawFile returns a file's bytes and content type regardless of type. The
// sandbox server uses it to serve the raw read endpoint.
func (m *Mock) RawFile(ctx context.Context, node, path string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	fs, err := m.lookupLocked(node)
	if err != nil {
		return nil, "", err
	}
	entry, ok := fs.files[normalizePath(path)]
	if !ok {
		return nil, "", fmt.Errorf("mock gateway: file %q on %s: %w", path, node, gateway.ErrNotFound)
	}
	return append([]byte(nil), entry.data...), entry.contentType, nil
}

// CreateFile stores a new file, creating missing parent directories.
func (m *Mock) CreateFile(ctx context.Context, node, path, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	fs := m.nodeLocked(node)
	file := normalizePath(path)
	if file == "" {
		return fmt.Errorf("mock gateway: file path is required")
	}
	if _, exists := fs.files[file]; exists {
		return fmt.Errorf("mock gateway: file %q on %s already exists", path, node)
	}
	if fs.dirs[file] {
		return fmt.Errorf("mock gateway: %q on %s is a directory", path, node)
	}
	addDirs(fs, parentOf(file))
	fs.files[file] = &fileEntry{data: []byte(content), contentType: "text/plain"}
	return nil
}

// WriteFile replaces the content of an existing file.
func (m *Mock) WriteFile(ctx context.Context, node, path, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	fs, err := m.lookupLocked(node)
	if err != nil {
		return err
	}
	file := normalizePath(path)
	entry, ok := fs.files[file]
	if !ok {
		return fmt.Errorf("mock gateway: file %q on %s: %w", path, node, gateway.ErrNotFound)
	}
	entry.data = []byte(content)
	return nil
}

// DeleteFile removes a file.
func (m *Mock) DeleteFile(ctx context.Context, node, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	fs, err := m.lookupLocked(node)
	if err != nil {
		return err
	}
	file := normalizePath(path)
	if _, ok := fs.files[file]; !ok {
		return fmt.Errorf("mock gateway: file %q on %s: %w", path, node, gateway.ErrNotFound)
	}
	delete(fs.files, file)
	return nil
}

// ReadFileTree lists every directory and file on the node.
func (m *Mock) ReadFileTree(ctx context.Context, node string) ([]gateway.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	fs, err := m.lookupLocked(node)
	if err != nil {
		return nil, err
	}

	entries := []gateway.Entry{}
	for d := range fs.dirs {
		if d == "" {
			continue
		}
		entries = append(entries, gateway.Entry{Path: d, Type: gateway.EntryTypeDirectory})
	}
	for f := range fs.files {
		entries = append(entries, gateway.Entry{Path: f, Type: gateway.EntryTypeFile})
	}
	sortEntries(entries)
	return entries, nil
}

func (m *Mock) nodeLocked(node string) *nodeFS {
	fs, ok := m.nodes[node]
	if !ok {
		fs = newNodeFS()
		m.nodes[node] = fs
	}
	return fs
}

func (m *Mock) lookupLocked(node string) (*nodeFS, error) {
	fs, ok := m.nodes[node]
	if !ok {
		return nil, fmt.Errorf("mock gateway: node %q: %w", node, gateway.ErrNotFound)
	}
	return fs, nil
}

// normalizePath cleans a path into the canonical stored form: no leading or
// trailing slash, "" for the node root.
func normalizePath(path string) string {
	return strings.Trim(path, "/")
}

func parentOf(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

// addDirs registers dir and all of its ancestors.
func addDirs(fs *nodeFS, dir string) {
	for dir != "" {
		if fs.dirs[dir] {
			return
		}
		fs.dirs[dir] = true
		dir = parentOf(dir)
	}
}

func sortEntries(entries []gateway.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
}
