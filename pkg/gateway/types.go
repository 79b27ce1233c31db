package gateway

import "errors"

// EntryType discriminates filesystem entries.
type EntryType string

const (
	EntryTypeFile      EntryType = "file"
	EntryTypeDirectory EntryType = "directory"
)

// Entry describes a single file or directory in a node's namespace. Paths
// are always relative to the node's public root; the network-internal VFS
// prefix is stripped before entries reach callers.
type Entry struct {
	Path string    `json:"path"`
	Type EntryType `json:"type"`
}

// FileContent is the payload returned by a successful text-file read.
type FileContent struct {
	Path     string `json:"path"`
	MimeType string `json:"mime_type"`
	Content  string `json:"content"`
}

var (
	// ErrNotFound indicates the requested file does not exist on the node.
	ErrNotFound = errors.New("gateway: not found")
	// ErrUnsupportedContent indicates a read targeted a file whose content
	// type is not text; the body is never decoded in that case.
	ErrUnsupportedContent = errors.New("gateway: unsupported content type")
)

// treePrefix is the network-internal marker the gateway prepends to entry
// paths when listing a node's VFS. Everything under it is relative to the
// node's public root.
const treePrefix = "hyperslop:gliderlabs.os/public/"
