// Package devseed loads JSON seed documents that pre-populate mock node
// filesystems for tests, examples and the sandbox server.
package devseed

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// FSSeedEntry describes one object in a node's namespace. Dir entries carry
// no content; file entries default to text/plain when content_type is
// omitted.
type FSSeedEntry struct {
	Node        string `json:"node"`
	Path        string `json:"path"`
	Dir         bool   `json:"dir,omitempty"`
	Content     string `json:"content,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// LoadFSSeed reads and validates a seed file.
func LoadFSSeed(path string) ([]FSSeedEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("devseed: read %s: %w", path, err)
	}

	var entries []FSSeedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("devseed: parse %s: %w", path, err)
	}

	for i, e := range entries {
		if strings.TrimSpace(e.Node) == "" {
			return nil, fmt.Errorf("devseed: entry %d missing node", i)
		}
		if strings.TrimSpace(e.Path) == "" {
			return nil, fmt.Errorf("devseed: entry %d missing path", i)
		}
		if e.Dir && e.Content != "" {
			return nil, fmt.Errorf("devseed: entry %d is a directory but carries content", i)
		}
	}
	return entries, nil
}
