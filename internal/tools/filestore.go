package tools

import (
	"fmt"
	"sort"
	"strings"
)

// maxStoredValueLen bounds the size of one stored artifact.
const maxStoredValueLen = 10000

// FileStore is an in-memory key-value store for small text artifacts.
type FileStore struct {
	store map[string]string
}

// NewFileStore creates an empty FileStore.
func NewFileStore() *FileStore {
	return &FileStore{store: map[string]string{}}
}

func (f *FileStore) Name() string { return "file_store" }

func (f *FileStore) Description() string {
	return "Read, write, list, or delete small text artifacts in a key-value store. " +
		"Actions: 'read' (key), 'write' (key, value), 'list' (), 'delete' (key)."
}

func (f *FileStore) ParametersSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"enum":        []string{"read", "write", "list", "delete"},
				"description": "Operation to perform",
			},
			"key": map[string]any{
				"type":        "string",
				"description": "Key for the artifact (required for read/write/delete)",
			},
			"value": map[string]any{
				"type":        "string",
				"description": "Value to store (required for write)",
			},
		},
		"required": []string{"action"},
	}
}

func (f *FileStore) Execute(arguments map[string]any) (string, error) {
	action, _ := arguments["action"].(string)
	key, _ := arguments["key"].(string)
	value, _ := arguments["value"].(string)

	switch action {
	case "write":
		if key == "" {
			return "", fmt.Errorf("missing 'key' for write operation")
		}
		if len(value) > maxStoredValueLen {
			return "", fmt.Errorf("value too large (max %d characters)", maxStoredValueLen)
		}
		f.store[key] = value
		return fmt.Sprintf("Written to %q (%d chars)", key, len(value)), nil

	case "read":
		if key == "" {
			return "", fmt.Errorf("missing 'key' for read operation")
		}
		v, ok := f.store[key]
		if !ok {
			return "", fmt.Errorf("key not found: %q", key)
		}
		return v, nil

	case "list":
		if len(f.store) == 0 {
			return "Store is empty.", nil
		}
		keys := make([]string, 0, len(f.store))
		for k := range f.store {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "Keys: " + strings.Join(keys, ", "), nil

	case "delete":
		if key == "" {
			return "", fmt.Errorf("missing 'key' for delete operation")
		}
		if _, ok := f.store[key]; !ok {
			return "", fmt.Errorf("key not found: %q", key)
		}
		delete(f.store, key)
		return fmt.Sprintf("Deleted %q", key), nil

	default:
		return "", fmt.Errorf("unknown action %q, use: read, write, list, delete", action)
	}
}

// Get returns a stored value directly, for grading.
func (f *FileStore) Get(key string) (string, bool) {
	v, ok := f.store[key]
	return v, ok
}

// Reset clears all stored artifacts.
func (f *FileStore) Reset() {
	f.store = map[string]string{}
}
