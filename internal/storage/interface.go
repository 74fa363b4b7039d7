package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no object exists at a key.
var ErrNotFound = errors.New("storage object not found")

// Metadata describes where a stored dataset came from
type Metadata struct {
	ContentType  string            `json:"contentType,omitempty"`
	OriginalName string            `json:"originalName,omitempty"`
	Source       string            `json:"source,omitempty"`
	ImportedAt   time.Time         `json:"importedAt,omitempty"`
	RecordCount  int               `json:"recordCount,omitempty"`
	Custom       map[string]string `json:"custom,omitempty"`
}

// FileInfo contains information about a stored object
type FileInfo struct {
	Key        string    `json:"key"`
	Size       int64     `json:"size"`
	Checksum   string    `json:"checksum"`
	ModifiedAt time.Time `json:"modifiedAt"`
	Metadata   *Metadata `json:"metadata,omitempty"`
}

// Storage defines the blob operations used for branch datasets
type Storage interface {
	// Put stores content at the given key with optional metadata
	Put(ctx context.Context, key string, content []byte, metadata *Metadata) error

	// Get retrieves content from the given key
	Get(ctx context.Context, key string) ([]byte, error)

	// GetInfo retrieves object information without content
	GetInfo(ctx context.Context, key string) (*FileInfo, error)

	// Exists checks if an object exists at the given key
	Exists(ctx context.Context, key string) (bool, error)
}
