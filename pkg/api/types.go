package api

import (
	"github.com/segmentio/ksuid"

	"github.com/ssargent/siliconv/pkg/replay"
	"github.com/ssargent/siliconv/pkg/storage"
)

// DefaultMaxBodySize caps uploaded replays at 64 MiB
const DefaultMaxBodySize = 64 << 20

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Addr        string
	APIKey      string // empty disables authentication
	MaxBodySize int64
}

// ILibrary is the subset of storage.Library the API needs
type ILibrary interface {
	Add(name string, r *replay.Replay) (storage.Entry, error)
	Get(id ksuid.KSUID) (storage.Entry, error)
	Raw(id ksuid.KSUID) ([]byte, error)
	List() ([]storage.Entry, error)
	Delete(id ksuid.KSUID) error
}
