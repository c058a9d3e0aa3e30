package grantstore

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fileStoreConfig holds configuration for the FileStore.
type fileStoreConfig struct {
	path     string
	dirPerm  os.FileMode
	filePerm os.FileMode
}

func defaultFileStoreConfig() fileStoreConfig {
	return fileStoreConfig{
		path:     filepath.Join(os.Getenv("HOME"), ".zkinfer", "trusted_models.yaml"),
		dirPerm:  0o755,
		filePerm: 0o600,
	}
}

// FileStoreOption configures a FileStore instance.
type FileStoreOption func(*fileStoreConfig)

// WithPath sets the path to the grants file.
func WithPath(path string) FileStoreOption {
	return func(c *fileStoreConfig) {
		if path != "" {
			c.path = path
		}
	}
}

// WithFilePermissions sets the file permissions for the grants file.
func WithFilePermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.filePerm = perm
	}
}

// WithDirPermissions sets the directory permissions for the grants directory.
func WithDirPermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.dirPerm = perm
	}
}

// FileStore provides file-based persistence for model trust grants.
type FileStore struct {
	config fileStoreConfig
}

// NewFileStore creates a new FileStore with the given options.
func NewFileStore(opts ...FileStoreOption) *FileStore {
	cfg := defaultFileStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FileStore{config: cfg}
}

// Load retrieves all persisted grants.
// A missing file yields an empty set, not an error.
func (s *FileStore) Load() (*GrantSet, error) {
	data, err := os.ReadFile(s.config.path)
	if os.IsNotExist(err) {
		return &GrantSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read grant store: %w", err)
	}

	var grants GrantSet
	if err := yaml.Unmarshal(data, &grants); err != nil {
		return nil, fmt.Errorf("failed to parse grant store: %w", err)
	}
	return &grants, nil
}

// Save writes all grants to disk.
func (s *FileStore) Save(grants *GrantSet) error {
	if err := os.MkdirAll(filepath.Dir(s.config.path), s.config.dirPerm); err != nil {
		return fmt.Errorf("failed to create grant store directory: %w", err)
	}

	data, err := yaml.Marshal(grants)
	if err != nil {
		return fmt.Errorf("failed to serialize grants: %w", err)
	}

	if err := os.WriteFile(s.config.path, data, s.config.filePerm); err != nil {
		return fmt.Errorf("failed to write grant store: %w", err)
	}
	return nil
}
