// Package filesystem provides file-based repositories for the infrastructure layer.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/entities"
)

// FilePinfileRepository implements ports.PinfileRepository using the local filesystem.
type FilePinfileRepository struct{}

// NewFilePinfileRepository creates a new FilePinfileRepository.
func NewFilePinfileRepository() *FilePinfileRepository {
	return &FilePinfileRepository{}
}

// Load reads a pinfile from the given path.
func (r *FilePinfileRepository) Load(ctx context.Context, path string) (*entities.Pinfile, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	// os.OpenRoot keeps reads inside dir even if base is a traversal attempt.
	root, err := os.OpenRoot(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open directory %q: %w", dir, err)
	}
	defer func() { _ = root.Close() }()

	file, err := root.Open(base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open pinfile %q: %w", base, err)
	}
	defer func() { _ = file.Close() }()

	var out Pinfile
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding pinfile YAML: %w", err)
	}

	pin := out.ToEntity()

	if err := pin.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pinfile: %w", err)
	}

	return pin, nil
}

// Save writes a pinfile to the given path.
func (r *FilePinfileRepository) Save(ctx context.Context, path string, pinfile *entities.Pinfile) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory %q: %w", dir, err)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return fmt.Errorf("opening directory for write %q: %w", dir, err)
	}
	defer func() { _ = root.Close() }()

	base := filepath.Base(path)

	file, err := root.OpenFile(base, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating pinfile %q: %w", base, err)
	}
	defer func() { _ = file.Close() }()

	out := FromEntity(pinfile)

	encoder := yaml.NewEncoder(file)
	defer func() { _ = encoder.Close() }()

	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("encoding pinfile: %w", err)
	}

	return nil
}

// Exists checks if a pinfile exists at the given path.
func (r *FilePinfileRepository) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
