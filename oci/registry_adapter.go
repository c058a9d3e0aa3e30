// Package oci implements OCI registry adapters for proof bundles.
package oci

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/memory"
	"oras.land/oras-go/v2/errdef"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"

	"github.com/zkinfer-dev/zkinfer-host-sdk/netutil"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/dto"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/entities"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/ports"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/values"
)

// Media types of proof bundle artifacts.
const (
	MediaTypeRecord       = "application/vnd.zkinfer.proof.record.v1+json"
	MediaTypeBundleConfig = "application/vnd.zkinfer.proof.bundle.config.v1+json"
)

// maxRecordSize caps the record layer read. Proof records are a few hundred
// bytes; anything near this limit is hostile or corrupt.
const maxRecordSize = 1 << 20

// RegistryAdapter implements ports.BundleRegistry using oras-go.
type RegistryAdapter struct {
	auth ports.AuthProvider
}

// NewRegistryAdapter creates an OCI registry adapter.
func NewRegistryAdapter(auth ports.AuthProvider) *RegistryAdapter {
	return &RegistryAdapter{
		auth: auth,
	}
}

// Pull downloads a proof bundle from the registry.
func (a *RegistryAdapter) Pull(ctx context.Context, ref values.BundleReference) (*dto.BundleDTO, error) {
	repo, err := a.repository(ctx, ref)
	if err != nil {
		return nil, err
	}

	// Pull manifest and layers into memory
	memoryStore := memory.New()
	manifestDesc, err := oras.Copy(ctx, repo, ref.Tag(), memoryStore, ref.Tag(), oras.CopyOptions{})
	if err != nil {
		if errors.Is(err, errdef.ErrNotFound) {
			return nil, &entities.BundleNotFoundError{Reference: ref}
		}
		return nil, fmt.Errorf("pull bundle: %w", err)
	}

	manifest, err := a.fetchManifest(ctx, memoryStore, manifestDesc)
	if err != nil {
		return nil, err
	}

	metadata, err := a.fetchMetadata(ctx, memoryStore, manifest.Config)
	if err != nil {
		return nil, err
	}

	recordDesc, err := findRecordLayer(manifest)
	if err != nil {
		return nil, err
	}

	record, err := a.fetchRecord(ctx, memoryStore, recordDesc)
	if err != nil {
		return nil, err
	}

	return &dto.BundleDTO{
		Reference: ref,
		Metadata:  metadata,
		MediaType: recordDesc.MediaType,
		Record:    record,
	}, nil
}

// Tags lists the tags available for the referenced bundle.
func (a *RegistryAdapter) Tags(ctx context.Context, ref values.BundleReference) ([]string, error) {
	repo, err := a.repository(ctx, ref)
	if err != nil {
		return nil, err
	}

	var all []string
	err = repo.Tags(ctx, "", func(tags []string) error {
		all = append(all, tags...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return all, nil
}

// repository builds an authenticated repository client with a retrying
// transport.
func (a *RegistryAdapter) repository(ctx context.Context, ref values.BundleReference) (*remote.Repository, error) {
	repo, err := remote.NewRepository(ref.Repository())
	if err != nil {
		return nil, fmt.Errorf("create repository client: %w", err)
	}

	client := &auth.Client{
		Client: &http.Client{Transport: &netutil.RetryTransport{}},
	}
	if a.auth != nil {
		username, password, err := a.auth.GetCredentials(ctx, ref.Registry())
		if err == nil && username != "" {
			client.Credential = auth.StaticCredential(ref.Registry(), auth.Credential{
				Username: username,
				Password: password,
			})
		}
	}
	repo.Client = client

	return repo, nil
}

func (a *RegistryAdapter) fetchManifest(ctx context.Context, store *memory.Store, desc ocispec.Descriptor) (*ocispec.Manifest, error) {
	rc, err := store.Fetch(ctx, desc)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest ocispec.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &manifest, nil
}

func (a *RegistryAdapter) fetchMetadata(ctx context.Context, store *memory.Store, desc ocispec.Descriptor) (dto.BundleMetadataDTO, error) {
	var metadata dto.BundleMetadataDTO

	rc, err := store.Fetch(ctx, desc)
	if err != nil {
		return metadata, fmt.Errorf("fetch config: %w", err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return metadata, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, &metadata); err != nil {
		return metadata, fmt.Errorf("parse bundle metadata: %w", err)
	}
	return metadata, nil
}

func (a *RegistryAdapter) fetchRecord(ctx context.Context, store *memory.Store, desc ocispec.Descriptor) ([]byte, error) {
	rc, err := store.Fetch(ctx, desc)
	if err != nil {
		return nil, fmt.Errorf("fetch record layer: %w", err)
	}
	defer func() { _ = rc.Close() }()

	record, err := io.ReadAll(netutil.NewLimitedReader(rc, maxRecordSize))
	if err != nil {
		return nil, fmt.Errorf("read record layer: %w", err)
	}
	return record, nil
}

// findRecordLayer locates the proof record layer in the manifest.
func findRecordLayer(manifest *ocispec.Manifest) (ocispec.Descriptor, error) {
	for _, layer := range manifest.Layers {
		if layer.MediaType == MediaTypeRecord {
			return layer, nil
		}
	}
	return ocispec.Descriptor{}, fmt.Errorf("bundle has no %s layer", MediaTypeRecord)
}
