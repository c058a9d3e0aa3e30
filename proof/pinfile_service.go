package proof

import (
	"context"
	"fmt"
	"time"

	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/entities"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/ports"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/values"
)

// PinfileService orchestrates model digest pinning for reproducible
// verification: first sight pins a model identity, later sights must match.
type PinfileService struct {
	repo ports.PinfileRepository
}

// NewPinfileService creates a new PinfileService.
func NewPinfileService(repo ports.PinfileRepository) *PinfileService {
	return &PinfileService{repo: repo}
}

// LoadOrCreate loads the pinfile at path, or returns a fresh one when none
// exists yet.
func (s *PinfileService) LoadOrCreate(ctx context.Context, path string) (*entities.Pinfile, error) {
	pin, err := s.repo.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loading pinfile: %w", err)
	}
	if pin == nil {
		pin = entities.NewPinfile()
	}
	return pin, nil
}

// PinModel records a model identity in the pinfile and persists it.
// An existing pin for the same model with the same digest is refreshed;
// a different digest is an integrity failure, not an update.
func (s *PinfileService) PinModel(
	ctx context.Context,
	path string,
	model string,
	digest values.Digest,
	requested string,
	resolved string,
	source string,
) error {
	pin, err := s.LoadOrCreate(ctx, path)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	if existing := pin.GetModel(model); existing != nil {
		if existing.Digest != digest.String() {
			expected, perr := values.ParseDigest(existing.Digest)
			if perr != nil {
				return fmt.Errorf("pinned digest for %q is corrupt: %w", model, perr)
			}
			return &entities.IntegrityError{Expected: expected, Actual: digest}
		}

		refreshed := *existing
		refreshed.LastVerified = now
		refreshed.Resolved = resolved
		if err := pin.AddModel(model, refreshed); err != nil {
			return err
		}
	} else {
		err := pin.AddModel(model, entities.ModelPin{
			PinnedAt:     now,
			LastVerified: now,
			Requested:    requested,
			Resolved:     resolved,
			Source:       source,
			Digest:       digest.String(),
		})
		if err != nil {
			return err
		}
	}

	pin.Generated = now
	if err := s.repo.Save(ctx, path, pin); err != nil {
		return fmt.Errorf("saving pinfile: %w", err)
	}
	return nil
}

// VerifyPinned checks a model digest against the pinfile.
// An unpinned model passes; a pinned model with a different digest fails
// with an IntegrityError.
func (s *PinfileService) VerifyPinned(
	ctx context.Context,
	path string,
	model string,
	digest values.Digest,
) error {
	pin, err := s.repo.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("loading pinfile: %w", err)
	}
	if pin == nil {
		return nil
	}

	existing := pin.GetModel(model)
	if existing == nil {
		return nil
	}

	if existing.Digest != digest.String() {
		expected, perr := values.ParseDigest(existing.Digest)
		if perr != nil {
			return fmt.Errorf("pinned digest for %q is corrupt: %w", model, perr)
		}
		return &entities.IntegrityError{Expected: expected, Actual: digest}
	}
	return nil
}
