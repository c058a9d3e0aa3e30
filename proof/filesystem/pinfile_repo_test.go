package filesystem_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/entities"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/filesystem"
)

func TestFilePinfileRepository(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	pinPath := filepath.Join(tmpDir, "zkinfer.pin")
	repo := filesystem.NewFilePinfileRepository()
	ctx := context.Background()

	t.Run("Save and Load", func(t *testing.T) {
		pin := entities.NewPinfile()
		pin.Generated = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		err := pin.AddModel("sentiment-onnx", entities.ModelPin{
			Requested: "latest",
			Resolved:  "v1.2.0",
			Source:    "ghcr.io/zkinfer/models/sentiment-onnx:v1.2.0",
			Digest:    "0x3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532",
		})
		require.NoError(t, err)

		err = repo.Save(ctx, pinPath, pin)
		require.NoError(t, err)

		exists, err := repo.Exists(ctx, pinPath)
		require.NoError(t, err)
		assert.True(t, exists)

		loaded, err := repo.Load(ctx, pinPath)
		require.NoError(t, err)
		require.NotNil(t, loaded)

		assert.Equal(t, pin.Version, loaded.Version)
		// Compare timestamps appropriately (serialization might lose sub-second precision or timezone)
		assert.Equal(t, pin.Generated.Unix(), loaded.Generated.Unix())

		model := loaded.GetModel("sentiment-onnx")
		require.NotNil(t, model)
		assert.Equal(t, "v1.2.0", model.Resolved)
		assert.Equal(t, "0x3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532", model.Digest)
	})

	t.Run("Load non-existent", func(t *testing.T) {
		loaded, err := repo.Load(ctx, filepath.Join(tmpDir, "missing.pin"))
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("Load rejects missing digest", func(t *testing.T) {
		badPath := filepath.Join(tmpDir, "bad.pin")
		content := "generated: 2026-01-01T00:00:00Z\npinfile_version: 1\nmodels:\n  broken:\n    requested: latest\n    resolved: v1.0.0\n    source: s\n    digest: \"\"\n"
		require.NoError(t, os.WriteFile(badPath, []byte(content), 0o644))

		_, err := repo.Load(ctx, badPath)
		assert.Error(t, err)
	})

	t.Run("Save ensures directory", func(t *testing.T) {
		subPinPath := filepath.Join(tmpDir, "subdir", "zkinfer.pin")

		pin := entities.NewPinfile()
		_ = pin.AddModel("dummy", entities.ModelPin{Digest: "0xd"})

		err := repo.Save(ctx, subPinPath, pin)
		require.NoError(t, err)

		exists, err := repo.Exists(ctx, subPinPath)
		require.NoError(t, err)
		assert.True(t, exists)
	})
}
