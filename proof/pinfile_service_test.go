package proof_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zkinfer-dev/zkinfer-host-sdk/proof"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/entities"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/values"
)

// MockPinfileRepo implements ports.PinfileRepository
type MockPinfileRepo struct {
	mock.Mock
}

func (m *MockPinfileRepo) Load(ctx context.Context, path string) (*entities.Pinfile, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Pinfile), args.Error(1)
}

func (m *MockPinfileRepo) Save(ctx context.Context, path string, pinfile *entities.Pinfile) error {
	args := m.Called(ctx, path, pinfile)
	return args.Error(0)
}

func TestPinfileService_PinModel(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pinPath := "zkinfer.pin"
	digest := values.Compute([]byte("model-weights"))

	t.Run("creates new pinfile if missing", func(t *testing.T) {
		mockRepo := new(MockPinfileRepo)
		mockRepo.On("Load", ctx, pinPath).Return(nil, nil).Once()
		mockRepo.On("Save", ctx, pinPath, mock.AnythingOfType("*entities.Pinfile")).Return(nil).Once()

		svc := proof.NewPinfileService(mockRepo)
		err := svc.PinModel(ctx, pinPath, "sentiment-onnx", digest,
			"latest", "v1.2.0", "ghcr.io/zkinfer/models/sentiment-onnx:v1.2.0")
		require.NoError(t, err)

		saved := mockRepo.Calls[1].Arguments.Get(2).(*entities.Pinfile)
		pin := saved.GetModel("sentiment-onnx")
		require.NotNil(t, pin)
		assert.Equal(t, digest.String(), pin.Digest)
		assert.Equal(t, "latest", pin.Requested)
		assert.Equal(t, "v1.2.0", pin.Resolved)

		mockRepo.AssertExpectations(t)
	})

	t.Run("refreshes pin with same digest", func(t *testing.T) {
		existing := entities.NewPinfile()
		require.NoError(t, existing.AddModel("sentiment-onnx", entities.ModelPin{
			Requested: "latest",
			Resolved:  "v1.2.0",
			Digest:    digest.String(),
		}))

		mockRepo := new(MockPinfileRepo)
		mockRepo.On("Load", ctx, pinPath).Return(existing, nil).Once()
		mockRepo.On("Save", ctx, pinPath, mock.AnythingOfType("*entities.Pinfile")).Return(nil).Once()

		svc := proof.NewPinfileService(mockRepo)
		err := svc.PinModel(ctx, pinPath, "sentiment-onnx", digest, "latest", "v1.3.0", "src")
		require.NoError(t, err)

		saved := mockRepo.Calls[1].Arguments.Get(2).(*entities.Pinfile)
		pin := saved.GetModel("sentiment-onnx")
		require.NotNil(t, pin)
		assert.Equal(t, "v1.3.0", pin.Resolved)
		assert.False(t, pin.LastVerified.IsZero())

		mockRepo.AssertExpectations(t)
	})

	t.Run("rejects pin with different digest", func(t *testing.T) {
		existing := entities.NewPinfile()
		require.NoError(t, existing.AddModel("sentiment-onnx", entities.ModelPin{
			Digest: values.Compute([]byte("original-weights")).String(),
		}))

		mockRepo := new(MockPinfileRepo)
		mockRepo.On("Load", ctx, pinPath).Return(existing, nil).Once()

		svc := proof.NewPinfileService(mockRepo)
		err := svc.PinModel(ctx, pinPath, "sentiment-onnx", digest, "latest", "v2.0.0", "src")
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrIntegrityCheckFailed)

		var integrityErr *entities.IntegrityError
		require.True(t, errors.As(err, &integrityErr))
		assert.Equal(t, digest, integrityErr.Actual)

		mockRepo.AssertExpectations(t)
	})
}

func TestPinfileService_VerifyPinned(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pinPath := "zkinfer.pin"
	digest := values.Compute([]byte("model-weights"))

	t.Run("missing pinfile passes", func(t *testing.T) {
		mockRepo := new(MockPinfileRepo)
		mockRepo.On("Load", ctx, pinPath).Return(nil, nil).Once()

		svc := proof.NewPinfileService(mockRepo)
		assert.NoError(t, svc.VerifyPinned(ctx, pinPath, "sentiment-onnx", digest))
	})

	t.Run("unpinned model passes", func(t *testing.T) {
		existing := entities.NewPinfile()
		require.NoError(t, existing.AddModel("other-model", entities.ModelPin{Digest: digest.String()}))

		mockRepo := new(MockPinfileRepo)
		mockRepo.On("Load", ctx, pinPath).Return(existing, nil).Once()

		svc := proof.NewPinfileService(mockRepo)
		assert.NoError(t, svc.VerifyPinned(ctx, pinPath, "sentiment-onnx", digest))
	})

	t.Run("matching pin passes", func(t *testing.T) {
		existing := entities.NewPinfile()
		require.NoError(t, existing.AddModel("sentiment-onnx", entities.ModelPin{Digest: digest.String()}))

		mockRepo := new(MockPinfileRepo)
		mockRepo.On("Load", ctx, pinPath).Return(existing, nil).Once()

		svc := proof.NewPinfileService(mockRepo)
		assert.NoError(t, svc.VerifyPinned(ctx, pinPath, "sentiment-onnx", digest))
	})

	t.Run("mismatched pin fails with integrity error", func(t *testing.T) {
		pinned := values.Compute([]byte("original-weights"))
		existing := entities.NewPinfile()
		require.NoError(t, existing.AddModel("sentiment-onnx", entities.ModelPin{Digest: pinned.String()}))

		mockRepo := new(MockPinfileRepo)
		mockRepo.On("Load", ctx, pinPath).Return(existing, nil).Once()

		svc := proof.NewPinfileService(mockRepo)
		err := svc.VerifyPinned(ctx, pinPath, "sentiment-onnx", digest)
		require.Error(t, err)

		var integrityErr *entities.IntegrityError
		require.True(t, errors.As(err, &integrityErr))
		assert.Equal(t, pinned, integrityErr.Expected)
		assert.Equal(t, digest, integrityErr.Actual)
	})

	t.Run("repo error propagates", func(t *testing.T) {
		mockRepo := new(MockPinfileRepo)
		mockRepo.On("Load", ctx, pinPath).Return(nil, errors.New("disk error")).Once()

		svc := proof.NewPinfileService(mockRepo)
		assert.Error(t, svc.VerifyPinned(ctx, pinPath, "sentiment-onnx", digest))
	})
}
