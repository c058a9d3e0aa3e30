package proof_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zkinfer-dev/zkinfer-host-sdk/policy"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/dto"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/entities"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/ports"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/values"
	"github.com/zkinfer-dev/zkinfer-host-sdk/trust"
	"github.com/zkinfer-dev/zkinfer-host-sdk/trust/grantstore"
)

// MockRegistry implements ports.BundleRegistry
type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) Pull(ctx context.Context, ref values.BundleReference) (*dto.BundleDTO, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BundleDTO), args.Error(1)
}

func (m *MockRegistry) Tags(ctx context.Context, ref values.BundleReference) ([]string, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// fakeAttestor implements ports.AttestationVerifier
type fakeAttestor struct {
	result *ports.AttestationResult
	err    error
}

func (a *fakeAttestor) VerifyAttestation(ctx context.Context, ref values.BundleReference) (*ports.AttestationResult, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.result, nil
}

// nullStore implements trust.GrantStore with nothing persisted.
type nullStore struct{}

func (nullStore) Load() (*grantstore.GrantSet, error) { return &grantstore.GrantSet{}, nil }
func (nullStore) Save(*grantstore.GrantSet) error     { return nil }

var (
	testInput  = []byte(`{"text":"great product"}`)
	testOutput = []byte(`{"sentiment":"positive"}`)
)

func testBundle(t *testing.T, model values.Digest, verified bool) *dto.BundleDTO {
	t.Helper()

	record := dto.ProofRecordDTO{
		ModelHash:  model.String(),
		ProofHash:  values.Compute([]byte("proof-blob")).String(),
		InputHash:  values.Compute(testInput).String(),
		OutputHash: values.Compute(testOutput).String(),
		Timestamp:  uint64(time.Now().UnixMilli()),
		Verified:   verified,
	}
	encoded, err := json.Marshal(record)
	require.NoError(t, err)

	return &dto.BundleDTO{
		Metadata: dto.BundleMetadataDTO{Model: "sentiment-onnx"},
		Record:   encoded,
	}
}

func testReference(t *testing.T) values.BundleReference {
	t.Helper()
	ref, err := values.ParseBundleReference("ghcr.io/zkinfer/proof-bundles/sentiment-onnx:latest")
	require.NoError(t, err)
	return ref
}

func permissiveGatekeeper() *trust.Gatekeeper {
	return trust.NewGatekeeper(
		trust.WithStore(nullStore{}),
		trust.WithSecurityLevel(trust.SecurityPermissive),
	)
}

func TestProofService_VerifyBundle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	model := values.Compute([]byte("model-weights"))

	t.Run("end to end success", func(t *testing.T) {
		ref := testReference(t)
		registry := new(MockRegistry)
		registry.On("Tags", ctx, ref).Return([]string{"v1.0.0", "v1.2.0"}, nil).Once()
		registry.On("Pull", ctx, ref.WithTag("v1.2.0")).Return(testBundle(t, model, true), nil).Once()

		svc := proof.NewProofService(registry, proof.WithGatekeeper(permissiveGatekeeper()))

		ok, err := svc.VerifyBundle(ctx, ref, model, testInput, testOutput)
		require.NoError(t, err)
		assert.True(t, ok)

		registry.AssertExpectations(t)
	})

	t.Run("unverified record yields false without error", func(t *testing.T) {
		ref := testReference(t)
		registry := new(MockRegistry)
		registry.On("Tags", ctx, ref).Return([]string{"v1.2.0"}, nil).Once()
		registry.On("Pull", ctx, ref.WithTag("v1.2.0")).Return(testBundle(t, model, false), nil).Once()

		svc := proof.NewProofService(registry, proof.WithGatekeeper(permissiveGatekeeper()))

		ok, err := svc.VerifyBundle(ctx, ref, model, testInput, testOutput)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("wrong expected model yields false", func(t *testing.T) {
		ref := testReference(t)
		registry := new(MockRegistry)
		registry.On("Tags", ctx, ref).Return([]string{"v1.2.0"}, nil).Once()
		registry.On("Pull", ctx, ref.WithTag("v1.2.0")).Return(testBundle(t, model, true), nil).Once()

		svc := proof.NewProofService(registry, proof.WithGatekeeper(permissiveGatekeeper()))

		other := values.Compute([]byte("other-weights"))
		ok, err := svc.VerifyBundle(ctx, ref, other, testInput, testOutput)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("policy denies model", func(t *testing.T) {
		ref := testReference(t)
		registry := new(MockRegistry)
		registry.On("Tags", ctx, ref).Return([]string{"v1.2.0"}, nil).Once()
		registry.On("Pull", ctx, ref.WithTag("v1.2.0")).Return(testBundle(t, model, true), nil).Once()

		svc := proof.NewProofService(registry,
			proof.WithGatekeeper(permissiveGatekeeper()),
			proof.WithPolicy(policy.NewPolicy(
				policy.WithAllowedModels("fraud-*"),
				policy.WithDenialHandler(&policy.NopDenialHandler{}),
			)),
		)

		ok, err := svc.VerifyBundle(ctx, ref, model, testInput, testOutput)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("attestation required and missing verifier", func(t *testing.T) {
		ref := testReference(t)
		registry := new(MockRegistry)
		registry.On("Tags", ctx, ref).Return([]string{"v1.2.0"}, nil).Once()
		registry.On("Pull", ctx, ref.WithTag("v1.2.0")).Return(testBundle(t, model, true), nil).Once()

		svc := proof.NewProofService(registry,
			proof.WithGatekeeper(permissiveGatekeeper()),
			proof.WithPolicy(policy.NewPolicy(policy.WithRequireAttestation(true))),
		)

		_, err := svc.VerifyBundle(ctx, ref, model, testInput, testOutput)
		assert.Error(t, err)
	})

	t.Run("attestation verified passes through", func(t *testing.T) {
		ref := testReference(t)
		registry := new(MockRegistry)
		registry.On("Tags", ctx, ref).Return([]string{"v1.2.0"}, nil).Once()
		registry.On("Pull", ctx, ref.WithTag("v1.2.0")).Return(testBundle(t, model, true), nil).Once()

		svc := proof.NewProofService(registry,
			proof.WithGatekeeper(permissiveGatekeeper()),
			proof.WithPolicy(policy.NewPolicy(policy.WithRequireAttestation(true))),
			proof.WithAttestor(&fakeAttestor{result: &ports.AttestationResult{Verified: true}}),
		)

		ok, err := svc.VerifyBundle(ctx, ref, model, testInput, testOutput)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("attestation not verified yields false", func(t *testing.T) {
		ref := testReference(t)
		registry := new(MockRegistry)
		registry.On("Tags", ctx, ref).Return([]string{"v1.2.0"}, nil).Once()
		registry.On("Pull", ctx, ref.WithTag("v1.2.0")).Return(testBundle(t, model, true), nil).Once()

		svc := proof.NewProofService(registry,
			proof.WithGatekeeper(permissiveGatekeeper()),
			proof.WithPolicy(policy.NewPolicy(policy.WithRequireAttestation(true))),
			proof.WithAttestor(&fakeAttestor{result: &ports.AttestationResult{Verified: false}}),
		)

		ok, err := svc.VerifyBundle(ctx, ref, model, testInput, testOutput)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("untrusted model yields false", func(t *testing.T) {
		ref := testReference(t)
		registry := new(MockRegistry)
		registry.On("Tags", ctx, ref).Return([]string{"v1.2.0"}, nil).Once()
		registry.On("Pull", ctx, ref.WithTag("v1.2.0")).Return(testBundle(t, model, true), nil).Once()

		strict := trust.NewGatekeeper(
			trust.WithStore(nullStore{}),
			trust.WithSecurityLevel(trust.SecurityStrict),
		)
		svc := proof.NewProofService(registry, proof.WithGatekeeper(strict))

		ok, err := svc.VerifyBundle(ctx, ref, model, testInput, testOutput)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("trust all bypasses strict gatekeeper", func(t *testing.T) {
		ref := testReference(t)
		registry := new(MockRegistry)
		registry.On("Tags", ctx, ref).Return([]string{"v1.2.0"}, nil).Once()
		registry.On("Pull", ctx, ref.WithTag("v1.2.0")).Return(testBundle(t, model, true), nil).Once()

		strict := trust.NewGatekeeper(
			trust.WithStore(nullStore{}),
			trust.WithSecurityLevel(trust.SecurityStrict),
		)
		svc := proof.NewProofService(registry,
			proof.WithGatekeeper(strict),
			proof.WithTrustAll(true),
		)

		ok, err := svc.VerifyBundle(ctx, ref, model, testInput, testOutput)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("malformed record surfaces parse error", func(t *testing.T) {
		ref := testReference(t)
		bundle := &dto.BundleDTO{
			Metadata: dto.BundleMetadataDTO{Model: "sentiment-onnx"},
			Record:   []byte("not a record"),
		}
		registry := new(MockRegistry)
		registry.On("Tags", ctx, ref).Return([]string{"v1.2.0"}, nil).Once()
		registry.On("Pull", ctx, ref.WithTag("v1.2.0")).Return(bundle, nil).Once()

		svc := proof.NewProofService(registry, proof.WithGatekeeper(permissiveGatekeeper()))

		_, err := svc.VerifyBundle(ctx, ref, model, testInput, testOutput)
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrMalformedRecord)
	})

	t.Run("bundle not found propagates", func(t *testing.T) {
		ref := testReference(t)
		registry := new(MockRegistry)
		registry.On("Tags", ctx, ref).Return([]string{"v1.2.0"}, nil).Once()
		registry.On("Pull", ctx, ref.WithTag("v1.2.0")).
			Return(nil, &entities.BundleNotFoundError{Reference: ref}).Once()

		svc := proof.NewProofService(registry, proof.WithGatekeeper(permissiveGatekeeper()))

		_, err := svc.VerifyBundle(ctx, ref, model, testInput, testOutput)
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrBundleNotFound)
	})

	t.Run("no tag satisfies constraint", func(t *testing.T) {
		ref := testReference(t)
		registry := new(MockRegistry)
		registry.On("Tags", ctx, ref).Return([]string{"nightly", "dev"}, nil).Once()

		svc := proof.NewProofService(registry, proof.WithGatekeeper(permissiveGatekeeper()))

		_, err := svc.VerifyBundle(ctx, ref, model, testInput, testOutput)
		assert.Error(t, err)
	})
}

func TestProofService_FetchRecord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	model := values.Compute([]byte("model-weights"))
	ref := testReference(t)

	registry := new(MockRegistry)
	registry.On("Tags", ctx, ref).Return([]string{"v1.2.0"}, nil).Once()
	registry.On("Pull", ctx, ref.WithTag("v1.2.0")).Return(testBundle(t, model, true), nil).Once()

	svc := proof.NewProofService(registry, proof.WithGatekeeper(permissiveGatekeeper()))

	record, err := svc.FetchRecord(ctx, ref)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.True(t, record.ModelHash().Equals(model))
	assert.True(t, record.Verified())
}

func TestProofService_ResolveErrorPropagates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ref := testReference(t)

	registry := new(MockRegistry)
	registry.On("Tags", ctx, ref).Return(nil, errors.New("registry unreachable")).Once()

	svc := proof.NewProofService(registry, proof.WithGatekeeper(permissiveGatekeeper()))

	_, err := svc.Resolve(ctx, ref)
	assert.Error(t, err)
}
