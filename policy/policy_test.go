package policy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zkinfer-dev/zkinfer-host-sdk/policy"
)

type recordingHandler struct {
	denials []string
}

func (h *recordingHandler) OnDenial(kind string, request interface{}, reason string) {
	h.denials = append(h.denials, kind)
}

func TestPolicy_CheckModel(t *testing.T) {
	p := policy.NewPolicy(
		policy.WithAllowedModels("sentiment-*", "fraud/**", "resnet50"),
		policy.WithDenialHandler(&policy.NopDenialHandler{}),
	)

	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{"Exact match", "resnet50", true},
		{"Wildcard family", "sentiment-onnx", true},
		{"Doublestar path", "fraud/detection/v2", true},
		{"Not listed", "llm-13b", false},
		{"Prefix without wildcard", "resnet50-tuned", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.CheckModel(tt.model))
		})
	}
}

func TestPolicy_EmptyAllowListAllowsEverything(t *testing.T) {
	p := policy.NewPolicy(policy.WithDenialHandler(&policy.NopDenialHandler{}))

	assert.True(t, p.CheckModel("anything"))
	assert.True(t, p.CheckModel(""))
}

func TestPolicy_MalformedPatternNeverMatches(t *testing.T) {
	p := policy.NewPolicy(
		policy.WithAllowedModels("[invalid"),
		policy.WithDenialHandler(&policy.NopDenialHandler{}),
	)

	assert.False(t, p.CheckModel("[invalid"))
	assert.False(t, p.CheckModel("anything"))
}

func TestPolicy_CheckAge(t *testing.T) {
	p := policy.NewPolicy(
		policy.WithMaxAge(10*time.Minute),
		policy.WithDenialHandler(&policy.NopDenialHandler{}),
	)

	assert.True(t, p.CheckAge(0))
	assert.True(t, p.CheckAge(10*time.Minute))
	assert.False(t, p.CheckAge(10*time.Minute+time.Millisecond))
}

func TestPolicy_CheckAge_NoCapAcceptsAnything(t *testing.T) {
	p := policy.NewPolicy(policy.WithDenialHandler(&policy.NopDenialHandler{}))

	assert.True(t, p.CheckAge(0))
	assert.True(t, p.CheckAge(24*365*time.Hour))
}

func TestPolicy_DenialHandlerInvoked(t *testing.T) {
	h := &recordingHandler{}
	p := policy.NewPolicy(
		policy.WithAllowedModels("resnet50"),
		policy.WithMaxAge(time.Minute),
		policy.WithDenialHandler(h),
	)

	p.CheckModel("llm-13b")
	p.CheckAge(2 * time.Minute)

	assert.Equal(t, []string{"model", "age"}, h.denials)
}

func TestPolicy_EvaluateHasNoSideEffects(t *testing.T) {
	h := &recordingHandler{}
	p := policy.NewPolicy(
		policy.WithAllowedModels("resnet50"),
		policy.WithMaxAge(time.Minute),
		policy.WithDenialHandler(h),
	)

	assert.False(t, p.EvaluateModel("llm-13b"))
	assert.False(t, p.EvaluateAge(2*time.Minute))
	assert.Empty(t, h.denials)
}

func TestPolicy_RequiresAttestation(t *testing.T) {
	assert.False(t, policy.NewPolicy().RequiresAttestation())
	assert.True(t, policy.NewPolicy(policy.WithRequireAttestation(true)).RequiresAttestation())
}

func TestPolicy_EffectiveMaxAge(t *testing.T) {
	fallback := time.Hour

	unset := policy.NewPolicy()
	assert.Equal(t, fallback, unset.EffectiveMaxAge(fallback))

	capped := policy.NewPolicy(policy.WithMaxAge(10 * time.Minute))
	assert.Equal(t, 10*time.Minute, capped.EffectiveMaxAge(fallback))
}
