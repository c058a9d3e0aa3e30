package trust

import (
	"fmt"
	"log/slog"

	"github.com/zkinfer-dev/zkinfer-host-sdk/trust/grantstore"
)

// SecurityLevel controls the gatekeeper's prompting behavior.
type SecurityLevel string

const (
	// SecurityStrict denies unknown models without prompting.
	SecurityStrict SecurityLevel = "strict"
	// SecurityStandard prompts for unknown models when interactive.
	SecurityStandard SecurityLevel = "standard"
	// SecurityPermissive trusts unknown models, logging the decision.
	SecurityPermissive SecurityLevel = "permissive"
)

// Gatekeeper handles model trust decisions: loads stored grants, checks the
// requested identity against them, prompts for the rest, persists decisions.
type Gatekeeper struct {
	store         GrantStore
	prompter      Prompter
	logger        *slog.Logger
	securityLevel SecurityLevel
}

// Option configures a Gatekeeper.
type Option func(*Gatekeeper)

// WithStore sets the grant store.
func WithStore(s GrantStore) Option {
	return func(g *Gatekeeper) { g.store = s }
}

// WithPrompter sets the prompter.
func WithPrompter(p Prompter) Option {
	return func(g *Gatekeeper) { g.prompter = p }
}

// WithSecurityLevel sets the security policy level.
func WithSecurityLevel(level SecurityLevel) Option {
	return func(g *Gatekeeper) { g.securityLevel = level }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gatekeeper) { g.logger = l }
}

// NewGatekeeper creates a model trust gatekeeper with pluggable store and
// prompter.
func NewGatekeeper(opts ...Option) *Gatekeeper {
	g := &Gatekeeper{
		securityLevel: SecurityStandard,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.store == nil {
		g.store = grantstore.NewFileStore()
	}
	if g.prompter == nil {
		g.prompter = NewTerminalPrompter()
	}
	return g
}

// Authorize decides whether the model identity in req may be trusted,
// based on stored grants, the security level, and (when allowed) user input.
// trustAll bypasses every check, for callers that opted out explicitly.
func (g *Gatekeeper) Authorize(req Request, trustAll bool) (bool, error) {
	if trustAll {
		g.logger.Warn("auto-trusting model identity (trust-all enabled)",
			"model", req.Model,
			"digest", req.Digest.Short())
		return true, nil
	}

	grants, err := g.store.Load()
	if err != nil {
		return false, fmt.Errorf("load trust grants: %w", err)
	}

	if grants.Covers(req.Model, req.Digest) {
		return true, nil
	}

	switch g.securityLevel {
	case SecurityStrict:
		g.logger.Info("unknown model denied (strict)",
			"model", req.Model,
			"digest", req.Digest.Short())
		return false, nil

	case SecurityPermissive:
		g.logger.Warn("trusting unknown model (permissive)",
			"model", req.Model,
			"digest", req.Digest.Short())
		return true, nil
	}

	// Standard: ask, if anyone can answer.
	if !g.prompter.IsInteractive() {
		g.logger.Info("unknown model denied (non-interactive session)",
			"model", req.Model,
			"digest", req.Digest.Short())
		return false, nil
	}

	granted, always, err := g.prompter.PromptForModel(req)
	if err != nil {
		return false, fmt.Errorf("trust prompt: %w", err)
	}

	if granted && always {
		grants.Add(req.Model, req.Digest)
		if err := g.store.Save(grants); err != nil {
			return false, fmt.Errorf("save trust grants: %w", err)
		}
		g.logger.Info("model trust persisted",
			"model", req.Model,
			"digest", req.Digest.Short())
	}

	return granted, nil
}
