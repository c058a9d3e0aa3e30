// Package grantstore provides the persisted model trust grants and their
// file-based storage.
package grantstore

import (
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/values"
)

// GrantSet is the persisted collection of model trust grants.
type GrantSet struct {
	Models []ModelGrant `yaml:"models"`
}

// ModelGrant pins a model digest to a name pattern.
// Pattern is a doublestar glob, so one grant can cover a model family
// (e.g. "sentiment-*").
type ModelGrant struct {
	Pattern   string    `yaml:"pattern"`
	Digest    string    `yaml:"digest"`
	GrantedAt time.Time `yaml:"granted_at"`
}

// IsEmpty reports whether the set holds no grants.
func (g *GrantSet) IsEmpty() bool {
	return g == nil || len(g.Models) == 0
}

// Covers reports whether any grant matches the model name and digest.
// Malformed patterns never match.
func (g *GrantSet) Covers(model string, digest values.Digest) bool {
	if g == nil {
		return false
	}
	for _, grant := range g.Models {
		ok, err := doublestar.Match(grant.Pattern, model)
		if err != nil || !ok {
			continue
		}
		if grant.Digest == digest.String() {
			return true
		}
	}
	return false
}

// Add appends a grant for the exact model name.
func (g *GrantSet) Add(model string, digest values.Digest) {
	g.Models = append(g.Models, ModelGrant{
		Pattern:   model,
		Digest:    digest.String(),
		GrantedAt: time.Now().UTC(),
	})
}
