// Package resolvers turns bundle tag constraints into exact tags.
package resolvers

import (
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
)

// TagResolver resolves a tag constraint against the tags a registry lists.
type TagResolver interface {
	// Resolve returns the exact tag satisfying constraint.
	Resolve(constraint string, available []string) (string, error)
}

// SemverResolver implements TagResolver using semantic version constraints.
type SemverResolver struct{}

// NewSemverResolver creates a new SemverResolver.
func NewSemverResolver() *SemverResolver {
	return &SemverResolver{}
}

// Resolve returns the highest available tag that satisfies the constraint.
// "latest" is treated as "any version, pick the highest". Tags that are not
// semantic versions are skipped.
func (r *SemverResolver) Resolve(constraint string, available []string) (string, error) {
	c, err := parseConstraint(constraint)
	if err != nil {
		return "", fmt.Errorf("invalid tag constraint %q: %w", constraint, err)
	}

	var valid []*semver.Version
	for _, tag := range available {
		v, err := semver.NewVersion(tag)
		if err != nil {
			continue
		}
		if c.Check(v) {
			valid = append(valid, v)
		}
	}

	if len(valid) == 0 {
		return "", fmt.Errorf("no tag satisfies constraint %q", constraint)
	}

	sort.Sort(semver.Collection(valid))
	return valid[len(valid)-1].Original(), nil
}

func parseConstraint(constraint string) (*semver.Constraints, error) {
	if constraint == "latest" {
		return semver.NewConstraint(">= 0")
	}
	return semver.NewConstraint(constraint)
}
