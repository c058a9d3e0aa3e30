package values

import (
	"fmt"
	"strings"
)

// BundleReference uniquely identifies a published proof bundle.
// Format: registry.io/org/repo/name:tag
type BundleReference struct {
	registry string // ghcr.io
	org      string // zkinfer
	repo     string // proof-bundles
	name     string // sentiment-v2
	tag      string // 1.4.0, or a constraint like "latest"
}

// NewBundleReference creates a reference from components.
func NewBundleReference(registry, org, repo, name, tag string) BundleReference {
	return BundleReference{
		registry: registry,
		org:      org,
		repo:     repo,
		name:     name,
		tag:      tag,
	}
}

// ParseBundleReference parses an OCI-style bundle reference string,
// e.g. ghcr.io/zkinfer/proof-bundles/sentiment-v2:1.4.0.
func ParseBundleReference(ref string) (BundleReference, error) {
	parts := strings.Split(ref, "/")
	if len(parts) < 4 {
		return BundleReference{}, fmt.Errorf("invalid bundle reference: %s", ref)
	}

	nameTag := strings.Split(parts[len(parts)-1], ":")
	if len(nameTag) != 2 || nameTag[0] == "" || nameTag[1] == "" {
		return BundleReference{}, fmt.Errorf("missing tag in bundle reference: %s", ref)
	}

	return BundleReference{
		registry: parts[0],
		org:      parts[1],
		repo:     strings.Join(parts[2:len(parts)-1], "/"),
		name:     nameTag[0],
		tag:      nameTag[1],
	}, nil
}

// String returns the canonical reference string.
func (r BundleReference) String() string {
	return fmt.Sprintf("%s:%s", r.Repository(), r.tag)
}

// Repository returns the reference without its tag,
// the form ORAS repository clients expect.
func (r BundleReference) Repository() string {
	return fmt.Sprintf("%s/%s/%s/%s", r.registry, r.org, r.repo, r.name)
}

// Registry returns the registry hostname.
func (r BundleReference) Registry() string {
	return r.registry
}

// Name returns the bundle name.
func (r BundleReference) Name() string {
	return r.name
}

// Tag returns the tag or tag constraint.
func (r BundleReference) Tag() string {
	return r.tag
}

// WithTag returns a copy of the reference pointing at a different tag.
// Used after tag-constraint resolution.
func (r BundleReference) WithTag(tag string) BundleReference {
	r.tag = tag
	return r
}

// Equals checks equality with another reference.
func (r BundleReference) Equals(other BundleReference) bool {
	return r.registry == other.registry &&
		r.org == other.org &&
		r.repo == other.repo &&
		r.name == other.name &&
		r.tag == other.tag
}
