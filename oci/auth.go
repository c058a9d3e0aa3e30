package oci

import (
	"context"
	"os"
)

// EnvAuthProvider implements ports.AuthProvider from environment variables.
// ZKINFER_REGISTRY_USERNAME / ZKINFER_REGISTRY_PASSWORD apply to every
// registry; empty username means anonymous access.
type EnvAuthProvider struct{}

// NewEnvAuthProvider creates an environment-backed auth provider.
func NewEnvAuthProvider() *EnvAuthProvider {
	return &EnvAuthProvider{}
}

// GetCredentials returns credentials for a registry host.
func (p *EnvAuthProvider) GetCredentials(_ context.Context, _ string) (string, string, error) {
	return os.Getenv("ZKINFER_REGISTRY_USERNAME"), os.Getenv("ZKINFER_REGISTRY_PASSWORD"), nil
}
