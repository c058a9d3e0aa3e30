package ports

import "context"

// AuthProvider supplies registry credentials.
type AuthProvider interface {
	// GetCredentials returns credentials for a registry host.
	// Empty username means anonymous access.
	GetCredentials(ctx context.Context, registry string) (username, password string, err error)
}
