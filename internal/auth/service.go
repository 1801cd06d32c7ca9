// Package auth proxies sign-in to the upstream backend. Credentials pass
// through and are never stored; the session keeps only the issued bearer
// token and the actor's cached profile.
package auth

import (
	"context"

	"github.com/procureflow/procureflow/internal/backend"
	"github.com/procureflow/procureflow/internal/shared"
)

// BackendPort is the slice of the backend client the auth flow needs.
type BackendPort interface {
	Login(ctx context.Context, email, password string) (backend.LoginResult, error)
	Logout(ctx context.Context, token string) error
	FetchProfile(ctx context.Context, token string) (shared.Profile, error)
}

// Service wraps the sign-in and sign-out flows.
type Service struct {
	backend BackendPort
}

// NewService constructs a new Service.
func NewService(backendPort BackendPort) *Service {
	return &Service{backend: backendPort}
}

// Authenticate exchanges credentials for a bearer token and profile.
func (s *Service) Authenticate(ctx context.Context, email, password string) (backend.LoginResult, error) {
	result, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return backend.LoginResult{}, shared.ErrInvalidCredentials
	}
	return result, nil
}

// Revoke invalidates the bearer token upstream. Best effort.
func (s *Service) Revoke(ctx context.Context, token string) error {
	return s.backend.Logout(ctx, token)
}

// RefreshProfile re-reads the actor's profile, picking up the current
// month's spend figures after placements.
func (s *Service) RefreshProfile(ctx context.Context, token string) (shared.Profile, error) {
	return s.backend.FetchProfile(ctx, token)
}
