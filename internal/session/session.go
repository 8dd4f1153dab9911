// Package session owns the authenticated identity for the lifetime of the
// client process.
//
// The identity is derived from a signed credential token issued by the
// platform. The token is decoded without signature verification: the claims
// only drive view routing on this side, and the server independently
// re-verifies the credential on every protected call.
package session

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/mkarpov/studyhall/internal/model"
)

// Route identifies a navigation target after a session transition.
type Route string

const (
	RouteLogin   Route = "login"
	RouteStudent Route = "student"
	RouteTeacher Route = "teacher"
	RouteAdmin   Route = "admin"
)

// LandingRoute maps a role to its dashboard. The dispatch is a strict
// three-way switch: any role that is not Admin or Teacher lands on the
// student dashboard, including unrecognized values.
func LandingRoute(role model.Role) Route {
	switch role {
	case model.RoleAdmin:
		return RouteAdmin
	case model.RoleTeacher:
		return RouteTeacher
	default:
		return RouteStudent
	}
}

// CredentialStore persists the credential token between runs.
type CredentialStore interface {
	Credential() (string, error)
	SetCredential(token string) error
	DeleteCredential() error
}

// Navigator is told where to go after login and logout. It may be nil, in
// which case callers act on the returned Route themselves.
type Navigator interface {
	NavigateTo(route Route)
}

// credentialClaims is the subset of token claims the client reads.
type credentialClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Manager holds the authenticated identity and drives login/logout.
//
// Invariant: Current() is non-nil exactly when a decodable, unexpired
// credential is held. Any decode failure is handled the same way as expiry:
// the credential is purged and the session ends, with no distinction
// surfaced to the caller.
type Manager struct {
	store    CredentialStore
	nav      Navigator
	now      func() time.Time
	identity *model.Identity
	token    string
}

// New creates a session manager. nav may be nil.
func New(store CredentialStore, nav Navigator) *Manager {
	return &Manager{store: store, nav: nav, now: time.Now}
}

// Initialize restores the session from the persisted credential, if any.
// A missing, malformed or expired credential leaves the manager logged out;
// malformed and expired tokens are additionally purged from the store.
func (m *Manager) Initialize() error {
	token, err := m.store.Credential()
	if err != nil {
		return fmt.Errorf("read credential: %w", err)
	}
	if token == "" {
		m.identity = nil
		m.token = ""
		return nil
	}

	claims, err := m.decode(token)
	if err != nil {
		slog.Debug("stored credential rejected", "reason", err)
		return m.purge()
	}

	m.token = token
	m.identity = &model.Identity{
		Subject: claims.Subject,
		Role:    model.Role(claims.Role),
	}
	return nil
}

// Login persists the credential, derives the identity from the token claims
// and the given profile, and returns the role-specific landing route.
func (m *Manager) Login(token string, profile model.User) (Route, error) {
	if err := m.store.SetCredential(token); err != nil {
		return RouteLogin, fmt.Errorf("persist credential: %w", err)
	}

	claims, err := m.decode(token)
	if err != nil {
		// Fail closed, same as expiry.
		if perr := m.purge(); perr != nil {
			return RouteLogin, perr
		}
		return RouteLogin, fmt.Errorf("decode credential: %w", err)
	}

	m.token = token
	m.identity = &model.Identity{
		Subject: claims.Subject,
		Name:    profile.Name,
		Email:   profile.Email,
		Role:    model.Role(claims.Role),
	}

	route := LandingRoute(m.identity.Role)
	if m.nav != nil {
		m.nav.NavigateTo(route)
	}
	return route, nil
}

// Logout purges the credential, clears the identity and navigates to the
// login view. It is safe to call when already logged out.
func (m *Manager) Logout() error {
	err := m.purge()
	if m.nav != nil {
		m.nav.NavigateTo(RouteLogin)
	}
	return err
}

// Current returns the authenticated identity, or nil when logged out.
func (m *Manager) Current() *model.Identity {
	return m.identity
}

// Token returns the held credential token, or empty when logged out.
// It satisfies the API client's credential source.
func (m *Manager) Token() string {
	return m.token
}

// SetDisplayName updates the in-memory identity after a profile rename.
func (m *Manager) SetDisplayName(name string) {
	if m.identity != nil {
		m.identity.Name = name
	}
}

// decode parses the token without verifying its signature and checks expiry.
// A token without an exp claim is accepted.
func (m *Manager) decode(token string) (*credentialClaims, error) {
	claims := &credentialClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(m.now()) {
		return nil, fmt.Errorf("credential expired at %s", claims.ExpiresAt)
	}
	return claims, nil
}

func (m *Manager) purge() error {
	m.identity = nil
	m.token = ""
	if err := m.store.DeleteCredential(); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
