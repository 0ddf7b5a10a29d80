package security

import (
	"context"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/repository"
)

type principalKey struct{}

// WithPrincipal stores the authenticated principal on the request context.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal resolved for this request.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}

func RequireActive(p domain.Principal) error {
	if p.ID == "" {
		return domain.NewAuthenticationError("authentication required")
	}
	if !p.IsActive {
		return domain.NewAuthenticationError("account is inactive")
	}
	return nil
}

func RequireManager(p domain.Principal) error {
	if err := RequireActive(p); err != nil {
		return err
	}
	if !p.IsManager() {
		return domain.NewAuthorizationError("manager access required")
	}
	return nil
}

// RequireSelfOrManager admits managers and the owner of the resource.
func RequireSelfOrManager(p domain.Principal, ownerID string) error {
	if err := RequireActive(p); err != nil {
		return err
	}
	if p.IsManager() {
		return nil
	}
	owner, ok := repository.NormalizeID(ownerID)
	self, selfOK := repository.NormalizeID(p.ID)
	if !ok || !selfOK || owner != self {
		return domain.NewAuthorizationError("access denied")
	}
	return nil
}

// Authenticator resolves a bearer token into an active principal.
type Authenticator struct {
	tokens TokenManager
	users  repository.UserRepository
}

func NewAuthenticator(tokens TokenManager, users repository.UserRepository) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

func (a *Authenticator) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.NewAuthenticationError("authorization token required")
	}
	claims, err := a.tokens.ValidateToken(token)
	if err != nil {
		if err == ErrExpiredToken {
			return nil, domain.NewAuthenticationError("token has expired")
		}
		return nil, domain.NewAuthenticationError("invalid token")
	}
	user, err := a.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewAuthenticationError("user not found")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.NewAuthenticationError("account is inactive")
	}
	return user, nil
}
