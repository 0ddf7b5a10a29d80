package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/logger"
	"rentalhub-backend/internal/repository"
	"rentalhub-backend/internal/security"
)

const minPasswordLength = 6

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	nonDigit     = regexp.MustCompile(`\D`)
)

type authService struct {
	users        repository.UserRepository
	tokens       security.TokenManager
	auth         *security.Authenticator
	passwordCost int
}

func NewAuthService(users repository.UserRepository, tokens security.TokenManager, passwordCost int) AuthService {
	if passwordCost < bcrypt.MinCost {
		passwordCost = bcrypt.DefaultCost
	}
	return &authService{
		users:        users,
		tokens:       tokens,
		auth:         security.NewAuthenticator(tokens, users),
		passwordCost: passwordCost,
	}
}

func (s *authService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	logger.EnterMethod("authService.Register", "email", req.Email)

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"first_name", req.FirstName},
		{"last_name", req.LastName},
		{"email", req.Email},
		{"password", req.Password},
		{"user_type", req.UserType},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError("Missing required fields: %s", strings.Join(missing, ", "))
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(email) {
		return nil, domain.NewValidationError("Invalid email format")
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.NewConflictError("Email already exists")
	} else if !domain.IsNotFound(err) {
		return nil, err
	}
	if len(req.Password) < minPasswordLength {
		return nil, domain.NewValidationError("Password must be at least %d characters long", minPasswordLength)
	}
	role := domain.Role(req.UserType)
	if !role.IsValid() {
		return nil, domain.NewValidationError(`Invalid user type. Must be "user" or "manager"`)
	}
	phone := strings.TrimSpace(req.Phone)
	if phone != "" && !validPhone(phone) {
		return nil, domain.NewValidationError("Invalid phone number format")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.passwordCost)
	if err != nil {
		return nil, domain.NewInternalError("failed to hash password", err)
	}

	user := &domain.User{
		FirstName:    titleName(req.FirstName),
		LastName:     titleName(req.LastName),
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if domain.IsConflict(err) {
			return nil, domain.NewConflictError("Email already exists")
		}
		logger.ExitMethodWithError("authService.Register", err, "email", email)
		return nil, err
	}

	logger.InfoContext(ctx, "User registered", "userID", user.ID, "role", user.Role)
	logger.ExitMethod("authService.Register", "userID", user.ID)
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", nil, domain.NewValidationError("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if domain.IsNotFound(err) {
			return "", nil, domain.NewAuthenticationError("Invalid email or password")
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.WarnContext(ctx, "Login failed", "userID", user.ID)
		return "", nil, domain.NewAuthenticationError("Invalid email or password")
	}
	if !user.IsActive {
		return "", nil, domain.NewAuthenticationError("Account is inactive")
	}

	now := time.Now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return "", nil, err
	}
	user.LastLogin = &now

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", nil, domain.NewInternalError("Token generation failed", err)
	}
	logger.InfoContext(ctx, "User logged in", "userID", user.ID)
	return token, user, nil
}

func (s *authService) VerifyToken(ctx context.Context, token string) (*domain.User, error) {
	return s.auth.Authenticate(ctx, token)
}

func titleName(name string) string {
	// Casers are stateful; build one per call.
	return cases.Title(language.Und).String(strings.TrimSpace(name))
}

func validPhone(phone string) bool {
	return len(nonDigit.ReplaceAllString(phone, "")) == 10
}
