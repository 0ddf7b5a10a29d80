package service

import (
	"context"
	"strings"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/logger"
	"rentalhub-backend/internal/repository"
	"rentalhub-backend/internal/security"
)

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) GetProfile(ctx context.Context, principal domain.Principal) (*domain.User, error) {
	if err := security.RequireActive(principal); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, principal.ID)
}

func (s *userService) UpdateProfile(ctx context.Context, principal domain.Principal, update domain.ProfileUpdate) (*domain.User, error) {
	if err := security.RequireActive(principal); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, principal.ID)
	if err != nil {
		return nil, err
	}

	if update.FirstName != nil {
		if strings.TrimSpace(*update.FirstName) == "" {
			return nil, domain.NewValidationError("First Name is required")
		}
		user.FirstName = titleName(*update.FirstName)
	}
	if update.LastName != nil {
		if strings.TrimSpace(*update.LastName) == "" {
			return nil, domain.NewValidationError("Last Name is required")
		}
		user.LastName = titleName(*update.LastName)
	}
	if update.Phone != nil {
		phone := strings.TrimSpace(*update.Phone)
		if phone != "" && !validPhone(phone) {
			return nil, domain.NewValidationError("Invalid phone number format")
		}
		user.Phone = phone
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, principal domain.Principal, role string, skip, limit int) (*domain.UserPage, error) {
	if err := security.RequireManager(principal); err != nil {
		return nil, err
	}
	r := domain.Role(role)
	if r != "" && !r.IsValid() {
		return nil, domain.NewValidationError(`Invalid user type. Must be "user" or "manager"`)
	}
	skip, limit, err := normalizePage(skip, limit)
	if err != nil {
		return nil, err
	}
	users, total, err := s.users.List(ctx, r, skip, limit)
	if err != nil {
		return nil, err
	}
	return &domain.UserPage{Users: users, Total: total, Skip: skip, Limit: limit}, nil
}

func (s *userService) GetUser(ctx context.Context, principal domain.Principal, id string) (*domain.User, error) {
	if err := security.RequireSelfOrManager(principal, id); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewNotFoundError("User not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, principal domain.Principal, id string) error {
	if err := security.RequireManager(principal); err != nil {
		return err
	}
	target, ok := repository.NormalizeID(id)
	if !ok {
		return domain.NewNotFoundError("User not found")
	}
	if self, _ := repository.NormalizeID(principal.ID); self == target {
		return domain.NewValidationError("Cannot delete your own account")
	}
	if err := s.users.SetActive(ctx, target, false); err != nil {
		if domain.IsNotFound(err) {
			return domain.NewNotFoundError("User not found")
		}
		return err
	}
	logger.InfoContext(ctx, "User deactivated", "userID", target, "managerID", principal.ID)
	return nil
}
