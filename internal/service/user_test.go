package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/service"
)

const (
	managerID = "0b7c6c1e-5d7e-4a8e-9d1f-2a3b4c5d6e7f"
	userID    = "7f6e5d4c-3b2a-4f1e-8d9c-0b1a2c3d4e5f"
)

var (
	managerPrincipal = domain.Principal{ID: managerID, Role: domain.RoleManager, IsActive: true}
	userPrincipal    = domain.Principal{ID: userID, Role: domain.RoleUser, IsActive: true}
)

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("Names title-cased and phone kept", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := service.NewUserService(users)
		users.On("GetByID", ctx, userID).Return(&domain.User{ID: userID, FirstName: "Old", IsActive: true}, nil)
		users.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		user, err := svc.UpdateProfile(ctx, userPrincipal, domain.ProfileUpdate{
			FirstName: ptr("ada"), Phone: ptr("555-123-4567"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Ada", user.FirstName)
		assert.Equal(t, "555-123-4567", user.Phone)
		users.AssertExpectations(t)
	})

	t.Run("Bad phone", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := service.NewUserService(users)
		users.On("GetByID", ctx, userID).Return(&domain.User{ID: userID, IsActive: true}, nil)

		_, err := svc.UpdateProfile(ctx, userPrincipal, domain.ProfileUpdate{Phone: ptr("12")})
		assert.Equal(t, "Invalid phone number format", domain.MessageOf(err))
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestUserService_ListUsers(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepo)
	svc := service.NewUserService(users)
	users.On("List", ctx, domain.RoleUser, 0, service.DefaultPageLimit).Return([]domain.User{{ID: userID}}, 1, nil)

	page, err := svc.ListUsers(ctx, managerPrincipal, "user", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, service.DefaultPageLimit, page.Limit)

	_, err = svc.ListUsers(ctx, managerPrincipal, "admin", 0, 0)
	assert.True(t, domain.IsValidation(err))

	_, err = svc.ListUsers(ctx, userPrincipal, "", 0, 0)
	assert.True(t, domain.IsForbidden(err))
}

func TestUserService_GetUser(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepo)
	svc := service.NewUserService(users)
	users.On("GetByID", ctx, userID).Return(&domain.User{ID: userID}, nil)
	users.On("GetByID", ctx, managerID).Return(nil, domain.NewNotFoundError("user not found"))

	got, err := svc.GetUser(ctx, userPrincipal, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, got.ID)

	_, err = svc.GetUser(ctx, userPrincipal, managerID)
	assert.True(t, domain.IsForbidden(err))

	_, err = svc.GetUser(ctx, managerPrincipal, managerID)
	assert.Equal(t, "User not found", domain.MessageOf(err))
}

func TestUserService_DeleteUser(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepo)
	svc := service.NewUserService(users)
	users.On("SetActive", ctx, userID, false).Return(nil)

	require.NoError(t, svc.DeleteUser(ctx, managerPrincipal, userID))
	users.AssertExpectations(t)

	err := svc.DeleteUser(ctx, managerPrincipal, managerID)
	assert.Equal(t, "Cannot delete your own account", domain.MessageOf(err))

	err = svc.DeleteUser(ctx, userPrincipal, managerID)
	assert.True(t, domain.IsForbidden(err))

	err = svc.DeleteUser(ctx, managerPrincipal, "garbage")
	assert.True(t, domain.IsNotFound(err))
}
