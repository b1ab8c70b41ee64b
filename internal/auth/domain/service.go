package domain

import (
	"context"
	"time"
)

type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	ListUsers(ctx context.Context, req ListUsersRequest) ([]User, error)
	UpdateUser(ctx context.Context, req UpdateUserRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (*User, *Session, error)
	ChangePassword(ctx context.Context, userID string, currentPassword, newPassword string) error
}

type CreateUserRequest struct {
	Email       string
	Password    string
	DisplayName string
	RoleID      int
	BranchID    string
}

type UpdateUserRequest struct {
	ID          string
	DisplayName *string
	RoleID      *int
	BranchID    *string
	Active      *bool
}

type ListUsersRequest struct {
	BranchID   string
	RoleID     int
	ActiveOnly bool
}

type LoginRequest struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

type LoginResult struct {
	User      *User
	RawToken  string
	ExpiresAt time.Time
}
