package controller

import (
	"context"

	authmodels "neoquiz/internal/auth/models"
)

// AuthClient runs the backend calls behind the flow's effects.
type AuthClient interface {
	Register(ctx context.Context, req authmodels.RegisterRequest) (*authmodels.RegisterResponse, error)
	Login(ctx context.Context, req authmodels.LoginRequest) (*authmodels.LoginResponse, error)
	Logout(ctx context.Context) error
	GetTeachers(ctx context.Context) ([]authmodels.Teacher, error)
}
