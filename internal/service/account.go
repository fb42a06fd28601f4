package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/laengalba/studio-booking/internal/auth"
	"github.com/laengalba/studio-booking/internal/model"
	"github.com/laengalba/studio-booking/internal/repository"
)

// AccountService handles registration, sign-in and password changes.
type AccountService struct {
	store *repository.Store
}

// NewAccountService constructs an AccountService.
func NewAccountService(store *repository.Store) *AccountService {
	return &AccountService{store: store}
}

// Register creates a student account. The email must appear on the roster.
func (s *AccountService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !s.store.IsRosterStudent(ctx, req.Email) {
		return nil, ErrNotRosterStudent
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	return s.store.CreateUser(ctx, model.NewUser{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashed,
		Role:     model.RoleStudent,
	})
}

// Authenticate returns the user whose credentials match.
func (s *AccountService) Authenticate(ctx context.Context, req model.LoginRequest) (*model.User, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !auth.ComparePassword(user.Password, req.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword replaces the user's password after verifying the current one.
func (s *AccountService) ChangePassword(ctx context.Context, userID string, req model.ChangePasswordRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	if req.NewPassword != req.ConfirmPassword {
		return invalid("passwords do not match")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.ComparePassword(user.Password, req.CurrentPassword) {
		return ErrInvalidCredentials
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if _, err := s.store.UpdateUserPassword(ctx, userID, hashed); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Current reloads the user from the store so callers never act on a stale
// session role.
func (s *AccountService) Current(ctx context.Context, userID string) (*model.User, error) {
	return s.store.GetUser(ctx, userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
