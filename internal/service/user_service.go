package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

var _ domain.UserService = (*UserService)(nil)

type UserService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewUserService(repo domain.Repository, logger *zerolog.Logger) *UserService {
	l := logger.With().Str("component", "user_service").Logger()
	return &UserService{repo: repo, logger: &l}
}

func (s *UserService) AddUser(ctx context.Context, in models.UserInput) (*models.User, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" {
		return nil, fmt.Errorf("user name and email are required: %w", domain.ErrValidation)
	}

	user := &models.User{Name: in.Name, Email: in.Email}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, saveUserError(err, in.Email)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("User registered")
	return user, nil
}

// UpdateUser applies a partial update. Nil or blank fields keep stored values.
func (s *UserService) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	user, err := getUser(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		user.Name = *patch.Name
	}
	if patch.Email != nil && strings.TrimSpace(*patch.Email) != "" {
		user.Email = *patch.Email
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFound(err, "user", id)
		}
		return nil, saveUserError(err, user.Email)
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return getUser(ctx, s.repo, id)
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return notFound(err, "user", id)
	}
	s.logger.Info().Int64("user_id", id).Msg("User deleted")
	return nil
}

func saveUserError(err error, email string) error {
	if errors.Is(err, database.ErrDuplicateEmail) {
		return fmt.Errorf("email %s is already registered: %w", email, domain.ErrConflict)
	}
	return fmt.Errorf("failed to save user: %w", err)
}
