package service

import (
	"context"

	domainErrors "github.com/cassiomorais/booking/internal/domain/errors"
	"github.com/cassiomorais/booking/internal/domain/user"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UserService owns the user aggregate. Users never participate in the event
// pipeline; reservations reference them by id only.
type UserService struct {
	users  user.Repository
	logger zerolog.Logger
}

func NewUserService(users user.Repository, logger zerolog.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger.With().Str("service", "user").Logger(),
	}
}

func (s *UserService) Create(ctx context.Context, name, email string) (*user.User, error) {
	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domainErrors.ErrEmailTaken
	}

	u := user.NewUser(name, email)
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", u.ID.String()).Str("email", email).Msg("user created")
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]*user.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id.String()).Msg("user deleted")
	return nil
}
