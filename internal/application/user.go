package app

import (
	"context"

	"opd-scanner/internal/domain/entity"
	"opd-scanner/internal/domain/port"
)

type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.SetState(state)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SetPain проверяет и запоминает уровень боли
func (s *UserService) SetPain(ctx context.Context, userID, chatID int64, value int) (*entity.User, error) {
	pain, err := entity.NewPainLevel(value)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePain(ctx, user.ID, pain); err != nil {
		return nil, err
	}

	user.SetPain(pain)
	return user, nil
}

func (s *UserService) BeginCheck(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingPhoto)
}

func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}
