package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/St1cky1/taskboard/internal/repository"
)

const maxNameLength = 255

type UserService struct {
	userRepo repository.IUserRepository
}

func NewUserService(userRepo repository.IUserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// GetUser получает пользователя по ID
func (s *UserService) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	if userID == "" {
		return nil, entity.ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entity.ErrUserNotFound
	}

	return user, nil
}

// UpdateUser меняет отображаемое имя
func (s *UserService) UpdateUser(ctx context.Context, userID string, req *entity.UpdateUserRequest) (*entity.User, error) {
	if userID == "" {
		return nil, entity.ErrUnauthorized
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return nil, fmt.Errorf("%w: name must be 1..%d characters", entity.ErrInvalidUserData, maxNameLength)
	}

	user, err := s.userRepo.UpdateName(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entity.ErrUserNotFound
	}

	return user, nil
}
