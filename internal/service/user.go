package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"talentflow/internal/domain"
	"talentflow/internal/repository"
	"talentflow/pkg/logger"
)

type UserService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*domain.User, error)
}

type UpdateProfileRequest struct {
	FullName       *string
	AvatarURL      *string
	CompanyName    *string
	ExperienceBand *string
}

type userService struct {
	userRepo repository.UserRepository
	log      logger.Logger
}

func NewUserService(userRepo repository.UserRepository, log logger.Logger) UserService {
	return &userService{userRepo: userRepo, log: log}
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, errors.New("full name cannot be empty")
		}
		if len(name) > 100 {
			return nil, errors.New("full name is too long (max 100 characters)")
		}
		user.FullName = name
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}
	if req.CompanyName != nil {
		if user.Role != domain.RoleRecruiter {
			return nil, errors.New("only recruiters have a company name")
		}
		user.CompanyName = req.CompanyName
	}
	if req.ExperienceBand != nil {
		if user.Role != domain.RoleCandidate {
			return nil, errors.New("only candidates have an experience band")
		}
		switch *req.ExperienceBand {
		case domain.ExperienceBandFresher, domain.ExperienceBandMid,
			domain.ExperienceBandSenior, domain.ExperienceBandLeadership:
			user.ExperienceBand = req.ExperienceBand
		default:
			return nil, errors.New("unknown experience band")
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.log.Error("Failed to update profile", "error", err, "user_id", userID)
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}
