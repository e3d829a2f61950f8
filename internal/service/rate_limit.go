package service

import (
	"context"
	"time"

	"talentflow/internal/repository"
	"talentflow/pkg/logger"
)

type RateLimitService interface {
	// Allow атомарно учитывает запрос и возвращает, уложился ли он в лимит,
	// вместе с текущим счетчиком окна. Инкремент до сравнения исключает гонку
	// двух запросов на границе лимита
	Allow(ctx context.Context, key string, limit int, windowSeconds int) (bool, int64, error)
}

type rateLimitService struct {
	rateLimitRepo repository.RateLimitRepository
	log           logger.Logger
}

func NewRateLimitService(rateLimitRepo repository.RateLimitRepository, log logger.Logger) RateLimitService {
	return &rateLimitService{
		rateLimitRepo: rateLimitRepo,
		log:           log,
	}
}

func (s *rateLimitService) Allow(ctx context.Context, key string, limit int, windowSeconds int) (bool, int64, error) {
	count, err := s.rateLimitRepo.Increment(ctx, key, time.Duration(windowSeconds)*time.Second)
	if err != nil {
		return false, 0, err
	}

	return count <= int64(limit), count, nil
}
