package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/VelocityMotors/VelocityMotors/internal/common/apperr"
	"gorm.io/gorm"
)

// Service 封装车辆目录的读路径（订单/支付只读目录，不改目录）。
type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

// ListCarsFilter 查询条件。
type ListCarsFilter struct {
	Category     string
	FeaturedOnly bool
	Offset       int
	Limit        int
}

func (s *Service) GetCar(ctx context.Context, id string) (*Car, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("car id required: %w", apperr.ErrValidation)
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("car %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("find car: %w: %v", apperr.ErrStorage, err)
	}
	return c, nil
}

func (s *Service) ListCars(ctx context.Context, f ListCarsFilter) ([]Car, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	cars, total, err := s.repo.ListAvailable(ctx, strings.TrimSpace(f.Category), f.FeaturedOnly, f.Offset, f.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list cars: %w: %v", apperr.ErrStorage, err)
	}
	return cars, total, nil
}
