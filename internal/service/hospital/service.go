package hospital

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type HospitalServicer interface {
	List(ctx context.Context, filters *model.HospitalFilters) ([]*model.Hospital, int, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error)
	ListBranches(ctx context.Context, hospitalID uuid.UUID) ([]*model.Branch, error)
	ListDepartments(ctx context.Context, hospitalID uuid.UUID) ([]*model.Department, error)
	ListServices(ctx context.Context, branchID uuid.UUID) ([]*model.Service, error)
}

type Service struct {
	repo repository.HospitalRepository
}

func NewService(repo repository.HospitalRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters *model.HospitalFilters) ([]*model.Hospital, int, error) {
	hospitals, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, apperrors.Internal(fmt.Errorf("list hospitals: %w", err))
	}
	return hospitals, total, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error) {
	h, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("hospital", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("get hospital: %w", err))
	}
	return h, nil
}

func (s *Service) ListBranches(ctx context.Context, hospitalID uuid.UUID) ([]*model.Branch, error) {
	if _, err := s.Get(ctx, hospitalID); err != nil {
		return nil, err
	}
	branches, err := s.repo.ListBranches(ctx, hospitalID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("list branches: %w", err))
	}
	return branches, nil
}

func (s *Service) ListDepartments(ctx context.Context, hospitalID uuid.UUID) ([]*model.Department, error) {
	if _, err := s.Get(ctx, hospitalID); err != nil {
		return nil, err
	}
	departments, err := s.repo.ListDepartments(ctx, hospitalID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("list departments: %w", err))
	}
	return departments, nil
}

func (s *Service) ListServices(ctx context.Context, branchID uuid.UUID) ([]*model.Service, error) {
	if _, err := s.repo.GetBranch(ctx, branchID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("branch", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("get branch: %w", err))
	}
	services, err := s.repo.ListBranchServices(ctx, branchID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("list branch services: %w", err))
	}
	return services, nil
}
