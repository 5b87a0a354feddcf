package clinician

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/aafiyacare/homecare-api/internal/model"
	"github.com/aafiyacare/homecare-api/internal/repository"
)

type Servicer interface {
	Create(ctx context.Context, req *model.CreateClinicianRequest) (*model.Clinician, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Clinician, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateClinicianRequest) (*model.Clinician, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, p *model.Pagination) ([]*model.Clinician, int64, error)
}

type Service struct {
	repo repository.ClinicianRepository
}

func NewService(repo repository.ClinicianRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req *model.CreateClinicianRequest) (*model.Clinician, error) {
	clinician := &model.Clinician{
		Base:          model.Base{ID: uuid.New()},
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Discipline:    req.Discipline,
		LicenseNumber: req.LicenseNumber,
		Status:        model.ClinicianStatusActive,
	}
	if err := s.repo.Create(ctx, clinician); err != nil {
		return nil, fmt.Errorf("failed to create clinician: %w", err)
	}
	return clinician, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Clinician, error) {
	clinician, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get clinician: %w", err)
	}
	return clinician, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateClinicianRequest) (*model.Clinician, error) {
	clinician, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get clinician: %w", err)
	}

	if req.Name != nil {
		clinician.Name = *req.Name
	}
	if req.Email != nil {
		clinician.Email = *req.Email
	}
	if req.Phone != nil {
		clinician.Phone = *req.Phone
	}
	if req.Discipline != nil {
		clinician.Discipline = *req.Discipline
	}
	if req.LicenseNumber != nil {
		clinician.LicenseNumber = *req.LicenseNumber
	}
	if req.Status != nil {
		clinician.Status = *req.Status
	}

	if err := s.repo.Update(ctx, clinician); err != nil {
		return nil, fmt.Errorf("failed to update clinician: %w", err)
	}
	return clinician, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete clinician: %w", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, p *model.Pagination) ([]*model.Clinician, int64, error) {
	clinicians, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clinicians: %w", err)
	}
	return clinicians, total, nil
}
