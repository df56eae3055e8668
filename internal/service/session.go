package service

import (
	"context"

	"rentaldesk-backend/internal/domain"
	"rentaldesk-backend/internal/repository"
)

type sessionService struct {
	staffRepo  repository.StaffRepository
	branchRepo repository.BranchRepository
}

func NewSessionService(staffRepo repository.StaffRepository, branchRepo repository.BranchRepository) SessionService {
	return &sessionService{staffRepo: staffRepo, branchRepo: branchRepo}
}

func (s *sessionService) GetSession(ctx context.Context, staffID string) (*domain.StaffContext, error) {
	staff, err := s.staffRepo.GetByID(ctx, staffID)
	if err != nil {
		return nil, err
	}
	branch, err := s.branchRepo.GetByID(ctx, staff.BranchID)
	if err != nil {
		return nil, err
	}
	return &domain.StaffContext{
		StaffID:      staff.ID,
		BranchID:     staff.BranchID,
		Name:         staff.Name,
		IsSuperAdmin: staff.IsSuperAdmin,
		Tax:          branch.Tax,
	}, nil
}
