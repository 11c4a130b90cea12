package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type PatientServicer interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.PatientProfile, error)
	UpsertProfile(ctx context.Context, userID uuid.UUID, req model.UpsertPatientProfileRequest) (*model.PatientProfile, error)
}

type Service struct {
	repo repository.PatientRepository
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*model.PatientProfile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient profile", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("get patient profile: %w", err))
	}
	return profile, nil
}

// UpsertProfile replaces the caller's profile with the request. Medical
// lists are stored trimmed and without blanks; their content is not
// checked.
func (s *Service) UpsertProfile(ctx context.Context, userID uuid.UUID, req model.UpsertPatientProfileRequest) (*model.PatientProfile, error) {
	profile := &model.PatientProfile{
		UserID:            userID,
		DateOfBirth:       req.DateOfBirth,
		Gender:            req.Gender,
		Allergies:         cleanList(req.Allergies),
		ChronicConditions: cleanList(req.ChronicConditions),
		EmergencyContact:  req.EmergencyContact,
	}
	if req.BloodType != nil && *req.BloodType != "" {
		bt := model.BloodType(strings.ToUpper(strings.TrimSpace(*req.BloodType)))
		if !bt.Valid() {
			return nil, apperrors.Validation("blood_type must be one of A+, A-, B+, B-, AB+, AB-, O+, O-")
		}
		profile.BloodType = &bt
	}
	if req.DateOfBirth != nil && req.DateOfBirth.IsZero() {
		profile.DateOfBirth = nil
	}

	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrReference) {
			return nil, apperrors.BadRequest("user is not registered yet", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("upsert patient profile: %w", err))
	}
	return profile, nil
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[strings.ToLower(item)] {
			continue
		}
		seen[strings.ToLower(item)] = true
		out = append(out, item)
	}
	return out
}
