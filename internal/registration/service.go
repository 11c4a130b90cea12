package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/metrics"
	"github.com/jwalitptl/booking-api/pkg/security"
)

type RegistrationServicer interface {
	SubmitDoctor(ctx context.Context, form DoctorForm) (*model.DoctorApplication, error)
	SubmitHospital(ctx context.Context, form HospitalForm) (*model.HospitalApplication, error)
	ListApplications(ctx context.Context, kind model.ApplicationKind, status model.ApplicationStatus) (interface{}, error)
	Decide(ctx context.Context, kind model.ApplicationKind, id uuid.UUID, approve bool, decidedBy uuid.UUID) error
}

type Service struct {
	repo    repository.RegistrationRepository
	hasher  security.PasswordHasher
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewService(repo repository.RegistrationRepository, hasher security.PasswordHasher, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{repo: repo, hasher: hasher, logger: log, metrics: m}
}

// SubmitDoctor runs the form through every wizard step and stores one
// pending application.
func (s *Service) SubmitDoctor(ctx context.Context, form DoctorForm) (*model.DoctorApplication, error) {
	w := NewDoctorWizard()
	w.Form = form
	if err := Walk(w); err != nil {
		return nil, err
	}
	review := ReviewDoctor(form)

	app := &model.DoctorApplication{
		Base:              newBase(),
		FirstName:         strings.TrimSpace(review.FirstName),
		LastName:          strings.TrimSpace(review.LastName),
		Email:             strings.ToLower(strings.TrimSpace(review.Email)),
		Phone:             strings.TrimSpace(review.Phone),
		Specialty:         strings.TrimSpace(review.Specialty),
		LicenseNumber:     strings.TrimSpace(review.LicenseNumber),
		YearsOfExperience: review.YearsOfExperience,
		ConsultationFee:   review.ConsultationFee,
		Languages:         trimmed(review.Languages),
		DiplomaURL:        review.DiplomaURL,
		LicenseURL:        review.LicenseURL,
		Status:            model.ApplicationStatusPending,
	}
	if bio := strings.TrimSpace(review.Bio); bio != "" {
		app.Bio = &bio
	}

	if err := s.repo.CreateDoctorApplication(ctx, app); err != nil {
		s.logger.Error(err, "failed to store doctor application", "email", app.Email)
		return nil, apperrors.Internal(fmt.Errorf("create doctor application: %w", err))
	}
	s.metrics.RegistrationsCreated.WithLabelValues(string(model.ApplicationKindDoctor)).Inc()
	return app, nil
}

func (s *Service) SubmitHospital(ctx context.Context, form HospitalForm) (*model.HospitalApplication, error) {
	w := NewHospitalWizard()
	w.Form = form
	if err := Walk(w); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(form.AdminPassword)
	switch {
	case errors.Is(err, security.ErrPasswordTooShort), errors.Is(err, security.ErrPasswordTooLong):
		return nil, apperrors.Validation("admin_password: " + err.Error())
	case err != nil:
		return nil, apperrors.Internal(fmt.Errorf("hash admin password: %w", err))
	}

	app := &model.HospitalApplication{
		Base:              newBase(),
		Name:              strings.TrimSpace(form.Name),
		Type:              strings.TrimSpace(form.Type),
		City:              strings.TrimSpace(form.City),
		Address:           strings.TrimSpace(form.Address),
		Email:             strings.ToLower(strings.TrimSpace(form.Email)),
		Phone:             strings.TrimSpace(form.Phone),
		AdminName:         strings.TrimSpace(form.AdminName),
		AdminEmail:        strings.ToLower(strings.TrimSpace(form.AdminEmail)),
		AdminPasswordHash: hash,
		Status:            model.ApplicationStatusPending,
	}
	if site := strings.TrimSpace(form.Website); site != "" {
		app.Website = &site
	}

	if err := s.repo.CreateHospitalApplication(ctx, app); err != nil {
		s.logger.Error(err, "failed to store hospital application", "email", app.Email)
		return nil, apperrors.Internal(fmt.Errorf("create hospital application: %w", err))
	}
	s.metrics.RegistrationsCreated.WithLabelValues(string(model.ApplicationKindHospital)).Inc()
	return app, nil
}

func (s *Service) ListApplications(ctx context.Context, kind model.ApplicationKind, status model.ApplicationStatus) (interface{}, error) {
	switch kind {
	case model.ApplicationKindDoctor:
		apps, err := s.repo.ListDoctorApplications(ctx, status)
		if err != nil {
			return nil, apperrors.Internal(fmt.Errorf("list doctor applications: %w", err))
		}
		return apps, nil
	case model.ApplicationKindHospital:
		apps, err := s.repo.ListHospitalApplications(ctx, status)
		if err != nil {
			return nil, apperrors.Internal(fmt.Errorf("list hospital applications: %w", err))
		}
		return apps, nil
	}
	return nil, apperrors.BadRequest("unknown application kind", nil)
}

func (s *Service) Decide(ctx context.Context, kind model.ApplicationKind, id uuid.UUID, approve bool, decidedBy uuid.UUID) error {
	status := model.ApplicationStatusRejected
	if approve {
		status = model.ApplicationStatusApproved
	}

	var err error
	switch kind {
	case model.ApplicationKindDoctor:
		err = s.repo.DecideDoctorApplication(ctx, id, status, decidedBy)
	case model.ApplicationKindHospital:
		err = s.repo.DecideHospitalApplication(ctx, id, status, decidedBy)
	default:
		return apperrors.BadRequest("unknown application kind", nil)
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound("application", err)
	case errors.Is(err, repository.ErrStaleState):
		return apperrors.Conflict("application was already decided", err)
	case err != nil:
		return apperrors.Internal(fmt.Errorf("decide application: %w", err))
	}

	s.logger.Info("application decided",
		"kind", string(kind),
		"application_id", id.String(),
		"status", string(status),
		"decided_by", decidedBy.String())
	return nil
}

func newBase() model.Base {
	now := time.Now().UTC()
	return model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}
