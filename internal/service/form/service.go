package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type FormServicer interface {
	ListForService(ctx context.Context, serviceID uuid.UUID) ([]*model.Form, error)
	Submit(ctx context.Context, formID, userID uuid.UUID, req model.SubmitFormRequest) (*model.FormSubmission, error)
}

type Service struct {
	repo repository.FormRepository
}

func NewService(repo repository.FormRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListForService(ctx context.Context, serviceID uuid.UUID) ([]*model.Form, error) {
	forms, err := s.repo.ListForService(ctx, serviceID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("list forms: %w", err))
	}
	return forms, nil
}

// Submit stores the answers after checking that every required field has a
// non-blank answer and that no unknown field is answered.
func (s *Service) Submit(ctx context.Context, formID, userID uuid.UUID, req model.SubmitFormRequest) (*model.FormSubmission, error) {
	f, err := s.repo.Get(ctx, formID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("form", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("get form: %w", err))
	}
	if !f.IsActive {
		return nil, apperrors.NotFound("form", nil)
	}

	if err := checkAnswers(f.Fields, req.Answers); err != nil {
		return nil, err
	}

	answers, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("marshal answers: %w", err))
	}
	sub := &model.FormSubmission{
		ID:            uuid.New(),
		FormID:        f.ID,
		AppointmentID: req.AppointmentID,
		UserID:        userID,
		Answers:       answers,
	}
	if err := s.repo.CreateSubmission(ctx, sub); err != nil {
		if errors.Is(err, repository.ErrReference) {
			return nil, apperrors.BadRequest("submission references an unknown record", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("create submission: %w", err))
	}
	return sub, nil
}

func checkAnswers(fields []model.FormField, answers map[string]string) error {
	known := make(map[string]model.FormField, len(fields))
	var missing []string
	for _, field := range fields {
		known[field.Name] = field
		if field.IsRequired && strings.TrimSpace(answers[field.Name]) == "" {
			missing = append(missing, field.Name)
		}
	}
	if len(missing) > 0 {
		return apperrors.Validation("missing required answers: " + strings.Join(missing, ", "))
	}

	var unknown []string
	for name, value := range answers {
		field, ok := known[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if len(field.Options) > 0 && value != "" && !contains(field.Options, value) {
			return apperrors.Validation(fmt.Sprintf("%s must be one of %s", name, strings.Join(field.Options, ", ")))
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return apperrors.Validation("unknown fields: " + strings.Join(unknown, ", "))
	}
	return nil
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
