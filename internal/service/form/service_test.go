package form

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type fakeRepo struct {
	repository.FormRepository
	form  *model.Form
	saved *model.FormSubmission
}

func (f *fakeRepo) Get(_ context.Context, id uuid.UUID) (*model.Form, error) {
	if f.form == nil || f.form.ID != id {
		return nil, repository.ErrNotFound
	}
	return f.form, nil
}

func (f *fakeRepo) CreateSubmission(_ context.Context, s *model.FormSubmission) error {
	f.saved = s
	return nil
}

func intakeForm() *model.Form {
	return &model.Form{
		Base:     model.Base{ID: uuid.New()},
		Name:     "Intake",
		IsActive: true,
		Fields: []model.FormField{
			{Name: "symptoms", IsRequired: true},
			{Name: "smoker", Options: []string{"yes", "no"}},
		},
	}
}

func TestSubmitRequiresFields(t *testing.T) {
	repo := &fakeRepo{form: intakeForm()}
	_, err := NewService(repo).Submit(context.Background(), repo.form.ID, uuid.New(), model.SubmitFormRequest{
		Answers: map[string]string{"symptoms": "  ", "smoker": "no"},
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.Nil(t, repo.saved)
}

func TestSubmitRejectsUnknownAndBadOption(t *testing.T) {
	repo := &fakeRepo{form: intakeForm()}
	svc := NewService(repo)

	_, err := svc.Submit(context.Background(), repo.form.ID, uuid.New(), model.SubmitFormRequest{
		Answers: map[string]string{"symptoms": "cough", "height": "180"},
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = svc.Submit(context.Background(), repo.form.ID, uuid.New(), model.SubmitFormRequest{
		Answers: map[string]string{"symptoms": "cough", "smoker": "sometimes"},
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestSubmitStoresAnswers(t *testing.T) {
	repo := &fakeRepo{form: intakeForm()}
	userID := uuid.New()

	sub, err := NewService(repo).Submit(context.Background(), repo.form.ID, userID, model.SubmitFormRequest{
		Answers: map[string]string{"symptoms": "cough"},
	})
	require.NoError(t, err)
	assert.Equal(t, userID, sub.UserID)
	assert.JSONEq(t, `{"symptoms":"cough"}`, string(repo.saved.Answers))
}

func TestSubmitUnknownForm(t *testing.T) {
	_, err := NewService(&fakeRepo{}).Submit(context.Background(), uuid.New(), uuid.New(), model.SubmitFormRequest{})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
