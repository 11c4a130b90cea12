package hospital

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
	repository.HospitalRepository
	hospital *model.Hospital
	branches []*model.Branch
}

func (f *fakeRepo) Get(_ context.Context, id uuid.UUID) (*model.Hospital, error) {
	if f.hospital == nil || f.hospital.ID != id {
		return nil, repository.ErrNotFound
	}
	return f.hospital, nil
}

func (f *fakeRepo) ListBranches(context.Context, uuid.UUID) ([]*model.Branch, error) {
	return f.branches, nil
}

func (f *fakeRepo) GetBranch(context.Context, uuid.UUID) (*model.Branch, error) {
	return nil, repository.ErrNotFound
}

func TestListBranchesOfUnknownHospital(t *testing.T) {
	svc := NewService(&fakeRepo{})
	_, err := svc.ListBranches(context.Background(), uuid.New())
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestListBranches(t *testing.T) {
	id := uuid.New()
	svc := NewService(&fakeRepo{
		hospital: &model.Hospital{Base: model.Base{ID: id}},
		branches: []*model.Branch{{Name: "Nizami"}},
	})
	branches, err := svc.ListBranches(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, branches, 1)
}

func TestListServicesOfUnknownBranch(t *testing.T) {
	_, err := NewService(&fakeRepo{}).ListServices(context.Background(), uuid.New())
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
