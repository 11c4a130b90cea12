package doctor

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/availability"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/internal/session"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/locale"
	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

type fakeDoctorRepo struct {
	repository.DoctorRepository
	doctor   *model.Doctor
	reviews  []model.Review
	branches []model.DoctorBranch
	gets     int
	byUser   map[uuid.UUID]*model.Doctor
}

func (f *fakeDoctorRepo) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	f.gets++
	if f.doctor == nil || f.doctor.ID != id {
		return nil, repository.ErrNotFound
	}
	return f.doctor, nil
}

func (f *fakeDoctorRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*model.Doctor, error) {
	if d, ok := f.byUser[userID]; ok {
		return d, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDoctorRepo) ListServices(context.Context, uuid.UUID) ([]model.DoctorService, error) {
	return []model.DoctorService{}, nil
}

func (f *fakeDoctorRepo) GetService(_ context.Context, _, serviceID uuid.UUID) (*model.DoctorService, error) {
	custom := 60
	return &model.DoctorService{
		Service:        model.Service{Base: model.Base{ID: serviceID}, DurationMinutes: 30},
		CustomDuration: &custom,
	}, nil
}

func (f *fakeDoctorRepo) ListBranches(context.Context, uuid.UUID) ([]model.DoctorBranch, error) {
	return f.branches, nil
}

func (f *fakeDoctorRepo) ListReviews(context.Context, uuid.UUID) ([]model.Review, error) {
	return f.reviews, nil
}

func (f *fakeDoctorRepo) ListInsurances(context.Context, uuid.UUID) ([]model.Insurance, error) {
	return []model.Insurance{}, nil
}

func (f *fakeDoctorRepo) CreateReview(_ context.Context, r *model.Review) error {
	f.reviews = append(f.reviews, *r)
	return nil
}

type recordingSource struct {
	last availability.Query
}

func (r *recordingSource) Slots(_ context.Context, q availability.Query) ([]availability.Slot, error) {
	r.last = q
	return []availability.Slot{}, nil
}

func newTestService(repo *fakeDoctorRepo, source availability.Source) *Service {
	if source == nil {
		source = &recordingSource{}
	}
	return NewService(repo, source, time.Minute, time.UTC, logger.Nop(), metrics.New("test", nil))
}

func TestProfileAggregates(t *testing.T) {
	id := uuid.New()
	second := model.DoctorBranch{Branch: model.Branch{Name: "Yasamal"}, IsPrimary: true}
	repo := &fakeDoctorRepo{
		doctor:   &model.Doctor{Base: model.Base{ID: id}},
		reviews:  []model.Review{{Rating: 5}, {Rating: 4}, {Rating: 4}},
		branches: []model.DoctorBranch{{Branch: model.Branch{Name: "Nizami"}}, second},
	}
	svc := newTestService(repo, nil)

	profile, err := svc.GetProfile(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 4.3, profile.AverageRating)
	assert.Equal(t, 3, profile.ReviewCount)
	require.NotNil(t, profile.PrimaryBranch)
	assert.Equal(t, "Yasamal", profile.PrimaryBranch.Name)
}

func TestProfileWithoutReviewsOrPrimary(t *testing.T) {
	id := uuid.New()
	repo := &fakeDoctorRepo{
		doctor:   &model.Doctor{Base: model.Base{ID: id}},
		branches: []model.DoctorBranch{{Branch: model.Branch{Name: "Nizami"}}},
	}
	profile, err := newTestService(repo, nil).GetProfile(context.Background(), id)
	require.NoError(t, err)
	assert.Zero(t, profile.AverageRating)
	assert.Equal(t, "Nizami", profile.PrimaryBranch.Name)
}

func TestProfileNotFound(t *testing.T) {
	_, err := newTestService(&fakeDoctorRepo{}, nil).GetProfile(context.Background(), uuid.New())
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestProfileCallersCannotCorruptCache(t *testing.T) {
	id := uuid.New()
	repo := &fakeDoctorRepo{
		doctor:   &model.Doctor{Base: model.Base{ID: id}, FirstName: "Rəşad"},
		branches: []model.DoctorBranch{{Branch: model.Branch{Name: "Nizami"}, IsPrimary: true}},
	}
	svc := newTestService(repo, nil)

	first, err := svc.GetProfile(context.Background(), id)
	require.NoError(t, err)
	first.Doctor.FirstName = "changed"
	first.PrimaryBranch.Name = "changed"
	first.Branches = append(first.Branches, model.DoctorBranch{})

	second, err := svc.GetProfile(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.gets)
	assert.Equal(t, "Rəşad", second.Doctor.FirstName)
	require.Len(t, second.Branches, 1)
	assert.Equal(t, "Nizami", second.Branches[0].Name)
	assert.Same(t, &second.Branches[0], second.PrimaryBranch)
}

func TestProfileCachedUntilReview(t *testing.T) {
	id := uuid.New()
	repo := &fakeDoctorRepo{doctor: &model.Doctor{Base: model.Base{ID: id}}}
	svc := newTestService(repo, nil)

	_, err := svc.GetProfile(context.Background(), id)
	require.NoError(t, err)
	_, err = svc.GetProfile(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.gets)

	_, err = svc.AddReview(context.Background(), id, uuid.New(), model.CreateReviewRequest{Rating: 5})
	require.NoError(t, err)

	profile, err := svc.GetProfile(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.gets)
	assert.Equal(t, 1, profile.ReviewCount)
}

func TestAddReviewRejectsRating(t *testing.T) {
	svc := newTestService(&fakeDoctorRepo{}, nil)
	_, err := svc.AddReview(context.Background(), uuid.New(), uuid.New(), model.CreateReviewRequest{Rating: 6})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestAvailabilityUsesServiceLength(t *testing.T) {
	id := uuid.New()
	source := &recordingSource{}
	svc := newTestService(&fakeDoctorRepo{doctor: &model.Doctor{Base: model.Base{ID: id}}}, source)
	date, _ := model.ParseDate("2026-10-20")

	_, err := svc.Availability(context.Background(), id, uuid.Nil, uuid.New(), date)
	require.NoError(t, err)
	assert.Equal(t, 60, source.last.Duration)
	assert.Equal(t, id, source.last.DoctorID)
}

func TestDatesStrip(t *testing.T) {
	svc := newTestService(&fakeDoctorRepo{}, nil)
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC) }

	dates := svc.Dates(time.Time{}, availability.ProfileDays, locale.AZ)
	require.Len(t, dates, 14)
	assert.False(t, dates[0].Disabled)
	assert.Equal(t, 19, dates[0].DayOfMonth)
}

type fakeScheduleRepo struct {
	repository.ScheduleRepository
	replaced []model.DoctorSchedule
	override *model.ScheduleOverride
}

func (f *fakeScheduleRepo) ReplaceSchedules(_ context.Context, _ uuid.UUID, rows []model.DoctorSchedule) error {
	f.replaced = rows
	return nil
}

func (f *fakeScheduleRepo) CreateOverride(_ context.Context, o *model.ScheduleOverride) error {
	f.override = o
	return nil
}

type fakeHospitalRepo struct {
	repository.HospitalRepository
	staff map[uuid.UUID]bool
}

func (f *fakeHospitalRepo) IsStaff(_ context.Context, _, branchID uuid.UUID) (bool, error) {
	return f.staff[branchID], nil
}

func TestReplaceSchedulesChecksAccess(t *testing.T) {
	doctorID, userID, branchID := uuid.New(), uuid.New(), uuid.New()
	repo := &fakeScheduleRepo{}
	doctors := &fakeDoctorRepo{byUser: map[uuid.UUID]*model.Doctor{userID: {Base: model.Base{ID: doctorID}}}}
	hospitals := &fakeHospitalRepo{staff: map[uuid.UUID]bool{}}
	svc := NewScheduleService(repo, doctors, hospitals)

	req := model.ReplaceSchedulesRequest{Schedules: []model.ScheduleInput{
		{BranchID: branchID, DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00"},
	}}

	_, err := svc.Replace(context.Background(), &session.Session{UserID: uuid.New(), Role: model.RoleStaff}, doctorID, req)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	rows, err := svc.Replace(context.Background(), &session.Session{UserID: userID, Role: model.RoleDoctor}, doctorID, req)
	require.NoError(t, err)
	require.Len(t, repo.replaced, 1)
	assert.Equal(t, 30, rows[0].SlotMinutes)
	assert.True(t, rows[0].IsActive)
}

func TestReplaceSchedulesRejectsInvertedWindow(t *testing.T) {
	svc := NewScheduleService(&fakeScheduleRepo{}, &fakeDoctorRepo{}, &fakeHospitalRepo{})
	req := model.ReplaceSchedulesRequest{Schedules: []model.ScheduleInput{
		{BranchID: uuid.New(), DayOfWeek: 1, StartTime: "17:00", EndTime: "09:00"},
	}}
	_, err := svc.Replace(context.Background(), &session.Session{Role: model.RoleAdmin}, uuid.New(), req)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestClosureOverrideDropsWindow(t *testing.T) {
	repo := &fakeScheduleRepo{}
	svc := NewScheduleService(repo, &fakeDoctorRepo{}, &fakeHospitalRepo{})
	start, end := "10:00", "12:00"
	date, _ := model.ParseDate("2026-10-21")

	_, err := svc.CreateOverride(context.Background(), &session.Session{Role: model.RoleAdmin}, uuid.New(), model.CreateOverrideRequest{
		BranchID:    uuid.New(),
		Date:        date,
		IsAvailable: false,
		StartTime:   &start,
		EndTime:     &end,
	})
	require.NoError(t, err)
	require.NotNil(t, repo.override)
	assert.Nil(t, repo.override.StartTime)
	assert.False(t, repo.override.IsAvailable)
}
