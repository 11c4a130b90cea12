package doctor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/booking-api/internal/availability"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/locale"
	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

const profileCache = "doctor_profile"

type DoctorServicer interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error)
	Search(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, int, error)
	Availability(ctx context.Context, doctorID, branchID, serviceID uuid.UUID, date model.Date) ([]availability.Slot, error)
	ServiceDuration(ctx context.Context, doctorID, serviceID uuid.UUID) (int, error)
	Dates(from time.Time, days int, loc locale.Locale) []availability.DateCandidate
	AddReview(ctx context.Context, doctorID, patientID uuid.UUID, req model.CreateReviewRequest) (*model.Review, error)
}

type Service struct {
	repo     repository.DoctorRepository
	source   availability.Source
	cache    *cache.Cache
	ttl      time.Duration
	location *time.Location
	now      func() time.Time
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(repo repository.DoctorRepository, source availability.Source, ttl time.Duration, loc *time.Location, log *logger.Logger, m *metrics.Metrics) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:     repo,
		source:   source,
		cache:    cache.New(ttl, 2*ttl),
		ttl:      ttl,
		location: loc,
		now:      time.Now,
		logger:   log,
		metrics:  m,
	}
}

// GetProfile assembles the doctor page. Profiles are cached until the TTL
// runs out or a review is added.
func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error) {
	if v, ok := s.cache.Get(id.String()); ok {
		s.metrics.CacheHits.WithLabelValues(profileCache).Inc()
		return copyProfile(v.(*model.DoctorProfile)), nil
	}
	s.metrics.CacheMisses.WithLabelValues(profileCache).Inc()

	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("get doctor: %w", err))
	}

	profile := &model.DoctorProfile{Doctor: doctor}
	if profile.Services, err = s.repo.ListServices(ctx, id); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("list doctor services: %w", err))
	}
	if profile.Branches, err = s.repo.ListBranches(ctx, id); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("list doctor branches: %w", err))
	}
	if profile.Reviews, err = s.repo.ListReviews(ctx, id); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("list doctor reviews: %w", err))
	}
	if profile.Insurances, err = s.repo.ListInsurances(ctx, id); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("list doctor insurances: %w", err))
	}

	profile.ReviewCount = len(profile.Reviews)
	profile.AverageRating = averageRating(profile.Reviews)
	profile.PrimaryBranch = primaryBranch(profile.Branches)

	s.cache.Set(id.String(), profile, s.ttl)
	return copyProfile(profile), nil
}

// copyProfile hands callers their own slices so the cached entry stays intact.
func copyProfile(p *model.DoctorProfile) *model.DoctorProfile {
	cp := *p
	if p.Doctor != nil {
		d := *p.Doctor
		cp.Doctor = &d
	}
	cp.Services = append([]model.DoctorService(nil), p.Services...)
	cp.Branches = append([]model.DoctorBranch(nil), p.Branches...)
	cp.Reviews = append([]model.Review(nil), p.Reviews...)
	cp.Insurances = append([]model.Insurance(nil), p.Insurances...)
	cp.PrimaryBranch = nil
	if p.PrimaryBranch != nil {
		for i := range p.Branches {
			if &p.Branches[i] == p.PrimaryBranch {
				cp.PrimaryBranch = &cp.Branches[i]
				break
			}
		}
	}
	return &cp
}

// averageRating rounds to one decimal; no reviews is 0.
func averageRating(reviews []model.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return math.Round(float64(sum)/float64(len(reviews))*10) / 10
}

func primaryBranch(branches []model.DoctorBranch) *model.DoctorBranch {
	if len(branches) == 0 {
		return nil
	}
	for i := range branches {
		if branches[i].IsPrimary {
			return &branches[i]
		}
	}
	return &branches[0]
}

func (s *Service) Search(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, int, error) {
	doctors, total, err := s.repo.Search(ctx, filters)
	if err != nil {
		return nil, 0, apperrors.Internal(fmt.Errorf("search doctors: %w", err))
	}
	return doctors, total, nil
}

// Availability lists the slots for one date. With a service the slot length
// follows the service; otherwise the schedule's own length is used.
func (s *Service) Availability(ctx context.Context, doctorID, branchID, serviceID uuid.UUID, date model.Date) ([]availability.Slot, error) {
	if date.IsZero() {
		return nil, apperrors.Validation("date is required")
	}
	if _, err := s.GetProfile(ctx, doctorID); err != nil {
		return nil, err
	}

	duration := 0
	if serviceID != uuid.Nil {
		d, err := s.ServiceDuration(ctx, doctorID, serviceID)
		if err != nil {
			return nil, err
		}
		duration = d
	}

	slots, err := s.source.Slots(ctx, availability.Query{
		DoctorID: doctorID,
		BranchID: branchID,
		Date:     date,
		Duration: duration,
	})
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("load availability: %w", err))
	}
	return slots, nil
}

// ServiceDuration is the slot length in minutes the doctor offers the
// service at.
func (s *Service) ServiceDuration(ctx context.Context, doctorID, serviceID uuid.UUID) (int, error) {
	svc, err := s.repo.GetService(ctx, doctorID, serviceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, apperrors.NotFound("doctor service", err)
		}
		return 0, apperrors.Internal(fmt.Errorf("get doctor service: %w", err))
	}
	return svc.EffectiveDuration(), nil
}

// Dates returns the strip of selectable days starting at from.
func (s *Service) Dates(from time.Time, days int, loc locale.Locale) []availability.DateCandidate {
	now := s.now().In(s.location)
	if from.IsZero() {
		from = now
	}
	return availability.DateCandidates(now, from, days, loc)
}

func (s *Service) AddReview(ctx context.Context, doctorID, patientID uuid.UUID, req model.CreateReviewRequest) (*model.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.Validation("rating must be between 1 and 5")
	}
	review := &model.Review{
		ID:        uuid.New(),
		DoctorID:  doctorID,
		PatientID: patientID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateReview(ctx, review); err != nil {
		if errors.Is(err, repository.ErrReference) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("create review: %w", err))
	}
	s.Invalidate(doctorID)
	return review, nil
}

// Invalidate drops the cached profile of the doctor.
func (s *Service) Invalidate(doctorID uuid.UUID) {
	s.cache.Delete(doctorID.String())
}
