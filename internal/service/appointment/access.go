package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/internal/session"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

// authorize checks that the caller may see appt: patients their own,
// doctors their own, staff the appointments of branches they work at.
func (s *Service) authorize(ctx context.Context, sess *session.Session, appt *model.Appointment) error {
	switch {
	case sess == nil:
		return apperrors.Unauthorized(nil)
	case sess.HasRole(model.RoleAdmin):
		return nil
	case sess.HasRole(model.RolePatient):
		if appt.PatientID == sess.UserID {
			return nil
		}
	case sess.HasRole(model.RoleDoctor):
		doctor, err := s.doctors.GetByUserID(ctx, sess.UserID)
		if err == nil && doctor.ID == appt.DoctorID {
			return nil
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return apperrors.Internal(fmt.Errorf("get doctor for user: %w", err))
		}
	default:
		ok, err := s.hospitals.IsStaff(ctx, sess.UserID, appt.BranchID)
		if err != nil {
			return apperrors.Internal(fmt.Errorf("check staff assignment: %w", err))
		}
		if ok {
			return nil
		}
	}
	return apperrors.NotFound("appointment", nil)
}

// scope restricts list filters to the caller's own appointments. Staff
// must name a branch they are assigned to.
func (s *Service) scope(ctx context.Context, sess *session.Session, f *model.AppointmentFilters) error {
	switch {
	case sess == nil:
		return apperrors.Unauthorized(nil)
	case sess.HasRole(model.RoleAdmin):
		return nil
	case sess.HasRole(model.RolePatient):
		id := sess.UserID
		f.PatientID = &id
		return nil
	case sess.HasRole(model.RoleDoctor):
		doctor, err := s.doctors.GetByUserID(ctx, sess.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.Forbidden("no doctor profile linked to this account")
			}
			return apperrors.Internal(fmt.Errorf("get doctor for user: %w", err))
		}
		f.DoctorID = &doctor.ID
		return nil
	}

	if f.BranchID == nil {
		return apperrors.Validation("branch_id is required")
	}
	ok, err := s.hospitals.IsStaff(ctx, sess.UserID, *f.BranchID)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("check staff assignment: %w", err))
	}
	if !ok {
		return apperrors.Forbidden("not assigned to this branch")
	}
	return nil
}

// Booker resolves whose appointment the caller is booking and through
// which channel. Patients book online for themselves; clinic users book
// phone or walk-in appointments for a named patient at a branch or doctor
// they are allowed to act for.
func (s *Service) Booker(ctx context.Context, sess *session.Session, doctorID, branchID uuid.UUID, patientID *uuid.UUID, bt model.BookingType) (uuid.UUID, model.BookingType, error) {
	if sess == nil {
		return uuid.Nil, "", apperrors.Unauthorized(nil)
	}
	if sess.HasRole(model.RolePatient) {
		if patientID != nil && *patientID != sess.UserID {
			return uuid.Nil, "", apperrors.Forbidden("patients can only book for themselves")
		}
		if bt != "" && bt != model.BookingTypeOnline {
			return uuid.Nil, "", apperrors.Forbidden("patients can only book online")
		}
		return sess.UserID, model.BookingTypeOnline, nil
	}

	if patientID == nil || *patientID == uuid.Nil {
		return uuid.Nil, "", apperrors.Validation("patient_id is required")
	}
	if bt == "" {
		bt = model.BookingTypePhone
	}

	switch {
	case sess.HasRole(model.RoleAdmin):
	case sess.HasRole(model.RoleDoctor):
		doctor, err := s.doctors.GetByUserID(ctx, sess.UserID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return uuid.Nil, "", apperrors.Internal(fmt.Errorf("get doctor for user: %w", err))
		}
		if err != nil || doctor.ID != doctorID {
			return uuid.Nil, "", apperrors.Forbidden("doctors can only book their own appointments")
		}
	default:
		ok, err := s.hospitals.IsStaff(ctx, sess.UserID, branchID)
		if err != nil {
			return uuid.Nil, "", apperrors.Internal(fmt.Errorf("check staff assignment: %w", err))
		}
		if !ok {
			return uuid.Nil, "", apperrors.Forbidden("not assigned to this branch")
		}
	}
	return *patientID, bt, nil
}
