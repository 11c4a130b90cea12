package booking

import (
	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/availability"
	"github.com/jwalitptl/booking-api/internal/model"
)

// Snapshot is the serialisable view of a wizard.
type Snapshot struct {
	ID          uuid.UUID                    `json:"id"`
	Step        Step                         `json:"step"`
	DoctorID    uuid.UUID                    `json:"doctor_id"`
	BranchID    uuid.UUID                    `json:"branch_id"`
	ServiceID   uuid.UUID                    `json:"service_id"`
	Reason      *string                      `json:"reason,omitempty"`
	Date        *model.Date                  `json:"date,omitempty"`
	Time        *availability.Clock          `json:"time,omitempty"`
	Loading     bool                         `json:"loading"`
	Dates       []availability.DateCandidate `json:"dates,omitempty"`
	Times       []availability.Slot          `json:"times,omitempty"`
	Appointment *model.Appointment           `json:"appointment,omitempty"`
	Error       string                       `json:"error,omitempty"`
}

func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Snapshot{
		ID:          w.id,
		Step:        w.step,
		DoctorID:    w.params.DoctorID,
		BranchID:    w.params.BranchID,
		ServiceID:   w.params.ServiceID,
		Reason:      w.reason,
		Date:        w.date,
		Time:        w.time,
		Loading:     w.loading,
		Appointment: w.result,
	}
	if w.lastErr != nil {
		s.Error = w.lastErr.Error()
	}
	switch w.step {
	case StepDate:
		now := w.now()
		s.Dates = availability.DateCandidates(now, now, w.params.Days, w.params.Locale)
	case StepTime:
		s.Times = append([]availability.Slot(nil), w.slots...)
	}
	return s
}
