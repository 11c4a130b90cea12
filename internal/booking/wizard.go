// Package booking implements the appointment booking wizard shared by every
// booking surface: reason, date, time, confirm, success.
package booking

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/availability"
	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/locale"
)

type Step string

const (
	StepReason  Step = "reason"
	StepDate    Step = "date"
	StepTime    Step = "time"
	StepConfirm Step = "confirm"
	StepSuccess Step = "success"
	StepClosed  Step = "closed"
)

var (
	ErrSubmissionInFlight = apperrors.Conflict("booking submission already in flight", nil)
	ErrWrongStep          = apperrors.BadRequest("action not allowed at the current step", nil)
	ErrIncomplete         = apperrors.Validation("current step has no selection")
	ErrPastDate           = apperrors.Validation("date is in the past")
	ErrSlotUnavailable    = apperrors.Validation("time slot is not available")
	ErrClosed             = apperrors.BadRequest("booking wizard is closed", nil)
)

// Submitter creates the appointment once the wizard is confirmed.
type Submitter interface {
	CreateAppointment(ctx context.Context, input model.CreateAppointmentInput) (*model.Appointment, error)
}

type Params struct {
	DoctorID  uuid.UUID
	BranchID  uuid.UUID
	ServiceID uuid.UUID
	PatientID uuid.UUID
	// Owner is the user driving the wizard. It differs from PatientID when
	// clinic staff book on a patient's behalf.
	Owner uuid.UUID
	// Duration of the chosen service in minutes, used to size slots.
	Duration    int
	BookingType model.BookingType
	Source      availability.Source
	Submitter   Submitter
	Now         func() time.Time
	Location    *time.Location
	Locale      locale.Locale
	// Days is the length of the offered date strip.
	Days int
}

type Wizard struct {
	id     uuid.UUID
	params Params

	mu      sync.Mutex
	step    Step
	reason  *string
	date    *model.Date
	time    *availability.Clock
	slots   []availability.Slot
	loading bool
	result  *model.Appointment
	lastErr error
}

func New(p Params) *Wizard {
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Location == nil {
		p.Location = time.UTC
	}
	if p.Days <= 0 {
		p.Days = availability.ModalDays
	}
	if p.BookingType == "" {
		p.BookingType = model.BookingTypeOnline
	}
	if p.Locale == "" {
		p.Locale = locale.Default
	}
	if p.Owner == uuid.Nil {
		p.Owner = p.PatientID
	}
	return &Wizard{id: uuid.New(), params: p, step: StepReason}
}

func (w *Wizard) ID() uuid.UUID { return w.id }

func (w *Wizard) Owner() uuid.UUID { return w.params.Owner }

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) now() time.Time {
	return w.params.Now().In(w.params.Location)
}

func (w *Wizard) SelectReason(reason string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.at(StepReason); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrIncomplete
	}
	w.reason = &reason
	return nil
}

// SelectDate picks a day and loads its slots. A changed date drops the
// selected time.
func (w *Wizard) SelectDate(ctx context.Context, d model.Date) error {
	w.mu.Lock()
	if err := w.at(StepDate); err != nil {
		w.mu.Unlock()
		return err
	}
	d = d.In(w.params.Location)
	if !availability.IsSelectableDate(d, w.now()) {
		w.mu.Unlock()
		return ErrPastDate
	}
	q := w.query(d)
	w.mu.Unlock()

	slots, err := w.params.Source.Slots(ctx, q)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.at(StepDate); err != nil {
		return err
	}
	if w.date == nil || !w.date.Equal(d) {
		w.time = nil
	}
	w.date = &d
	w.slots = slots
	return nil
}

func (w *Wizard) SelectTime(c availability.Clock) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.at(StepTime); err != nil {
		return err
	}
	for _, s := range w.slots {
		if s.Start == c && s.Available {
			w.time = &c
			return nil
		}
	}
	return ErrSlotUnavailable
}

// Next advances one step when the current step has its selection. The
// confirm step only advances through Confirm.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.step {
	case StepReason:
		if w.reason == nil {
			return ErrIncomplete
		}
		w.step = StepDate
	case StepDate:
		if w.date == nil {
			return ErrIncomplete
		}
		w.step = StepTime
	case StepTime:
		if w.time == nil {
			return ErrIncomplete
		}
		w.step = StepConfirm
	case StepClosed:
		return ErrClosed
	default:
		return ErrWrongStep
	}
	return nil
}

// Back moves one step towards reason. Going back from reason closes the
// wizard and drops every selection.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.loading {
		return ErrSubmissionInFlight
	}
	switch w.step {
	case StepConfirm:
		w.step = StepTime
	case StepTime:
		w.step = StepDate
	case StepDate:
		w.step = StepReason
	case StepReason:
		w.reset()
	case StepClosed:
		return ErrClosed
	default:
		return ErrWrongStep
	}
	return nil
}

// Close discards all selections. An in-flight submission is not cancelled.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
}

// Done acknowledges the success screen and closes the wizard.
func (w *Wizard) Done() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.at(StepSuccess); err != nil {
		return err
	}
	w.reset()
	return nil
}

// Confirm submits the appointment. Only one submission is in flight at a
// time; a failed submission leaves the wizard at confirm with the error
// recorded.
func (w *Wizard) Confirm(ctx context.Context) (*model.Appointment, error) {
	w.mu.Lock()
	if w.loading {
		w.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if err := w.at(StepConfirm); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	w.loading = true
	actor := w.params.Owner
	input := model.CreateAppointmentInput{
		PatientID:   w.params.PatientID,
		DoctorID:    w.params.DoctorID,
		ServiceID:   w.params.ServiceID,
		BranchID:    w.params.BranchID,
		Date:        *w.date,
		StartTime:   w.time.String(),
		BookingType: w.params.BookingType,
		Reason:      w.reason,
		ActorID:     &actor,
	}
	w.mu.Unlock()

	appt, err := w.params.Submitter.CreateAppointment(ctx, input)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = false
	if err != nil {
		w.lastErr = err
		return nil, err
	}
	w.lastErr = nil
	w.result = appt
	if w.step == StepConfirm {
		w.step = StepSuccess
	}
	return appt, nil
}

func (w *Wizard) at(step Step) error {
	if w.step == step {
		return nil
	}
	if w.step == StepClosed {
		return ErrClosed
	}
	return ErrWrongStep
}

func (w *Wizard) query(d model.Date) availability.Query {
	return availability.Query{
		DoctorID: w.params.DoctorID,
		BranchID: w.params.BranchID,
		Date:     d,
		Duration: w.params.Duration,
	}
}

func (w *Wizard) reset() {
	w.step = StepClosed
	w.reason = nil
	w.date = nil
	w.time = nil
	w.slots = nil
	w.result = nil
	w.lastErr = nil
}
