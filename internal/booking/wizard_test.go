package booking

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/availability"
	"github.com/jwalitptl/booking-api/internal/model"
)

type fakeSubmitter struct {
	calls   int32
	release chan struct{}
	started chan struct{}
	err     error
	inputs  []model.CreateAppointmentInput
	mu      sync.Mutex
}

func (f *fakeSubmitter) CreateAppointment(ctx context.Context, in model.CreateAppointmentInput) (*model.Appointment, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &model.Appointment{
		Base:        model.Base{ID: uuid.New()},
		DoctorID:    in.DoctorID,
		StartTime:   in.StartTime,
		Status:      model.AppointmentStatusPending,
		BookingType: in.BookingType,
	}, nil
}

var monday = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func newWizard(sub Submitter) *Wizard {
	return New(Params{
		DoctorID:  uuid.New(),
		BranchID:  uuid.New(),
		ServiceID: uuid.New(),
		PatientID: uuid.New(),
		Source:    availability.StaticSource{Grid: availability.DefaultGrid},
		Submitter: sub,
		Now:       func() time.Time { return monday },
	})
}

func tomorrow() model.Date {
	return model.NewDate(monday.AddDate(0, 0, 1))
}

func advanceToConfirm(t *testing.T, w *Wizard) {
	t.Helper()
	require.NoError(t, w.SelectReason("Check-up"))
	require.NoError(t, w.Next())
	require.NoError(t, w.SelectDate(context.Background(), tomorrow()))
	require.NoError(t, w.Next())
	require.NoError(t, w.SelectTime(availability.At(9, 0)))
	require.NoError(t, w.Next())
	require.Equal(t, StepConfirm, w.Step())
}

func TestNextRequiresSelection(t *testing.T) {
	w := newWizard(&fakeSubmitter{})

	assert.ErrorIs(t, w.Next(), ErrIncomplete)
	assert.Equal(t, StepReason, w.Step())

	require.NoError(t, w.SelectReason("Consultation"))
	require.NoError(t, w.Next())
	assert.ErrorIs(t, w.Next(), ErrIncomplete)
	assert.Equal(t, StepDate, w.Step())

	require.NoError(t, w.SelectDate(context.Background(), tomorrow()))
	require.NoError(t, w.Next())
	assert.ErrorIs(t, w.Next(), ErrIncomplete)
	assert.Equal(t, StepTime, w.Step())
}

func TestBlankReasonIsRejected(t *testing.T) {
	w := newWizard(&fakeSubmitter{})
	assert.ErrorIs(t, w.SelectReason("   "), ErrIncomplete)
	assert.ErrorIs(t, w.Next(), ErrIncomplete)
}

func TestSelectDateRejectsPast(t *testing.T) {
	w := newWizard(&fakeSubmitter{})
	require.NoError(t, w.SelectReason("Consultation"))
	require.NoError(t, w.Next())

	err := w.SelectDate(context.Background(), model.NewDate(monday.AddDate(0, 0, -1)))
	assert.ErrorIs(t, err, ErrPastDate)
	assert.ErrorIs(t, w.Next(), ErrIncomplete)

	assert.NoError(t, w.SelectDate(context.Background(), model.NewDate(monday)))
}

func TestSelectTimeRejectsUnavailableSlots(t *testing.T) {
	w := newWizard(&fakeSubmitter{})
	require.NoError(t, w.SelectReason("Consultation"))
	require.NoError(t, w.Next())
	require.NoError(t, w.SelectDate(context.Background(), tomorrow()))
	require.NoError(t, w.Next())

	assert.ErrorIs(t, w.SelectTime(availability.At(13, 0)), ErrSlotUnavailable)
	assert.ErrorIs(t, w.SelectTime(availability.At(9, 15)), ErrSlotUnavailable)
	assert.NoError(t, w.SelectTime(availability.At(14, 0)))
}

func TestSelectionOutsideItsStep(t *testing.T) {
	w := newWizard(&fakeSubmitter{})
	assert.ErrorIs(t, w.SelectTime(availability.At(9, 0)), ErrWrongStep)
	assert.ErrorIs(t, w.SelectDate(context.Background(), tomorrow()), ErrWrongStep)
}

func TestBackNavigationAndClose(t *testing.T) {
	w := newWizard(&fakeSubmitter{})
	advanceToConfirm(t, w)

	require.NoError(t, w.Back())
	assert.Equal(t, StepTime, w.Step())
	require.NoError(t, w.Back())
	assert.Equal(t, StepDate, w.Step())
	require.NoError(t, w.Back())
	assert.Equal(t, StepReason, w.Step())

	snap := w.Snapshot()
	require.NotNil(t, snap.Reason)
	assert.Equal(t, "Check-up", *snap.Reason)

	require.NoError(t, w.Back())
	assert.Equal(t, StepClosed, w.Step())
	snap = w.Snapshot()
	assert.Nil(t, snap.Reason)
	assert.Nil(t, snap.Date)
	assert.Nil(t, snap.Time)

	assert.ErrorIs(t, w.Next(), ErrClosed)
	assert.ErrorIs(t, w.Back(), ErrClosed)
}

func TestConfirmCreatesOnePendingAppointment(t *testing.T) {
	sub := &fakeSubmitter{}
	w := newWizard(sub)
	advanceToConfirm(t, w)

	appt, err := w.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StepSuccess, w.Step())
	assert.Equal(t, model.AppointmentStatusPending, appt.Status)

	require.Len(t, sub.inputs, 1)
	in := sub.inputs[0]
	assert.Equal(t, "09:00", in.StartTime)
	assert.Equal(t, model.BookingTypeOnline, in.BookingType)
	assert.True(t, in.Date.Equal(tomorrow()))
	require.NotNil(t, in.Reason)
	assert.Equal(t, "Check-up", *in.Reason)

	_, err = w.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrWrongStep)
	assert.Equal(t, int32(1), atomic.LoadInt32(&sub.calls))

	require.NoError(t, w.Done())
	assert.Equal(t, StepClosed, w.Step())
	assert.Nil(t, w.Snapshot().Appointment)
}

func TestConfirmWhileLoadingIssuesNoSecondCreate(t *testing.T) {
	sub := &fakeSubmitter{release: make(chan struct{}), started: make(chan struct{})}
	w := newWizard(sub)
	advanceToConfirm(t, w)

	done := make(chan error, 1)
	go func() {
		_, err := w.Confirm(context.Background())
		done <- err
	}()
	<-sub.started

	assert.True(t, w.Snapshot().Loading)
	for i := 0; i < 3; i++ {
		_, err := w.Confirm(context.Background())
		assert.ErrorIs(t, err, ErrSubmissionInFlight)
	}
	assert.ErrorIs(t, w.Back(), ErrSubmissionInFlight)

	close(sub.release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), atomic.LoadInt32(&sub.calls))
	assert.False(t, w.Snapshot().Loading)
	assert.Equal(t, StepSuccess, w.Step())
}

func TestConfirmFailureStaysOnConfirm(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("slot is no longer available")}
	w := newWizard(sub)
	advanceToConfirm(t, w)

	_, err := w.Confirm(context.Background())
	require.Error(t, err)

	snap := w.Snapshot()
	assert.Equal(t, StepConfirm, snap.Step)
	assert.False(t, snap.Loading)
	assert.Contains(t, snap.Error, "no longer available")

	sub.err = nil
	_, err = w.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StepSuccess, w.Step())
	assert.Empty(t, w.Snapshot().Error)
}

func TestCloseDuringSubmitKeepsClosed(t *testing.T) {
	sub := &fakeSubmitter{release: make(chan struct{}), started: make(chan struct{})}
	w := newWizard(sub)
	advanceToConfirm(t, w)

	done := make(chan error, 1)
	go func() {
		_, err := w.Confirm(context.Background())
		done <- err
	}()
	<-sub.started
	w.Close()
	close(sub.release)

	require.NoError(t, <-done)
	assert.Equal(t, StepClosed, w.Step())
}

func TestSnapshotOffersDatesAndTimes(t *testing.T) {
	w := newWizard(&fakeSubmitter{})
	require.NoError(t, w.SelectReason("Consultation"))
	require.NoError(t, w.Next())

	snap := w.Snapshot()
	assert.Len(t, snap.Dates, availability.ModalDays)
	assert.Empty(t, snap.Times)

	require.NoError(t, w.SelectDate(context.Background(), tomorrow()))
	require.NoError(t, w.Next())
	snap = w.Snapshot()
	assert.Len(t, snap.Times, 16)
	assert.Empty(t, snap.Dates)
}
