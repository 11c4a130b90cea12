package booking

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/availability"
	"github.com/jwalitptl/booking-api/internal/booking"
	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/service/appointment"
	"github.com/jwalitptl/booking-api/internal/service/doctor"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/httputil"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

type Config struct {
	Location *time.Location
	// Days is the length of the date strip offered at the date step.
	Days int
	Now  func() time.Time
}

// Handler drives booking wizards over HTTP. Each wizard lives in the store
// and is only visible to the user who opened it.
type Handler struct {
	store        *booking.Store
	appointments appointment.AppointmentServicer
	doctors      doctor.DoctorServicer
	source       availability.Source
	metrics      *metrics.Metrics
	config       Config
}

func NewHandler(
	store *booking.Store,
	appointments appointment.AppointmentServicer,
	doctors doctor.DoctorServicer,
	source availability.Source,
	m *metrics.Metrics,
	config Config,
) *Handler {
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Handler{
		store:        store,
		appointments: appointments,
		doctors:      doctors,
		source:       source,
		metrics:      m,
		config:       config,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	sessions := r.Group("/booking/sessions")
	{
		sessions.POST("", h.StartSession)
		sessions.GET("/:id", h.GetSession)
		sessions.DELETE("/:id", h.CloseSession)
		sessions.POST("/:id/reason", h.SelectReason)
		sessions.POST("/:id/date", h.SelectDate)
		sessions.POST("/:id/time", h.SelectTime)
		sessions.POST("/:id/next", h.Next)
		sessions.POST("/:id/back", h.Back)
		sessions.POST("/:id/confirm", h.Confirm)
		sessions.POST("/:id/done", h.Done)
	}
}

type startRequest struct {
	DoctorID    uuid.UUID         `json:"doctor_id" binding:"required"`
	BranchID    uuid.UUID         `json:"branch_id" binding:"required"`
	ServiceID   uuid.UUID         `json:"service_id" binding:"required"`
	PatientID   *uuid.UUID        `json:"patient_id"`
	BookingType model.BookingType `json:"booking_type" binding:"omitempty,oneof=online phone walk_in"`
}

type reasonRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

type dateRequest struct {
	Date model.Date `json:"date"`
}

type timeRequest struct {
	Time string `json:"time" binding:"required,clock"`
}

func (h *Handler) StartSession(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	var req startRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	patientID, bookingType, err := h.appointments.Booker(ctx, sess, req.DoctorID, req.BranchID, req.PatientID, req.BookingType)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	duration, err := h.doctors.ServiceDuration(ctx, req.DoctorID, req.ServiceID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	w := booking.New(booking.Params{
		DoctorID:    req.DoctorID,
		BranchID:    req.BranchID,
		ServiceID:   req.ServiceID,
		PatientID:   patientID,
		Owner:       sess.UserID,
		Duration:    duration,
		BookingType: bookingType,
		Source:      h.source,
		Submitter:   h.appointments,
		Now:         h.config.Now,
		Location:    h.config.Location,
		Locale:      middleware.LocaleFrom(c),
		Days:        h.config.Days,
	})
	h.store.Put(w)
	httputil.RespondCreated(c, w.Snapshot())
}

// wizard loads the caller's wizard. Someone else's wizard is reported as
// missing.
func (h *Handler) wizard(c *gin.Context) (*booking.Wizard, bool) {
	sess, ok := handler.Session(c)
	if !ok {
		return nil, false
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return nil, false
	}
	w, found := h.store.Get(id)
	if !found || w.Owner() != sess.UserID {
		httputil.RespondWithError(c, apperrors.NotFound("booking session", nil))
		return nil, false
	}
	return w, true
}

// respond writes the wizard state, dropping wizards that have closed.
func (h *Handler) respond(c *gin.Context, w *booking.Wizard, err error) {
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	snap := w.Snapshot()
	if snap.Step == booking.StepClosed {
		h.store.Delete(w.ID())
	}
	httputil.RespondWithSuccess(c, snap)
}

func (h *Handler) GetSession(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	h.respond(c, w, nil)
}

func (h *Handler) CloseSession(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	w.Close()
	h.respond(c, w, nil)
}

func (h *Handler) SelectReason(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	var req reasonRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	h.respond(c, w, w.SelectReason(req.Reason))
}

func (h *Handler) SelectDate(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	var req dateRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	if req.Date.IsZero() {
		httputil.RespondWithError(c, apperrors.Validation("date is required"))
		return
	}
	h.respond(c, w, w.SelectDate(c.Request.Context(), req.Date))
}

func (h *Handler) SelectTime(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	var req timeRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	clock, err := availability.ParseClock(req.Time)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("time must be HH:MM"))
		return
	}
	h.respond(c, w, w.SelectTime(clock))
}

func (h *Handler) Next(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	h.respond(c, w, w.Next())
}

func (h *Handler) Back(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	h.respond(c, w, w.Back())
}

func (h *Handler) Confirm(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	_, err := w.Confirm(c.Request.Context())
	switch {
	case err == nil:
		h.metrics.WizardSubmissions.WithLabelValues("success").Inc()
	case apperrors.IsKind(err, apperrors.KindConflict):
		h.metrics.WizardSubmissions.WithLabelValues("conflict").Inc()
	default:
		h.metrics.WizardSubmissions.WithLabelValues("error").Inc()
	}
	h.respond(c, w, err)
}

func (h *Handler) Done(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	h.respond(c, w, w.Done())
}
