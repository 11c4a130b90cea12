package appointment

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/service/appointment"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/httputil"
)

type Handler struct {
	service appointment.AppointmentServicer
}

func NewHandler(service appointment.AppointmentServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.POST("/:id/status", h.UpdateStatus)
		appointments.POST("/:id/notes", h.AddNote)
		appointments.GET("/:id/notes", h.ListNotes)
		appointments.GET("/:id/logs", h.ListLogs)
		appointments.GET("/:id/slip", h.GetSlip)
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	var req model.CreateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	patientID, bookingType, err := h.service.Booker(c.Request.Context(), sess, req.DoctorID, req.BranchID, req.PatientID, req.BookingType)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	actor := sess.UserID
	appt, err := h.service.Create(c.Request.Context(), model.CreateAppointmentInput{
		PatientID:   patientID,
		DoctorID:    req.DoctorID,
		ServiceID:   req.ServiceID,
		BranchID:    req.BranchID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		BookingType: bookingType,
		Reason:      req.Reason,
		Notes:       req.Notes,
		ActorID:     &actor,
	})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, appt)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	var filters model.AppointmentFilters
	if !handler.BindQuery(c, &filters) {
		return
	}
	if filters.Status != "" && !filters.Status.Valid() {
		httputil.RespondWithError(c, apperrors.Validation("unknown status "+string(filters.Status)))
		return
	}
	if filters.PatientID, ok = handler.QueryID(c, "patient_id"); !ok {
		return
	}
	if filters.DoctorID, ok = handler.QueryID(c, "doctor_id"); !ok {
		return
	}
	if filters.BranchID, ok = handler.QueryID(c, "branch_id"); !ok {
		return
	}
	if filters.From, ok = handler.QueryDate(c, "from"); !ok {
		return
	}
	if filters.To, ok = handler.QueryDate(c, "to"); !ok {
		return
	}
	filters.Pagination = filters.Pagination.Normalize()

	appointments, total, err := h.service.List(c.Request.Context(), sess, &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, appointments, filters.Page, filters.PageSize, total)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	appt, err := h.service.Get(c.Request.Context(), sess, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateStatusRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	appt, err := h.service.Transition(c.Request.Context(), sess, id, req.Status, req.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) AddNote(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.CreateNoteRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	note, err := h.service.AddNote(c.Request.Context(), sess, id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, note)
}

func (h *Handler) ListNotes(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	notes, err := h.service.ListNotes(c.Request.Context(), sess, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, notes)
}

func (h *Handler) ListLogs(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	logs, err := h.service.ListLogs(c.Request.Context(), sess, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, logs)
}

// GetSlip streams the printable appointment slip.
func (h *Handler) GetSlip(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	pdf, err := h.service.Slip(c.Request.Context(), sess, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="appointment-%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
