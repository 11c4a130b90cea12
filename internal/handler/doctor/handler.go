package doctor

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/availability"
	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/service/doctor"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/httputil"
)

type Handler struct {
	doctors   doctor.DoctorServicer
	schedules doctor.ScheduleServicer
}

func NewHandler(doctors doctor.DoctorServicer, schedules doctor.ScheduleServicer) *Handler {
	return &Handler{doctors: doctors, schedules: schedules}
}

// RegisterPublicRoutes mounts search, profile and availability.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.SearchDoctors)
		doctors.GET("/:id", h.GetDoctor)
		doctors.GET("/:id/availability", h.GetAvailability)
		doctors.GET("/:id/dates", h.ListDates)
	}
}

// RegisterRoutes mounts the routes that need a session.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.POST("/:id/reviews", middleware.RequireRole(model.RolePatient), h.AddReview)

		clinic := doctors.Group("", middleware.RequireClinic())
		clinic.GET("/:id/schedules", h.ListSchedules)
		clinic.PUT("/:id/schedules", h.ReplaceSchedules)
		clinic.POST("/:id/overrides", h.CreateOverride)
	}
}

func (h *Handler) SearchDoctors(c *gin.Context) {
	var filters model.DoctorFilters
	if !handler.BindQuery(c, &filters) {
		return
	}
	hospitalID, ok := handler.QueryID(c, "hospital_id")
	if !ok {
		return
	}
	filters.HospitalID = hospitalID
	filters.Pagination = filters.Pagination.Normalize()

	doctors, total, err := h.doctors.Search(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, doctors, filters.Page, filters.PageSize, total)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	profile, err := h.doctors.GetProfile(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, profile)
}

func (h *Handler) GetAvailability(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	branchID, ok := handler.QueryID(c, "branch_id")
	if !ok {
		return
	}
	serviceID, ok := handler.QueryID(c, "service_id")
	if !ok {
		return
	}
	date, ok := handler.QueryDate(c, "date")
	if !ok {
		return
	}
	if branchID == nil || date == nil {
		httputil.RespondWithError(c, apperrors.Validation("branch_id and date are required"))
		return
	}
	svc := uuid.Nil
	if serviceID != nil {
		svc = *serviceID
	}

	slots, err := h.doctors.Availability(c.Request.Context(), id, *branchID, svc, *date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{
		"date":  date,
		"slots": slots,
	})
}

// ListDates returns the strip of selectable days for the date picker.
func (h *Handler) ListDates(c *gin.Context) {
	if _, ok := handler.ParamID(c, "id"); !ok {
		return
	}
	from, ok := handler.QueryDate(c, "from")
	if !ok {
		return
	}
	days := availability.ModalDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > availability.ProfileDays {
			httputil.RespondWithError(c, apperrors.Validation("days must be between 1 and "+strconv.Itoa(availability.ProfileDays)))
			return
		}
		days = n
	}

	var start time.Time
	if from != nil {
		start = from.Time
	}
	httputil.RespondWithSuccess(c, h.doctors.Dates(start, days, middleware.LocaleFrom(c)))
}

func (h *Handler) AddReview(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.CreateReviewRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	review, err := h.doctors.AddReview(c.Request.Context(), id, sess.UserID, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, review)
}

func (h *Handler) ListSchedules(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	from, ok := handler.QueryDate(c, "from")
	if !ok {
		return
	}
	var since model.Date
	if from != nil {
		since = *from
	}

	schedules, err := h.schedules.List(c.Request.Context(), id, since)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, schedules)
}

func (h *Handler) ReplaceSchedules(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.ReplaceSchedulesRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	schedules, err := h.schedules.Replace(c.Request.Context(), sess, id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, schedules)
}

func (h *Handler) CreateOverride(c *gin.Context) {
	sess, ok := handler.Session(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.CreateOverrideRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	override, err := h.schedules.CreateOverride(c.Request.Context(), sess, id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, override)
}
