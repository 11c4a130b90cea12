package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/service/dashboard"
	"github.com/jwalitptl/booking-api/internal/session"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type fakeService struct {
	req dashboard.Request
	err error
}

func (f *fakeService) Summary(_ context.Context, _ *session.Session, req dashboard.Request) (*dashboard.Summary, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &dashboard.Summary{Date: req.Date, Counts: map[model.AppointmentStatus]int{model.AppointmentStatusPending: 2}, Total: 2}, nil
}

func get(svc *fakeService, role model.Role, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1", func(c *gin.Context) {
		ctx := session.WithSession(c.Request.Context(), &session.Session{UserID: uuid.New(), Role: role})
		c.Request = c.Request.WithContext(ctx)
	})
	NewHandler(svc).RegisterRoutes(api)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSummaryPassesFilters(t *testing.T) {
	svc := &fakeService{}
	branch := uuid.New()

	w := get(svc, model.RoleHospitalAdmin, "/api/v1/dashboard?branch_id="+branch.String()+"&date=2026-10-19")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.req.BranchID)
	assert.Equal(t, branch, *svc.req.BranchID)
	assert.Equal(t, "2026-10-19", svc.req.Date.String())
	assert.Contains(t, w.Body.String(), `"pending":2`)
}

func TestSummaryClinicOnly(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, get(&fakeService{}, model.RolePatient, "/api/v1/dashboard").Code)
}

func TestSummaryTimeout(t *testing.T) {
	svc := &fakeService{err: apperrors.Timeout("dashboard", errors.New("deadline exceeded"))}
	w := get(svc, model.RoleStaff, "/api/v1/dashboard?branch_id="+uuid.NewString())
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.NotContains(t, w.Body.String(), "counts")
}
