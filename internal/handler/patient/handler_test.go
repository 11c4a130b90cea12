package patient

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/session"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type fakeService struct {
	userID uuid.UUID
	req    *model.UpsertPatientProfileRequest
}

func (f *fakeService) GetProfile(_ context.Context, userID uuid.UUID) (*model.PatientProfile, error) {
	f.userID = userID
	return nil, apperrors.NotFound("patient profile", nil)
}

func (f *fakeService) UpsertProfile(_ context.Context, userID uuid.UUID, req model.UpsertPatientProfileRequest) (*model.PatientProfile, error) {
	f.userID = userID
	f.req = &req
	return &model.PatientProfile{UserID: userID}, nil
}

func setup(svc *fakeService, sess *session.Session) *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.RegisterValidators()
	r := gin.New()
	api := r.Group("/api/v1", func(c *gin.Context) {
		c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), sess))
	})
	NewHandler(svc).RegisterRoutes(api)
	return r
}

func do(r *gin.Engine, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/v1/patients/me/profile", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProfileUsesSessionUser(t *testing.T) {
	svc := &fakeService{}
	sess := &session.Session{UserID: uuid.New(), Role: model.RolePatient}
	r := setup(svc, sess)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "").Code)
	assert.Equal(t, sess.UserID, svc.userID)

	w := do(r, http.MethodPut, `{"blood_type":"o-","allergies":["penicillin"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.req.BloodType)
	assert.Equal(t, "o-", *svc.req.BloodType)

	assert.Equal(t, http.StatusUnprocessableEntity, do(r, http.MethodPut, `{"blood_type":"Z"}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(r, http.MethodPut, `{"gender":"robot"}`).Code)
}

func TestProfilePatientOnly(t *testing.T) {
	r := setup(&fakeService{}, &session.Session{UserID: uuid.New(), Role: model.RoleDoctor})
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "").Code)
}
