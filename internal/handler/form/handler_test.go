package form

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
	submitted map[string]string
}

func (f *fakeService) ListForService(context.Context, uuid.UUID) ([]*model.Form, error) {
	return []*model.Form{{Name: "Intake"}}, nil
}

func (f *fakeService) Submit(_ context.Context, formID, userID uuid.UUID, req model.SubmitFormRequest) (*model.FormSubmission, error) {
	if _, ok := req.Answers["symptoms"]; !ok {
		return nil, apperrors.Validation("symptoms is required")
	}
	f.submitted = req.Answers
	return &model.FormSubmission{ID: uuid.New(), FormID: formID, UserID: userID}, nil
}

func setup(svc *fakeService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.RegisterValidators()
	r := gin.New()
	api := r.Group("/api/v1", func(c *gin.Context) {
		sess := &session.Session{UserID: uuid.New(), Role: model.RolePatient}
		c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), sess))
	})
	NewHandler(svc).RegisterRoutes(api)
	return r
}

func TestListForms(t *testing.T) {
	r := setup(&fakeService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/services/"+uuid.NewString()+"/forms", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Intake")
}

func TestSubmit(t *testing.T) {
	svc := &fakeService{}
	r := setup(svc)
	path := "/api/v1/forms/" + uuid.NewString() + "/submissions"

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnprocessableEntity, post(`{}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, post(`{"answers":{"age":"30"}}`).Code)

	require.Equal(t, http.StatusCreated, post(`{"answers":{"symptoms":"cough"}}`).Code)
	assert.Equal(t, "cough", svc.submitted["symptoms"])
}
