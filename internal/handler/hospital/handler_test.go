package hospital

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type fakeService struct {
	filters   *model.HospitalFilters
	hospitals []*model.Hospital
}

func (f *fakeService) List(_ context.Context, filters *model.HospitalFilters) ([]*model.Hospital, int, error) {
	f.filters = filters
	return f.hospitals, 41, nil
}

func (f *fakeService) Get(_ context.Context, id uuid.UUID) (*model.Hospital, error) {
	for _, h := range f.hospitals {
		if h.ID == id {
			return h, nil
		}
	}
	return nil, apperrors.NotFound("hospital", nil)
}

func (f *fakeService) ListBranches(context.Context, uuid.UUID) ([]*model.Branch, error) {
	return []*model.Branch{}, nil
}

func (f *fakeService) ListDepartments(context.Context, uuid.UUID) ([]*model.Department, error) {
	return []*model.Department{}, nil
}

func (f *fakeService) ListServices(context.Context, uuid.UUID) ([]*model.Service, error) {
	return []*model.Service{}, nil
}

func setup(svc *fakeService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestListHospitalsPaginates(t *testing.T) {
	svc := &fakeService{}
	r := setup(svc)

	w := get(r, "/api/v1/hospitals?city=Baku&page=2&page_size=500")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Baku", svc.filters.City)
	assert.Equal(t, 2, svc.filters.Page)
	assert.Equal(t, model.MaxPageSize, svc.filters.PageSize)

	var body struct {
		Data struct {
			Pagination struct {
				TotalPages int `json:"total_pages"`
			} `json:"pagination"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Data.Pagination.TotalPages)
}

func TestGetHospital(t *testing.T) {
	id := uuid.New()
	r := setup(&fakeService{hospitals: []*model.Hospital{{Base: model.Base{ID: id}, Name: "Central"}}})

	w := get(r, "/api/v1/hospitals/"+id.String())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Central")

	assert.Equal(t, http.StatusNotFound, get(r, "/api/v1/hospitals/"+uuid.NewString()).Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/api/v1/hospitals/not-a-uuid").Code)
}

func TestBranchServicesRoute(t *testing.T) {
	r := setup(&fakeService{})
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/branches/"+uuid.NewString()+"/services").Code)
}
