package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/session"
	"github.com/jwalitptl/booking-api/pkg/locale"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier struct {
	sess *session.Session
	err  error
}

func (v stubVerifier) Verify(string) (*session.Session, error) {
	return v.sess, v.err
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(w.Header().Get(HeaderXRequestID))
	require.NoError(t, err)
	assert.Equal(t, w.Header().Get(HeaderXRequestID), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	w = serve(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, strings.Repeat("x", 200))
	w = serve(r, req)
	assert.NotEqual(t, strings.Repeat("x", 200), w.Header().Get(HeaderXRequestID))
}

func TestAuthenticate(t *testing.T) {
	userID := uuid.New()
	tests := []struct {
		name     string
		header   string
		verifier stubVerifier
		want     int
	}{
		{"missing header", "", stubVerifier{}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", stubVerifier{}, http.StatusUnauthorized},
		{"bad token", "Bearer abc", stubVerifier{err: session.ErrInvalidToken}, http.StatusUnauthorized},
		{"valid", "Bearer abc", stubVerifier{sess: &session.Session{UserID: userID, Role: model.RolePatient}}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", Authenticate(tt.verifier), func(c *gin.Context) {
				sess, ok := session.FromContext(c.Request.Context())
				require.True(t, ok)
				c.String(http.StatusOK, sess.UserID.String())
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, userID.String(), w.Body.String())
			}
		})
	}
}

func TestRequireRoleAndClinic(t *testing.T) {
	withRole := func(role model.Role) gin.HandlerFunc {
		return func(c *gin.Context) {
			ctx := session.WithSession(c.Request.Context(), &session.Session{UserID: uuid.New(), Role: role})
			c.Request = c.Request.WithContext(ctx)
		}
	}
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }

	r := gin.New()
	r.GET("/patient-admin", withRole(model.RolePatient), RequireRole(model.RoleAdmin), ok)
	r.GET("/admin-admin", withRole(model.RoleAdmin), RequireRole(model.RoleAdmin), ok)
	r.GET("/patient-clinic", withRole(model.RolePatient), RequireClinic(), ok)
	r.GET("/staff-clinic", withRole(model.RoleStaff), RequireClinic(), ok)
	r.GET("/anon", RequireClinic(), ok)

	assert.Equal(t, http.StatusForbidden, serve(r, httptest.NewRequest(http.MethodGet, "/patient-admin", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/admin-admin", nil)).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, httptest.NewRequest(http.MethodGet, "/patient-clinic", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/staff-clinic", nil)).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest(http.MethodGet, "/anon", nil)).Code)
}

func TestRecoveryRespondsInternal(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestTimeoutRespondsWhenHandlerRanOut(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusGatewayTimeout, serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/fast", nil)).Code)
}

func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://app.example.az"}

	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.az")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.az", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)
}

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 1})
	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, http.StatusOK, serve(r, first).Code)

	again := httptest.NewRequest(http.MethodGet, "/", nil)
	again.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, http.StatusTooManyRequests, serve(r, again).Code)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	assert.Equal(t, http.StatusOK, serve(r, other).Code)
}

func TestLocaleResolution(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		if c.Query("as") == "ru-user" {
			ctx := session.WithSession(c.Request.Context(), &session.Session{Locale: locale.RU})
			c.Request = c.Request.WithContext(ctx)
		}
	}, Locale(), func(c *gin.Context) { c.String(http.StatusOK, string(LocaleFrom(c))) })

	assert.Equal(t, "az", serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String())
	assert.Equal(t, "ru", serve(r, httptest.NewRequest(http.MethodGet, "/?lang=ru", nil)).Body.String())
	assert.Equal(t, "ru", serve(r, httptest.NewRequest(http.MethodGet, "/?as=ru-user", nil)).Body.String())
	assert.Equal(t, "az", serve(r, httptest.NewRequest(http.MethodGet, "/?as=ru-user&lang=az", nil)).Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-US,ru;q=0.8")
	assert.Equal(t, "ru", serve(r, req).Body.String())
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New("test", reg)

	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/appointments/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/appointments/"+uuid.NewString(), nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/appointments/"+uuid.NewString(), nil))

	families, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() != "test_http_requests_total" {
			continue
		}
		require.Len(t, f.GetMetric(), 1)
		assert.Equal(t, float64(2), f.GetMetric()[0].GetCounter().GetValue())
		found = true
	}
	assert.True(t, found)
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(SizeLimit(SizeLimitConfig{MaxBodySize: 8, MaxHeaderSize: 1 << 10}))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("ok")))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(DefaultSecurityConfig()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Header().Get("Strict-Transport-Security"), "includeSubDomains")
}

func TestLoggerDoesNotBreakChain(t *testing.T) {
	var buf strings.Builder
	r := gin.New()
	r.Use(RequestID(), Logger(zerolog.New(&buf)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

type bindTarget struct {
	Start string `json:"start_time" binding:"required,clock"`
	Blood string `json:"blood_type" binding:"omitempty,blood_type"`
}

func TestBindingErrors(t *testing.T) {
	RegisterValidators()

	bind := func(body string) error {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		var v bindTarget
		if err := c.ShouldBindJSON(&v); err != nil {
			return BindingError(err)
		}
		return nil
	}

	assert.NoError(t, bind(`{"start_time":"09:30","blood_type":"ab+"}`))

	err := bind(`{"start_time":"9h30"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start_time must be a time in HH:MM format")

	err = bind(`{"start_time":"09:30","blood_type":"C+"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blood_type")

	err = bind(`{not json`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid request body")
}
