package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/pkg/locale"
)

var testSecret = "test-secret-key-for-unit-tests-only"

func sign(t *testing.T, claims Claims, key string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func validClaims(userID uuid.UUID) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    "https://auth.example.com",
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email:       "patient@example.com",
		Role:        "authenticated",
		AppMetadata: AppMetadata{Role: "patient"},
		UserMeta:    UserMeta{Locale: "ru-RU"},
	}
}

func newTestVerifier() *Verifier {
	return NewVerifier(Config{
		Secret:   testSecret,
		Issuer:   "https://auth.example.com",
		Audience: "authenticated",
	})
}

func TestVerifyBuildsSession(t *testing.T) {
	userID := uuid.New()
	s, err := newTestVerifier().Verify(sign(t, validClaims(userID), testSecret))
	require.NoError(t, err)

	assert.Equal(t, userID, s.UserID)
	assert.Equal(t, "patient@example.com", s.Email)
	assert.Equal(t, model.RolePatient, s.Role)
	assert.Equal(t, locale.RU, s.Locale)
}

func TestVerifyTopLevelRoleFallback(t *testing.T) {
	claims := validClaims(uuid.New())
	claims.AppMetadata.Role = ""
	claims.Role = "doctor"

	s, err := newTestVerifier().Verify(sign(t, claims, testSecret))
	require.NoError(t, err)
	assert.Equal(t, model.RoleDoctor, s.Role)
	assert.True(t, s.IsClinic())
}

func TestVerifyRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Claims)
		key    string
		want   error
	}{
		{"wrong key", func(*Claims) {}, "another-secret", ErrInvalidToken},
		{"expired", func(c *Claims) { c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour)) }, testSecret, ErrInvalidToken},
		{"no expiry", func(c *Claims) { c.ExpiresAt = nil }, testSecret, ErrInvalidToken},
		{"wrong issuer", func(c *Claims) { c.Issuer = "https://evil.example.com" }, testSecret, ErrInvalidToken},
		{"wrong audience", func(c *Claims) { c.Audience = jwt.ClaimStrings{"service_role"} }, testSecret, ErrInvalidToken},
		{"subject not uuid", func(c *Claims) { c.Subject = "dev-user" }, testSecret, ErrInvalidToken},
		{"unknown role", func(c *Claims) { c.AppMetadata.Role = "superuser" }, testSecret, ErrUnknownRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := validClaims(uuid.New())
			tt.mutate(&claims)
			_, err := newTestVerifier().Verify(sign(t, claims, tt.key))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := newTestVerifier().Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	s := &Session{UserID: uuid.New(), Role: model.RoleStaff}
	got, ok := FromContext(WithSession(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.True(t, got.HasRole(model.RoleAdmin, model.RoleStaff))
	assert.False(t, got.HasRole(model.RolePatient))
}
