package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/pkg/locale"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrUnknownRole  = errors.New("token carries no known role")
)

type Config struct {
	Secret   string
	Issuer   string
	Audience string
	// Leeway tolerates clock skew with the auth provider.
	Leeway time.Duration
}

// Claims is the subset of the provider's access token we read.
type Claims struct {
	jwt.RegisteredClaims
	Email       string      `json:"email"`
	Role        string      `json:"role"`
	AppMetadata AppMetadata `json:"app_metadata"`
	UserMeta    UserMeta    `json:"user_metadata"`
}

type AppMetadata struct {
	Role string `json:"role"`
}

type UserMeta struct {
	Locale string `json:"locale"`
}

type Verifier struct {
	secret []byte
	opts   []jwt.ParserOption
}

func NewVerifier(cfg Config) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(cfg.Leeway))
	}
	return &Verifier{secret: []byte(cfg.Secret), opts: opts}
}

// Verify checks the token signature and claims and builds the session.
// The application role comes from app_metadata.role, falling back to the
// top-level role claim.
func (v *Verifier) Verify(tokenStr string) (*Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, v.opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}

	role := model.Role(claims.AppMetadata.Role)
	if role == "" {
		role = model.Role(claims.Role)
	}
	if !role.Valid() {
		return nil, ErrUnknownRole
	}

	return &Session{
		UserID: userID,
		Email:  claims.Email,
		Role:   role,
		Locale: locale.Parse(claims.UserMeta.Locale),
	}, nil
}
