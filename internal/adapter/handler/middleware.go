package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/core/domain"
)

var ErrInvalidToken = errors.New("invalid token")

type sessionClaims struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), expiry: expiry, now: time.Now}
}

func (m *TokenManager) Issue(s domain.Session) (string, error) {
	now := m.now()
	claims := sessionClaims{
		Username: s.Username,
		Role:     s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (m *TokenManager) Parse(tokenStr string) (domain.Session, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return domain.Session{UserID: claims.Subject, Username: claims.Username, Role: claims.Role}, nil
}

type contextKey string

const sessionContextKey = contextKey("session")

func withSession(ctx context.Context, s domain.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SessionFrom returns the session attached by the auth middleware. The zero
// session means anonymous.
func SessionFrom(ctx context.Context) domain.Session {
	s, _ := ctx.Value(sessionContextKey).(domain.Session)
	return s
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// authenticate resolves the request's token against the live process session.
// Tokens are only honoured while they match it.
func (h *HTTPHandler) authenticate(r *http.Request) (domain.Session, error) {
	token, ok := bearerToken(r)
	if !ok {
		return domain.Session{}, ErrInvalidToken
	}
	claimed, err := h.tokens.Parse(token)
	if err != nil {
		return domain.Session{}, err
	}
	current, ok := h.auth.Session()
	if !ok || current != claimed {
		return domain.Session{}, fmt.Errorf("%w: session has ended", ErrInvalidToken)
	}
	return current, nil
}

func (h *HTTPHandler) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := h.authenticate(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, Response{Success: false, Message: err.Error()})
			return
		}
		next(w, r.WithContext(withSession(r.Context(), session)))
	}
}

func (h *HTTPHandler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return h.requireSession(func(w http.ResponseWriter, r *http.Request) {
		if !SessionFrom(r.Context()).IsAdmin() {
			writeJSON(w, http.StatusForbidden, Response{Success: false, Message: "admins only"})
			return
		}
		next(w, r)
	})
}

// optionalSession attaches the session when a valid token is present and lets
// anonymous requests through otherwise.
func (h *HTTPHandler) optionalSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if session, err := h.authenticate(r); err == nil {
			r = r.WithContext(withSession(r.Context(), session))
		}
		next(w, r)
	}
}

// requestLogger logs one line per request.
func requestLogger(h *HTTPHandler) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			h.logger.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("elapsed", time.Since(start)))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
