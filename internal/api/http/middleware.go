package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentaldesk-backend/internal/domain"
	"rentaldesk-backend/internal/logger"
	"rentaldesk-backend/internal/security"
	"rentaldesk-backend/internal/service"
)

type ctxKey int

const staffKey ctxKey = 0

const RequestIDHeader = "X-Request-ID"

// StaffFromContext returns the staff member the auth middleware resolved.
func StaffFromContext(ctx context.Context) (*domain.StaffContext, bool) {
	staff, ok := ctx.Value(staffKey).(*domain.StaffContext)
	return staff, ok
}

func RequestIDFromContext(ctx context.Context) string {
	return logger.RequestID(ctx)
}

// requestID tags every request with an id, reusing the caller's when given,
// and logs the request once it completes.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		ctx := logger.WithRequestID(r.Context(), id)
		next.ServeHTTP(rec, r.WithContext(ctx))

		logger.DebugContext(ctx, "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// authenticator resolves the bearer access token into a staff session.
type authenticator struct {
	tokens   security.TokenManager
	sessions service.SessionService
}

func (a *authenticator) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if len(header) < 8 || !strings.EqualFold(header[:7], "bearer ") {
			logger.WarnContext(r.Context(), "Missing bearer token", "path", r.URL.Path)
			writeErrorMessage(w, http.StatusUnauthorized, "authorization token is not provided")
			return
		}

		claims, err := a.tokens.ValidateToken(header[7:])
		if err != nil {
			writeError(w, r, err)
			return
		}
		if claims.Type != security.TokenTypeAccess {
			writeError(w, r, security.ErrWrongTokenType)
			return
		}

		staff, err := a.sessions.GetSession(r.Context(), claims.StaffID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), staffKey, staff)))
	})
}
