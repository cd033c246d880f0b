package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/aTrapDeer/utworld/internal/auth"
	"github.com/aTrapDeer/utworld/internal/model"
)

type userKey struct{}

// UserFromContext returns the authenticated user set by requireAuth.
func UserFromContext(ctx context.Context) *model.User {
	u, _ := ctx.Value(userKey{}).(*model.User)
	return u
}

// authenticate resolves the bearer token on r to an active user.
func (s *Server) authenticate(r *http.Request) (*model.User, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errDetail(http.StatusUnauthorized, "Not authenticated")
	}
	bearerToken := strings.Split(authHeader, " ")
	if len(bearerToken) != 2 || !strings.EqualFold(bearerToken[0], "Bearer") {
		return nil, errDetail(http.StatusUnauthorized, "Invalid authorization header format")
	}

	claims, err := s.issuer.Verify(bearerToken[1], auth.TypeAccess)
	if err != nil {
		return nil, errDetail(http.StatusUnauthorized, "Could not validate credentials")
	}
	user, err := s.store.GetUser(r.Context(), claims.Subject)
	if err != nil || !user.IsActive {
		return nil, errDetail(http.StatusUnauthorized, "Could not validate credentials")
	}
	return user, nil
}

// requireAuth rejects requests without a valid access token.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.authenticate(r)
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			s.respondError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
	})
}

// requestLogger logs one line per request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
