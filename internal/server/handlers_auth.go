package server

import (
	"net/http"
	"time"

	"github.com/aTrapDeer/utworld/internal/auth"
	"github.com/aTrapDeer/utworld/internal/model"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in model.LoginRequest
	if err := decodeJSON(r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := validateLogin(&in); err != nil {
		s.respondError(w, r, err)
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), in.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, in.Password) || !user.IsActive {
		respondDetail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err := s.store.TouchLogin(r.Context(), user.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("recording login", "user_id", user.ID, "error", err)
	}
	s.respondTokens(w, r, user)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var in model.RefreshRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &in); err != nil {
			s.respondError(w, r, err)
			return
		}
	}
	if in.RefreshToken == "" {
		in.RefreshToken = r.URL.Query().Get("refresh_token")
	}

	claims, err := s.issuer.Verify(in.RefreshToken, auth.TypeRefresh)
	if err != nil {
		respondDetail(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}
	user, err := s.store.GetUser(r.Context(), claims.Subject)
	if err != nil || !user.IsActive {
		respondDetail(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}
	s.respondTokens(w, r, user)
}

func (s *Server) respondTokens(w http.ResponseWriter, r *http.Request, user *model.User) {
	pair, err := s.issuer.IssuePair(user.ID, user.Email)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, model.TokenPair{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		TokenType:    "bearer",
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, UserFromContext(r.Context()))
}
