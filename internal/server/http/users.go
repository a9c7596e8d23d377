package http

import (
	"net/http"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if missingFields(w, field("username", req.Username), field("email", req.Email), field("password", req.Password)) {
		return
	}

	user, err := s.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err, "user")
		return
	}

	s.logger.Info(r.Context(), "Registered", "user_id", user.ID)
	writeSuccess(w, http.StatusCreated, "user", user)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if missingFields(w, field("username", req.Username), field("password", req.Password)) {
		return
	}

	user, token, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err, "user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"user":         user,
		"access_token": token,
	})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "userID", "user")
	if !ok {
		return
	}
	if id != userIDFromContext(r.Context()) {
		writeMessage(w, http.StatusNotFound, "user not found")
		return
	}

	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
