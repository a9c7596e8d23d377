package http

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/slidedeck/internal/server/models"
)

type createPresentationRequest struct {
	UserID      string  `json:"user_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// createPresentation creates a presentation owned by the caller. A user_id
// in the body must be a UUID naming the caller.
func (s *Server) createPresentation(w http.ResponseWriter, r *http.Request) {
	var req createPresentationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if missingFields(w, field("title", req.Title)) {
		return
	}
	callerID := userIDFromContext(r.Context())
	if req.UserID != "" {
		owner, err := uuid.Parse(req.UserID)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "user_id must be a valid UUID")
			return
		}
		if owner.String() != callerID {
			writeMessage(w, http.StatusBadRequest, "user_id must match the authenticated user")
			return
		}
	}

	p, err := s.presentations.Create(r.Context(), callerID, req.Title, req.Description)
	if err != nil {
		s.writeError(w, r, err, "user")
		return
	}
	writeSuccess(w, http.StatusCreated, "presentation", p)
}

func (s *Server) getPresentation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "presentationID", "presentation")
	if !ok {
		return
	}

	p, err := s.presentations.Get(r.Context(), userIDFromContext(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err, "presentation")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) listPresentations(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID", "user")
	if !ok {
		return
	}

	list, err := s.presentations.ListByUser(r.Context(), userIDFromContext(r.Context()), userID)
	if err != nil {
		s.writeError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) updatePresentation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "presentationID", "presentation")
	if !ok {
		return
	}
	var patch models.PresentationPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	p, err := s.presentations.Update(r.Context(), userIDFromContext(r.Context()), id, patch)
	if err != nil {
		s.writeError(w, r, err, "presentation")
		return
	}
	writeSuccess(w, http.StatusOK, "presentation", p)
}

func (s *Server) deletePresentation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "presentationID", "presentation")
	if !ok {
		return
	}

	if err := s.presentations.Delete(r.Context(), userIDFromContext(r.Context()), id); err != nil {
		s.writeError(w, r, err, "presentation")
		return
	}
	writeSuccess(w, http.StatusOK, "", nil)
}
