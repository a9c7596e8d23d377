package http

import (
	"net/http"

	"github.com/dmitrijs2005/slidedeck/internal/server/models"
)

// createSlideRequest also accepts slide_number, which is ignored: new
// slides are always appended.
type createSlideRequest struct {
	SlideNumber        *int    `json:"slide_number"`
	BackgroundColor    string  `json:"background_color"`
	BackgroundImageURL *string `json:"background_image_url"`
	Title              *string `json:"title"`
}

func (s *Server) createSlide(w http.ResponseWriter, r *http.Request) {
	presentationID, ok := pathID(w, r, "presentationID", "presentation")
	if !ok {
		return
	}
	var req createSlideRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	slide, err := s.slides.Create(r.Context(), userIDFromContext(r.Context()), presentationID, models.NewSlide{
		BackgroundColor:    req.BackgroundColor,
		BackgroundImageURL: req.BackgroundImageURL,
		Title:              req.Title,
	})
	if err != nil {
		s.writeError(w, r, err, "presentation")
		return
	}
	writeSuccess(w, http.StatusCreated, "slide", slide)
}

// updateSlide changes slide attributes; a slide_number moves the slide.
func (s *Server) updateSlide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "slideID", "slide")
	if !ok {
		return
	}
	var patch models.SlidePatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	slide, err := s.slides.Update(r.Context(), userIDFromContext(r.Context()), id, patch)
	if err != nil {
		s.writeError(w, r, err, "slide")
		return
	}
	writeSuccess(w, http.StatusOK, "slide", slide)
}

func (s *Server) deleteSlide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "slideID", "slide")
	if !ok {
		return
	}

	if err := s.slides.Delete(r.Context(), userIDFromContext(r.Context()), id); err != nil {
		s.writeError(w, r, err, "slide")
		return
	}
	writeSuccess(w, http.StatusOK, "", nil)
}
