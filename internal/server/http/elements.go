package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/slidedeck/internal/server/models"
)

// elementShared holds the attributes every element kind has.
type elementShared struct {
	X      float64  `json:"x_position"`
	Y      float64  `json:"y_position"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
	ZIndex int      `json:"z_index"`
}

func (s *Server) listElements(w http.ResponseWriter, r *http.Request) {
	slideID, ok := pathID(w, r, "slideID", "slide")
	if !ok {
		return
	}

	list, err := s.elements.List(r.Context(), userIDFromContext(r.Context()), slideID)
	if err != nil {
		s.writeError(w, r, err, "slide")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// createElement adds an element of the kind named in the path. Payload
// fields left out of the body take the kind's defaults.
func (s *Server) createElement(w http.ResponseWriter, r *http.Request) {
	slideID, ok := pathID(w, r, "slideID", "slide")
	if !ok {
		return
	}
	spec, err := models.LookupKind(models.ElementKind(chi.URLParam(r, "kind")))
	if err != nil {
		s.writeError(w, r, err, "element type")
		return
	}

	body, fields, ok := readObject(w, r)
	if !ok {
		return
	}
	required := append([]string{"x_position", "y_position"}, spec.Required...)
	if missingFields(w, presence(fields, required...)...) {
		return
	}

	var shared elementShared
	data := spec.New()
	if json.Unmarshal(body, &shared) != nil || json.Unmarshal(body, data) != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e, err := s.elements.Create(r.Context(), userIDFromContext(r.Context()), models.NewElement{
		SlideID: slideID,
		X:       shared.X,
		Y:       shared.Y,
		Width:   shared.Width,
		Height:  shared.Height,
		ZIndex:  shared.ZIndex,
		Data:    data,
	})
	if err != nil {
		s.writeError(w, r, err, "slide")
		return
	}
	writeSuccess(w, http.StatusCreated, "element", e)
}

// updateElement applies a sparse update. The body names the element's kind
// in element_type; payload fields are read according to that kind.
func (s *Server) updateElement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "elementID", "element")
	if !ok {
		return
	}
	body, fields, ok := readObject(w, r)
	if !ok {
		return
	}
	if missingFields(w, presence(fields, "element_type")...) {
		return
	}

	var tag struct {
		Kind models.ElementKind `json:"element_type"`
	}
	var patch models.ElementPatch
	if json.Unmarshal(body, &tag) != nil || json.Unmarshal(body, &patch) != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	spec, err := models.LookupKind(tag.Kind)
	if err != nil {
		s.writeError(w, r, err, "element type")
		return
	}
	payload := spec.NewPatch()
	if err := json.Unmarshal(body, payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	patch.Kind = tag.Kind
	if !payload.Empty() {
		patch.Payload = payload
	}

	e, err := s.elements.Update(r.Context(), userIDFromContext(r.Context()), id, patch)
	if err != nil {
		s.writeError(w, r, err, "element")
		return
	}
	writeSuccess(w, http.StatusOK, "element", e)
}

func (s *Server) deleteElement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "elementID", "element")
	if !ok {
		return
	}

	if err := s.elements.Delete(r.Context(), userIDFromContext(r.Context()), id); err != nil {
		s.writeError(w, r, err, "element")
		return
	}
	writeSuccess(w, http.StatusOK, "", nil)
}

// readObject reads a JSON object body, returning it both raw and by key.
func readObject(w http.ResponseWriter, r *http.Request) ([]byte, map[string]json.RawMessage, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return nil, nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return nil, nil, false
	}
	return body, fields, true
}

// presence reports for each name whether fields holds a non-null value.
func presence(fields map[string]json.RawMessage, names ...string) []namedValue {
	out := make([]namedValue, len(names))
	for i, name := range names {
		raw, ok := fields[name]
		out[i] = namedValue{name: name, present: ok && string(raw) != "null"}
	}
	return out
}
