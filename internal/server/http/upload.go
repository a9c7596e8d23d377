package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
)

const uploadField = "file"

// uploadImage stores the multipart "file" part in the asset store and
// returns its public URL.
func (s *Server) uploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeMessage(w, http.StatusRequestEntityTooLarge, "file too large")
		default:
			writeMessage(w, http.StatusBadRequest, "no file uploaded")
		}
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid upload")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		writeMessage(w, http.StatusBadRequest, "only image uploads are supported")
		return
	}

	url, ok := s.assets.Upload(r.Context(), data, header.Filename, contentType)
	if !ok {
		s.logger.Error(r.Context(), "image upload failed", "filename", header.Filename)
		writeMessage(w, http.StatusInternalServerError, "upload failed")
		return
	}
	writeSuccess(w, http.StatusCreated, "url", url)
}
