package session

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/fhuszti/videonft-ms-go/internal/api_context"
	"github.com/fhuszti/videonft-ms-go/internal/handler"
	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/port"
)

const filePartName = "file"

// SelectFileHandler streams the first acceptable "file" part of a multipart
// body to the use case. Other parts are skipped.
func SelectFileHandler(svc port.FileSelector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.IDFromContext(r.Context())
		if !ok {
			handler.WriteError(w, http.StatusBadRequest, "ID is required", nil)
			return
		}

		mr, err := r.MultipartReader()
		if err != nil {
			handler.WriteError(w, http.StatusBadRequest, "Invalid request: expected a multipart body", err)
			return
		}

		for {
			part, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				handler.WriteError(w, http.StatusBadRequest, "Invalid multipart body", err)
				return
			}
			if !acceptedVideo(part.FormName(), part.FileName(), part.Header.Get("Content-Type")) {
				logger.Debugf(r.Context(), "skipping part %q (%s)", part.FileName(), part.Header.Get("Content-Type"))
				_ = part.Close()
				continue
			}

			in := port.SelectFileInput{
				ID:          id,
				FileName:    filepath.Base(part.FileName()),
				ContentType: part.Header.Get("Content-Type"),
				Reader:      part,
			}
			out, err := svc.SelectFile(r.Context(), in)
			_ = part.Close()
			if err != nil {
				writeSessionError(w, r, err, "Could not stage file")
				return
			}

			handler.RespondJSON(w, http.StatusOK, out)
			logger.Infof(r.Context(), "✅  Selected %q for session #%s", in.FileName, id)
			return
		}

		handler.WriteError(w, http.StatusBadRequest, "No MP4 video file in request", nil)
	}
}

func acceptedVideo(formName, fileName, contentType string) bool {
	return formName == filePartName &&
		strings.HasPrefix(contentType, "video/") &&
		strings.EqualFold(filepath.Ext(fileName), ".mp4")
}
