package v1alpha1

import (
	"errors"
	"mime"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/voxjob/transcriber/internal/service"
)

// (GET /results/{jobID}/{filename})
func (h *ServiceHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	filename := chi.URLParam(r, "*")
	// chi matches on RawPath when it is set, leaving the wildcard escaped
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(filename)
		if err != nil {
			renderError(w, r, http.StatusBadRequest, "ValidationError", err)
			return
		}
		filename = unescaped
	}

	d, err := h.resultSrv.Open(r.Context(), jobID, filename)
	if err != nil {
		var (
			denied   *service.ErrAccessDenied
			notFound *service.ErrResourceNotFound
		)
		switch {
		case errors.As(err, &denied):
			zap.S().Named("result_handler").Warnw("denied artifact access", "job_id", jobID, "filename", filename)
			renderError(w, r, http.StatusForbidden, "AccessDenied", err)
		case errors.As(err, &notFound):
			renderError(w, r, http.StatusNotFound, "NotFound", err)
		default:
			zap.S().Named("result_handler").Errorw("failed to open artifact", "job_id", jobID, "filename", filename, "error", err)
			renderError(w, r, http.StatusInternalServerError, "InternalError", err)
		}
		return
	}
	defer d.File.Close()

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": d.Filename}))
	http.ServeContent(w, r, d.Filename, d.Info.ModTime(), d.File)
}
