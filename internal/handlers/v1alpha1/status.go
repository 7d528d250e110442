package v1alpha1

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/thoas/go-funk"
	"go.uber.org/zap"

	"github.com/voxjob/transcriber/internal/service"
	"github.com/voxjob/transcriber/internal/store/model"
)

type FileReply struct {
	Type     string `json:"type"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type StatusReply struct {
	JobID  string      `json:"job_id"`
	Status string      `json:"status"`
	Files  []FileReply `json:"files"`
	Error  string      `json:"error,omitempty"`
}

func (s StatusReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// ResultURL is where an artifact of a job can be downloaded.
func ResultURL(jobID, filename string) string {
	return fmt.Sprintf("/results/%s/%s", url.PathEscape(jobID), url.PathEscape(filename))
}

// (GET /status/{jobID})
func (h *ServiceHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	st, err := h.statusSrv.Status(r.Context(), jobID)
	if err != nil {
		zap.S().Named("status_handler").Errorw("failed to resolve status", "job_id", jobID, "error", err)
		renderError(w, r, http.StatusInternalServerError, "InternalError", err)
		return
	}

	reply := StatusReply{
		JobID:  st.JobID,
		Status: string(st.Status),
		Files: funk.Map(st.Files, func(a model.Artifact) FileReply {
			return FileReply{Type: string(a.Kind), Filename: a.Filename, URL: ResultURL(st.JobID, a.Filename)}
		}).([]FileReply),
		Error: st.Error,
	}

	switch st.Status {
	case service.StatusNotFound, service.StatusError:
		render.Status(r, http.StatusNotFound)
	default:
		render.Status(r, http.StatusOK)
	}
	_ = render.Render(w, r, reply)
}
