package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/voxjob/transcriber/internal/handlers/validator"
	"github.com/voxjob/transcriber/internal/service"
	"github.com/voxjob/transcriber/pkg/requestid"
)

// DefaultMaxUploadSize caps a single upload at 1 GiB.
const DefaultMaxUploadSize int64 = 1 << 30

type ServiceHandler struct {
	jobSrv        *service.JobService
	statusSrv     *service.StatusService
	resultSrv     *service.ResultService
	validator     *validator.Validator
	maxUploadSize int64
}

func NewServiceHandler(jobSrv *service.JobService, statusSrv *service.StatusService, resultSrv *service.ResultService, maxUploadSize int64) *ServiceHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	v := validator.NewValidator()
	v.Register(validator.NewUploadValidationRules()...)

	return &ServiceHandler{
		jobSrv:        jobSrv,
		statusSrv:     statusSrv,
		resultSrv:     resultSrv,
		validator:     v,
		maxUploadSize: maxUploadSize,
	}
}

// Routes mounts the public API on r.
func (h *ServiceHandler) Routes(r chi.Router) {
	r.Post("/upload_and_transcribe", h.UploadAndTranscribe)
	r.Get("/status/{jobID}", h.GetStatus)
	// the wildcard lets traversal attempts reach the handler and be denied
	r.Get("/results/{jobID}/*", h.GetResult)
	r.Get("/health", h.Health)
	r.Get("/api/v1/models", h.ListModels)
}

type ErrorReply struct {
	Error     string `json:"error"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (e ErrorReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func renderError(w http.ResponseWriter, r *http.Request, status int, reason string, err error) {
	render.Status(r, status)
	_ = render.Render(w, r, ErrorReply{
		Error:     err.Error(),
		Reason:    reason,
		RequestID: requestid.FromRequest(r),
	})
}
