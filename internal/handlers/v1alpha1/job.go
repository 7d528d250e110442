package v1alpha1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voxjob/transcriber/internal/handlers/validator"
	"github.com/voxjob/transcriber/internal/service"
	"github.com/voxjob/transcriber/internal/worker"
)

const (
	videoFileField = "videoFile"
	modelSizeField = "modelSize"

	// multipart parts above this size are spooled to disk
	maxUploadMemory = 32 << 20
)

type uploadForm struct {
	Filename  string `validate:"required,media_file"`
	ModelSize string `validate:"omitempty,model_tier"`
}

type UploadReply struct {
	Message   string    `json:"message"`
	JobID     uuid.UUID `json:"job_id"`
	Filename  string    `json:"filename"`
	ModelSize string    `json:"model_size"`
}

func (u UploadReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// (POST /upload_and_transcribe)
func (h *ServiceHandler) UploadAndTranscribe(w http.ResponseWriter, r *http.Request) {
	logger := zap.S().Named("job_handler")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			renderError(w, r, http.StatusRequestEntityTooLarge, "ValidationError", fmt.Errorf("upload exceeds %d bytes", maxErr.Limit))
			return
		}
		renderError(w, r, http.StatusBadRequest, "ValidationError", fmt.Errorf("failed to read multipart form: %w", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(videoFileField)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "ValidationError", errors.New("no video file part"))
		return
	}
	defer file.Close()

	form := uploadForm{Filename: header.Filename, ModelSize: r.FormValue(modelSizeField)}
	if form.Filename == "" {
		renderError(w, r, http.StatusBadRequest, "ValidationError", errors.New("no selected file"))
		return
	}
	if err := h.validator.Struct(form); err != nil {
		renderError(w, r, http.StatusBadRequest, "ValidationError", err)
		return
	}

	info, err := h.jobSrv.Submit(r.Context(), service.SubmitRequest{
		Filename:  form.Filename,
		ModelTier: form.ModelSize,
		Body:      file,
	})
	if err != nil {
		status, reason := submitFailure(err)
		logger.Errorw("submission failed", "error", err, "reason", reason, "filename", form.Filename)
		renderError(w, r, status, reason, err)
		return
	}

	render.Status(r, http.StatusAccepted)
	_ = render.Render(w, r, UploadReply{
		Message:   "File uploaded and transcription started.",
		JobID:     info.ID,
		Filename:  info.Filename,
		ModelSize: info.ModelTier,
	})
}

func submitFailure(err error) (int, string) {
	var (
		validationErr *service.ErrValidation
		formErr       *validator.ErrInvalidForm
		storageErr    *service.ErrStorage
		notFound      *worker.ErrWorkerNotFound
		notReady      *worker.ErrWorkerNotReady
		dispatchErr   *worker.ErrDispatch
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &formErr):
		return http.StatusBadRequest, "ValidationError"
	case errors.As(err, &notFound):
		return http.StatusInternalServerError, "WorkerNotFound"
	case errors.As(err, &notReady):
		return http.StatusInternalServerError, "WorkerNotReady"
	case errors.As(err, &dispatchErr):
		return http.StatusInternalServerError, "DispatchFailure"
	case errors.As(err, &storageErr):
		return http.StatusInternalServerError, "StorageFailure"
	default:
		return http.StatusInternalServerError, "InternalError"
	}
}
