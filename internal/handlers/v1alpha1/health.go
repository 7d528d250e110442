package v1alpha1

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/voxjob/transcriber/internal/handlers/validator"
	"github.com/voxjob/transcriber/internal/store/model"
)

type HealthReply struct {
	Status string `json:"status"`
}

func (h HealthReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type ModelsReply struct {
	Models          []string `json:"models"`
	Default         string   `json:"default"`
	MediaExtensions []string `json:"media_extensions"`
}

func (m ModelsReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// (GET /health)
func (h *ServiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	_ = render.Render(w, r, HealthReply{Status: "ok"})
}

// (GET /api/v1/models)
func (h *ServiceHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	_ = render.Render(w, r, ModelsReply{
		Models:          model.ModelTiers,
		Default:         model.DefaultModelTier,
		MediaExtensions: validator.MediaExtensions,
	})
}
