package handler

import (
	"github.com/gin-gonic/gin"

	"docparse/internal/domain"
)

// ModelInventory lists the model variants loaded on the bound device.
type ModelInventory interface {
	Device() string
	Ready() bool
	Loaded() []domain.ModelHandle
}

// ModelHandler reports the model manager state.
type ModelHandler struct {
	models ModelInventory
}

// NewModelHandler creates a new ModelHandler.
func NewModelHandler(models ModelInventory) *ModelHandler {
	return &ModelHandler{models: models}
}

// ModelsResponse is the payload of GET /api/v1/models.
type ModelsResponse struct {
	Device string               `json:"device"`
	Ready  bool                 `json:"ready"`
	Models []domain.ModelHandle `json:"models"`
}

// List handles GET /api/v1/models
func (h *ModelHandler) List(c *gin.Context) {
	RespondOK(c, ModelsResponse{
		Device: h.models.Device(),
		Ready:  h.models.Ready(),
		Models: h.models.Loaded(),
	})
}
