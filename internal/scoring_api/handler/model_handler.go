package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// ModelHandler exposes read-only metadata about the loaded classifier
type ModelHandler struct {
	features    []string
	importances []float64
	logger      *slog.Logger
}

// NewModelHandler creates a new model metadata handler. Features and
// importances are index-aligned in training order; importances may be nil
// when the artifact ships none.
func NewModelHandler(logger *slog.Logger, features []string, importances []float64) *ModelHandler {
	return &ModelHandler{
		features:    features,
		importances: importances,
		logger:      logger,
	}
}

// GetImportances lists the global feature importances in training order
func (h *ModelHandler) GetImportances(c *gin.Context) {
	if len(h.importances) != len(h.features) {
		RespondOK(c, gin.H{"importances": []ImportanceResponse{}})
		return
	}

	out := make([]ImportanceResponse, len(h.features))
	for i, name := range h.features {
		out[i] = ImportanceResponse{Feature: name, Importance: h.importances[i]}
	}
	RespondOK(c, gin.H{"importances": out})
}
