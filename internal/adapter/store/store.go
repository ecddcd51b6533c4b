package store

import (
	"errors"

	"go.ngs.io/geomag-api/internal/domain"
)

// ErrModelNotFound is returned by loaders for unknown model names.
var ErrModelNotFound = errors.New("model not found")

// ModelLoader is the interface for loading geomagnetic coefficient tables.
type ModelLoader interface {
	// Load returns the table for a named model (e.g., "IGRF14").
	Load(name string) (*domain.CoefficientTable, error)

	// List describes every model the loader can provide.
	List() ([]ModelInfo, error)
}

// ModelInfo summarises one available model.
type ModelInfo struct {
	Name       string  `json:"name"`
	FirstEpoch float64 `json:"first_epoch"`
	LastEpoch  float64 `json:"last_epoch"`
	Epochs     int     `json:"epochs"`
	MaxDegree  int     `json:"max_degree"`
}

// Describe builds the ModelInfo of a loaded table.
func Describe(t *domain.CoefficientTable) ModelInfo {
	return ModelInfo{
		Name:       t.Name(),
		FirstEpoch: t.FirstEpoch(),
		LastEpoch:  t.LastEpoch(),
		Epochs:     t.EpochCount(),
		MaxDegree:  t.MaxDegree(),
	}
}
