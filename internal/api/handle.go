// Package api serves a registered entity model over HTTP: CRUD and meta
// endpoints plus an SSE stream for live entities.
package api

import (
	"sync"

	"skylark/internal/entity"
)

// Handle is what every handler closes over: the model, the storage
// backend, and the lock serializing entity-layer access (the entity layer
// itself is single-goroutine by contract).
type Handle struct {
	mu    sync.Mutex
	model *entity.Model
	store entity.Store
}

func NewHandle(m *entity.Model, st entity.Store) *Handle {
	return &Handle{model: m, store: st}
}

func (h *Handle) typeByName(name string) (*entity.Type, bool) {
	return h.model.TypeByName(name)
}
