package catalog

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/pkg/kit"
)

const maxCreateBody = 1 << 20

type Server struct {
	Store Store
	Log   *zap.Logger

	// mu serializes load-modify-save cycles so concurrent admin mutations
	// cannot overwrite each other's changes.
	mu sync.Mutex
}

// Routes serves the public, read-only catalog surface.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/products", s.list)
	r.Get("/products/{id}", s.get)
	return r
}

// AdminRoutes serves the mutating surface. The caller is expected to wrap
// these behind the admin gate.
func (s *Server) AdminRoutes() http.Handler {
	r := chi.NewRouter()
	r.Post("/products", s.create)
	r.Delete("/products/{id}", s.remove)
	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.Load(r.Context())
	if err != nil {
		if s.Log != nil {
			s.Log.Error("load products failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": raw})
		return
	}

	products, err := s.Store.Load(r.Context())
	if err != nil {
		if s.Log != nil {
			s.Log.Error("load products failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	for _, p := range products {
		if p.ID == id {
			kit.WriteJSON(w, http.StatusOK, p)
			return
		}
	}
	kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": raw})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.Store.Load(r.Context())
	if err != nil {
		if s.Log != nil {
			s.Log.Error("load products failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	p, err := NewFromPayload(payload, NextID(products))
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	products = append(products, p)
	if err := s.Store.Save(r.Context(), products); err != nil {
		if s.Log != nil {
			s.Log.Error("save products failed", zap.Error(err), zap.Int64("id", p.ID))
		}
		kit.WarnNotDurable(w)
	}
	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": raw})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.Store.Load(r.Context())
	if err != nil {
		if s.Log != nil {
			s.Log.Error("load products failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	// Clears every match, so a hand-edited file with duplicate ids still
	// ends up without the deleted id.
	kept := make([]Product, 0, len(products))
	for _, p := range products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(products) {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": raw})
		return
	}

	if err := s.Store.Save(r.Context(), kept); err != nil {
		if s.Log != nil {
			s.Log.Error("save products failed", zap.Error(err), zap.Int64("id", id))
		}
		kit.WarnNotDurable(w)
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodePayload(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCreateBody)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)

	var payload map[string]json.RawMessage
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New("extra data after json object")
	}

	return payload, nil
}
