package cart

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

const maxAddBody = 1 << 20

type Server struct {
	Store Store
	Log   *zap.Logger

	// mu serializes load-modify-save cycles so concurrent adds and removes
	// cannot overwrite each other's changes.
	mu sync.Mutex
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.list)
	r.Post("/", s.add)
	r.Delete("/{index}", s.remove)
	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	items, err := s.Store.Load(r.Context())
	if err != nil {
		if s.Log != nil {
			s.Log.Error("load cart failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, items)
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	item, err := ParseAdd(payload)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.Store.Load(r.Context())
	if err != nil {
		if s.Log != nil {
			s.Log.Error("load cart failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	items = append(items, item)
	if err := s.Store.Save(r.Context(), items); err != nil {
		if s.Log != nil {
			s.Log.Error("save cart failed", zap.Error(err), zap.Int64("id", item.ID))
		}
		kit.WarnNotDurable(w)
	}
	kit.WriteJSON(w, http.StatusCreated, items)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "index")
	idx, err := strconv.Atoi(raw)
	if err != nil {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"index": raw})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.Store.Load(r.Context())
	if err != nil {
		if s.Log != nil {
			s.Log.Error("load cart failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	if idx < 0 || idx >= len(items) {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"index": raw})
		return
	}

	items = append(items[:idx], items[idx+1:]...)
	if err := s.Store.Save(r.Context(), items); err != nil {
		if s.Log != nil {
			s.Log.Error("save cart failed", zap.Error(err), zap.Int("index", idx))
		}
		kit.WarnNotDurable(w)
	}
	kit.WriteJSON(w, http.StatusOK, items)
}

func decodePayload(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAddBody)
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
