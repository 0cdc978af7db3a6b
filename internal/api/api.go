// Package api exposes the playback engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"
	zlog "github.com/rs/zerolog/log"

	"github.com/olivier-w/climpd/internal/engine"
	"github.com/olivier-w/climpd/internal/track"
)

// Controller is the part of *engine.Engine the handlers drive.
type Controller interface {
	Enqueue(ctx context.Context, path string) (bool, error)
	Pause() error
	Resume() error
	Skip() error
	Stop() error
	TogglePause() (bool, error)
	SetVolume(v float64) error
	Volume() float64
	Queue() []track.Track
	QueueLength() int
	Playing() (track.Track, bool)
	Status() engine.Status
}

// LibraryFunc lists the tracks available for enqueueing.
type LibraryFunc func(ctx context.Context) ([]track.Track, error)

// Handler serves the control API.
type Handler struct {
	ctl            Controller
	library        LibraryFunc
	statusInterval time.Duration
	router         *mux.Router
}

// NewHandler builds the router. library may be nil.
func NewHandler(ctl Controller, library LibraryFunc, statusInterval time.Duration) *Handler {
	if statusInterval <= 0 {
		statusInterval = time.Second
	}
	h := &Handler{
		ctl:            ctl,
		library:        library,
		statusInterval: statusInterval,
		router:         mux.NewRouter(),
	}

	r := h.router
	r.Use(logRequests)
	r.HandleFunc("/queue", h.enqueue).Methods(http.MethodPost)
	r.HandleFunc("/queue", h.queue).Methods(http.MethodGet)
	r.HandleFunc("/queue/length", h.queueLength).Methods(http.MethodGet)
	r.HandleFunc("/playing", h.playing).Methods(http.MethodGet)
	r.HandleFunc("/pause", h.command(h.ctl.Pause)).Methods(http.MethodPost)
	r.HandleFunc("/resume", h.command(h.ctl.Resume)).Methods(http.MethodPost)
	r.HandleFunc("/skip", h.command(h.ctl.Skip)).Methods(http.MethodPost)
	r.HandleFunc("/stop", h.command(h.ctl.Stop)).Methods(http.MethodPost)
	r.HandleFunc("/toggle", h.toggle).Methods(http.MethodPost)
	r.HandleFunc("/volume", h.volume).Methods(http.MethodGet)
	r.HandleFunc("/volume", h.setVolume).Methods(http.MethodPut)
	r.HandleFunc("/status", h.status).Methods(http.MethodGet)
	r.HandleFunc("/status/ws", h.statusStream).Methods(http.MethodGet)
	r.HandleFunc("/library", h.listLibrary).Methods(http.MethodGet)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		zlog.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

type enqueueRequest struct {
	Path string `json:"path"`
}

type volumeBody struct {
	Volume float64 `json:"volume"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) enqueue(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "body must be {\"path\": \"...\"}"})
		return
	}

	ok, err := h.ctl.Enqueue(r.Context(), req.Path)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "not a playable file"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"queued": req.Path, "queue_length": h.ctl.QueueLength()})
}

func (h *Handler) queue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, trackViews(h.ctl.Queue()))
}

func (h *Handler) queueLength(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"length": h.ctl.QueueLength()})
}

func (h *Handler) playing(w http.ResponseWriter, r *http.Request) {
	t, ok := h.ctl.Playing()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, newTrackView(t))
}

func (h *Handler) command(send func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := send(); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	playing, err := h.ctl.TogglePause()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"playing": playing})
}

func (h *Handler) volume(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, volumeBody{Volume: h.ctl.Volume()})
}

func (h *Handler) setVolume(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Volume *float64 `json:"volume"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Volume == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "body must be {\"volume\": 0.0-1.0}"})
		return
	}
	if err := h.ctl.SetVolume(*body.Volume); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, volumeBody{Volume: h.ctl.Volume()})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newStatusView(h.ctl.Status()))
}

func (h *Handler) listLibrary(w http.ResponseWriter, r *http.Request) {
	if h.library == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no library configured"})
		return
	}
	tracks, err := h.library(r.Context())
	if err != nil {
		zlog.Error().Err(err).Msg("library scan failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, trackViews(tracks))
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, engine.ErrClosed) || errors.Is(err, engine.ErrWorkerTerminated) {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Debug().Err(err).Msg("writing response")
	}
}
