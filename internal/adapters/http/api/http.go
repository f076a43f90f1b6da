// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/chartrec/internal/adapters/fetch"
	service "github.com/okian/chartrec/internal/app"
	"github.com/okian/chartrec/internal/domain/catalog"
	"github.com/okian/chartrec/internal/domain/entry"
	"github.com/okian/chartrec/internal/domain/importer"
	"github.com/okian/chartrec/internal/domain/rate"
	"github.com/okian/chartrec/internal/domain/types"
)

const defaultMaxBodyBytes = 8 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RecordsDependencies
	ImportDependencies
	SongsDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	recordsHandler *RecordsHandler
	importHandler  *ImportHandler
	songsHandler   *SongsHandler
}

// ServerOption configures the Server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	maxBodyBytes int64
}

// WithMaxBodyBytes caps request bodies, most notably import payloads.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	o := serverOptions{maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		recordsHandler: NewRecordsHandler(deps),
		importHandler:  NewImportHandler(deps, o.maxBodyBytes),
		songsHandler:   NewSongsHandler(deps),
	}
}

// Register attaches all HTTP routes to router.
func (s *Server) Register(_ context.Context, router *mux.Router) {
	router.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	router.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)

	router.HandleFunc("/records", MetricsMiddleware(s.recordsHandler.HandleList, "records")).Methods(http.MethodGet)
	router.HandleFunc("/records", MetricsMiddleware(s.recordsHandler.HandleSubmit, "records")).Methods(http.MethodPost)
	router.HandleFunc("/records/import", MetricsMiddleware(s.importHandler.HandleImport, "import")).Methods(http.MethodPost)
	router.HandleFunc("/records/fetch", MetricsMiddleware(s.importHandler.HandleFetch, "fetch")).Methods(http.MethodPost)
	router.HandleFunc("/records/{song_id}/{difficulty_level}", MetricsMiddleware(s.recordsHandler.HandleDelete, "records")).Methods(http.MethodDelete)

	router.HandleFunc("/songs", MetricsMiddleware(s.songsHandler.HandleSearch, "songs")).Methods(http.MethodGet)
	router.HandleFunc("/songs/{song_id}", MetricsMiddleware(s.songsHandler.HandleGet, "songs")).Methods(http.MethodGet)
}

type errorResponse struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Rejected []types.Rejection `json:"rejected,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	resp := errorResponse{Code: code, Message: msg}
	var ie *importer.Error
	if errors.As(err, &ie) && len(ie.Rejected) > 0 {
		resp.Rejected = make([]types.Rejection, len(ie.Rejected))
		for i, r := range ie.Rejected {
			resp.Rejected[i] = types.Rejection{
				Index:           r.Index,
				SongID:          r.SongID,
				DifficultyLevel: r.DifficultyLevel,
				Reason:          r.Reason.Error(),
			}
		}
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps errors from the service to a status and code.
func writeServiceError(w http.ResponseWriter, err error) {
	var ie *importer.Error
	switch {
	case errors.As(err, &ie):
		writeError(w, http.StatusUnprocessableEntity, ie.Kind.String(), err)
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrPayloadTooLarge), errors.Is(err, service.ErrPayloadTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", err)
	case isInvalidRecord(err):
		writeError(w, http.StatusUnprocessableEntity, "invalid_record", err)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, fetch.ErrSuperseded):
		writeError(w, http.StatusConflict, "superseded", err)
	case errors.Is(err, fetch.ErrFetch):
		writeError(w, http.StatusBadGateway, "fetch_failed", err)
	case errors.Is(err, service.ErrFetchUnavailable), errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

func isInvalidRecord(err error) bool {
	for _, target := range []error{
		ErrInvalidRecord,
		entry.ErrSongRequired,
		entry.ErrDifficultyRequired,
		catalog.ErrUnknownSong,
		catalog.ErrUnknownChart,
		rate.ErrOutOfRange,
		rate.ErrSyntax,
		rate.ErrEmpty,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
