package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/okian/chartrec/internal/domain/types"
)

// SongsDependencies defines the catalog operations used by the handler.
type SongsDependencies interface {
	SearchSongs(ctx context.Context, query string, limit int) ([]types.SongView, error)
	Song(ctx context.Context, id string) (types.SongView, error)
}

// SongsHandler handles /songs requests.
type SongsHandler struct {
	deps SongsDependencies
}

// NewSongsHandler creates a new songs handler.
func NewSongsHandler(deps SongsDependencies) *SongsHandler {
	return &SongsHandler{deps: deps}
}

// HandleSearch handles GET /songs?q=&limit= requests.
func (h *SongsHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	const op = "api.search_songs"
	q := r.URL.Query()
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeServiceError(w, WrapKind(op, ErrBadRequest, fmt.Errorf("invalid limit %q", v)))
			return
		}
		limit = n
	}
	songs, err := h.deps.SearchSongs(r.Context(), q.Get("q"), limit)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

// HandleGet handles GET /songs/{song_id} requests.
func (h *SongsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_song"
	song, err := h.deps.Song(r.Context(), mux.Vars(r)["song_id"])
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, song)
}
