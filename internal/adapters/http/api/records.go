package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/okian/chartrec/internal/domain/entry"
	"github.com/okian/chartrec/internal/domain/model"
	"github.com/okian/chartrec/internal/domain/rate"
	"github.com/okian/chartrec/internal/domain/types"
)

// RecordsDependencies defines the record operations used by the handler.
type RecordsDependencies interface {
	RecordViews(ctx context.Context) ([]types.RecordView, error)
	Submit(ctx context.Context, form entry.Form) (types.SubmitResult, error)
	Remove(ctx context.Context, key model.ChartKey) error
}

// RecordsHandler handles /records requests.
type RecordsHandler struct {
	deps RecordsDependencies
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps RecordsDependencies) *RecordsHandler {
	return &RecordsHandler{deps: deps}
}

// submitRequest mirrors the OpenAPI schema for POST /records.
// achievement_rate is either an integer or percentage text such as "100.5%".
type submitRequest struct {
	SongID          string          `json:"song_id"`
	DifficultyLevel string          `json:"difficulty_level"`
	AchievementRate json.RawMessage `json:"achievement_rate"`
}

func (req submitRequest) form() (entry.Form, error) {
	f := entry.Form{SongID: req.SongID, DifficultyLevel: req.DifficultyLevel}

	raw := bytes.TrimSpace(req.AchievementRate)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return f, fmt.Errorf("%w: missing achievement_rate", ErrInvalidRecord)
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return f, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		r, err := rate.Parse(s)
		if err != nil {
			return f, err
		}
		f.AchievementRate = r
		return f, nil
	}
	r, err := strconv.Atoi(string(raw))
	if err != nil {
		return f, fmt.Errorf("%w: achievement_rate must be an integer", ErrInvalidRecord)
	}
	f.AchievementRate = r
	return f, nil
}

// HandleList handles GET /records requests.
func (h *RecordsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_records"
	views, err := h.deps.RecordViews(r.Context())
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// HandleSubmit handles POST /records requests.
func (h *RecordsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_record"
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	form, err := req.form()
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	res, err := h.deps.Submit(r.Context(), form)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	status := http.StatusOK
	if res.Outcome == "inserted" {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

// HandleDelete handles DELETE /records/{song_id}/{difficulty_level} requests.
func (h *RecordsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_record"
	vars := mux.Vars(r)
	key := model.ChartKey{SongID: vars["song_id"], DifficultyLevel: vars["difficulty_level"]}
	if err := h.deps.Remove(r.Context(), key); err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
