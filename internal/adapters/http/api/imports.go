package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/okian/chartrec/internal/domain/types"
)

// ImportDependencies defines the import operations used by the handler.
type ImportDependencies interface {
	Import(ctx context.Context, raw []byte) (types.ImportSummary, error)
	FetchAndImport(ctx context.Context) (types.ImportSummary, error)
}

// ImportHandler handles bulk import requests.
type ImportHandler struct {
	deps         ImportDependencies
	maxBodyBytes int64
}

// NewImportHandler creates a new import handler.
func NewImportHandler(deps ImportDependencies, maxBodyBytes int64) *ImportHandler {
	return &ImportHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandleImport handles POST /records/import requests. The body is the raw
// capture and replaces the whole collection.
func (h *ImportHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	const op = "api.import"
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeServiceError(w, WrapKind(op, ErrPayloadTooLarge, err))
			return
		}
		writeServiceError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	sum, err := h.deps.Import(r.Context(), raw)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// HandleFetch handles POST /records/fetch requests.
func (h *ImportHandler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	const op = "api.fetch"
	sum, err := h.deps.FetchAndImport(r.Context())
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
