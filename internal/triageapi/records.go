package triageapi

import (
	"errors"
	"io"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/triageboard/internal/patient"
)

func (a *API) handleIngest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		a.logger.Warn(r.Context(), "failed to read ingest body", "err", err)
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	idx, err := a.svc.Ingest(r.Context(), body)
	switch {
	case errors.Is(err, patient.ErrInvalidJSON), errors.Is(err, patient.ErrNotObject):
		a.logger.Warn(r.Context(), "rejected ingest body", "err", err, "bytes", len(body))
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	case err != nil:
		a.logger.Error(r.Context(), err, "failed to store record")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	trace.SpanFromContext(r.Context()).SetAttributes(attribute.Int("triageboard.record.index", idx))
	writeJSON(w, http.StatusOK, statusOK)
}

func (a *API) handleQuery(w http.ResponseWriter, r *http.Request) {
	records, err := a.svc.List(r.Context())
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to read records")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if records == nil {
		records = []*patient.Record{}
	}

	trace.SpanFromContext(r.Context()).SetAttributes(attribute.Int("triageboard.records", len(records)))
	writeJSON(w, http.StatusOK, queryResponse{Data: records})
}

func (a *API) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Reset(r.Context()); err != nil {
		a.logger.Error(r.Context(), err, "failed to reset store")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, statusOK)
}
