// Package triageapi exposes the record ingest, query and confirm endpoints.
package triageapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/triageboard/internal/patient"
)

// PatientService defines the business operations triageapi needs.
type PatientService interface {
	Ingest(ctx context.Context, body []byte) (int, error)
	List(ctx context.Context) ([]*patient.Record, error)
	Confirm(ctx context.Context, body []byte) (patient.Outcome, error)
	Reset(ctx context.Context) error
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger log.Logger
	svc    PatientService
}

// New creates a new API handler.
func New(logger log.Logger, svc PatientService) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("patient service is required"))
	}
	return &API{
		logger: logger,
		svc:    svc,
	}
}

// RegisterRoutes attaches API endpoints to the router. The /api/* paths
// are kept for intake flows configured against the earlier deployment.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Post("/ingest", a.handleIngest)
	r.Get("/query", a.handleQuery)
	r.Post("/confirm", a.handleConfirm)
	r.Post("/reset", a.handleReset)

	r.Route("/api", func(r chi.Router) {
		r.Post("/data", a.handleIngest)
		r.Get("/data", a.handleQuery)
		r.Post("/confirm", a.handleConfirm)
	})
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type queryResponse struct {
	Data []*patient.Record `json:"data"`
}

var statusOK = statusResponse{Status: "ok"}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	// nothing to do with errors here
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, statusResponse{Status: "error", Message: msg})
}
