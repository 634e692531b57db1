package triageapi

import (
	"context"
	"io"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const confirmFailed = "Failed to send confirmation"

// handleConfirm forwards the posted record and answers once delivery has
// been attempted. Delivery failures do not change the response.
func (a *API) handleConfirm(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to read confirm body")
		writeError(w, http.StatusInternalServerError, confirmFailed)
		return
	}

	// a disconnecting client must not abort the webhook call
	o, err := a.svc.Confirm(context.WithoutCancel(r.Context()), body)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to handle confirmation")
		writeError(w, http.StatusInternalServerError, confirmFailed)
		return
	}

	trace.SpanFromContext(r.Context()).SetAttributes(
		attribute.String("triageboard.delivery.id", o.DeliveryID),
		attribute.String("triageboard.delivery.status", string(o.Status)),
	)
	writeJSON(w, http.StatusOK, statusOK)
}
