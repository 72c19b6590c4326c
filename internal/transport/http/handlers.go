package httptransport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"dwn-gateway/contracts/application"
	"dwn-gateway/contracts/manifest"
	"dwn-gateway/internal/exchange/pipeline"
	"dwn-gateway/internal/exchange/providers"
	"dwn-gateway/internal/node"
	jsonutil "dwn-gateway/internal/transport/http/json"
)

// Readiness gates the readiness endpoint on setup completion.
type Readiness interface {
	Ready() bool
}

// Handler serves the gateway's HTTP surface.
type Handler struct {
	pipe      *pipeline.Pipeline
	readiness Readiness
	manifests []manifest.CredentialManifest
	logger    *slog.Logger
}

// NewHandler creates the HTTP handler set.
func NewHandler(pipe *pipeline.Pipeline, readiness Readiness, manifests []manifest.CredentialManifest, logger *slog.Logger) *Handler {
	return &Handler{
		pipe:      pipe,
		readiness: readiness,
		manifests: manifests,
		logger:    logger,
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	jsonutil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !h.readiness.Ready() {
		jsonutil.WriteError(w, http.StatusServiceUnavailable, "setup has not completed")
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) handleListManifests(w http.ResponseWriter, _ *http.Request) {
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"manifests": h.manifests})
}

// submitRequest is an application submission delivered over HTTP instead of
// through node replication. The author field names the applicant's DID.
type submitRequest struct {
	RecordID     string                   `json:"recordId"`
	Author       string                   `json:"author"`
	Presentation application.Presentation `json:"presentation"`
}

func (h *Handler) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Author == "" {
		jsonutil.WriteError(w, http.StatusBadRequest, "author is required")
		return
	}

	submission := node.Record{ID: req.RecordID, Author: req.Author}
	if err := h.pipe.Process(r.Context(), submission, req.Presentation); err != nil {
		h.logger.Warn("application rejected",
			"record_id", req.RecordID,
			"author", req.Author,
			"error", err,
		)
		jsonutil.WriteError(w, statusFor(err), "application processing failed")
		return
	}

	jsonutil.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// statusFor maps core errors onto transport status codes. Unknown providers
// are a deployment misconfiguration, everything else from the pipeline is a
// processing failure on the submission.
func statusFor(err error) int {
	if errors.Is(err, providers.ErrProviderNotFound) {
		return http.StatusInternalServerError
	}
	return http.StatusUnprocessableEntity
}
