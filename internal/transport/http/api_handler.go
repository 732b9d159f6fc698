package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"esg-assessment-service/internal/app"
	"esg-assessment-service/internal/domain"
	"esg-assessment-service/internal/telemetry"
)

// APIHandler serves the read-only JSON endpoints next to the websocket.
type APIHandler struct {
	service  *app.AssessmentService
	recorder *telemetry.Recorder
}

func NewAPIHandler(service *app.AssessmentService, recorder *telemetry.Recorder) *APIHandler {
	if recorder == nil {
		recorder = telemetry.Discard()
	}
	return &APIHandler{service: service, recorder: recorder}
}

// Register mounts the endpoints on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/catalog", h.catalog)
	mux.HandleFunc("/reports", h.reports)
	mux.HandleFunc("/debug/events", h.events)
}

func (h *APIHandler) catalog(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Catalog(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *APIHandler) reports(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}
	reports, err := h.service.History(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if reports == nil {
		reports = []domain.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

func (h *APIHandler) events(w http.ResponseWriter, r *http.Request) {
	n := 50
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			http.Error(w, "invalid n", http.StatusBadRequest)
			return
		}
		n = v
	}
	writeJSON(w, http.StatusOK, h.recorder.Recent(n))
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrCatalogNotFound), errors.Is(err, domain.ErrAssessmentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, app.ErrRemoteUnavailable):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, errorPayload{Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
