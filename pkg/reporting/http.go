package reporting

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/erc-insight/platform/pkg/clinical"
	"github.com/erc-insight/platform/pkg/common/logger"
	"github.com/erc-insight/platform/pkg/common/models"
	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/reports", h.createReport).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/reports/{id}", h.getReport).Methods(http.MethodGet)
}

type reportResponse struct {
	Report  models.NarrativeResponse `json:"report"`
	Payload models.ClinicalPayload   `json:"payload"`
}

func (h *Handler) createReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	report, payload, err := h.service.Generate(r.Context(), req)
	if err != nil {
		var vErr *clinical.ValidationError
		switch {
		case errors.As(err, &vErr):
			writeError(w, http.StatusUnprocessableEntity, vErr.Error())
		case errors.Is(err, ErrExtractionNotFound):
			writeError(w, http.StatusNotFound, "extraction result not found")
		default:
			logger.Log.WithError(err).Error("Report generation failed")
			writeError(w, http.StatusInternalServerError, "report generation failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, reportResponse{Report: report, Payload: payload})
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	record, err := h.service.GetReport(r.Context(), id)
	if errors.Is(err, ErrReportNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		logger.Log.WithError(err).WithField("report_id", id).Error("Failed to load report")
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
