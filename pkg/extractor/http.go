package extractor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/erc-insight/platform/pkg/common/logger"
	"github.com/erc-insight/platform/pkg/common/models"
	"github.com/gorilla/mux"
)

type Handler struct {
	service        *Service
	maxRequestBody int64
}

func NewHandler(service *Service, maxRequestBody int64) *Handler {
	return &Handler{service: service, maxRequestBody: maxRequestBody}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/extractions", h.createExtraction).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/extractions/{id}", h.getExtraction).Methods(http.MethodGet)
}

type extractionRequest struct {
	Text string `json:"text"`
}

type extractionResponse struct {
	ID     string                  `json:"id,omitempty"`
	Result models.ExtractionResult `json:"result"`
}

// createExtraction accepts either a JSON body with a text field or a raw
// text/plain document.
func (h *Handler) createExtraction(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxRequestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var raw []byte
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req extractionRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		raw = []byte(req.Text)
	} else {
		raw = body
	}

	if len(strings.TrimSpace(string(raw))) == 0 {
		writeError(w, http.StatusBadRequest, "empty document text")
		return
	}

	id, result, err := h.service.Process(r.Context(), raw)
	if err != nil {
		logger.Log.WithError(err).Error("Extraction request failed")
		writeError(w, http.StatusInternalServerError, "extraction failed")
		return
	}

	writeJSON(w, http.StatusCreated, extractionResponse{ID: id, Result: result})
}

func (h *Handler) getExtraction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	_, result, err := h.service.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "extraction record not found")
		return
	}
	if err != nil {
		logger.Log.WithError(err).WithField("record_id", id).Error("Failed to load extraction record")
		writeError(w, http.StatusInternalServerError, "failed to load extraction record")
		return
	}

	writeJSON(w, http.StatusOK, extractionResponse{ID: id, Result: result})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
