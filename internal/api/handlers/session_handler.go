package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/careertrack/researchbot/internal/core"
	"github.com/careertrack/researchbot/internal/services"
)

type SessionHandler struct {
	svc            *services.SessionService
	maxUploadBytes int64
}

func NewSessionHandler(svc *services.SessionService, maxUploadMB int64) *SessionHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 32
	}
	return &SessionHandler{svc: svc, maxUploadBytes: maxUploadMB << 20}
}

type askRequest struct {
	Question string `json:"question"`
}

// Upload ingests a PDF under the session identifier from the URL. When no
// identifier is present (POST /upload) a fresh one is generated and returned.
func (h *SessionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid_request", "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid_request", "missing file field")
		return
	}
	defer file.Close()

	cleanFilename := filepath.Base(header.Filename)
	if !strings.EqualFold(filepath.Ext(cleanFilename), ".pdf") {
		writeFailure(w, http.StatusBadRequest, "invalid_request", "only PDF files are allowed")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid_request", "could not read upload")
		return
	}

	chunks, err := h.svc.Ingest(r.Context(), sessionID, data, contentType)
	if err != nil {
		log.Printf("ingest failed for session %s: %v", sessionID, err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "PDF processed and indexed successfully",
		"session_id": sessionID,
		"chunks":     chunks,
	})
}

// Ask answers a question against a previously uploaded document.
func (h *SessionHandler) Ask(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeFailure(w, http.StatusBadRequest, "invalid_request", "question must not be empty")
		return
	}

	answer, err := h.svc.Ask(r.Context(), sessionID, req.Question)
	if err != nil {
		log.Printf("ask failed for session %s: %v", sessionID, err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"response": answer})
}

func (h *SessionHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// writeError maps the pipeline error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		writeFailure(w, http.StatusNotFound, "session_not_found",
			"no document indexed for this session; upload one first")
	case errors.Is(err, core.ErrExtraction):
		writeFailure(w, http.StatusBadRequest, "extraction_failed", err.Error())
	case errors.Is(err, core.ErrInvalidConfig):
		writeFailure(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, core.ErrEmbedding), errors.Is(err, core.ErrGeneration):
		writeFailure(w, http.StatusBadGateway, "upstream_failed", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeFailure(w, http.StatusGatewayTimeout, "timeout", "processing timed out")
	default:
		writeFailure(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

func writeFailure(w http.ResponseWriter, status int, kind, detail string) {
	writeJSON(w, status, map[string]string{"error": kind, "detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
