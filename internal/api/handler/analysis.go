package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Rrens/health-insights/internal/api/middleware"
	"github.com/Rrens/health-insights/internal/api/response"
	"github.com/Rrens/health-insights/internal/domain"
	"github.com/Rrens/health-insights/internal/service"
)

// AnalysisHandler handles analysis submission, history and export endpoints
type AnalysisHandler struct {
	analysisService *service.AnalysisService
	archiveService  *service.ArchiveService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysisService *service.AnalysisService, archiveService *service.ArchiveService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService, archiveService: archiveService}
}

// Submit runs one analysis and returns its outcome
func (h *AnalysisHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if limit := h.analysisService.MaxReportBytes(); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)
	}

	var req domain.AnalysisRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	outcome, err := h.analysisService.Submit(r.Context(), userID, req)
	if err != nil {
		if outcome != nil && errors.Is(err, domain.ErrEngine) {
			response.Error(w, http.StatusBadGateway, outcome)
			return
		}
		writeError(w, err)
		return
	}

	response.OK(w, outcome)
}

// History lists the analyses of the current sign-in in submission order
func (h *AnalysisHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	records, err := h.analysisService.History(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, records)
}

// Export downloads the history as a JSON document
func (h *AnalysisHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	data, err := h.analysisService.Export(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Attachment(w, service.ExportFilename, "application/json", data)
}

// RateLimit reports the caller's quota without consuming it
func (h *AnalysisHandler) RateLimit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	status, err := h.analysisService.RateStatus(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, status)
}

// Archive stores an encrypted copy of the current history
func (h *AnalysisHandler) Archive(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	entry, err := h.archiveService.Archive(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, entry)
}

// Archives lists the caller's stored archives
func (h *AnalysisHandler) Archives(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	entries, err := h.archiveService.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, entries)
}

// LoadArchive returns the records of one stored archive
func (h *AnalysisHandler) LoadArchive(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	records, err := h.archiveService.Load(r.Context(), userID, chi.URLParam(r, "archiveID"))
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, records)
}
