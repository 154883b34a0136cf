package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Rrens/health-insights/internal/api/response"
	"github.com/Rrens/health-insights/internal/report"
)

// framing allowance on top of the report limit for multipart and JSON bodies
const formOverhead = 1 << 20

// ReportHandler turns uploaded PDFs and the built-in sample into report text
type ReportHandler struct {
	loader *report.Loader
}

// NewReportHandler creates a new report handler
func NewReportHandler(loader *report.Loader) *ReportHandler {
	return &ReportHandler{loader: loader}
}

// Upload extracts the text of an uploaded PDF in the "file" form field
func (h *ReportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	limit := h.loader.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds the %dMB limit", limit>>20))
			return
		}
		response.BadRequest(w, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "no file uploaded")
		return
	}
	defer file.Close()

	if header.Size > limit {
		response.Error(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds the %dMB limit", limit>>20))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "failed to read uploaded file")
		return
	}

	rep, err := h.loader.Load(header.Filename, data)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, rep)
}

// Sample returns the built-in sample report
func (h *ReportHandler) Sample(w http.ResponseWriter, r *http.Request) {
	response.OK(w, report.Sample())
}
