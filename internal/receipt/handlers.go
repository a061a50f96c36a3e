package receipt

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/receipt-organizer/internal/scanning"
)

// maxUploadSize covers high-resolution phone photos
const maxUploadSize = int64(50 << 20)

// uploadResponse is the created receipt, plus a warning when it could not be saved to disk
type uploadResponse struct {
	Receipt
	Warning string `json:"warning,omitempty"`
}

type categoryTotalResponse struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

type summaryResponse struct {
	TotalSpending     float64                 `json:"totalSpending"`
	TotalTax          float64                 `json:"totalTax"`
	ReceiptCount      int                     `json:"receiptCount"`
	AveragePerReceipt float64                 `json:"averagePerReceipt"`
	ByCategory        []categoryTotalResponse `json:"byCategory"`
}

const persistenceWarning = "Saved for this session only: receipts could not be written to disk."

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// jsonError writes {"error": message} with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// writeJSON encodes v with the given status
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// contentTypeFor guesses the MIME type from a filename when the client sent none
func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// handleListReceipts returns all receipts, newest first
func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.ListReceipts())
}

// handleUploadReceipt handles receipt upload
func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "File is too large. Maximum size is 50MB. Please compress or resize your image.", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		jsonError(w, "No file was selected. Please choose a file to upload.", http.StatusBadRequest)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFor(header.Filename)
	}

	rec, err := s.service.ProcessReceipt(r.Context(), header.Filename, data, contentType)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, uploadResponse{Receipt: *rec})
	case errors.Is(err, ErrPersistenceUnavailable) && rec != nil:
		writeJSON(w, http.StatusCreated, uploadResponse{Receipt: *rec, Warning: persistenceWarning})
	case errors.Is(err, ErrUploadInProgress):
		jsonError(w, "Another receipt is still being analyzed. Please wait for it to finish.", http.StatusConflict)
	case errors.Is(err, ErrMissingField), errors.Is(err, ErrInvalidNumber):
		jsonError(w, "Could not read the receipt ("+err.Error()+"). Please try another photo.", http.StatusUnprocessableEntity)
	default:
		slog.Error("Error processing receipt", "filename", header.Filename, "error", err)
		jsonError(w, "Failed to process receipt. Please try again.", http.StatusBadGateway)
	}
}

// handleDeleteReceipt deletes a receipt
func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.DeleteReceipt(id); err != nil {
		if errors.Is(err, ErrPersistenceUnavailable) {
			writeJSON(w, http.StatusOK, map[string]string{"warning": persistenceWarning})
			return
		}
		slog.Error("Error deleting receipt", "id", id, "error", err)
		corsError(w, "Error deleting receipt", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleGetImage serves a stored receipt image
func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.GetReceiptImage(r.PathValue("name"))
	if err != nil {
		corsError(w, "Image not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Write(data)
}

// handleSummary returns dashboard aggregates
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary := s.service.Summary()

	resp := summaryResponse{
		TotalSpending:     summary.TotalSpending.InexactFloat64(),
		TotalTax:          summary.TotalTax.InexactFloat64(),
		ReceiptCount:      summary.ReceiptCount,
		AveragePerReceipt: summary.AveragePerReceipt.InexactFloat64(),
		ByCategory:        make([]categoryTotalResponse, 0, len(summary.ByCategory)),
	}
	for _, c := range summary.ByCategory {
		resp.ByCategory = append(resp.ByCategory, categoryTotalResponse{
			Category: c.Category,
			Total:    c.Total.InexactFloat64(),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleCategories returns the suggested category set
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scanning.SuggestedCategories)
}

// handleExport downloads all receipts as an XLSX workbook
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.ExportXLSX()
	if err != nil {
		slog.Error("Error exporting receipts", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="receipts.xlsx"`)
	w.Write(data)
}
