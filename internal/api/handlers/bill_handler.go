package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/isdelr/bill-tracker-be/internal/auth"
	"github.com/isdelr/bill-tracker-be/internal/billing"
	"github.com/isdelr/bill-tracker-be/internal/schema"
	"github.com/isdelr/bill-tracker-be/internal/services"
)

// uploadField is the multipart field carrying a bill image.
const uploadField = "billImage"

// BillImageStore saves and removes uploaded bill files.
type BillImageStore interface {
	SaveBillImage(filename string, size int64, file io.ReadSeeker) (string, error)
	Remove(url string) error
	MaxBytes() int64
}

// BillHandler handles HTTP requests related to bills.
type BillHandler struct {
	service services.BillServiceProvider
	images  BillImageStore
}

// NewBillHandler creates a new BillHandler.
func NewBillHandler(service services.BillServiceProvider, images BillImageStore) *BillHandler {
	return &BillHandler{service: service, images: images}
}

// GetAll lists the user's bills by due date. The search, category and status
// query parameters narrow the list.
func (h *BillHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := billing.BillFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Status:   q.Get("status"),
	}

	bills, err := h.service.GetAllBills(r.Context(), auth.UserID(r.Context()), filter)
	if err != nil {
		writeError(w, r, err, "", "Failed to fetch bills")
		return
	}
	writeJSON(w, http.StatusOK, bills)
}

// Get returns a single bill.
func (h *BillHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid bill ID")
		return
	}

	bill, err := h.service.GetBill(r.Context(), id, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, "Bill not found", "Failed to fetch bill")
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

// Create adds a bill.
func (h *BillHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in schema.BillInput
	if !decodeJSON(w, r, &in) {
		return
	}

	bill, err := h.service.CreateBill(r.Context(), in, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, "", "Failed to create bill")
		return
	}
	writeJSON(w, http.StatusCreated, bill)
}

// Update applies a partial change to a bill.
func (h *BillHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid bill ID")
		return
	}
	var patch schema.BillPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	bill, err := h.service.UpdateBill(r.Context(), id, patch, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, "Bill not found", "Failed to update bill")
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

// Delete removes a bill.
func (h *BillHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid bill ID")
		return
	}

	deleted, err := h.service.DeleteBill(r.Context(), id, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, "Bill not found", "Failed to delete bill")
		return
	}
	if !deleted {
		writeMessage(w, http.StatusNotFound, "Bill not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetStatus marks a bill paid or unpaid.
func (h *BillHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid bill ID")
		return
	}
	var payload schema.StatusChange
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := schema.Validate(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Status must be 'paid' or 'unpaid'")
		return
	}

	bill, err := h.service.SetStatus(r.Context(), id, payload.Status, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, "Bill not found", "Failed to update bill status")
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

// Upload stores an image or PDF for a bill.
func (h *BillHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid bill ID")
		return
	}
	userID := auth.UserID(r.Context())

	// Leave room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.images.MaxBytes()+maxBodyBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusBadRequest, services.ErrFileTooLarge.Error())
			return
		}
		writeMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if _, err := h.service.GetBill(r.Context(), id, userID); err != nil {
		writeError(w, r, err, "Bill not found", "Failed to upload image")
		return
	}

	imageURL, err := h.images.SaveBillImage(header.Filename, header.Size, file)
	if errors.Is(err, services.ErrFileTooLarge) || errors.Is(err, services.ErrUnsupportedFile) {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, r, err, "", "Failed to upload image")
		return
	}

	bill, err := h.service.AttachImage(r.Context(), id, imageURL, userID)
	if err != nil {
		if rmErr := h.images.Remove(imageURL); rmErr != nil {
			hlog.FromRequest(r).Warn().Err(rmErr).Str("url", imageURL).Msg("Failed to remove orphaned upload")
		}
		writeError(w, r, err, "Bill not found", "Failed to upload image")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Image uploaded successfully",
		"imageUrl": imageURL,
		"bill":     bill,
	})
}

// Dashboard returns the summary aggregates.
func (h *BillHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetDashboard(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, "", "Failed to fetch dashboard")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
