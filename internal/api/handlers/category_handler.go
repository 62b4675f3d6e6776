package handlers

import (
	"errors"
	"net/http"

	"github.com/isdelr/bill-tracker-be/internal/auth"
	"github.com/isdelr/bill-tracker-be/internal/schema"
	"github.com/isdelr/bill-tracker-be/internal/services"
)

// CategoryHandler handles HTTP requests related to categories.
type CategoryHandler struct {
	service services.CategoryServiceProvider
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service services.CategoryServiceProvider) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// GetAll lists the user's categories by name.
func (h *CategoryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.GetUserCategories(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, "", "Failed to fetch categories")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// Create adds a category.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in schema.CategoryInput
	if !decodeJSON(w, r, &in) {
		return
	}

	category, err := h.service.CreateCategory(r.Context(), in, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, "", "Failed to create category")
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// Update applies a partial change to a category.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid category ID")
		return
	}
	var patch schema.CategoryPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), id, patch, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, "Category not found", "Failed to update category")
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// Delete removes a category the user created.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	deleted, err := h.service.DeleteCategory(r.Context(), id, auth.UserID(r.Context()))
	if errors.Is(err, services.ErrDefaultCategory) {
		writeMessage(w, http.StatusBadRequest, "Default categories cannot be deleted")
		return
	}
	if err != nil {
		writeError(w, r, err, "Category not found", "Failed to delete category")
		return
	}
	if !deleted {
		writeMessage(w, http.StatusNotFound, "Category not found")
		return
	}
	writeMessage(w, http.StatusOK, "Category deleted successfully")
}
