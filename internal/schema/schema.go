// Package schema defines the request shapes for bills, categories and
// accounts together with their validation rules. Every write path validates
// through Validate so the rules live in one place.
package schema

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/isdelr/bill-tracker-be/internal/models"
)

// Defaults applied to new categories.
const (
	DefaultCategoryIcon  = "📄"
	DefaultCategoryColor = "#6b7280"
)

// BillInput is the body of a bill create request.
type BillInput struct {
	Name       string  `json:"name" validate:"required,max=200"`
	Amount     string  `json:"amount" validate:"required,amount"`
	DueDate    string  `json:"dueDate" validate:"required,isodate"`
	CategoryID *int64  `json:"categoryId" validate:"omitnil,gt=0"`
	Category   *string `json:"category" validate:"omitnil,max=100"`
	Company    *string `json:"company" validate:"omitnil,max=200"`
	Notes      *string `json:"notes" validate:"omitnil,max=2000"`
	Status     string  `json:"status" validate:"omitempty,oneof=paid unpaid overdue"`
	Recurring  bool    `json:"recurring"`
	ImageURL   *string `json:"imageUrl" validate:"omitnil,max=2048"`
}

// ApplyDefaults fills the fields that have a default value.
func (in *BillInput) ApplyDefaults() {
	if in.Status == "" {
		in.Status = models.StatusUnpaid
	}
}

// BillPatch is the body of a bill update request. Nil fields are left alone,
// except that an explicit JSON null on one of the optional fields clears it.
type BillPatch struct {
	Name       *string `json:"name" validate:"omitnil,min=1,max=200"`
	Amount     *string `json:"amount" validate:"omitnil,amount"`
	DueDate    *string `json:"dueDate" validate:"omitnil,min=1,isodate"`
	CategoryID *int64  `json:"categoryId" validate:"omitnil,gt=0"`
	Category   *string `json:"category" validate:"omitnil,max=100"`
	Company    *string `json:"company" validate:"omitnil,max=200"`
	Notes      *string `json:"notes" validate:"omitnil,max=2000"`
	Status     *string `json:"status" validate:"omitnil,oneof=paid unpaid overdue"`
	Recurring  *bool   `json:"recurring"`
	ImageURL   *string `json:"imageUrl" validate:"omitnil,max=2048"`

	cleared map[string]bool
}

// Fields a patch may clear with an explicit null.
var clearableBillFields = []string{"categoryId", "category", "company", "notes", "imageUrl"}

// UnmarshalJSON decodes the patch and remembers which clearable fields were
// sent as null.
func (p *BillPatch) UnmarshalJSON(data []byte) error {
	type plain BillPatch
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = BillPatch(decoded)
	for _, field := range clearableBillFields {
		if v, ok := raw[field]; ok && bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			p.Clear(field)
		}
	}
	return nil
}

// Clear marks field (by JSON name) to be set to null.
func (p *BillPatch) Clear(field string) {
	if p.cleared == nil {
		p.cleared = make(map[string]bool)
	}
	p.cleared[field] = true
}

// Clears reports whether the patch sets field (by JSON name) to null.
func (p BillPatch) Clears(field string) bool {
	return p.cleared[field]
}

// StatusChange is the body of PATCH /bills/{id}/status.
type StatusChange struct {
	Status string `json:"status" validate:"required,oneof=paid unpaid"`
}

// CategoryInput is the body of a category create request.
type CategoryInput struct {
	Name  string `json:"name" validate:"required,max=100"`
	Icon  string `json:"icon" validate:"omitempty,max=32"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// ApplyDefaults fills the fields that have a default value.
func (in *CategoryInput) ApplyDefaults() {
	if in.Icon == "" {
		in.Icon = DefaultCategoryIcon
	}
	if in.Color == "" {
		in.Color = DefaultCategoryColor
	}
}

// CategoryPatch is the body of a category update request.
type CategoryPatch struct {
	Name  *string `json:"name" validate:"omitnil,min=1,max=100"`
	Icon  *string `json:"icon" validate:"omitnil,min=1,max=32"`
	Color *string `json:"color" validate:"omitnil,hexcolor"`
}

// Registration is the body of a local sign-up request.
type Registration struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"omitempty,max=100"`
}

// Normalize trims the email and lowercases it.
func (r *Registration) Normalize() {
	r.Email = normalizeEmail(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
}

// Login is the body of a local login request.
type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Normalize trims the email and lowercases it.
func (l *Login) Normalize() {
	l.Email = normalizeEmail(l.Email)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
