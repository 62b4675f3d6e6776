package schema

import (
	"encoding/json"
	"errors"
	"testing"
)

func ptr[T any](v T) *T { return &v }

func TestValidAmount(t *testing.T) {
	accepted := []string{"12.3", "12", "12.34", "0", "1200.00", "99999999.99"}
	rejected := []string{"12.345", "abc", "-5.00", "", "12.", ".5", "1,200.00", " 12", "100000000", "123456789.00"}

	for _, s := range accepted {
		if !ValidAmount(s) {
			t.Errorf("ValidAmount(%q) = false, want true", s)
		}
	}
	for _, s := range rejected {
		if ValidAmount(s) {
			t.Errorf("ValidAmount(%q) = true, want false", s)
		}
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *schema.Error, got %T: %v", err, err)
	}
	out := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestValidateBillInput(t *testing.T) {
	t.Run("valid with defaults", func(t *testing.T) {
		in := BillInput{Name: "Rent", Amount: "1200.00", DueDate: "2020-01-01"}
		if err := Validate(&in); err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		in.ApplyDefaults()
		if in.Status != "unpaid" {
			t.Errorf("default status = %q, want unpaid", in.Status)
		}
	})

	t.Run("reports every failing field", func(t *testing.T) {
		in := BillInput{Amount: "12.345", DueDate: "", Status: "late"}
		fields := fieldsOf(t, Validate(&in))
		for _, name := range []string{"name", "amount", "dueDate", "status"} {
			if _, ok := fields[name]; !ok {
				t.Errorf("expected error for field %q, got %v", name, fields)
			}
		}
		if got := fields["amount"]; got != "Amount must be a valid number with up to 2 decimal places" {
			t.Errorf("amount message = %q", got)
		}
		if got := fields["dueDate"]; got != "Due date is required" {
			t.Errorf("dueDate message = %q", got)
		}
	})

	t.Run("rejects amount beyond storage range", func(t *testing.T) {
		in := BillInput{Name: "Rent", Amount: "100000000", DueDate: "2024-06-01"}
		fields := fieldsOf(t, Validate(&in))
		if _, ok := fields["amount"]; !ok {
			t.Errorf("expected amount error, got %v", fields)
		}
	})

	t.Run("rejects unparseable due date", func(t *testing.T) {
		in := BillInput{Name: "Rent", Amount: "1", DueDate: "next tuesday"}
		fields := fieldsOf(t, Validate(&in))
		if _, ok := fields["dueDate"]; !ok {
			t.Errorf("expected dueDate error, got %v", fields)
		}
	})
}

func TestValidateBillPatch(t *testing.T) {
	t.Run("empty patch is valid", func(t *testing.T) {
		if err := Validate(&BillPatch{}); err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
	})

	t.Run("only supplied fields are checked", func(t *testing.T) {
		if err := Validate(&BillPatch{Amount: ptr("99.9")}); err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
	})

	t.Run("supplied empty name is rejected", func(t *testing.T) {
		fields := fieldsOf(t, Validate(&BillPatch{Name: ptr(""), Amount: ptr("1.234")}))
		if fields["name"] != "Name is required" {
			t.Errorf("name message = %q", fields["name"])
		}
		if _, ok := fields["amount"]; !ok {
			t.Error("expected amount error")
		}
	})
}

func TestValidateStatusChange(t *testing.T) {
	if err := Validate(&StatusChange{Status: "paid"}); err != nil {
		t.Errorf("paid rejected: %v", err)
	}
	if err := Validate(&StatusChange{Status: "overdue"}); err == nil {
		t.Error("overdue accepted, want rejection")
	}
}

func TestValidateCategory(t *testing.T) {
	in := CategoryInput{Name: "Streaming"}
	if err := Validate(&in); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	in.ApplyDefaults()
	if in.Icon != DefaultCategoryIcon || in.Color != DefaultCategoryColor {
		t.Errorf("defaults not applied: %+v", in)
	}

	fields := fieldsOf(t, Validate(&CategoryInput{Color: "blue"}))
	if _, ok := fields["name"]; !ok {
		t.Error("expected name error")
	}
	if fields["color"] != "Color must be a hex color" {
		t.Errorf("color message = %q", fields["color"])
	}
}

func TestValidateRegistration(t *testing.T) {
	r := Registration{Email: "  Ada@Example.COM ", Password: "secret1", FirstName: "Ada"}
	r.Normalize()
	if r.Email != "ada@example.com" {
		t.Errorf("normalized email = %q", r.Email)
	}
	if err := Validate(&r); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	fields := fieldsOf(t, Validate(&Registration{Email: "nope", Password: "123"}))
	if fields["email"] != "Please enter a valid email address" {
		t.Errorf("email message = %q", fields["email"])
	}
	if fields["password"] != "Password must be at least 6 characters" {
		t.Errorf("password message = %q", fields["password"])
	}
	if fields["firstName"] != "First name is required" {
		t.Errorf("firstName message = %q", fields["firstName"])
	}
}

func TestBillPatchExplicitNull(t *testing.T) {
	var patch BillPatch
	body := `{"name": null, "company": "ACME", "notes": null, "categoryId": null}`
	if err := json.Unmarshal([]byte(body), &patch); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if patch.Company == nil || *patch.Company != "ACME" {
		t.Errorf("Company = %v, want ACME", patch.Company)
	}
	for field, want := range map[string]bool{
		"notes":      true,
		"categoryId": true,
		"company":    false,
		"imageUrl":   false,
		"name":       false,
	} {
		if got := patch.Clears(field); got != want {
			t.Errorf("Clears(%q) = %v, want %v", field, got, want)
		}
	}
	if err := Validate(&patch); err != nil {
		t.Errorf("Validate: %v", err)
	}

	if err := json.Unmarshal([]byte(`{"notes": 5}`), &patch); err == nil {
		t.Error("Unmarshal accepted a number for notes")
	}
}
