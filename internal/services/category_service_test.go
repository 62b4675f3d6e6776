package services

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/isdelr/bill-tracker-be/internal/schema"
)

func TestNewUserGetsDefaultCategories(t *testing.T) {
	env := newTestEnv(t)
	user := env.mustUser(t, "alice@example.com")

	categories, err := env.categories.GetUserCategories(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserCategories: %v", err)
	}
	if len(categories) != len(defaultCategories) {
		t.Fatalf("got %d categories, want %d", len(categories), len(defaultCategories))
	}
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
		if !c.IsDefault {
			t.Errorf("category %q IsDefault = false", c.Name)
		}
		if c.UserID != user.ID {
			t.Errorf("category %q UserID = %q", c.Name, c.UserID)
		}
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("categories not ordered by name: %v", names)
	}
}

func TestCategoryCRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.mustUser(t, "alice@example.com")
	bob := env.mustUser(t, "bob@example.com")

	created, err := env.categories.CreateCategory(ctx, schema.CategoryInput{Name: "Pets"}, alice.ID)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if created.Icon != schema.DefaultCategoryIcon || created.Color != schema.DefaultCategoryColor {
		t.Errorf("defaults not applied: icon=%q color=%q", created.Icon, created.Color)
	}
	if created.IsDefault {
		t.Error("user category marked default")
	}

	updated, err := env.categories.UpdateCategory(ctx, created.ID, schema.CategoryPatch{Color: ptr("#123abc")}, alice.ID)
	if err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	if updated.Color != "#123abc" || updated.Name != "Pets" {
		t.Errorf("updated = %+v", updated)
	}

	if _, err := env.categories.UpdateCategory(ctx, created.ID, schema.CategoryPatch{Name: ptr("Mine")}, bob.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateCategory as other user: err = %v, want ErrNotFound", err)
	}
	deleted, err := env.categories.DeleteCategory(ctx, created.ID, bob.ID)
	if err != nil || deleted {
		t.Errorf("DeleteCategory as other user = %v, %v; want false, nil", deleted, err)
	}

	got, err := env.categories.GetCategory(ctx, created.ID, alice.ID)
	if err != nil || got.Name != "Pets" {
		t.Fatalf("GetCategory after foreign writes = %+v, %v", got, err)
	}

	deleted, err = env.categories.DeleteCategory(ctx, created.ID, alice.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteCategory = %v, %v", deleted, err)
	}
	deleted, err = env.categories.DeleteCategory(ctx, created.ID, alice.ID)
	if err != nil || deleted {
		t.Errorf("second DeleteCategory = %v, %v; want false, nil", deleted, err)
	}
}

func TestDeleteDefaultCategoryRefused(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.mustUser(t, "alice@example.com")

	categories, err := env.categories.GetUserCategories(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserCategories: %v", err)
	}
	if _, err := env.categories.DeleteCategory(ctx, categories[0].ID, user.ID); !errors.Is(err, ErrDefaultCategory) {
		t.Errorf("err = %v, want ErrDefaultCategory", err)
	}
}

func TestDeleteCategoryUnlinksBills(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.mustUser(t, "alice@example.com")

	category, err := env.categories.CreateCategory(ctx, schema.CategoryInput{Name: "Pets", Icon: "🐶", Color: "#ff8800"}, user.ID)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	bill := env.mustBill(t, user.ID, schema.BillInput{
		Name:       "Vet",
		Amount:     "150.00",
		DueDate:    "2024-06-25",
		CategoryID: &category.ID,
	})

	if _, err := env.categories.DeleteCategory(ctx, category.ID, user.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	got, err := env.bills.GetBill(ctx, bill.ID, user.ID)
	if err != nil {
		t.Fatalf("GetBill: %v", err)
	}
	if got.CategoryID != nil {
		t.Errorf("CategoryID = %d, want nil", *got.CategoryID)
	}
}
