package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isdelr/bill-tracker-be/internal/database"
	"github.com/isdelr/bill-tracker-be/internal/models"
	"github.com/isdelr/bill-tracker-be/internal/schema"
)

// defaultCategories are seeded for every new user and cannot be deleted.
var defaultCategories = []schema.CategoryInput{
	{Name: "Utilities", Icon: "⚡", Color: "#f59e0b"},
	{Name: "Rent", Icon: "🏠", Color: "#3b82f6"},
	{Name: "Credit Cards", Icon: "💳", Color: "#ef4444"},
	{Name: "Insurance", Icon: "🛡️", Color: "#10b981"},
	{Name: "Subscriptions", Icon: "📱", Color: "#8b5cf6"},
	{Name: "Other", Icon: "📄", Color: "#6b7280"},
}

// CategoryServiceProvider defines the interface for category services.
type CategoryServiceProvider interface {
	GetUserCategories(ctx context.Context, userID string) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64, userID string) (models.Category, error)
	CreateCategory(ctx context.Context, in schema.CategoryInput, userID string) (models.Category, error)
	UpdateCategory(ctx context.Context, id int64, patch schema.CategoryPatch, userID string) (models.Category, error)
	DeleteCategory(ctx context.Context, id int64, userID string) (bool, error)
}

// CategoryService provides business logic for category management. Every
// query is filtered by the owning user.
type CategoryService struct {
	db     *database.DB
	events EventServiceProvider
	now    func() time.Time
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(db *database.DB, events EventServiceProvider) *CategoryService {
	return &CategoryService{db: db, events: events, now: time.Now}
}

const categoryColumns = "id, user_id, name, icon, color, is_default, created_at"

// GetUserCategories returns the user's categories ordered by name.
func (s *CategoryService) GetUserCategories(ctx context.Context, userID string) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE user_id = ? ORDER BY name ASC, id ASC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// GetCategory retrieves one of the user's categories.
func (s *CategoryService) GetCategory(ctx context.Context, id int64, userID string) (models.Category, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ? AND user_id = ?", id, userID)
	return scanCategory(row)
}

// CreateCategory inserts a new, non-default category for the user.
func (s *CategoryService) CreateCategory(ctx context.Context, in schema.CategoryInput, userID string) (models.Category, error) {
	in.ApplyDefaults()
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (user_id, name, icon, color, is_default, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+categoryColumns,
		userID, in.Name, in.Icon, in.Color, false, s.now().UTC(),
	)
	category, err := scanCategory(row)
	if err != nil {
		return models.Category{}, fmt.Errorf("failed to create category: %w", err)
	}
	s.record(ctx, userID, "category.create", "info", fmt.Sprintf("Category '%s' created.", category.Name))
	return category, nil
}

// UpdateCategory applies the supplied fields of patch. A category the user
// does not own reads as ErrNotFound.
func (s *CategoryService) UpdateCategory(ctx context.Context, id int64, patch schema.CategoryPatch, userID string) (models.Category, error) {
	var (
		sets []string
		args []any
	)
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Icon != nil {
		sets = append(sets, "icon = ?")
		args = append(args, *patch.Icon)
	}
	if patch.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, *patch.Color)
	}
	if len(sets) == 0 {
		return s.GetCategory(ctx, id, userID)
	}

	args = append(args, id, userID)
	row := s.db.QueryRowContext(ctx,
		"UPDATE categories SET "+strings.Join(sets, ", ")+" WHERE id = ? AND user_id = ? RETURNING "+categoryColumns,
		args...,
	)
	category, err := scanCategory(row)
	if err != nil {
		return models.Category{}, err
	}
	s.record(ctx, userID, "category.update", "info", fmt.Sprintf("Category '%s' updated.", category.Name))
	return category, nil
}

// DeleteCategory removes a user-created category and unlinks its bills. It
// reports false when the user owns no such category.
func (s *CategoryService) DeleteCategory(ctx context.Context, id int64, userID string) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	category, err := scanCategory(tx.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ? AND user_id = ?", id, userID))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if category.IsDefault {
		return false, ErrDefaultCategory
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE bills SET category_id = NULL WHERE category_id = ? AND user_id = ?", id, userID); err != nil {
		return false, fmt.Errorf("failed to unlink bills: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		"DELETE FROM categories WHERE id = ? AND user_id = ? AND is_default = ?", id, userID, false)
	if err != nil {
		return false, fmt.Errorf("failed to delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if n > 0 {
		s.record(ctx, userID, "category.delete", "warn", fmt.Sprintf("Category '%s' was deleted.", category.Name))
	}
	return n > 0, nil
}

func (s *CategoryService) record(ctx context.Context, userID, eventType, level, message string) {
	recordEvent(ctx, s.events, userID, eventType, level, message, nil)
}

// seedDefaultCategories inserts the default set unless the user already has one.
func seedDefaultCategories(ctx context.Context, q database.Querier, userID string, now time.Time) error {
	var count int
	if err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE user_id = ? AND is_default = ?", userID, true,
	).Scan(&count); err != nil {
		return fmt.Errorf("failed to count default categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, c := range defaultCategories {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO categories (user_id, name, icon, color, is_default, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			userID, c.Name, c.Icon, c.Color, true, now,
		); err != nil {
			return fmt.Errorf("failed to seed category %q: %w", c.Name, err)
		}
	}
	return nil
}

func scanCategory(scanner interface{ Scan(...any) error }) (models.Category, error) {
	var category models.Category
	err := scanner.Scan(
		&category.ID,
		&category.UserID,
		&category.Name,
		&category.Icon,
		&category.Color,
		&category.IsDefault,
		&category.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, ErrNotFound
	}
	if err != nil {
		return models.Category{}, fmt.Errorf("failed to scan category: %w", err)
	}
	return category, nil
}
