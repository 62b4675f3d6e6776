package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/bill-tracker-be/internal/billing"
	"github.com/isdelr/bill-tracker-be/internal/database"
	"github.com/isdelr/bill-tracker-be/internal/metrics"
	"github.com/isdelr/bill-tracker-be/internal/models"
	"github.com/isdelr/bill-tracker-be/internal/schema"
)

// BillServiceProvider defines the interface for bill services.
type BillServiceProvider interface {
	GetBill(ctx context.Context, id int64, userID string) (models.Bill, error)
	GetAllBills(ctx context.Context, userID string, filter billing.BillFilter) ([]models.Bill, error)
	GetDashboard(ctx context.Context, userID string) (billing.Summary, error)
	CreateBill(ctx context.Context, in schema.BillInput, userID string) (models.Bill, error)
	UpdateBill(ctx context.Context, id int64, patch schema.BillPatch, userID string) (models.Bill, error)
	SetStatus(ctx context.Context, id int64, status, userID string) (models.Bill, error)
	AttachImage(ctx context.Context, id int64, imageURL, userID string) (models.Bill, error)
	DeleteBill(ctx context.Context, id int64, userID string) (bool, error)
	RefreshOverdue(ctx context.Context) (int, error)
}

// ImageRemover deletes a stored bill image by its public URL.
type ImageRemover interface {
	Remove(url string) error
}

// BillService provides business logic for bill management. Every statement
// carries the owner in its WHERE clause, so a bill owned by someone else is
// indistinguishable from a missing one and is never touched.
type BillService struct {
	db     *database.DB
	events EventServiceProvider
	images ImageRemover
	now    func() time.Time
}

// NewBillService creates a new BillService. images may be nil.
func NewBillService(db *database.DB, events EventServiceProvider, images ImageRemover) *BillService {
	return &BillService{db: db, events: events, images: images, now: time.Now}
}

const billColumns = "id, user_id, name, amount, due_date, category_id, category, company, notes, status, recurring, image_url, created_at, updated_at"

func (s *BillService) today() time.Time {
	return billing.Today(s.now())
}

// GetBill retrieves one of the user's bills with its display status.
func (s *BillService) GetBill(ctx context.Context, id int64, userID string) (models.Bill, error) {
	bill, err := getBill(ctx, s.db, id, userID)
	if err != nil {
		return models.Bill{}, err
	}
	bill.DisplayStatus = billing.DisplayStatus(bill.Status, bill.DueDate, s.today())
	return bill, nil
}

// GetAllBills returns the user's bills in due date order, narrowed by filter.
func (s *BillService) GetAllBills(ctx context.Context, userID string, filter billing.BillFilter) ([]models.Bill, error) {
	bills, err := s.listBills(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := s.today()
	billing.Decorate(bills, today)
	return billing.Filter(bills, filter, today), nil
}

// GetDashboard computes the summary over all of the user's bills.
func (s *BillService) GetDashboard(ctx context.Context, userID string) (billing.Summary, error) {
	bills, err := s.listBills(ctx, userID)
	if err != nil {
		return billing.Summary{}, err
	}
	return billing.Summarize(bills, s.today()), nil
}

func (s *BillService) listBills(ctx context.Context, userID string) ([]models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+billColumns+" FROM bills WHERE user_id = ? ORDER BY due_date ASC, id ASC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bills: %w", err)
	}
	defer rows.Close()

	bills := []models.Bill{}
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	return bills, rows.Err()
}

// CreateBill stores a new bill. An unpaid bill already past due is stored as
// overdue. A categoryId must name one of the user's own categories.
func (s *BillService) CreateBill(ctx context.Context, in schema.BillInput, userID string) (models.Bill, error) {
	in.ApplyDefaults()
	now := s.now()
	today := billing.Today(now)
	status := billing.PersistedStatus(in.Status, in.DueDate, today)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return models.Bill{}, err
	}
	defer tx.Rollback()

	if err := requireCategory(ctx, tx, in.CategoryID, userID); err != nil {
		return models.Bill{}, err
	}

	row := tx.QueryRowContext(ctx, `
		INSERT INTO bills (user_id, name, amount, due_date, category_id, category, company, notes, status, recurring, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+billColumns,
		userID, in.Name, in.Amount, in.DueDate, in.CategoryID, in.Category, in.Company, in.Notes,
		status, in.Recurring, in.ImageURL, now.UTC(), now.UTC(),
	)
	bill, err := scanBill(row)
	if err != nil {
		return models.Bill{}, fmt.Errorf("failed to create bill: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Bill{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.BillMutations.WithLabelValues("create").Inc()
	s.record(ctx, userID, "bill.create", "info", fmt.Sprintf("Bill '%s' created.", bill.Name), bill.ID)
	bill.DisplayStatus = billing.DisplayStatus(bill.Status, bill.DueDate, today)
	return bill, nil
}

// UpdateBill applies the supplied fields of patch to one of the user's bills.
// When the due date or status changes, the stored status is derived again
// from the merged values. An image the bill stops pointing at is removed.
func (s *BillService) UpdateBill(ctx context.Context, id int64, patch schema.BillPatch, userID string) (models.Bill, error) {
	bill, err := s.applyPatch(ctx, id, patch, userID)
	if err != nil {
		return models.Bill{}, err
	}
	metrics.BillMutations.WithLabelValues("update").Inc()
	s.record(ctx, userID, "bill.update", "info", fmt.Sprintf("Bill '%s' updated.", bill.Name), bill.ID)
	return bill, nil
}

// SetStatus marks one of the user's bills paid or unpaid. Marking a past due
// bill unpaid stores it as overdue.
func (s *BillService) SetStatus(ctx context.Context, id int64, status, userID string) (models.Bill, error) {
	bill, err := s.applyPatch(ctx, id, schema.BillPatch{Status: &status}, userID)
	if err != nil {
		return models.Bill{}, err
	}
	metrics.BillMutations.WithLabelValues("status").Inc()
	if status == models.StatusPaid {
		s.record(ctx, userID, "bill.paid", "info", fmt.Sprintf("Bill '%s' marked as paid.", bill.Name), bill.ID)
	} else {
		s.record(ctx, userID, "bill.unpaid", "info", fmt.Sprintf("Bill '%s' marked as unpaid.", bill.Name), bill.ID)
	}
	return bill, nil
}

func (s *BillService) applyPatch(ctx context.Context, id int64, patch schema.BillPatch, userID string) (models.Bill, error) {
	now := s.now()
	today := billing.Today(now)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return models.Bill{}, err
	}
	defer tx.Rollback()

	bill, err := getBill(ctx, tx, id, userID)
	if err != nil {
		return models.Bill{}, err
	}
	previousImage := bill.ImageURL
	if err := requireCategory(ctx, tx, patch.CategoryID, userID); err != nil {
		return models.Bill{}, err
	}

	if patch.Name != nil {
		bill.Name = *patch.Name
	}
	if patch.Amount != nil {
		bill.Amount = *patch.Amount
	}
	if patch.DueDate != nil {
		bill.DueDate = *patch.DueDate
	}
	if patch.CategoryID != nil {
		bill.CategoryID = patch.CategoryID
	}
	if patch.Category != nil {
		bill.Category = patch.Category
	}
	if patch.Company != nil {
		bill.Company = patch.Company
	}
	if patch.Notes != nil {
		bill.Notes = patch.Notes
	}
	if patch.Recurring != nil {
		bill.Recurring = *patch.Recurring
	}
	if patch.ImageURL != nil {
		bill.ImageURL = patch.ImageURL
	}
	if patch.Clears("categoryId") {
		bill.CategoryID = nil
	}
	if patch.Clears("category") {
		bill.Category = nil
	}
	if patch.Clears("company") {
		bill.Company = nil
	}
	if patch.Clears("notes") {
		bill.Notes = nil
	}
	if patch.Clears("imageUrl") {
		bill.ImageURL = nil
	}
	if patch.Status != nil || patch.DueDate != nil {
		status := bill.Status
		if patch.Status != nil {
			status = *patch.Status
		}
		bill.Status = billing.PersistedStatus(status, bill.DueDate, today)
	}

	row := tx.QueryRowContext(ctx, `
		UPDATE bills SET name = ?, amount = ?, due_date = ?, category_id = ?, category = ?, company = ?,
			notes = ?, status = ?, recurring = ?, image_url = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
		RETURNING `+billColumns,
		bill.Name, bill.Amount, bill.DueDate, bill.CategoryID, bill.Category, bill.Company,
		bill.Notes, bill.Status, bill.Recurring, bill.ImageURL, now.UTC(),
		id, userID,
	)
	updated, err := scanBill(row)
	if err != nil {
		return models.Bill{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Bill{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	if previousImage != nil && (updated.ImageURL == nil || *updated.ImageURL != *previousImage) {
		s.removeImage(*previousImage)
	}

	updated.DisplayStatus = billing.DisplayStatus(updated.Status, updated.DueDate, today)
	return updated, nil
}

// AttachImage points a bill at an uploaded file, removing the file it
// previously pointed at.
func (s *BillService) AttachImage(ctx context.Context, id int64, imageURL, userID string) (models.Bill, error) {
	previous, err := getBill(ctx, s.db, id, userID)
	if err != nil {
		return models.Bill{}, err
	}

	row := s.db.QueryRowContext(ctx,
		"UPDATE bills SET image_url = ?, updated_at = ? WHERE id = ? AND user_id = ? RETURNING "+billColumns,
		imageURL, s.now().UTC(), id, userID,
	)
	bill, err := scanBill(row)
	if err != nil {
		return models.Bill{}, err
	}

	if previous.ImageURL != nil && *previous.ImageURL != imageURL {
		s.removeImage(*previous.ImageURL)
	}
	metrics.BillMutations.WithLabelValues("image").Inc()
	s.record(ctx, userID, "bill.image", "info", fmt.Sprintf("Image attached to bill '%s'.", bill.Name), bill.ID)
	bill.DisplayStatus = billing.DisplayStatus(bill.Status, bill.DueDate, s.today())
	return bill, nil
}

// DeleteBill removes one of the user's bills and its image. It reports false
// when the user owns no such bill.
func (s *BillService) DeleteBill(ctx context.Context, id int64, userID string) (bool, error) {
	var (
		name     string
		imageURL sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		"DELETE FROM bills WHERE id = ? AND user_id = ? RETURNING name, image_url", id, userID,
	).Scan(&name, &imageURL)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to delete bill: %w", err)
	}

	if imageURL.Valid {
		s.removeImage(imageURL.String)
	}
	metrics.BillMutations.WithLabelValues("delete").Inc()
	s.record(ctx, userID, "bill.delete", "warn", fmt.Sprintf("Bill '%s' was deleted.", name), id)
	return true, nil
}

// RefreshOverdue stores overdue on every unpaid bill whose due date has
// passed, for all users, and returns how many bills changed.
func (s *BillService) RefreshOverdue(ctx context.Context) (int, error) {
	now := s.now()
	today := billing.Today(now)

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, name, due_date FROM bills WHERE status = ?", models.StatusUnpaid)
	if err != nil {
		return 0, fmt.Errorf("failed to get unpaid bills: %w", err)
	}
	type due struct {
		id           int64
		userID, name string
	}
	var stale []due
	for rows.Next() {
		var (
			d       due
			dueDate string
		)
		if err := rows.Scan(&d.id, &d.userID, &d.name, &dueDate); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan bill: %w", err)
		}
		if billing.PersistedStatus(models.StatusUnpaid, dueDate, today) == models.StatusOverdue {
			stale = append(stale, d)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	changed := 0
	for _, d := range stale {
		res, err := s.db.ExecContext(ctx,
			"UPDATE bills SET status = ?, updated_at = ? WHERE id = ? AND user_id = ? AND status = ?",
			models.StatusOverdue, now.UTC(), d.id, d.userID, models.StatusUnpaid,
		)
		if err != nil {
			return changed, fmt.Errorf("failed to mark bill %d overdue: %w", d.id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}
		changed++
		s.record(ctx, d.userID, "bill.overdue", "warn", fmt.Sprintf("Bill '%s' is overdue.", d.name), d.id)
	}
	metrics.OverdueSwept.Add(float64(changed))
	return changed, nil
}

func (s *BillService) record(ctx context.Context, userID, eventType, level, message string, billID int64) {
	recordEvent(ctx, s.events, userID, eventType, level, message, &billID)
}

func (s *BillService) removeImage(url string) {
	if s.images == nil {
		return
	}
	if err := s.images.Remove(url); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Failed to remove bill image")
	}
}

// requireCategory checks that a supplied category id belongs to the user.
func requireCategory(ctx context.Context, q database.Querier, categoryID *int64, userID string) error {
	if categoryID == nil {
		return nil
	}
	var one int
	err := q.QueryRowContext(ctx,
		"SELECT 1 FROM categories WHERE id = ? AND user_id = ?", *categoryID, userID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Invalid("categoryId", "Category not found")
	}
	if err != nil {
		return fmt.Errorf("failed to look up category: %w", err)
	}
	return nil
}

func getBill(ctx context.Context, q database.Querier, id int64, userID string) (models.Bill, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+billColumns+" FROM bills WHERE id = ? AND user_id = ?", id, userID)
	return scanBill(row)
}

func scanBill(scanner interface{ Scan(...any) error }) (models.Bill, error) {
	var bill models.Bill
	err := scanner.Scan(
		&bill.ID,
		&bill.UserID,
		&bill.Name,
		&bill.Amount,
		&bill.DueDate,
		&bill.CategoryID,
		&bill.Category,
		&bill.Company,
		&bill.Notes,
		&bill.Status,
		&bill.Recurring,
		&bill.ImageURL,
		&bill.CreatedAt,
		&bill.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Bill{}, ErrNotFound
	}
	if err != nil {
		return models.Bill{}, fmt.Errorf("failed to scan bill: %w", err)
	}
	return bill, nil
}
