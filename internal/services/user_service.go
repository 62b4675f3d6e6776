package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/isdelr/bill-tracker-be/internal/database"
	"github.com/isdelr/bill-tracker-be/internal/models"
	"github.com/isdelr/bill-tracker-be/internal/schema"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUser(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	UpsertUser(ctx context.Context, user models.User) (models.User, error)
	CreateLocalUser(ctx context.Context, reg schema.Registration) (models.User, error)
	ValidatePassword(ctx context.Context, userID, password string) (bool, error)
	AuthenticateUser(ctx context.Context, email, password string) (models.User, error)
}

// UserService provides business logic for user management.
type UserService struct {
	db       *database.DB
	now      func() time.Time
	hashCost int
}

// NewUserService creates a new UserService.
func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db, now: time.Now, hashCost: bcrypt.DefaultCost}
}

const userColumns = "id, email, first_name, last_name, profile_image_url, password, auth_provider, created_at, updated_at"

// GetUser retrieves a single user by their ID.
func (s *UserService) GetUser(ctx context.Context, id string) (models.User, error) {
	return getUser(ctx, s.db, "id", id)
}

// GetUserByEmail retrieves a single user by their email, including the password hash.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return getUser(ctx, s.db, "email", email)
}

// UpsertUser inserts a user or, when the id already exists, overwrites the
// supplied (non-empty) fields and refreshes updated_at. It mirrors an
// externally authenticated identity. New users get the default categories.
func (s *UserService) UpsertUser(ctx context.Context, user models.User) (models.User, error) {
	if user.ID == "" {
		return models.User{}, fmt.Errorf("upsert user: empty id")
	}
	if user.AuthProvider == "" {
		user.AuthProvider = models.ProviderGoogle
	}
	now := s.now().UTC()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return models.User{}, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id = ?", user.ID).Scan(&exists)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("failed to look up user: %w", err)
	}
	isNew := errors.Is(err, sql.ErrNoRows)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, email, first_name, last_name, profile_image_url, auth_provider, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			email = COALESCE(excluded.email, users.email),
			first_name = COALESCE(excluded.first_name, users.first_name),
			last_name = COALESCE(excluded.last_name, users.last_name),
			profile_image_url = COALESCE(excluded.profile_image_url, users.profile_image_url),
			auth_provider = excluded.auth_provider,
			updated_at = excluded.updated_at`,
		user.ID, nullString(user.Email), nullString(user.FirstName), nullString(user.LastName),
		nullString(user.ProfileImageURL), user.AuthProvider, now, now,
	)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to upsert user: %w", err)
	}

	if isNew {
		if err := seedDefaultCategories(ctx, tx, user.ID, now); err != nil {
			return models.User{}, err
		}
	}

	saved, err := getUser(ctx, tx, "id", user.ID)
	if err != nil {
		return models.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.User{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return saved, nil
}

// CreateLocalUser registers an email/password account. The password is stored
// as a bcrypt hash and the id is "local_<unix-ms>_<random>".
func (s *UserService) CreateLocalUser(ctx context.Context, reg schema.Registration) (models.User, error) {
	if _, err := s.GetUserByEmail(ctx, reg.Email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return models.User{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.hashCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	id := fmt.Sprintf("local_%d_%s", now.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:9])

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return models.User{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, email, first_name, last_name, password, auth_provider, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, reg.Email, reg.FirstName, nullString(reg.LastName), string(hashedPassword), models.ProviderLocal, now, now,
	)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	if err := seedDefaultCategories(ctx, tx, id, now); err != nil {
		return models.User{}, err
	}

	user, err := getUser(ctx, tx, "id", id)
	if err != nil {
		return models.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.User{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

// ValidatePassword reports whether password matches the user's stored hash.
// Accounts without a hash (external sign-in) never match.
func (s *UserService) ValidatePassword(ctx context.Context, userID, password string) (bool, error) {
	user, err := s.GetUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if user.PasswordHash == "" {
		return false, nil
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil, nil
}

// AuthenticateUser verifies a user's credentials.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}

	ok, err := s.ValidatePassword(ctx, user.ID, password)
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func getUser(ctx context.Context, q database.Querier, column, value string) (models.User, error) {
	row := q.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+column+" = ?", value)

	var (
		user                                       models.User
		email, first, last, image, password, provd sql.NullString
	)
	err := row.Scan(&user.ID, &email, &first, &last, &image, &password, &provd, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	user.Email = email.String
	user.FirstName = first.String
	user.LastName = last.String
	user.ProfileImageURL = image.String
	user.PasswordHash = password.String
	user.AuthProvider = provd.String
	return user, nil
}

// nullString maps "" to NULL so optional unique columns stay unconstrained.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
