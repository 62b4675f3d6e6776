package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/isdelr/bill-tracker-be/internal/database"
	"github.com/isdelr/bill-tracker-be/internal/models"
	"github.com/isdelr/bill-tracker-be/internal/schema"
)

// testNow is the fixed "current time" for service tests: 2024-06-15 12:00 UTC.
var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	db         *database.DB
	users      *UserService
	sessions   *SessionService
	events     *EventService
	categories *CategoryService
	bills      *BillService
	removed    []string
}

func (e *testEnv) Remove(url string) error {
	e.removed = append(e.removed, url)
	return nil
}

// setClock points every service at now.
func (e *testEnv) setClock(now time.Time) {
	clock := func() time.Time { return now }
	e.users.now = clock
	e.sessions.now = clock
	e.events.now = clock
	e.categories.now = clock
	e.bills.now = clock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	env := &testEnv{db: db}
	env.users = NewUserService(db)
	env.users.hashCost = bcrypt.MinCost
	env.sessions = NewSessionService(db)
	env.events = NewEventService(db)
	env.categories = NewCategoryService(db, env.events)
	env.bills = NewBillService(db, env.events, env)
	env.setClock(testNow)
	return env
}

func (e *testEnv) mustUser(t *testing.T, email string) models.User {
	t.Helper()
	user, err := e.users.CreateLocalUser(context.Background(), schema.Registration{
		Email:     email,
		Password:  "secret123",
		FirstName: "Test",
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func (e *testEnv) mustBill(t *testing.T, userID string, in schema.BillInput) models.Bill {
	t.Helper()
	bill, err := e.bills.CreateBill(context.Background(), in, userID)
	if err != nil {
		t.Fatalf("create bill %q: %v", in.Name, err)
	}
	return bill
}

func ptr[T any](v T) *T { return &v }
