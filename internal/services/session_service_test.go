package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.mustUser(t, "alice@example.com")

	session, err := env.sessions.CreateSession(ctx, user.ID, map[string]string{"email": user.Email}, time.Hour)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if !session.Expire.Equal(testNow.Add(time.Hour)) {
		t.Errorf("Expire = %v, want %v", session.Expire, testNow.Add(time.Hour))
	}

	got, err := env.sessions.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.UserID != user.ID || got.Data != `{"email":"alice@example.com"}` {
		t.Errorf("session = %+v", got)
	}

	if err := env.sessions.DeleteSession(ctx, session.ID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := env.sessions.GetSession(ctx, session.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSession after delete: err = %v, want ErrNotFound", err)
	}
	if err := env.sessions.DeleteSession(ctx, session.ID); err != nil {
		t.Errorf("deleting a missing session: %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.mustUser(t, "alice@example.com")

	short, err := env.sessions.CreateSession(ctx, user.ID, nil, time.Minute)
	if err != nil {
		t.Fatalf("CreateSession short: %v", err)
	}
	long, err := env.sessions.CreateSession(ctx, user.ID, nil, 24*time.Hour)
	if err != nil {
		t.Fatalf("CreateSession long: %v", err)
	}

	env.setClock(testNow.Add(time.Hour))
	if _, err := env.sessions.GetSession(ctx, short.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired session: err = %v, want ErrNotFound", err)
	}

	purged, err := env.sessions.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}
	if _, err := env.sessions.GetSession(ctx, long.ID); err != nil {
		t.Errorf("live session after purge: %v", err)
	}
}
