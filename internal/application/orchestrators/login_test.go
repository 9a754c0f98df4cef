package orchestrators

import (
	"context"
	"errors"
	"sync"
	"testing"

	"courier/internal/domain/auth"
)

// fakeSnapshotStore is an in-memory snapshot store.
type fakeSnapshotStore struct {
	mu   sync.Mutex
	snap *auth.Snapshot
}

func (s *fakeSnapshotStore) Save(_ context.Context, snap auth.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = &snap
	return nil
}

func (s *fakeSnapshotStore) Latest(_ context.Context) (auth.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return auth.Snapshot{}, auth.ErrNoSession
	}
	return *s.snap, nil
}

func (s *fakeSnapshotStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = nil
	return nil
}

// TestExecuteLogin tests the online login path.
func TestExecuteLogin(t *testing.T) {
	store := &fakeSnapshotStore{}
	snap, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "courier@example.com",
		Password: "hunter2hunter2",
	}, LoginDeps{AuthStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Token == "" {
		t.Error("expected a minted token")
	}
	if snap.ID != auth.SnapshotID {
		t.Errorf("id = %q, want %q", snap.ID, auth.SnapshotID)
	}
	if snap.Name != "courier" {
		t.Errorf("name = %q, want email local part fallback", snap.Name)
	}
	if snap.PasswordHash == "" || snap.PasswordHash == "hunter2hunter2" {
		t.Error("expected a bcrypt hash, not empty or plaintext")
	}

	stored, err := store.Latest(context.Background())
	if err != nil {
		t.Fatalf("snapshot not persisted: %v", err)
	}
	if stored.Token != snap.Token {
		t.Error("persisted snapshot must match the returned one")
	}
}

// TestExecuteLogin_Invalid tests credential validation.
func TestExecuteLogin_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input LoginInput
	}{
		{"empty email", LoginInput{Password: "hunter2hunter2"}},
		{"no at sign", LoginInput{Email: "courier", Password: "hunter2hunter2"}},
		{"short password", LoginInput{Email: "c@x.com", Password: "short"}},
		{"empty password", LoginInput{Email: "c@x.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeSnapshotStore{}
			if _, err := ExecuteLogin(context.Background(), tt.input, LoginDeps{AuthStore: store}); err == nil {
				t.Error("expected error")
			}
			if store.snap != nil {
				t.Error("invalid login must not persist a snapshot")
			}
		})
	}
}

// TestExecuteOfflineLogin tests re-authentication against the stored
// snapshot with no network.
func TestExecuteOfflineLogin(t *testing.T) {
	store := &fakeSnapshotStore{}
	if _, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "courier@example.com",
		Password: "hunter2hunter2",
	}, LoginDeps{AuthStore: store}); err != nil {
		t.Fatalf("setup login failed: %v", err)
	}

	t.Run("matching credentials", func(t *testing.T) {
		snap, err := ExecuteOfflineLogin(context.Background(), LoginInput{
			Email:    "Courier@Example.COM", // case-insensitive match
			Password: "hunter2hunter2",
		}, LoginDeps{AuthStore: store})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if snap.Email != "courier@example.com" {
			t.Errorf("email = %q", snap.Email)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := ExecuteOfflineLogin(context.Background(), LoginInput{
			Email:    "courier@example.com",
			Password: "wrong password",
		}, LoginDeps{AuthStore: store})
		if !errors.Is(err, auth.ErrWrongPassword) {
			t.Errorf("expected ErrWrongPassword, got %v", err)
		}
	})

	t.Run("different email reports wrong password", func(t *testing.T) {
		_, err := ExecuteOfflineLogin(context.Background(), LoginInput{
			Email:    "other@example.com",
			Password: "hunter2hunter2",
		}, LoginDeps{AuthStore: store})
		if !errors.Is(err, auth.ErrWrongPassword) {
			t.Errorf("expected ErrWrongPassword, got %v", err)
		}
	})

	t.Run("no stored session", func(t *testing.T) {
		_, err := ExecuteOfflineLogin(context.Background(), LoginInput{
			Email:    "courier@example.com",
			Password: "hunter2hunter2",
		}, LoginDeps{AuthStore: &fakeSnapshotStore{}})
		if !errors.Is(err, auth.ErrNoSession) {
			t.Errorf("expected ErrNoSession, got %v", err)
		}
	})
}

// TestExecuteRestoreSession tests restart restoration.
func TestExecuteRestoreSession(t *testing.T) {
	store := &fakeSnapshotStore{}

	if _, err := ExecuteRestoreSession(context.Background(), LoginDeps{AuthStore: store}); !errors.Is(err, auth.ErrNoSession) {
		t.Errorf("expected ErrNoSession on empty store, got %v", err)
	}

	first, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "courier@example.com",
		Password: "hunter2hunter2",
	}, LoginDeps{AuthStore: store})
	if err != nil {
		t.Fatalf("setup login failed: %v", err)
	}

	snap, err := ExecuteRestoreSession(context.Background(), LoginDeps{AuthStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Token != first.Token {
		t.Error("restored snapshot must match the stored login")
	}
}

// TestExecuteLogout tests that logout removes the snapshot and, with
// it, the offline login path.
func TestExecuteLogout(t *testing.T) {
	store := &fakeSnapshotStore{}
	if _, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "courier@example.com",
		Password: "hunter2hunter2",
	}, LoginDeps{AuthStore: store}); err != nil {
		t.Fatalf("setup login failed: %v", err)
	}

	if err := ExecuteLogout(context.Background(), LoginDeps{AuthStore: store}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ExecuteRestoreSession(context.Background(), LoginDeps{AuthStore: store}); !errors.Is(err, auth.ErrNoSession) {
		t.Errorf("expected ErrNoSession after logout, got %v", err)
	}
}
