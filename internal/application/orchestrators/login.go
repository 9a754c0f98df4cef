package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"courier/internal/domain/auth"
)

// SnapshotStore defines the interface for auth snapshot persistence.
type SnapshotStore interface {
	Save(ctx context.Context, s auth.Snapshot) error
	Latest(ctx context.Context) (auth.Snapshot, error)
	Clear(ctx context.Context) error
}

// LoginInput carries credentials for login.
type LoginInput struct {
	Email    string
	Password string
	Name     string // optional: defaults to the email local part
}

// LoginDeps holds dependencies for the auth orchestrators.
type LoginDeps struct {
	AuthStore SnapshotStore
}

// ExecuteLogin authenticates the courier and captures the snapshot that
// backs offline restarts. Token issuance is mocked: any well-formed
// credentials are accepted and a fresh opaque token is minted locally.
// The password is stored only as a bcrypt hash so the courier can
// re-authenticate with no connectivity.
// PRE: Email and Password are non-empty
// POST: The current snapshot is overwritten (last write wins)
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (auth.Snapshot, error) {
	snap := auth.Snapshot{
		ID:        auth.SnapshotID,
		Email:     strings.TrimSpace(input.Email),
		Name:      strings.TrimSpace(input.Name),
		Token:     uuid.NewString(),
		Timestamp: time.Now(),
	}
	if snap.Name == "" {
		snap.Name = snap.DisplayName()
	}
	if err := snap.SetPassword(input.Password); err != nil {
		return auth.Snapshot{}, err
	}
	if err := snap.Validate(); err != nil {
		return auth.Snapshot{}, err
	}

	if err := deps.AuthStore.Save(ctx, snap); err != nil {
		return auth.Snapshot{}, err
	}

	slog.Info("auth_event", "event", "login", "email", snap.Email)
	return snap, nil
}

// ExecuteOfflineLogin re-authenticates against the stored snapshot
// without any network access.
// PRE: A snapshot exists from a previous online login
// POST: Returns the snapshot when the credentials match it
func ExecuteOfflineLogin(ctx context.Context, input LoginInput, deps LoginDeps) (auth.Snapshot, error) {
	snap, err := deps.AuthStore.Latest(ctx)
	if err != nil {
		return auth.Snapshot{}, err
	}
	// A mismatched email reports the same error as a wrong password so
	// the caller cannot probe which field was wrong.
	if !strings.EqualFold(snap.Email, strings.TrimSpace(input.Email)) {
		return auth.Snapshot{}, auth.ErrWrongPassword
	}
	if err := snap.CheckPassword(input.Password); err != nil {
		return auth.Snapshot{}, err
	}

	slog.Info("auth_event", "event", "offline_login", "email", snap.Email)
	return snap, nil
}

// ExecuteRestoreSession returns the stored snapshot so the UI can show
// the courier as already logged in after a restart, without a fresh
// login round-trip.
// POST: Returns the snapshot or auth.ErrNoSession
func ExecuteRestoreSession(ctx context.Context, deps LoginDeps) (auth.Snapshot, error) {
	snap, err := deps.AuthStore.Latest(ctx)
	if err != nil {
		return auth.Snapshot{}, err
	}
	slog.Info("auth_event", "event", "session_restored", "email", snap.Email)
	return snap, nil
}

// ExecuteLogout clears the stored snapshot.
// POST: No snapshot remains; offline login is no longer possible
func ExecuteLogout(ctx context.Context, deps LoginDeps) error {
	if err := deps.AuthStore.Clear(ctx); err != nil {
		return err
	}
	slog.Info("auth_event", "event", "logout")
	return nil
}
