package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	apperrors "streakbot/internal/errors"
	"streakbot/internal/models"
	"streakbot/internal/storage/sqlite"
)

func TestInitCmd_CreatesStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.New(path)
	t.Cleanup(func() { store.Close() })

	cmd := &InitCmd{}
	if err := cmd.Run(&Context{Store: store}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected the database file to exist: %v", err)
	}
}

func TestInitCmd_ForceResetsExistingData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.New(path)
	t.Cleanup(func() { store.Close() })

	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	now := time.Now()
	ch := models.Challenge{
		ID:        uuid.NewString(),
		ChatID:    100,
		TopicID:   7,
		Title:     "Wake at 4",
		StartDate: now,
		Status:    models.ChallengeActive,
		CreatedAt: now,
	}
	if err := store.AddChallenge(ch); err != nil {
		t.Fatalf("AddChallenge failed: %v", err)
	}

	cmd := &InitCmd{Force: true}
	if err := cmd.Run(&Context{Store: store}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// The reset store is empty again.
	if _, err := store.FindActiveChallenge(100, 7); !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound after a forced reset, got %v", err)
	}
}

func TestInitCmd_WithoutForceKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.New(path)
	t.Cleanup(func() { store.Close() })

	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	now := time.Now()
	ch := models.Challenge{
		ID:        uuid.NewString(),
		ChatID:    100,
		TopicID:   7,
		Title:     "Wake at 4",
		StartDate: now,
		Status:    models.ChallengeActive,
		CreatedAt: now,
	}
	if err := store.AddChallenge(ch); err != nil {
		t.Fatalf("AddChallenge failed: %v", err)
	}

	cmd := &InitCmd{}
	if err := cmd.Run(&Context{Store: store}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got, err := store.FindActiveChallenge(100, 7)
	if err != nil {
		t.Fatalf("FindActiveChallenge failed: %v", err)
	}
	if got.ID != ch.ID {
		t.Errorf("challenge = %s, want %s preserved", got.ID, ch.ID)
	}
}
