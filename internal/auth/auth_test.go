package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "auth.db"), "test-secret")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return s
}

func TestNewStoreRequiresSecret(t *testing.T) {
	if _, err := NewStore(filepath.Join(t.TempDir(), "auth.db"), ""); err == nil {
		t.Fatal("expected an error for an empty secret")
	}
}

func TestCreateUserAndAuthenticate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, "alice", "hunter2")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if created.Username != "alice" || created.ID == "" {
		t.Errorf("unexpected identity: %+v", created)
	}

	got, err := s.Authenticate(ctx, "alice", "hunter2")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got != created {
		t.Errorf("Authenticate returned %+v, want %+v", got, created)
	}

	if _, err := s.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := s.Authenticate(ctx, "nobody", "hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: got %v, want ErrInvalidCredentials", err)
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, "bob", "pw"); err != nil {
		t.Fatalf("first CreateUser failed: %v", err)
	}
	if _, err := s.CreateUser(ctx, "bob", "pw2"); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("got %v, want ErrUsernameTaken", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	s := newTestStore(t)

	identity := Identity{ID: "7", Username: "carol"}
	token, err := s.CreateAccessToken(identity)
	if err != nil {
		t.Fatalf("CreateAccessToken failed: %v", err)
	}

	got, err := s.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if got != identity {
		t.Errorf("ParseToken returned %+v, want %+v", got, identity)
	}
}

func TestParseTokenRejectsGarbageAndForeignSignature(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.ParseToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token: got %v, want ErrInvalidToken", err)
	}

	other, err := NewStore(filepath.Join(t.TempDir(), "other.db"), "other-secret")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer other.Close()

	foreign, err := other.CreateAccessToken(Identity{ID: "1", Username: "mallory"})
	if err != nil {
		t.Fatalf("CreateAccessToken failed: %v", err)
	}
	if _, err := s.ParseToken(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign-signed token: got %v, want ErrInvalidToken", err)
	}
}
