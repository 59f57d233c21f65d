package auth

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "users.json"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	s.cost = bcrypt.MinCost
	return s
}

func TestRegisterAndAuthenticate(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Register("alice", "correct horse"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	u, err := s.Authenticate("alice", "correct horse")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if u.Username != "alice" || u.CreatedAt.IsZero() {
		t.Errorf("user = %+v", u)
	}

	if _, err := s.Authenticate("alice", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := s.Authenticate("nobody", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v, want ErrInvalidCredentials", err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if strings.Contains(string(data), "correct horse") {
		t.Error("users file contains the plain text password")
	}
}

func TestRegister_Validation(t *testing.T) {
	s := newTestStore(t)
	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{name: "short username", username: "ab", password: "password1", want: ErrInvalidUsername},
		{name: "path username", username: "../x", password: "password1", want: ErrInvalidUsername},
		{name: "short password", username: "carol", password: "short", want: ErrWeakPassword},
		{name: "long password", username: "carol", password: strings.Repeat("p", 73), want: ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Register(tt.username, tt.password); !errors.Is(err, tt.want) {
				t.Fatalf("Register() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Register("dave", "password1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := s.Register("dave", "password2"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("Register() duplicate error = %v, want ErrUserExists", err)
	}
	ok, err := s.Exists("dave")
	if err != nil || !ok {
		t.Errorf("Exists(dave) = %v, %v", ok, err)
	}
}

func TestRegister_Concurrent(t *testing.T) {
	s := newTestStore(t)
	names := []string{"user1", "user2", "user3", "user4", "user5"}

	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Register(name, "password1"); err != nil {
				t.Errorf("Register(%s) error = %v", name, err)
			}
		}()
	}
	wg.Wait()

	users, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != len(names) {
		t.Fatalf("List() len = %d, want %d", len(users), len(names))
	}
	if users[0].Username != "user1" {
		t.Errorf("List() not sorted: %s first", users[0].Username)
	}
}
