// Package auth manages LinkPub accounts and session tokens.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores anything longer
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidUsername    = errors.New("username must be 3-32 characters of letters, digits, '_' or '-'")
	ErrWeakPassword       = fmt.Errorf("password must be between %d and %d bytes", MinPasswordLength, maxPasswordLength)
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,32}$`)

// User is a stored account.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

type usersFile struct {
	Users []User `json:"users"`
}

// Store keeps accounts in a JSON file guarded by a file lock.
type Store struct {
	path   string
	cost   int
	now    func() time.Time
	logger *slog.Logger
}

func NewStore(path string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create users directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:   path,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
		logger: logger,
	}, nil
}

// newLock returns a fresh handle per operation; flock(2) only excludes
// separate open file descriptions.
func (s *Store) newLock() *flock.Flock {
	return flock.New(s.path + ".lock")
}

// ValidateUsername checks the account name rules.
func ValidateUsername(name string) error {
	if !usernamePattern.MatchString(name) {
		return ErrInvalidUsername
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength || len(password) > maxPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Register creates an account.
func (s *Store) Register(username, password string) (User, error) {
	if err := ValidateUsername(username); err != nil {
		return User{}, err
	}
	if err := validatePassword(password); err != nil {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	lock := s.newLock()
	if err := lock.Lock(); err != nil {
		return User{}, fmt.Errorf("lock users: %w", err)
	}
	defer lock.Unlock()

	f, err := s.read()
	if err != nil {
		return User{}, err
	}
	for _, u := range f.Users {
		if u.Username == username {
			return User{}, fmt.Errorf("%w: %s", ErrUserExists, username)
		}
	}

	user := User{Username: username, PasswordHash: string(hash), CreatedAt: s.now().UTC()}
	f.Users = append(f.Users, user)
	if err := s.write(f); err != nil {
		return User{}, err
	}
	s.logger.Info("user registered", "user", username)
	return user, nil
}

// Authenticate checks a username and password.
func (s *Store) Authenticate(username, password string) (User, error) {
	lock := s.newLock()
	if err := lock.RLock(); err != nil {
		return User{}, fmt.Errorf("lock users: %w", err)
	}
	f, err := s.read()
	lock.Unlock()
	if err != nil {
		return User{}, err
	}

	for _, u := range f.Users {
		if u.Username != username {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			return User{}, ErrInvalidCredentials
		}
		return u, nil
	}
	return User{}, ErrInvalidCredentials
}

// Exists reports whether username is registered.
func (s *Store) Exists(username string) (bool, error) {
	users, err := s.List()
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

// List returns all accounts sorted by name.
func (s *Store) List() ([]User, error) {
	lock := s.newLock()
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock users: %w", err)
	}
	defer lock.Unlock()

	f, err := s.read()
	if err != nil {
		return nil, err
	}
	sort.Slice(f.Users, func(i, j int) bool { return f.Users[i].Username < f.Users[j].Username })
	return f.Users, nil
}

func (s *Store) read() (usersFile, error) {
	var f usersFile
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return f, fmt.Errorf("read users: %w", err)
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parse users: %w", err)
	}
	return f, nil
}

func (s *Store) write(f usersFile) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write users: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write users: %w", err)
	}
	return nil
}
