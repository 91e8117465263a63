package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"docvault/internal/config"
	"docvault/pkg/logger_i"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidToken       = errors.New("invalid token")
)

// Identity is the verified (owner_id, username) pair every tenant-scoped
// operation trusts as its partition key.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Store authenticates users against a SQLite table and issues signed access
// tokens carrying the identity.
type Store struct {
	db     *sql.DB
	secret []byte
	logger *logger_i.Logger
}

func NewStore(dbPath string, secret string) (*Store, error) {
	if secret == "" {
		return nil, errors.New("missing RAG_SECRET_KEY; set it before starting the app")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating auth db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening auth db: %w", err)
	}

	return &Store{
		db:     db,
		secret: []byte(secret),
		logger: logger_i.NewLogger("Auth"),
	}, nil
}

// Init creates the users table if it does not exist. Idempotent; invoked once
// at startup.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateUser(ctx context.Context, username, password string) (Identity, error) {
	if username == "" || password == "" {
		return Identity{}, errors.New("username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, fmt.Errorf("hashing password: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO users (username, password_hash) VALUES (?, ?)`, username, string(hash))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return Identity{}, ErrUsernameTaken
		}
		return Identity{}, fmt.Errorf("inserting user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Identity{}, fmt.Errorf("reading user id: %w", err)
	}
	s.logger.Info("created user", "username", username)
	return Identity{ID: strconv.FormatInt(id, 10), Username: username}, nil
}

func (s *Store) Authenticate(ctx context.Context, username, password string) (Identity, error) {
	var id int64
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT id, password_hash FROM users WHERE username = ?`, username).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return Identity{}, fmt.Errorf("looking up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{ID: strconv.FormatInt(id, 10), Username: username}, nil
}

// CreateAccessToken signs an HS256 token carrying the identity, valid for
// config.TokenTTL.
func (s *Store) CreateAccessToken(identity Identity) (string, error) {
	claims := jwt.MapClaims{
		"id":       identity.ID,
		"username": identity.Username,
		"exp":      jwt.NewNumericDate(time.Now().Add(config.TokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies the signature and expiry and returns the identity the
// token carries.
func (s *Store) ParseToken(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	if id == "" || username == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{ID: id, Username: username}, nil
}
