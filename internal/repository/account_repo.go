package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"chatroom-backend/internal/models"
)

var ErrAccountNotFound = errors.New("account not found")

// StaticAccountRepo serves a fixed account table built at startup.
// It is read-only after construction.
type StaticAccountRepo struct {
	accounts map[string]*models.Account
}

// NewStaticAccountRepo hashes each plaintext password with the given bcrypt cost.
func NewStaticAccountRepo(passwords map[string]string, cost int) (*StaticAccountRepo, error) {
	accounts := make(map[string]*models.Account, len(passwords))
	for username, password := range passwords {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %q: %w", username, err)
		}
		accounts[username] = &models.Account{Username: username, PasswordHash: string(hash)}
	}
	return &StaticAccountRepo{accounts: accounts}, nil
}

func (r *StaticAccountRepo) Lookup(ctx context.Context, username string) (*models.Account, error) {
	account, ok := r.accounts[username]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

func (r *StaticAccountRepo) Len() int {
	return len(r.accounts)
}

// AccountRepo reads accounts from the Postgres accounts table.
type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func (r *AccountRepo) Lookup(ctx context.Context, username string) (*models.Account, error) {
	account := &models.Account{}
	query := `SELECT username, password_hash FROM accounts WHERE username = $1`

	err := r.pool.QueryRow(ctx, query, username).Scan(&account.Username, &account.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Upsert stores or replaces the password hash for username.
func (r *AccountRepo) Upsert(ctx context.Context, username, passwordHash string) error {
	query := `
		INSERT INTO accounts (username, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = NOW()`

	_, err := r.pool.Exec(ctx, query, username, passwordHash)
	return err
}

// SeedAccounts hashes and upserts every seed account.
func (r *AccountRepo) SeedAccounts(ctx context.Context, passwords map[string]string, cost int) error {
	for username, password := range passwords {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return fmt.Errorf("failed to hash password for %q: %w", username, err)
		}
		if err := r.Upsert(ctx, username, string(hash)); err != nil {
			return fmt.Errorf("failed to seed account %q: %w", username, err)
		}
	}
	return nil
}
