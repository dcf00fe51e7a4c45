package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"chatroom-backend/internal/middleware"
	"chatroom-backend/internal/models"
	"chatroom-backend/internal/repository"
)

const invalidCredentialsMessage = "帳號或密碼錯誤"

// bcrypt only reads the first 72 bytes, so anything longer can never be an exact match.
const maxPasswordBytes = 72

type tokenIssuer interface {
	Issue(username string) (string, error)
}

type AuthService struct {
	accounts middleware.AccountLookup
	tokens   tokenIssuer
}

func NewAuthService(accounts middleware.AccountLookup, tokens tokenIssuer) *AuthService {
	return &AuthService{accounts: accounts, tokens: tokens}
}

// Authenticate reports whether password matches the stored hash for username.
// An unknown username is a mismatch, not an error.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	account, err := s.accounts.Lookup(ctx, username)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up account: %w", err)
	}

	if len(password) > maxPasswordBytes {
		return false, nil
	}

	err = bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to compare password: %w", err)
	}
	return true, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if req.Username == nil || req.Password == nil {
		return nil, &ValidationError{Message: "username and password are required"}
	}

	ok, err := s.Authenticate(ctx, *req.Username, *req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &UnauthorizedError{Message: invalidCredentialsMessage}
	}

	token, err := s.tokens.Issue(*req.Username)
	if err != nil {
		return nil, err
	}

	return &models.LoginResponse{AccessToken: token, TokenType: "bearer"}, nil
}
