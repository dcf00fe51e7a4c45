package models

// Account is a known login. Only the bcrypt hash of the password is held.
type Account struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

type LoginRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
