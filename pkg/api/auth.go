package api

// LoginRequest represents an authentication request
type LoginRequest struct {
	Phone    string `json:"phone"`    // phone number used as the account login
	Password string `json:"password"` // account password
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse represents a successful authentication or refresh response
type TokenResponse struct {
	AccessToken  string `json:"access_token"`  // JWT access token
	RefreshToken string `json:"refresh_token"` // refresh token
	ExpiresIn    int64  `json:"expires_in"`    // access token lifetime in seconds
}

// ErrorResponse represents an error payload returned by the server
type ErrorResponse struct {
	Error   string `json:"error"`             // error description
	Message string `json:"message,omitempty"` // optional extra detail
}
