package authapi

import "time"

type registerRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Age      *int    `json:"age"`
}

type loginRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type updateRequest struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Age      *int    `json:"age"`
}

type userResponse struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Email       *string    `json:"email"`
	FullName    *string    `json:"full_name"`
	Age         *int       `json:"age"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

type loginResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	// ExpiresIn is omitted for degraded tokens, which never expire.
	ExpiresIn int64 `json:"expires_in,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type logEntryResponse struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	UserID    int64     `json:"user_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

type statsResponse struct {
	TotalUsers    int `json:"total_usuarios"`
	TotalLogs     int `json:"total_logs"`
	UsersLoggedIn int `json:"usuarios_com_login"`
}
