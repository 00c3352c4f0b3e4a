// Package auth is responsible for authentication and authorization:
// registration, credential resolution, session token issuance and validation,
// and the role-gate middleware applied to protected routes.
package auth

import "time"

// Roles a user can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account statuses.
const (
	StatusActive  = "active"
	StatusBlocked = "blocked"
)

// User represents a registered account.
type User struct {
	ID                   int64      `json:"id"`
	Name                 string     `json:"name"`
	Email                string     `json:"email"`
	HashedPassword       string     `json:"-"` // never serialized outward
	Avatar               *string    `json:"avatar,omitempty"`
	Role                 string     `json:"role"`
	Status               string     `json:"status"`
	DownloadCount        int        `json:"download_count"`
	MonthlyDownloadCount int        `json:"monthly_download_count"`
	LastDownloadReset    time.Time  `json:"last_download_reset"`
	LastLoginAt          *time.Time `json:"last_login_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}
