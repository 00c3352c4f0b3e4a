// Package subscriptions holds the plan and subscription entities backing the
// subscription summary embedded into session claims at login.
package subscriptions

import "time"

// Subscription statuses.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusCancelled = "cancelled"
	StatusPastDue   = "past_due"
)

// Plan represents a purchasable subscription plan.
type Plan struct {
	ID                   int64     `json:"id"`
	Name                 string    `json:"name"`
	Description          *string   `json:"description,omitempty"`
	Price                float64   `json:"price"`
	Currency             string    `json:"currency"`
	Interval             string    `json:"interval"` // "month" or "year"
	MonthlyDownloadLimit int       `json:"monthly_download_limit"`
	StreamingAccess      bool      `json:"streaming_access"`
	DownloadAccess       bool      `json:"download_access"`
	HighQualityAccess    bool      `json:"high_quality_access"`
	IsActive             bool      `json:"is_active"`
	SortOrder            int       `json:"sort_order"`
	CreatedAt            time.Time `json:"created_at"`
}

// Subscription links a user to a plan for a billing period.
type Subscription struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	PlanID             int64     `json:"plan_id"`
	Status             string    `json:"status"`
	CurrentPeriodStart time.Time `json:"current_period_start"`
	CurrentPeriodEnd   time.Time `json:"current_period_end"`
	CancelAtPeriodEnd  bool      `json:"cancel_at_period_end"`
	CreatedAt          time.Time `json:"created_at"`
}

// Summary is the subscription view embedded into session claims. Claims are
// immutable for the life of the token, so this snapshot can go stale relative
// to the backing subscription until re-login or refresh.
type Summary struct {
	Plan             string    `json:"plan"`
	Status           string    `json:"status"`
	CurrentPeriodEnd time.Time `json:"current_period_end"`
}
