package subscriptions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/audiostream-go/apperror"
)

// Store is the persistence surface for plans and subscriptions.
type Store interface {
	// ActiveSummary returns the claims-ready summary of the user's active
	// subscription, or nil when the user has none.
	ActiveSummary(ctx context.Context, userID int64) (*Summary, error)
	// ListActivePlans returns purchasable plans ordered by sort order.
	ListActivePlans(ctx context.Context) ([]Plan, error)
	// StartFree opens an active subscription on the free plan for a newly
	// registered user.
	StartFree(ctx context.Context, userID int64) error
}

// PgxStore implements Store against a pgx connection pool.
type PgxStore struct {
	db *pgxpool.Pool
}

// NewPgxStore creates a PgxStore.
func NewPgxStore(db *pgxpool.Pool) *PgxStore {
	return &PgxStore{db: db}
}

func (s *PgxStore) ActiveSummary(ctx context.Context, userID int64) (*Summary, error) {
	query := `
		SELECT p.name, s.status, s.current_period_end
		FROM subscriptions s
		JOIN plans p ON p.id = s.plan_id
		WHERE s.user_id = $1 AND s.status = $2
		ORDER BY s.current_period_end DESC
		LIMIT 1
	`
	var summary Summary
	err := s.db.QueryRow(ctx, query, userID, StatusActive).Scan(
		&summary.Plan,
		&summary.Status,
		&summary.CurrentPeriodEnd,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.NewDatabaseError("failed to load subscription summary", err)
	}
	return &summary, nil
}

func (s *PgxStore) StartFree(ctx context.Context, userID int64) error {
	// The free plan never bills, but the period check still wants an end after
	// the start; a far-future end keeps the summary active indefinitely.
	query := `
		INSERT INTO subscriptions (user_id, plan_id, status, current_period_start, current_period_end)
		SELECT $1, id, $2, now(), now() + interval '100 years'
		FROM plans
		WHERE name = 'free'
	`
	_, err := s.db.Exec(ctx, query, userID, StatusActive)
	if err != nil {
		return apperror.NewDatabaseError("failed to start free subscription", err)
	}
	return nil
}

func (s *PgxStore) ListActivePlans(ctx context.Context) ([]Plan, error) {
	query := `
		SELECT id, name, description, price, currency, interval,
		       monthly_download_limit, streaming_access, download_access,
		       high_quality_access, is_active, sort_order, created_at
		FROM plans
		WHERE is_active
		ORDER BY sort_order, id
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list plans", err)
	}
	defer rows.Close()

	var plans []Plan
	for rows.Next() {
		var p Plan
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.Currency, &p.Interval,
			&p.MonthlyDownloadLimit, &p.StreamingAccess, &p.DownloadAccess,
			&p.HighQualityAccess, &p.IsActive, &p.SortOrder, &p.CreatedAt,
		); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan plan", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read plans", err)
	}
	return plans, nil
}
