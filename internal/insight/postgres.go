package insight

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/database"
	"fintrack/internal/dates"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsTable = "insight_schema_migrations"

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

type scanner interface {
	Scan(dest ...any) error
}

// where accumulates AND-ed conditions with positional arguments. Each
// condition uses ? for its single argument.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1))
}

func (w *where) raw(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// Notifications

const notificationColumns = `id, user_id, notification_type, title, message, related_goal_id, related_category_id,
	is_read, is_urgent, action_url, scheduled_for, sent_at, created_at, updated_at`

func scanNotification(row scanner) (Notification, error) {
	var n Notification
	err := row.Scan(&n.ID, &n.UserID, &n.NotificationType, &n.Title, &n.Message, &n.RelatedGoalID,
		&n.RelatedCategoryID, &n.IsRead, &n.IsUrgent, &n.ActionURL, &n.ScheduledFor, &n.SentAt,
		&n.CreatedAt, &n.UpdatedAt)
	return n, err
}

func (s *PostgresStore) collectNotifications(ctx context.Context, query string, args ...any) ([]Notification, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()
	return collect(rows, scanNotification)
}

// collect drains rows through scan.
func collect[T any](rows database.Rows, scan func(scanner) (T, error)) ([]T, error) {
	list := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

func (s *PostgresStore) CreateNotification(ctx context.Context, n *Notification) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO user_notifications (user_id, notification_type, title, message, related_goal_id,
		     related_category_id, is_read, is_urgent, action_url, scheduled_for, sent_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		n.UserID, string(n.NotificationType), n.Title, n.Message, n.RelatedGoalID, n.RelatedCategoryID,
		n.IsRead, n.IsUrgent, n.ActionURL, n.ScheduledFor, n.SentAt,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create notification: %w", database.Translate(err))
	}
	return nil
}

func (s *PostgresStore) GetNotification(ctx context.Context, id int64) (Notification, error) {
	n, err := scanNotification(s.pool.QueryRow(ctx,
		`SELECT `+notificationColumns+` FROM user_notifications WHERE id = $1`, id))
	if err != nil {
		return Notification{}, fmt.Errorf("get notification %d: %w", id, database.Translate(err))
	}
	return n, nil
}

func (s *PostgresStore) ListNotifications(ctx context.Context, f NotificationFilter) ([]Notification, error) {
	var w where
	w.add("user_id = ?", f.UserID)
	if f.UnreadOnly {
		w.raw("NOT is_read")
	}
	if f.UrgentOnly {
		w.raw("is_urgent")
	}
	if f.Type != "" {
		w.add("notification_type = ?", string(f.Type))
	}
	if f.GoalID != nil {
		w.add("related_goal_id = ?", *f.GoalID)
	}
	if f.CategoryID != nil {
		w.add("related_category_id = ?", *f.CategoryID)
	}
	if f.Since != nil {
		w.add("created_at >= ?", *f.Since)
	}

	order := " ORDER BY is_urgent DESC, created_at DESC, id DESC"
	if f.Order == NewestFirst {
		order = " ORDER BY created_at DESC, id DESC"
	}
	return s.collectNotifications(ctx, `SELECT `+notificationColumns+` FROM user_notifications`+w.String()+order, w.args...)
}

func (s *PostgresStore) CountUnreadNotifications(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_notifications WHERE user_id = $1 AND NOT is_read`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) ListNotificationsDue(ctx context.Context, now time.Time) ([]Notification, error) {
	return s.collectNotifications(ctx,
		`SELECT `+notificationColumns+` FROM user_notifications
		 WHERE sent_at IS NULL AND scheduled_for <= $1
		 ORDER BY scheduled_for, id`, now)
}

func (s *PostgresStore) UpdateNotification(ctx context.Context, n *Notification) error {
	err := s.pool.QueryRow(ctx,
		`UPDATE user_notifications
		 SET notification_type = $1, title = $2, message = $3, related_goal_id = $4, related_category_id = $5,
		     is_read = $6, is_urgent = $7, action_url = $8, scheduled_for = $9, sent_at = $10, updated_at = NOW()
		 WHERE id = $11
		 RETURNING created_at, updated_at`,
		string(n.NotificationType), n.Title, n.Message, n.RelatedGoalID, n.RelatedCategoryID,
		n.IsRead, n.IsUrgent, n.ActionURL, n.ScheduledFor, n.SentAt, n.ID,
	).Scan(&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update notification %d: %w", n.ID, database.Translate(err))
	}
	return nil
}

func (s *PostgresStore) DeleteNotification(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM user_notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notification %d: %w", id, database.Translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete notification %d: %w", id, database.ErrNotFound)
	}
	return nil
}

// Recommendations

const recommendationColumns = `id, user_id, recommendation_type, title, description, priority_level,
	category_id, goal_id, is_read, is_dismissed, action_taken, expires_at, created_at, updated_at`

// priorityRank mirrors Priority.rank for ORDER BY.
const priorityRank = `CASE priority_level WHEN 'CRITICAL' THEN 4 WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 WHEN 'LOW' THEN 1 ELSE 0 END`

func scanRecommendation(row scanner) (Recommendation, error) {
	var r Recommendation
	err := row.Scan(&r.ID, &r.UserID, &r.RecommendationType, &r.Title, &r.Description, &r.PriorityLevel,
		&r.CategoryID, &r.GoalID, &r.IsRead, &r.IsDismissed, &r.ActionTaken, &r.ExpiresAt,
		&r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (s *PostgresStore) CreateRecommendation(ctx context.Context, r *Recommendation) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO user_recommendations (user_id, recommendation_type, title, description, priority_level,
		     category_id, goal_id, is_read, is_dismissed, action_taken, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		r.UserID, string(r.RecommendationType), r.Title, r.Description, string(r.PriorityLevel),
		r.CategoryID, r.GoalID, r.IsRead, r.IsDismissed, r.ActionTaken, r.ExpiresAt,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create recommendation: %w", database.Translate(err))
	}
	return nil
}

func (s *PostgresStore) GetRecommendation(ctx context.Context, id int64) (Recommendation, error) {
	r, err := scanRecommendation(s.pool.QueryRow(ctx,
		`SELECT `+recommendationColumns+` FROM user_recommendations WHERE id = $1`, id))
	if err != nil {
		return Recommendation{}, fmt.Errorf("get recommendation %d: %w", id, database.Translate(err))
	}
	return r, nil
}

func (s *PostgresStore) ListRecommendations(ctx context.Context, f RecommendationFilter) ([]Recommendation, error) {
	var w where
	w.add("user_id = ?", f.UserID)
	if f.Type != "" {
		w.add("recommendation_type = ?", string(f.Type))
	}
	if f.Priority != "" {
		w.add("priority_level = ?", string(f.Priority))
	}
	if f.CategoryID != nil {
		w.add("category_id = ?", *f.CategoryID)
	}
	if f.GoalID != nil {
		w.add("goal_id = ?", *f.GoalID)
	}
	if f.Open || f.ActiveAt != nil {
		w.raw("NOT is_read AND NOT is_dismissed")
	}
	if f.ActiveAt != nil {
		w.add("(expires_at IS NULL OR expires_at > ?)", *f.ActiveAt)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+recommendationColumns+` FROM user_recommendations`+w.String()+
			` ORDER BY `+priorityRank+` DESC, created_at DESC, id DESC`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	defer rows.Close()
	return collect(rows, scanRecommendation)
}

func (s *PostgresStore) CountOpenRecommendations(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_recommendations WHERE user_id = $1 AND NOT is_read AND NOT is_dismissed`,
		userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count open recommendations: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) UpdateRecommendation(ctx context.Context, r *Recommendation) error {
	err := s.pool.QueryRow(ctx,
		`UPDATE user_recommendations
		 SET recommendation_type = $1, title = $2, description = $3, priority_level = $4, category_id = $5,
		     goal_id = $6, is_read = $7, is_dismissed = $8, action_taken = $9, expires_at = $10, updated_at = NOW()
		 WHERE id = $11
		 RETURNING created_at, updated_at`,
		string(r.RecommendationType), r.Title, r.Description, string(r.PriorityLevel), r.CategoryID,
		r.GoalID, r.IsRead, r.IsDismissed, r.ActionTaken, r.ExpiresAt, r.ID,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update recommendation %d: %w", r.ID, database.Translate(err))
	}
	return nil
}

func (s *PostgresStore) DeleteRecommendation(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM user_recommendations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete recommendation %d: %w", id, database.Translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete recommendation %d: %w", id, database.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) DismissExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE user_recommendations SET is_dismissed = TRUE, updated_at = NOW()
		 WHERE NOT is_dismissed AND expires_at IS NOT NULL AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("dismiss expired recommendations: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Spending analytics. Decimals travel as text, as in the other stores.

const analyticsColumns = `id, user_id, category_id, analysis_period, period_start, period_end,
	total_amount::text, transaction_count, average_transaction::text, percentage_of_total::text,
	trend_direction, trend_percentage::text, created_at, updated_at`

func scanAnalytics(row scanner) (Analytics, error) {
	var (
		a                          Analytics
		start, end                 time.Time
		total, avg, share, changed string
	)
	err := row.Scan(&a.ID, &a.UserID, &a.CategoryID, &a.AnalysisPeriod, &start, &end,
		&total, &a.TransactionCount, &avg, &share, &a.TrendDirection, &changed, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Analytics{}, err
	}
	a.PeriodStart, a.PeriodEnd = dates.Of(start), dates.Of(end)
	for _, p := range []struct {
		raw string
		dst *decimal.Decimal
	}{{total, &a.TotalAmount}, {avg, &a.AverageTransaction}, {share, &a.PercentageOfTotal}, {changed, &a.TrendPercentage}} {
		if *p.dst, err = decimal.NewFromString(p.raw); err != nil {
			return Analytics{}, fmt.Errorf("parse decimal %q: %w", p.raw, err)
		}
	}
	return a, nil
}

func (s *PostgresStore) CreateAnalytics(ctx context.Context, a *Analytics) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO spending_analytics (user_id, category_id, analysis_period, period_start, period_end,
		     total_amount, transaction_count, average_transaction, percentage_of_total, trend_direction, trend_percentage)
		 VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8::numeric, $9::numeric, $10, $11::numeric)
		 RETURNING id, created_at, updated_at`,
		a.UserID, a.CategoryID, string(a.AnalysisPeriod), a.PeriodStart.Time, a.PeriodEnd.Time,
		a.TotalAmount.String(), a.TransactionCount, a.AverageTransaction.String(), a.PercentageOfTotal.String(),
		string(a.TrendDirection), a.TrendPercentage.String(),
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create analytics: %w", database.Translate(err))
	}
	return nil
}

func (s *PostgresStore) GetAnalytics(ctx context.Context, id int64) (Analytics, error) {
	a, err := scanAnalytics(s.pool.QueryRow(ctx,
		`SELECT `+analyticsColumns+` FROM spending_analytics WHERE id = $1`, id))
	if err != nil {
		return Analytics{}, fmt.Errorf("get analytics %d: %w", id, database.Translate(err))
	}
	return a, nil
}

func (s *PostgresStore) ListAnalytics(ctx context.Context, f AnalyticsFilter) ([]Analytics, error) {
	var w where
	w.add("user_id = ?", f.UserID)
	if f.Period != "" {
		w.add("analysis_period = ?", string(f.Period))
	}
	if f.CategoryID != nil {
		w.add("category_id = ?", *f.CategoryID)
	}
	if f.From != nil {
		w.add("period_start >= ?", f.From.Time)
	}
	if f.To != nil {
		w.add("period_start <= ?", f.To.Time)
	}
	if f.TrendUp {
		w.add("trend_direction = ?", string(TrendUp))
	}

	var order string
	switch f.Order {
	case ByTotalDesc:
		order = " ORDER BY total_amount DESC, id"
	case ByPeriodStartDesc:
		order = " ORDER BY period_start DESC, id"
	case ByTrendPercentageDesc:
		order = " ORDER BY trend_percentage DESC, id"
	default:
		order = " ORDER BY id"
	}

	rows, err := s.pool.Query(ctx, `SELECT `+analyticsColumns+` FROM spending_analytics`+w.String()+order, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list analytics: %w", err)
	}
	defer rows.Close()
	return collect(rows, scanAnalytics)
}

func (s *PostgresStore) UpdateAnalytics(ctx context.Context, a *Analytics) error {
	err := s.pool.QueryRow(ctx,
		`UPDATE spending_analytics
		 SET user_id = $1, category_id = $2, analysis_period = $3, period_start = $4, period_end = $5,
		     total_amount = $6::numeric, transaction_count = $7, average_transaction = $8::numeric,
		     percentage_of_total = $9::numeric, trend_direction = $10, trend_percentage = $11::numeric,
		     updated_at = NOW()
		 WHERE id = $12
		 RETURNING created_at, updated_at`,
		a.UserID, a.CategoryID, string(a.AnalysisPeriod), a.PeriodStart.Time, a.PeriodEnd.Time,
		a.TotalAmount.String(), a.TransactionCount, a.AverageTransaction.String(), a.PercentageOfTotal.String(),
		string(a.TrendDirection), a.TrendPercentage.String(), a.ID,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update analytics %d: %w", a.ID, database.Translate(err))
	}
	return nil
}

func (s *PostgresStore) DeleteAnalytics(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM spending_analytics WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete analytics %d: %w", id, database.Translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete analytics %d: %w", id, database.ErrNotFound)
	}
	return nil
}
