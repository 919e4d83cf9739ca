package goals

import (
	"context"
	"embed"
	"fmt"
	"time"

	"fintrack/internal/database"
	"fintrack/internal/dates"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsTable = "goals_schema_migrations"

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

type scanner interface {
	Scan(dest ...any) error
}

func parseDecimals(pairs ...any) error {
	for i := 0; i < len(pairs); i += 2 {
		raw := pairs[i].(string)
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("parse decimal %q: %w", raw, err)
		}
		*pairs[i+1].(*decimal.Decimal) = d
	}
	return nil
}

const categoryColumns = `id, name, description, icon, color_code, sort_order, is_default, is_active, created_at, updated_at`

func scanCategory(row scanner, c *Category) error {
	return row.Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.ColorCode, &c.SortOrder,
		&c.IsDefault, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
}

func (s *PostgresStore) CreateCategory(ctx context.Context, c *Category) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO goal_categories (name, description, icon, color_code, sort_order, is_default, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Description, c.Icon, c.ColorCode, c.SortOrder, c.IsDefault, c.IsActive,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create goal category: %w", database.Translate(err))
	}
	return nil
}

func (s *PostgresStore) GetCategory(ctx context.Context, id int64) (Category, error) {
	var c Category
	row := s.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM goal_categories WHERE id = $1`, id)
	if err := scanCategory(row, &c); err != nil {
		return Category{}, fmt.Errorf("get goal category %d: %w", id, database.Translate(err))
	}
	return c, nil
}

func (s *PostgresStore) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+categoryColumns+` FROM goal_categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("list goal categories: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := scanCategory(rows, &c); err != nil {
			return nil, fmt.Errorf("scan goal category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *PostgresStore) UpdateCategory(ctx context.Context, c *Category) error {
	err := s.pool.QueryRow(ctx,
		`UPDATE goal_categories
		 SET name = $1, description = $2, icon = $3, color_code = $4, sort_order = $5, is_active = $6, updated_at = NOW()
		 WHERE id = $7
		 RETURNING updated_at`,
		c.Name, c.Description, c.Icon, c.ColorCode, c.SortOrder, c.IsActive, c.ID,
	).Scan(&c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update goal category %d: %w", c.ID, database.Translate(err))
	}
	return nil
}

func (s *PostgresStore) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM goal_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete goal category %d: %w", id, database.Translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete goal category %d: %w", id, database.ErrNotFound)
	}
	return nil
}

const goalSelect = `
	SELECT g.id, g.user_id, g.title, g.description, g.target_amount::text, g.current_amount::text, g.category_id,
	       g.priority_level, g.status, g.completion_percentage::text, g.target_date, g.start_date, g.is_shared,
	       g.motivation_note, g.reward_description, g.image_url, g.created_at, g.updated_at, g.completed_at,
	       c.id, c.name, c.description, c.icon, c.color_code, c.sort_order, c.is_default, c.is_active, c.created_at, c.updated_at
	FROM goals g
	JOIN goal_categories c ON c.id = g.category_id`

func scanGoal(row scanner) (Goal, error) {
	var (
		g                        Goal
		c                        Category
		target, current, percent string
		targetDate               *time.Time
		startDate                time.Time
	)
	err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &target, &current, &g.CategoryID,
		&g.PriorityLevel, &g.Status, &percent, &targetDate, &startDate, &g.IsShared,
		&g.MotivationNote, &g.RewardDescription, &g.ImageURL, &g.CreatedAt, &g.UpdatedAt, &g.CompletedAt,
		&c.ID, &c.Name, &c.Description, &c.Icon, &c.ColorCode, &c.SortOrder, &c.IsDefault, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Goal{}, err
	}
	if err := parseDecimals(target, &g.TargetAmount, current, &g.CurrentAmount, percent, &g.CompletionPercentage); err != nil {
		return Goal{}, err
	}
	g.TargetDate = dates.FromNullable(targetDate)
	g.StartDate = dates.Of(startDate)
	g.Category = &c
	return g, nil
}

func (s *PostgresStore) collectGoals(ctx context.Context, query string, args ...any) ([]Goal, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	goals := []Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *PostgresStore) CreateGoal(ctx context.Context, g *Goal) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO goals (user_id, title, description, target_amount, current_amount, category_id, priority_level,
		     status, completion_percentage, target_date, start_date, is_shared, motivation_note, reward_description,
		     image_url, completed_at)
		 VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7, $8, $9::numeric, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id, created_at, updated_at`,
		g.UserID, g.Title, g.Description, g.TargetAmount.String(), g.CurrentAmount.String(), g.CategoryID,
		string(g.PriorityLevel), string(g.Status), g.CompletionPercentage.String(), g.TargetDate.Nullable(),
		g.StartDate.Time, g.IsShared, g.MotivationNote, g.RewardDescription, g.ImageURL, g.CompletedAt,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create goal: %w", database.Translate(err))
	}
	return nil
}

func (s *PostgresStore) GetGoal(ctx context.Context, id int64) (Goal, error) {
	g, err := scanGoal(s.pool.QueryRow(ctx, goalSelect+` WHERE g.id = $1`, id))
	if err != nil {
		return Goal{}, fmt.Errorf("get goal %d: %w", id, database.Translate(err))
	}
	return g, nil
}

func (s *PostgresStore) ListGoals(ctx context.Context) ([]Goal, error) {
	return s.collectGoals(ctx, goalSelect+` ORDER BY g.id`)
}

func (s *PostgresStore) ListGoalsByUser(ctx context.Context, userID int64) ([]Goal, error) {
	return s.collectGoals(ctx, goalSelect+` WHERE g.user_id = $1 ORDER BY g.created_at DESC, g.id DESC`, userID)
}

func (s *PostgresStore) UpdateGoal(ctx context.Context, g *Goal) error {
	err := s.pool.QueryRow(ctx,
		`UPDATE goals
		 SET title = $1, description = $2, target_amount = $3::numeric, current_amount = $4::numeric,
		     category_id = $5, priority_level = $6, status = $7, completion_percentage = $8::numeric,
		     target_date = $9, start_date = $10, is_shared = $11, motivation_note = $12,
		     reward_description = $13, image_url = $14, completed_at = $15, updated_at = NOW()
		 WHERE id = $16
		 RETURNING updated_at`,
		g.Title, g.Description, g.TargetAmount.String(), g.CurrentAmount.String(), g.CategoryID,
		string(g.PriorityLevel), string(g.Status), g.CompletionPercentage.String(), g.TargetDate.Nullable(),
		g.StartDate.Time, g.IsShared, g.MotivationNote, g.RewardDescription, g.ImageURL, g.CompletedAt, g.ID,
	).Scan(&g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update goal %d: %w", g.ID, database.Translate(err))
	}
	return nil
}

func (s *PostgresStore) DeleteGoal(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete goal %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete goal %d: %w", id, database.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) CreateSnapshot(ctx context.Context, snap *Snapshot) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO goal_progress_snapshots (goal_id, amount, progress_percentage, amount_change, snapshot_type, snapshot_date, notes)
		 VALUES ($1, $2::numeric, $3::numeric, $4::numeric, $5, $6, $7)
		 RETURNING id, created_at`,
		snap.GoalID, snap.Amount.String(), snap.ProgressPercentage.String(), snap.AmountChange.String(),
		string(snap.SnapshotType), snap.SnapshotDate.Time, snap.Notes,
	).Scan(&snap.ID, &snap.CreatedAt)
	if err != nil {
		return fmt.Errorf("create snapshot for goal %d: %w", snap.GoalID, database.Translate(err))
	}
	return nil
}

func (s *PostgresStore) ListSnapshots(ctx context.Context, goalID int64) ([]Snapshot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, goal_id, amount::text, progress_percentage::text, amount_change::text, snapshot_type,
		        snapshot_date, notes, created_at
		 FROM goal_progress_snapshots WHERE goal_id = $1 ORDER BY created_at, id`,
		goalID,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots for goal %d: %w", goalID, err)
	}
	defer rows.Close()

	snapshots := []Snapshot{}
	for rows.Next() {
		var (
			snap                    Snapshot
			amount, percent, change string
			day                     time.Time
		)
		if err := rows.Scan(&snap.ID, &snap.GoalID, &amount, &percent, &change, &snap.SnapshotType,
			&day, &snap.Notes, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if err := parseDecimals(amount, &snap.Amount, percent, &snap.ProgressPercentage, change, &snap.AmountChange); err != nil {
			return nil, err
		}
		snap.SnapshotDate = dates.Of(day)
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}
