package goals

import "context"

// Store is the persistence boundary of the goal service.
type Store interface {
	CreateCategory(ctx context.Context, category *Category) error
	GetCategory(ctx context.Context, id int64) (Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	UpdateCategory(ctx context.Context, category *Category) error
	DeleteCategory(ctx context.Context, id int64) error

	CreateGoal(ctx context.Context, goal *Goal) error
	GetGoal(ctx context.Context, id int64) (Goal, error)
	ListGoals(ctx context.Context) ([]Goal, error)
	ListGoalsByUser(ctx context.Context, userID int64) ([]Goal, error)
	UpdateGoal(ctx context.Context, goal *Goal) error
	DeleteGoal(ctx context.Context, id int64) error

	CreateSnapshot(ctx context.Context, snapshot *Snapshot) error
	ListSnapshots(ctx context.Context, goalID int64) ([]Snapshot, error)
}
