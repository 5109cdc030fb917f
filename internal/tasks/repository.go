package tasks

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskflow/taskflow/internal/platform/db"
)

// foreign_key_violation, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const pgFKViolation = "23503"

// RepositoryPort defines data access methods for tasks. Mutations run inside
// WithTx so ownership can be re-checked against the row as it exists at the
// moment of the write, not at an earlier read.
type RepositoryPort interface {
	ListAll(ctx context.Context) ([]TaskWithAssignee, error)
	ListOwnOrAssigned(ctx context.Context, userID int64) ([]TaskWithAssignee, error)
	Get(ctx context.Context, id int64) (*Task, error)
	Create(ctx context.Context, task Task) (*Task, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the operations available inside a transaction.
type TxRepository interface {
	GetForUpdate(ctx context.Context, id int64) (*Task, error)
	Update(ctx context.Context, task Task) (*Task, error)
	Delete(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence for tasks.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const taskColumns = `t.id, t.title, t.description, t.status, t.owner_id, t.assignee_id, t.created_at, t.updated_at`

// ListAll returns every task with the assignee display name joined.
func (r *Repository) ListAll(ctx context.Context) ([]TaskWithAssignee, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`, u.name
		FROM tasks t
		LEFT JOIN users u ON u.id = t.assignee_id
		ORDER BY t.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasksWithAssignee(rows)
}

// ListOwnOrAssigned returns tasks the user owns or is assigned to.
func (r *Repository) ListOwnOrAssigned(ctx context.Context, userID int64) ([]TaskWithAssignee, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`, u.name
		FROM tasks t
		LEFT JOIN users u ON u.id = t.assignee_id
		WHERE t.owner_id = $1 OR t.assignee_id = $1
		ORDER BY t.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasksWithAssignee(rows)
}

// Get returns a task by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Task, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t
		WHERE t.id = $1`, id)
	return scanTask(row)
}

// Create inserts a new task and returns the stored record.
func (r *Repository) Create(ctx context.Context, task Task) (*Task, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, status, owner_id, assignee_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, title, description, status, owner_id, assignee_id, created_at, updated_at`,
		task.Title, task.Description, task.Status, task.OwnerID, task.AssigneeID)
	created, err := scanTask(row)
	if err != nil {
		return nil, mapAssigneeViolation(err)
	}
	return created, nil
}

// mapAssigneeViolation converts a foreign key violation on assignee_id into
// a ValidationError. The service checks existence up front, but the assignee
// can disappear between that check and the write.
func mapAssigneeViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgFKViolation && pgErr.ConstraintName == "tasks_assignee_id_fkey" {
		return &ValidationError{Field: "assignee_id", Reason: "user does not exist"}
	}
	return err
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps fn in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

// GetForUpdate loads a task and locks the row for the rest of the transaction.
func (t *txRepo) GetForUpdate(ctx context.Context, id int64) (*Task, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t
		WHERE t.id = $1
		FOR UPDATE`, id)
	return scanTask(row)
}

// Update writes the full task record and returns the stored state.
func (t *txRepo) Update(ctx context.Context, task Task) (*Task, error) {
	row := t.tx.QueryRow(ctx, `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, assignee_id = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING id, title, description, status, owner_id, assignee_id, created_at, updated_at`,
		task.ID, task.Title, task.Description, task.Status, task.AssigneeID)
	updated, err := scanTask(row)
	if err != nil {
		return nil, mapAssigneeViolation(err)
	}
	return updated, nil
}

// Delete removes the task permanently.
func (t *txRepo) Delete(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*Task, error) {
	var task Task
	err := row.Scan(&task.ID, &task.Title, &task.Description, &task.Status, &task.OwnerID, &task.AssigneeID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

func scanTasksWithAssignee(rows pgx.Rows) ([]TaskWithAssignee, error) {
	var result []TaskWithAssignee
	for rows.Next() {
		var item TaskWithAssignee
		if err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.Status, &item.OwnerID, &item.AssigneeID, &item.CreatedAt, &item.UpdatedAt, &item.AssigneeName); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
