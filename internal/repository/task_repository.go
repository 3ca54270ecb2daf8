package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-desk/internal/domain"
)

// TaskFilter narrows task listings.
type TaskFilter struct {
	Statuses         []domain.TaskStatus
	AssignedWorkerID *string
	Email            *string
	Limit            int
	Offset           int
}

// TaskRepository encapsulates task/complaint persistence. Missing rows are
// reported as pgx.ErrNoRows by every implementation.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, type, priority, status, assigned_worker_id, description, address,
               contact_number, email, created_at, status_history`

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	history, err := json.Marshal(task.StatusHistory)
	if err != nil {
		return fmt.Errorf("encode status history: %w", err)
	}
	const query = `
        INSERT INTO tasks (id, type, priority, status, assigned_worker_id, description, address,
                           contact_number, email, created_at, status_history)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err = r.pool.Exec(ctx, query,
		task.ID,
		task.Type,
		task.Priority,
		task.Status,
		task.AssignedWorkerID,
		task.Description,
		task.Address,
		task.ContactNumber,
		task.Email,
		task.CreatedAt,
		history,
	)
	return err
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	history, err := json.Marshal(task.StatusHistory)
	if err != nil {
		return fmt.Errorf("encode status history: %w", err)
	}
	const query = `
        UPDATE tasks SET priority=$1, status=$2, assigned_worker_id=$3, status_history=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		task.Priority,
		task.Status,
		task.AssignedWorkerID,
		history,
		task.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id=$1`
	return scanTask(r.pool.QueryRow(ctx, query, id))
}

func (r *taskRepository) List(ctx context.Context, filter TaskFilter) ([]domain.Task, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AssignedWorkerID != nil {
		args = append(args, *filter.AssignedWorkerID)
		clauses = append(clauses, fmt.Sprintf("assigned_worker_id=$%d", len(args)))
	}
	if filter.Email != nil {
		args = append(args, strings.ToLower(*filter.Email))
		clauses = append(clauses, fmt.Sprintf("LOWER(email)=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		taskColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *task)
	}
	return result, rows.Err()
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		task    domain.Task
		history []byte
	)
	if err := row.Scan(
		&task.ID,
		&task.Type,
		&task.Priority,
		&task.Status,
		&task.AssignedWorkerID,
		&task.Description,
		&task.Address,
		&task.ContactNumber,
		&task.Email,
		&task.CreatedAt,
		&history,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(history, &task.StatusHistory); err != nil {
		return nil, fmt.Errorf("decode status history for %s: %w", task.ID, err)
	}
	return &task, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
