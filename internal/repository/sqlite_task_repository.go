package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-desk/internal/domain"
)

type sqliteTaskRepository struct {
	db *sql.DB
}

// NewSQLiteTaskRepository returns a task store backed by database/sql
// against the embedded SQLite schema.
func NewSQLiteTaskRepository(db *sql.DB) TaskRepository {
	return &sqliteTaskRepository{db: db}
}

func (r *sqliteTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	history, err := json.Marshal(task.StatusHistory)
	if err != nil {
		return fmt.Errorf("encode status history: %w", err)
	}
	const query = `
        INSERT INTO tasks (id, type, priority, status, assigned_worker_id, description, address,
                           contact_number, email, created_at, status_history)
        VALUES (?,?,?,?,?,?,?,?,?,?,?)
        ON CONFLICT (id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query,
		task.ID,
		string(task.Type),
		string(task.Priority),
		string(task.Status),
		nullable(task.AssignedWorkerID),
		task.Description,
		task.Address,
		task.ContactNumber,
		task.Email,
		task.CreatedAt.UnixNano(),
		string(history),
	)
	if err != nil {
		return err
	}
	return requireRow(res, ErrDuplicate)
}

func (r *sqliteTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	history, err := json.Marshal(task.StatusHistory)
	if err != nil {
		return fmt.Errorf("encode status history: %w", err)
	}
	const query = `UPDATE tasks SET priority=?, status=?, assigned_worker_id=?, status_history=? WHERE id=?`
	res, err := r.db.ExecContext(ctx, query,
		string(task.Priority),
		string(task.Status),
		nullable(task.AssignedWorkerID),
		string(history),
		task.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res, pgx.ErrNoRows)
}

func (r *sqliteTaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id=?`
	task, err := scanSQLiteTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pgx.ErrNoRows
	}
	return task, err
}

func (r *sqliteTaskRepository) List(ctx context.Context, filter TaskFilter) ([]domain.Task, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AssignedWorkerID != nil {
		clauses = append(clauses, "assigned_worker_id=?")
		args = append(args, *filter.AssignedWorkerID)
	}
	if filter.Email != nil {
		clauses = append(clauses, "LOWER(email)=?")
		args = append(args, strings.ToLower(*filter.Email))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, string(status))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		taskColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Task
	for rows.Next() {
		task, err := scanSQLiteTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *task)
	}
	return result, rows.Err()
}

type sqlScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTask(row sqlScanner) (*domain.Task, error) {
	var (
		task     domain.Task
		workerID sql.NullString
		created  int64
		history  string
	)
	if err := row.Scan(
		&task.ID,
		&task.Type,
		&task.Priority,
		&task.Status,
		&workerID,
		&task.Description,
		&task.Address,
		&task.ContactNumber,
		&task.Email,
		&created,
		&history,
	); err != nil {
		return nil, err
	}
	if workerID.Valid {
		id := workerID.String
		task.AssignedWorkerID = &id
	}
	task.CreatedAt = time.Unix(0, created)
	if err := json.Unmarshal([]byte(history), &task.StatusHistory); err != nil {
		return nil, fmt.Errorf("decode status history for %s: %w", task.ID, err)
	}
	return &task, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// requireRow maps "no row touched" onto miss.
func requireRow(res sql.Result, miss error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return miss
	}
	return nil
}
