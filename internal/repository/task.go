package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, title, status, owner_id, created_at, updated_at`

// колонки, которые разрешено менять через Update
var updatableTaskFields = map[string]bool{
	"title":  true,
	"status": true,
}

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

func scanTask(row pgx.Row) (*entity.Task, error) {
	var task entity.Task
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Status,
		&task.OwnerID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *entity.CreateTaskRequest) (*entity.Task, error) {
	query := `
	INSERT INTO tasks (id, title, status, owner_id)
	VALUES ($1, $2, $3, $4)
	RETURNING ` + taskColumns

	return scanTask(r.db.QueryRow(ctx, query,
		uuid.NewString(),
		task.Title,
		task.Status,
		task.OwnerID,
	))
}

// GetByTaskID возвращает nil, nil если задачи нет
func (r *TaskRepository) GetByTaskID(ctx context.Context, taskID string) (*entity.Task, error) {
	if _, err := uuid.Parse(taskID); err != nil {
		return nil, nil
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.QueryRow(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

// Update - обновление задачи
func (r *TaskRepository) Update(ctx context.Context, taskID string, updates map[string]interface{}) (*entity.Task, error) {
	fields := make([]string, 0, len(updates))
	for field := range updates {
		if !updatableTaskFields[field] {
			return nil, fmt.Errorf("%w: field %q is not updatable", entity.ErrInvalidTaskData, field)
		}
		fields = append(fields, field)
	}
	if len(fields) == 0 {
		return nil, entity.ErrNoFieldsToUpdate
	}
	sort.Strings(fields)

	// Динамически строим SET часть запроса
	setClause := make([]string, 0, len(fields)+1)
	args := make([]interface{}, 0, len(fields)+1)
	for i, field := range fields {
		setClause = append(setClause, field+" = $"+strconv.Itoa(i+1))
		args = append(args, updates[field])
	}
	setClause = append(setClause, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, taskID)

	query := `
	UPDATE tasks
	SET ` + strings.Join(setClause, ", ") + `
	WHERE id = $` + strconv.Itoa(len(args)) + `
	RETURNING ` + taskColumns

	task, err := scanTask(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

// Delete - удаление задачи владельца
func (r *TaskRepository) Delete(ctx context.Context, taskID, ownerID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, taskID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrTaskNotFound
	}
	return nil
}

// List - страница задач владельца с поиском по заголовку без учета регистра
func (r *TaskRepository) List(ctx context.Context, ownerID string, q entity.ListTasksQuery) ([]entity.Task, int, error) {
	where := ` WHERE owner_id = $1`
	args := []interface{}{ownerID}

	if q.Search != "" {
		where += ` AND title ILIKE $2`
		args = append(args, "%"+escapeLike(q.Search)+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM tasks`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + taskColumns + ` FROM tasks` + where +
		` ORDER BY created_at DESC, id` +
		` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, q.Limit, q.Offset())

	tasks, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// ListAll - все задачи владельца для доски, новые первыми
func (r *TaskRepository) ListAll(ctx context.Context, ownerID string) ([]entity.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1 ORDER BY created_at DESC, id`
	return r.query(ctx, query, ownerID)
}

func (r *TaskRepository) query(ctx context.Context, query string, args ...interface{}) ([]entity.Task, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]entity.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
