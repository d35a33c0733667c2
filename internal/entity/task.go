package entity

import (
	"strings"
	"time"
	"unicode/utf8"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// MaxTitleLength ограничение длины заголовка в рунах
const MaxTitleLength = 255

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Status    TaskStatus `json:"status"`
	OwnerID   string     `json:"owner_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CreateTaskRequest struct {
	Title   string     `json:"title"`
	Status  TaskStatus `json:"status,omitempty"`
	OwnerID string     `json:"-"`
}

// UpdateTaskRequest - nil поля не меняются
type UpdateTaskRequest struct {
	ID     string      `json:"id"`
	Title  *string     `json:"title,omitempty"`
	Status *TaskStatus `json:"status,omitempty"`
}

type ListTasksQuery struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Search string `json:"search,omitempty"`
}

// Normalize подставляет значения по умолчанию и проверяет границы
func (q ListTasksQuery) Normalize() (ListTasksQuery, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = DefaultPageSize
	}
	if q.Page < 1 || q.Limit < 1 || q.Limit > MaxPageSize {
		return q, ErrInvalidTaskData
	}
	q.Search = strings.TrimSpace(q.Search)
	return q, nil
}

func (q ListTasksQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalCount  int  `json:"total_count"`
	TotalPages  int  `json:"total_pages"`
	HasNextPage bool `json:"has_next_page"`
	HasPrevPage bool `json:"has_prev_page"`
}

type TaskPage struct {
	Tasks      []Task     `json:"tasks"`
	Pagination Pagination `json:"pagination"`
}

func NewPagination(q ListTasksQuery, total int) Pagination {
	pages := 0
	if q.Limit > 0 {
		pages = (total + q.Limit - 1) / q.Limit
	}
	return Pagination{
		Page:        q.Page,
		Limit:       q.Limit,
		TotalCount:  total,
		TotalPages:  pages,
		HasNextPage: q.Page < pages,
		HasPrevPage: q.Page > 1,
	}
}

// NormalizeTitle обрезает пробелы и проверяет заголовок
func NormalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > MaxTitleLength {
		return "", ErrInvalidTaskData
	}
	return title, nil
}
