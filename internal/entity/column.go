package entity

import "fmt"

// ColumnID идентификатор колонки канбан-доски. Средняя колонка пишется через
// дефис, в отличие от сохраняемого статуса.
type ColumnID string

const (
	ColumnTodo       ColumnID = "todo"
	ColumnInProgress ColumnID = "in-progress"
	ColumnDone       ColumnID = "done"
)

// Statuses все допустимые статусы в порядке колонок
var Statuses = []TaskStatus{StatusTodo, StatusInProgress, StatusDone}

// ColumnIDs все допустимые колонки в порядке по умолчанию
var ColumnIDs = []ColumnID{ColumnTodo, ColumnInProgress, ColumnDone}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func (c ColumnID) Valid() bool {
	switch c {
	case ColumnTodo, ColumnInProgress, ColumnDone:
		return true
	}
	return false
}

// StatusToColumnID переводит сохраняемый статус в идентификатор колонки.
// Отображение полное: default недостижим для валидных значений.
func StatusToColumnID(s TaskStatus) ColumnID {
	switch s {
	case StatusTodo:
		return ColumnTodo
	case StatusInProgress:
		return ColumnInProgress
	case StatusDone:
		return ColumnDone
	default:
		panic(fmt.Sprintf("entity: unknown task status %q", string(s)))
	}
}

// ColumnIDToStatus обратное отображение к StatusToColumnID
func ColumnIDToStatus(c ColumnID) TaskStatus {
	switch c {
	case ColumnTodo:
		return StatusTodo
	case ColumnInProgress:
		return StatusInProgress
	case ColumnDone:
		return StatusDone
	default:
		panic(fmt.Sprintf("entity: unknown column id %q", string(c)))
	}
}

// ParseStatus проверяет статус из внешнего ввода
func ParseStatus(raw string) (TaskStatus, error) {
	s := TaskStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidTaskData, raw)
	}
	return s, nil
}

// ParseColumnID проверяет идентификатор колонки из внешнего ввода
func ParseColumnID(raw string) (ColumnID, error) {
	c := ColumnID(raw)
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown column %q", ErrInvalidTaskData, raw)
	}
	return c, nil
}
