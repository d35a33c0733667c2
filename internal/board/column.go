package board

import "github.com/St1cky1/taskboard/internal/entity"

// Column - одна из трех фиксированных колонок доски
type Column struct {
	ID    entity.ColumnID `json:"id"`
	Title string          `json:"title"`
}

// DefaultColumns возвращает новый срез колонок в исходном порядке
func DefaultColumns() []Column {
	return []Column{
		{ID: entity.ColumnTodo, Title: "Todo"},
		{ID: entity.ColumnInProgress, Title: "In Progress"},
		{ID: entity.ColumnDone, Title: "Done"},
	}
}

// Card - задача в представлении доски
type Card struct {
	ID       string          `json:"id"`
	ColumnID entity.ColumnID `json:"column_id"`
	Title    string          `json:"title"`
}

func (c Card) Status() entity.TaskStatus {
	return entity.ColumnIDToStatus(c.ColumnID)
}

func cardFromTask(t entity.Task) Card {
	return Card{
		ID:       t.ID,
		ColumnID: entity.StatusToColumnID(t.Status),
		Title:    t.Title,
	}
}

// arrayMove переносит элемент from на позицию to, остальные сдвигаются
func arrayMove[T any](list []T, from, to int) []T {
	if from == to {
		return list
	}
	out := make([]T, 0, len(list))
	item := list[from]
	for i, v := range list {
		if i != from {
			out = append(out, v)
		}
	}
	out = append(out[:to], append([]T{item}, out[to:]...)...)
	return out
}

// moveBefore ставит элемент from сразу перед элементом target
func moveBefore[T any](list []T, from, target int) []T {
	if from == target {
		return list
	}
	to := target
	if from < target {
		to = target - 1
	}
	return arrayMove(list, from, to)
}
