package board

import (
	"fmt"
	"sync"

	"github.com/St1cky1/taskboard/internal/entity"
)

// StatusUpdater отправляет смену статуса на сервер, не блокируя вызывающего
type StatusUpdater interface {
	Update(req entity.UpdateTaskRequest)
}

// Engine хранит упорядоченный список карточек доски и применяет к нему
// события перетаскивания. Все переходы выполняются под одним мьютексом.
type Engine struct {
	mu      sync.Mutex
	columns []Column
	cards   []Card
	active  Item
	// колонка задачи на момент DragStart, только для объявлений
	pickedUpColumn entity.ColumnID
	// колонка, к которой активная колонка уже переставлена в DragOver
	overColumn entity.ColumnID
	updater    StatusUpdater
}

func NewEngine(updater StatusUpdater) *Engine {
	return &Engine{
		columns: DefaultColumns(),
		cards:   []Card{},
		updater: updater,
	}
}

// Sync целиком заменяет локальный список пришедшим с сервера.
// Несохраненные перестановки теряются. Задачи с неизвестным статусом на доску не попадают.
func (e *Engine) Sync(tasks []entity.Task) {
	cards := make([]Card, 0, len(tasks))
	for _, t := range tasks {
		if !t.Status.Valid() {
			continue
		}
		cards = append(cards, cardFromTask(t))
	}

	e.mu.Lock()
	e.cards = cards
	e.mu.Unlock()
}

// DragStart запоминает активный элемент и возвращает объявление
func (e *Engine) DragStart(active Item) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch a := active.(type) {
	case ColumnItem:
		idx := e.columnIndex(a.ID)
		if idx < 0 {
			return "", ErrUnknownItem
		}
		e.active = a
		e.pickedUpColumn = ""
		e.overColumn = ""
		return announceColumnPickedUp(e.columns[idx], idx, len(e.columns)), nil
	case TaskItem:
		idx := e.cardIndex(a.ID)
		if idx < 0 {
			return "", ErrUnknownItem
		}
		card := e.cards[idx]
		e.active = a
		e.pickedUpColumn = card.ColumnID
		e.overColumn = ""
		pos, n := e.positionInColumn(card.ID, card.ColumnID)
		return announceTaskPickedUp(card, pos, n, e.column(card.ColumnID)), nil
	case nil:
		return "", ErrUnknownItem
	default:
		panic(fmt.Sprintf("board: unexpected item %T", active))
	}
}

// DragOver применяет промежуточное положение перетаскивания
func (e *Engine) DragOver(active, over Item) (string, error) {
	if over == nil || sameItem(active, over) {
		return "", nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	switch a := active.(type) {
	case ColumnItem:
		o, ok := over.(ColumnItem)
		if !ok {
			return "", nil
		}
		from, to := e.columnIndex(a.ID), e.columnIndex(o.ID)
		if from < 0 || to < 0 {
			return "", ErrUnknownItem
		}
		moved := e.columns[from]
		e.columns = arrayMove(e.columns, from, to)
		e.overColumn = o.ID
		return announceColumnMovedOver(moved, e.column(o.ID), e.columnIndex(o.ID), len(e.columns)), nil
	case TaskItem:
		return e.taskOver(a, over)
	case nil:
		return "", ErrUnknownItem
	default:
		panic(fmt.Sprintf("board: unexpected item %T", active))
	}
}

func (e *Engine) taskOver(a TaskItem, over Item) (string, error) {
	ai := e.cardIndex(a.ID)
	if ai < 0 {
		return "", ErrUnknownItem
	}

	switch o := over.(type) {
	case TaskItem:
		oi := e.cardIndex(o.ID)
		if oi < 0 {
			return "", ErrUnknownItem
		}
		target := e.cards[oi].ColumnID
		if e.cards[ai].ColumnID != target {
			// 1. задача над задачей из другой колонки
			e.cards[ai].ColumnID = target
			e.fireStatusUpdate(a.ID, target)
			e.cards = moveBefore(e.cards, ai, oi)
		} else {
			// 2. перестановка внутри колонки, без запроса на сервер
			e.cards = arrayMove(e.cards, ai, oi)
		}
		return e.announceTaskOver(a.ID, target), nil
	case ColumnItem:
		if e.columnIndex(o.ID) < 0 {
			return "", ErrUnknownItem
		}
		// 3. задача над пустой колонкой, позиция не меняется
		if e.cards[ai].ColumnID != o.ID {
			e.cards[ai].ColumnID = o.ID
			e.fireStatusUpdate(a.ID, o.ID)
		}
		return e.announceTaskOver(a.ID, o.ID), nil
	default:
		panic(fmt.Sprintf("board: unexpected item %T", over))
	}
}

// DragEnd завершает перетаскивание. Порядок колонок на сервер не уходит.
func (e *Engine) DragEnd(active, over Item) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pickedUp, overColumn := e.pickedUpColumn, e.overColumn
	e.active = nil
	e.pickedUpColumn = ""
	e.overColumn = ""

	if active == nil || over == nil {
		return "", nil
	}

	switch a := active.(type) {
	case ColumnItem:
		o, ok := over.(ColumnItem)
		if !ok {
			return "", nil
		}
		from, to := e.columnIndex(a.ID), e.columnIndex(o.ID)
		if from < 0 || to < 0 {
			return "", ErrUnknownItem
		}
		// над этой колонкой перестановка уже сделана в DragOver
		if o.ID == overColumn {
			to = from
		}
		moved := e.columns[from]
		e.columns = arrayMove(e.columns, from, to)
		return announceColumnDropped(moved, to, len(e.columns)), nil
	case TaskItem:
		idx := e.cardIndex(a.ID)
		if idx < 0 {
			return "", ErrUnknownItem
		}
		col := e.cards[idx].ColumnID
		pos, n := e.positionInColumn(a.ID, col)
		return announceTaskDropped(col != pickedUp, pos, n, e.column(col)), nil
	default:
		panic(fmt.Sprintf("board: unexpected item %T", active))
	}
}

// DragCancel сбрасывает состояние перетаскивания без изменений списка
func (e *Engine) DragCancel(active Item) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.active = nil
	e.pickedUpColumn = ""
	e.overColumn = ""

	if active == nil {
		return ""
	}
	return announceCancelled(active.Kind())
}

// Active возвращает текущий перетаскиваемый элемент или nil
func (e *Engine) Active() Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Cards возвращает копию упорядоченного списка карточек
func (e *Engine) Cards() []Card {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Card, len(e.cards))
	copy(out, e.cards)
	return out
}

func (e *Engine) Card(id string) (Card, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if idx := e.cardIndex(id); idx >= 0 {
		return e.cards[idx], true
	}
	return Card{}, false
}

func (e *Engine) Columns() []Column {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Column, len(e.columns))
	copy(out, e.columns)
	return out
}

type ColumnView struct {
	Column
	Cards []Card `json:"cards"`
}

type ActiveView struct {
	Kind ItemKind `json:"kind"`
	ID   string   `json:"id"`
}

type Snapshot struct {
	Columns []ColumnView `json:"columns"`
	Active  *ActiveView  `json:"active,omitempty"`
}

// Snapshot - колонки в текущем порядке, в каждой карточки в порядке списка
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{Columns: make([]ColumnView, 0, len(e.columns))}
	for _, col := range e.columns {
		view := ColumnView{Column: col, Cards: []Card{}}
		for _, card := range e.cards {
			if card.ColumnID == col.ID {
				view.Cards = append(view.Cards, card)
			}
		}
		snap.Columns = append(snap.Columns, view)
	}
	if e.active != nil {
		snap.Active = &ActiveView{Kind: e.active.Kind(), ID: e.active.ItemID()}
	}
	return snap
}

func (e *Engine) fireStatusUpdate(id string, col entity.ColumnID) {
	if e.updater == nil {
		return
	}
	status := entity.ColumnIDToStatus(col)
	e.updater.Update(entity.UpdateTaskRequest{ID: id, Status: &status})
}

func (e *Engine) announceTaskOver(id string, col entity.ColumnID) string {
	idx := e.cardIndex(id)
	pos, n := e.positionInColumn(id, col)
	return announceTaskMovedOver(e.cards[idx], col != e.pickedUpColumn, pos, n, e.column(col))
}

func (e *Engine) cardIndex(id string) int {
	for i, c := range e.cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) columnIndex(id entity.ColumnID) int {
	for i, c := range e.columns {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) column(id entity.ColumnID) Column {
	if idx := e.columnIndex(id); idx >= 0 {
		return e.columns[idx]
	}
	return Column{ID: id, Title: string(id)}
}

// positionInColumn - индекс карточки среди карточек колонки и их количество
func (e *Engine) positionInColumn(id string, col entity.ColumnID) (int, int) {
	pos, n := -1, 0
	for _, c := range e.cards {
		if c.ColumnID != col {
			continue
		}
		if c.ID == id {
			pos = n
		}
		n++
	}
	return pos, n
}
