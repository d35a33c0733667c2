package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/St1cky1/taskboard/internal/entity"
)

var ErrUnknownItem = errors.New("unknown board item")

type ItemKind string

const (
	KindColumn ItemKind = "Column"
	KindTask   ItemKind = "Task"
)

// Item - перетаскиваемый элемент: ColumnItem или TaskItem
type Item interface {
	Kind() ItemKind
	ItemID() string
	sealed()
}

type ColumnItem struct {
	ID entity.ColumnID
}

func (ColumnItem) Kind() ItemKind { return KindColumn }
func (c ColumnItem) ItemID() string { return string(c.ID) }
func (ColumnItem) sealed() {}

type TaskItem struct {
	ID string
}

func (TaskItem) Kind() ItemKind { return KindTask }
func (t TaskItem) ItemID() string { return t.ID }
func (TaskItem) sealed() {}

// ParseItem собирает Item из пары kind/id, пришедшей снаружи
func ParseItem(kind, id string) (Item, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "column":
		col, err := entity.ParseColumnID(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnknownItem, err)
		}
		return ColumnItem{ID: col}, nil
	case "task":
		if strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("%w: empty task id", ErrUnknownItem)
		}
		return TaskItem{ID: id}, nil
	default:
		return nil, fmt.Errorf("%w: kind %q", ErrUnknownItem, kind)
	}
}

func sameItem(a, b Item) bool {
	return a != nil && b != nil && a.Kind() == b.Kind() && a.ItemID() == b.ItemID()
}
