package board

import "fmt"

// Тексты для скринридеров. Позиции в текстах считаются с единицы.

func announceColumnPickedUp(col Column, idx, n int) string {
	return fmt.Sprintf("Picked up Column %s at position: %d of %d", col.Title, idx+1, n)
}

func announceTaskPickedUp(card Card, pos, n int, col Column) string {
	return fmt.Sprintf("Picked up Task %s at position: %d of %d in column %s", card.Title, pos+1, n, col.Title)
}

func announceColumnMovedOver(active, over Column, idx, n int) string {
	return fmt.Sprintf("Column %s was moved over %s at position %d of %d", active.Title, over.Title, idx+1, n)
}

func announceTaskMovedOver(card Card, otherColumn bool, pos, n int, col Column) string {
	if otherColumn {
		return fmt.Sprintf("Task %s was moved over column %s in position %d of %d", card.Title, col.Title, pos+1, n)
	}
	return fmt.Sprintf("Task was moved over position %d of %d in column %s", pos+1, n, col.Title)
}

func announceColumnDropped(col Column, idx, n int) string {
	return fmt.Sprintf("Column %s was dropped into position %d of %d", col.Title, idx+1, n)
}

func announceTaskDropped(otherColumn bool, pos, n int, col Column) string {
	if otherColumn {
		return fmt.Sprintf("Task was dropped into column %s in position %d of %d", col.Title, pos+1, n)
	}
	return fmt.Sprintf("Task was dropped into position %d of %d in column %s", pos+1, n, col.Title)
}

func announceCancelled(kind ItemKind) string {
	return fmt.Sprintf("Dragging %s cancelled.", kind)
}
