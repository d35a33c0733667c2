package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/St1cky1/taskboard/internal/board"
	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/fatih/color"
)

var columnColors = map[entity.ColumnID]*color.Color{
	entity.ColumnTodo:       color.New(color.FgYellow, color.Bold),
	entity.ColumnInProgress: color.New(color.FgCyan, color.Bold),
	entity.ColumnDone:       color.New(color.FgGreen, color.Bold),
}

func renderBoard(w io.Writer, snap board.Snapshot) {
	for i, col := range snap.Columns {
		if i > 0 {
			fmt.Fprintln(w)
		}
		header := fmt.Sprintf("%s (%d)", col.Title, len(col.Cards))
		if c, ok := columnColors[col.ID]; ok {
			header = c.Sprint(header)
		}
		fmt.Fprintln(w, header)
		fmt.Fprintln(w, strings.Repeat("─", len(col.Title)+4))

		if len(col.Cards) == 0 {
			fmt.Fprintln(w, color.HiBlackString("  (empty)"))
			continue
		}
		for _, card := range col.Cards {
			fmt.Fprintf(w, "  %s  %s\n", color.HiBlackString(card.ID), card.Title)
		}
	}
}

func renderPage(w io.Writer, page *entity.TaskPage) {
	for _, t := range page.Tasks {
		status := fmt.Sprintf("%-11s", t.Status)
		if t.Status.Valid() {
			status = columnColors[entity.StatusToColumnID(t.Status)].Sprint(status)
		}
		fmt.Fprintf(w, "%s  %s  %s\n", t.ID, status, t.Title)
	}
	p := page.Pagination
	fmt.Fprintf(w, "page %d/%d, %d tasks\n", p.Page, max(p.TotalPages, 1), p.TotalCount)
}
