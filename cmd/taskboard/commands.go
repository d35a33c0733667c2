package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/St1cky1/taskboard/internal/apiclient"
	"github.com/St1cky1/taskboard/internal/board"
	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := apiclient.New(a.server, "")
			resp, err := c.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := a.saveCredentials(credentials{Server: a.server, Token: resp.AccessToken}); err != nil {
				return fmt.Errorf("save credentials: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s logged in as %s\n", color.GreenString("✓"), resp.User.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newTasksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and edit tasks",
	}
	cmd.AddCommand(newTasksListCmd(a), newTasksCreateCmd(a), newTasksEditCmd(a), newTasksDeleteCmd(a))
	return cmd
}

func newTasksListCmd(a *app) *cobra.Command {
	var q entity.ListTasksQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks page by page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.remote()
			if err != nil {
				return err
			}
			page, err := r.Page(cmd.Context(), q)
			if err != nil {
				return err
			}
			renderPage(cmd.OutOrStdout(), page)
			return nil
		},
	}
	cmd.Flags().IntVar(&q.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&q.Limit, "limit", entity.DefaultPageSize, "tasks per page")
	cmd.Flags().StringVar(&q.Search, "search", "", "case-insensitive title filter")
	return cmd
}

func newTasksCreateCmd(a *app) *cobra.Command {
	var column string

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.remote()
			if err != nil {
				return err
			}
			lb, err := openBoard(cmd.Context(), r, a.logger())
			if err != nil {
				return err
			}

			form := board.NewCreateForm(lb.store)
			form.Title = args[0]
			if column != "" {
				form.Column = entity.ColumnID(column)
			}
			if err := form.Submit(); err != nil {
				return fmt.Errorf("%w: title must be 1-%d characters and column one of %v",
					err, entity.MaxTitleLength, entity.ColumnIDs)
			}
			if err := lb.settle(cmd.ErrOrStderr()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s created %q\n", color.GreenString("✓"), strings.TrimSpace(args[0]))
			return nil
		},
	}
	cmd.Flags().StringVar(&column, "column", string(entity.ColumnTodo), "column: todo, in-progress or done")
	return cmd
}

func newTasksEditCmd(a *app) *cobra.Command {
	var title, column string

	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Change the title or column of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("title") && !cmd.Flags().Changed("column") {
				return errors.New("nothing to change: pass --title and/or --column")
			}
			r, err := a.remote()
			if err != nil {
				return err
			}
			lb, err := openBoard(cmd.Context(), r, a.logger())
			if err != nil {
				return err
			}
			card, ok := lb.engine.Card(args[0])
			if !ok {
				return entity.ErrTaskNotFound
			}

			form := board.OpenEditForm(lb.store, card)
			if cmd.Flags().Changed("title") {
				form.Title = title
			}
			if cmd.Flags().Changed("column") {
				form.Column = entity.ColumnID(column)
			}
			if err := form.Save(); err != nil {
				return err
			}
			if err := lb.settle(cmd.ErrOrStderr()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated %s\n", color.GreenString("✓"), card.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&column, "column", "", "new column: todo, in-progress or done")
	return cmd
}

func newTasksDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.remote()
			if err != nil {
				return err
			}
			lb, err := openBoard(cmd.Context(), r, a.logger())
			if err != nil {
				return err
			}
			card, ok := lb.engine.Card(args[0])
			if !ok {
				return entity.ErrTaskNotFound
			}

			board.OpenDeleteDialog(lb.store, card).Confirm()
			if err := lb.settle(cmd.ErrOrStderr()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s deleted %q\n", color.GreenString("✓"), card.Title)
			return nil
		},
	}
}

func newBoardCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the board and drag items on it",
	}
	cmd.AddCommand(newBoardShowCmd(a), newBoardDragCmd(a))
	return cmd
}

func newBoardShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.remote()
			if err != nil {
				return err
			}
			lb, err := openBoard(cmd.Context(), r, a.logger())
			if err != nil {
				return err
			}
			renderBoard(cmd.OutOrStdout(), lb.engine.Snapshot())
			return nil
		},
	}
}

// parseRef разбирает "task:<id>" или "column:<id>"
func parseRef(ref string) (board.Item, error) {
	kind, id, ok := strings.Cut(ref, ":")
	if !ok {
		return nil, fmt.Errorf("%w: %q, want task:<id> or column:<id>", board.ErrUnknownItem, ref)
	}
	return board.ParseItem(kind, id)
}

func newBoardDragCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drag <active> <over>",
		Short: "Drag a task or column over another item and drop it",
		Long: `Drag simulates a full drag: pick up <active>, move it over <over> and drop it.
Items are written as task:<id> or column:<todo|in-progress|done>.
Dropping a task over an item of another column moves it to that column.
Column order is local to the view and is not saved.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			active, err := parseRef(args[0])
			if err != nil {
				return err
			}
			over, err := parseRef(args[1])
			if err != nil {
				return err
			}

			r, err := a.remote()
			if err != nil {
				return err
			}
			lb, err := openBoard(cmd.Context(), r, a.logger())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			steps := []func() (string, error){
				func() (string, error) { return lb.engine.DragStart(active) },
				func() (string, error) { return lb.engine.DragOver(active, over) },
				func() (string, error) { return lb.engine.DragEnd(active, over) },
			}
			for _, step := range steps {
				msg, err := step()
				if err != nil {
					lb.engine.DragCancel(active)
					return err
				}
				if msg != "" {
					fmt.Fprintln(out, color.HiBlackString(msg))
				}
			}

			// снимок сразу после drop, до ожидания мутаций
			snap := lb.engine.Snapshot()
			if err := lb.settle(cmd.ErrOrStderr()); err != nil {
				return err
			}
			fmt.Fprintln(out)
			renderBoard(out, snap)
			return nil
		},
	}
}
