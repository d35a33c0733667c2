package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/St1cky1/taskboard/internal/board"
	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
)

// localBoard - доска в процессе CLI: store, движок и собранные ошибки
type localBoard struct {
	store  *board.Store
	engine *board.Engine

	mu       sync.Mutex
	failures []board.Notification
}

func openBoard(ctx context.Context, api board.TaskAPI, logger log.FieldLogger) (*localBoard, error) {
	store := board.NewStore(api, logger)
	lb := &localBoard{store: store, engine: board.NewEngine(store)}
	store.Subscribe(lb.engine.Sync)
	store.OnNotification(func(n board.Notification) {
		lb.mu.Lock()
		lb.failures = append(lb.failures, n)
		lb.mu.Unlock()
	})

	if err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return lb, nil
}

// settle ждет все отправленные мутации; ошибка, если хоть одна не прошла
func (lb *localBoard) settle(w io.Writer) error {
	lb.store.Wait()

	lb.mu.Lock()
	failures := lb.failures
	lb.failures = nil
	lb.mu.Unlock()

	if len(failures) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(failures))
	for _, n := range failures {
		fmt.Fprintf(w, "%s %s: %s\n", color.RedString("✗"), n.Message, n.Error)
		msgs = append(msgs, n.Message)
	}
	return errors.New(strings.Join(msgs, "; "))
}
