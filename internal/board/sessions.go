package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrSessionNotFound = errors.New("board session not found")

type DragEventType string

const (
	DragStartEvent  DragEventType = "start"
	DragOverEvent   DragEventType = "over"
	DragEndEvent    DragEventType = "end"
	DragCancelEvent DragEventType = "cancel"
)

// Session - одна открытая доска одного пользователя
type Session struct {
	ID     string
	UserID string
	Engine *Engine
	Store  *Store

	mu            sync.Mutex
	notifications []Notification
	lastSeen      time.Time
}

func (s *Session) push(n Notification) {
	s.mu.Lock()
	s.notifications = append(s.notifications, n)
	s.mu.Unlock()
}

// Drain возвращает накопленные уведомления и очищает их
func (s *Session) Drain() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notifications
	s.notifications = nil
	return out
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Drag передает событие перетаскивания движку
func (s *Session) Drag(event DragEventType, active, over Item) (string, error) {
	switch event {
	case DragStartEvent:
		return s.Engine.DragStart(active)
	case DragOverEvent:
		return s.Engine.DragOver(active, over)
	case DragEndEvent:
		return s.Engine.DragEnd(active, over)
	case DragCancelEvent:
		return s.Engine.DragCancel(active), nil
	default:
		return "", fmt.Errorf("%w: drag event %q", ErrUnknownItem, event)
	}
}

// CreateTask проходит через CreateForm
func (s *Session) CreateTask(title string, column entity.ColumnID) error {
	form := NewCreateForm(s.Store)
	form.Title = title
	if column != "" {
		form.Column = column
	}
	return form.Submit()
}

// EditTask проходит через EditForm; nil поля не меняются
func (s *Session) EditTask(taskID string, title *string, column *entity.ColumnID) error {
	card, ok := s.Engine.Card(taskID)
	if !ok {
		return entity.ErrTaskNotFound
	}
	form := OpenEditForm(s.Store, card)
	if title != nil {
		form.Title = *title
	}
	if column != nil {
		form.Column = *column
	}
	return form.Save()
}

// DeleteTask проходит через DeleteDialog
func (s *Session) DeleteTask(taskID string) error {
	card, ok := s.Engine.Card(taskID)
	if !ok {
		return entity.ErrTaskNotFound
	}
	OpenDeleteDialog(s.Store, card).Confirm()
	return nil
}

// MaxSessionsPerUser - сколько досок один пользователь держит открытыми;
// при превышении закрывается давно не используемая
const MaxSessionsPerUser = 5

// Sessions - реестр досок; сессия видна только своему владельцу
type Sessions struct {
	mu      sync.Mutex
	byID    map[string]*Session
	ttl     time.Duration
	perUser int
	logger  log.FieldLogger
	now     func() time.Time
}

func NewSessions(ttl time.Duration, logger log.FieldLogger) *Sessions {
	return &Sessions{
		byID:    make(map[string]*Session),
		ttl:     ttl,
		perUser: MaxSessionsPerUser,
		logger:  logger,
		now:     time.Now,
	}
}

// Open создает сессию и синхронно загружает задачи
func (r *Sessions) Open(ctx context.Context, userID string, api TaskAPI) (*Session, error) {
	if userID == "" {
		return nil, entity.ErrUnauthorized
	}

	store := NewStore(api, r.logger.WithField("user_id", userID))
	sess := &Session{
		ID:       uuid.NewString(),
		UserID:   userID,
		Engine:   NewEngine(store),
		Store:    store,
		lastSeen: r.now(),
	}
	store.Subscribe(sess.Engine.Sync)
	store.OnNotification(sess.push)

	if err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	// ошибка первой загрузки возвращается вызывающему, а не копится
	sess.Drain()

	r.mu.Lock()
	evicted := r.evictOldest(userID)
	r.byID[sess.ID] = sess
	r.mu.Unlock()

	if evicted != "" {
		r.logger.WithFields(log.Fields{"session_id": evicted, "user_id": userID}).Debug("board session replaced")
	}
	r.logger.WithFields(log.Fields{"session_id": sess.ID, "user_id": userID}).Debug("board session opened")
	return sess, nil
}

func (r *Sessions) Get(id, userID string) (*Session, error) {
	r.mu.Lock()
	sess, ok := r.byID[id]
	r.mu.Unlock()

	if !ok || sess.UserID != userID {
		return nil, ErrSessionNotFound
	}
	sess.touch(r.now())
	return sess, nil
}

func (r *Sessions) Close(id, userID string) error {
	r.mu.Lock()
	sess, ok := r.byID[id]
	if !ok || sess.UserID != userID {
		r.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(r.byID, id)
	r.mu.Unlock()

	r.logger.WithField("session_id", id).Debug("board session closed")
	return nil
}

// evictOldest освобождает место под новую сессию пользователя; вызывается под r.mu
func (r *Sessions) evictOldest(userID string) string {
	var (
		oldest   *Session
		oldestAt time.Time
		count    int
	)
	for _, sess := range r.byID {
		if sess.UserID != userID {
			continue
		}
		count++
		if at := sess.idleSince(); oldest == nil || at.Before(oldestAt) {
			oldest, oldestAt = sess, at
		}
	}
	if oldest == nil || count < r.perUser {
		return ""
	}
	delete(r.byID, oldest.ID)
	return oldest.ID
}

func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// Sweep удаляет сессии, простаивающие дольше ttl
func (r *Sessions) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, sess := range r.byID {
		if sess.idleSince().Before(cutoff) {
			delete(r.byID, id)
			removed++
		}
	}
	if removed > 0 {
		r.logger.WithField("count", removed).Info("idle board sessions removed")
	}
	return removed
}

// Run периодически вызывает Sweep до отмены ctx
func (r *Sessions) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Sweep()
		}
	}
}
