package board

import (
	"context"
	"sync"
	"time"

	"github.com/St1cky1/taskboard/internal/entity"
	log "github.com/sirupsen/logrus"
)

// TaskAPI - удаленный API задач одного пользователя
type TaskAPI interface {
	List(ctx context.Context) ([]entity.Task, error)
	Create(ctx context.Context, title string, status entity.TaskStatus) (*entity.Task, error)
	Update(ctx context.Context, req entity.UpdateTaskRequest) (*entity.Task, error)
	Delete(ctx context.Context, taskID string) error
}

const (
	OpLoad   = "load"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Notification - временное уведомление об ошибке мутации
type Notification struct {
	Op      string    `json:"op"`
	TaskID  string    `json:"task_id,omitempty"`
	Message string    `json:"message"`
	Error   string    `json:"error"`
	At      time.Time `json:"at"`
}

// Store - адаптер над TaskAPI. Мутации асинхронные, после каждой
// успешной мутации список перечитывается целиком.
type Store struct {
	api    TaskAPI
	logger log.FieldLogger

	mu       sync.Mutex
	started  uint64 // номер последней начатой выборки
	applied  uint64 // номер последней примененной выборки
	tasks    []entity.Task
	onList   func([]entity.Task)
	onNotify func(Notification)
	inflight sync.WaitGroup
	now      func() time.Time
}

func NewStore(api TaskAPI, logger log.FieldLogger) *Store {
	return &Store{
		api:    api,
		logger: logger,
		now:    time.Now,
	}
}

// Subscribe регистрирует получателя полного списка задач
func (s *Store) Subscribe(fn func([]entity.Task)) {
	s.mu.Lock()
	s.onList = fn
	s.mu.Unlock()
}

// OnNotification регистрирует получателя уведомлений об ошибках
func (s *Store) OnNotification(fn func(Notification)) {
	s.mu.Lock()
	s.onNotify = fn
	s.mu.Unlock()
}

// Tasks - последний примененный список
func (s *Store) Tasks() []entity.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Load синхронно загружает список
func (s *Store) Load(ctx context.Context) error {
	return s.fetch(ctx)
}

// Refetch перечитывает список в фоне
func (s *Store) Refetch() {
	s.dispatch(func(ctx context.Context) {
		_ = s.fetch(ctx)
	})
}

func (s *Store) Create(title string, status entity.TaskStatus) {
	s.dispatch(func(ctx context.Context) {
		if _, err := s.api.Create(ctx, title, status); err != nil {
			s.fail(OpCreate, "", err)
			return
		}
		_ = s.fetch(ctx)
	})
}

func (s *Store) Update(req entity.UpdateTaskRequest) {
	s.dispatch(func(ctx context.Context) {
		if _, err := s.api.Update(ctx, req); err != nil {
			s.fail(OpUpdate, req.ID, err)
			return
		}
		_ = s.fetch(ctx)
	})
}

func (s *Store) Delete(taskID string) {
	s.dispatch(func(ctx context.Context) {
		if err := s.api.Delete(ctx, taskID); err != nil {
			s.fail(OpDelete, taskID, err)
			return
		}
		_ = s.fetch(ctx)
	})
}

// Wait ждет завершения всех запущенных вызовов
func (s *Store) Wait() {
	s.inflight.Wait()
}

// dispatch запускает вызов в горутине; отменить его нельзя
func (s *Store) dispatch(fn func(ctx context.Context)) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		fn(context.Background())
	}()
}

func (s *Store) fetch(ctx context.Context) error {
	s.mu.Lock()
	s.started++
	seq := s.started
	s.mu.Unlock()

	tasks, err := s.api.List(ctx)
	if err != nil {
		s.fail(OpLoad, "", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// ответ на выборку, начатую раньше уже примененной, отбрасываем
	if seq < s.applied {
		s.logger.WithField("seq", seq).Debug("устаревший список задач отброшен")
		return nil
	}
	s.applied = seq
	s.tasks = tasks
	if s.onList != nil {
		s.onList(tasks)
	}
	return nil
}

func failureMessage(op string) string {
	if op == OpLoad {
		return "failed to load tasks"
	}
	return "failed to " + op + " task"
}

func (s *Store) fail(op, taskID string, err error) {
	n := Notification{
		Op:      op,
		TaskID:  taskID,
		Message: failureMessage(op),
		Error:   err.Error(),
		At:      s.now(),
	}
	s.logger.WithError(err).WithFields(log.Fields{"op": op, "task_id": taskID}).Error(n.Message)

	s.mu.Lock()
	notify := s.onNotify
	s.mu.Unlock()
	if notify != nil {
		notify(n)
	}
}
