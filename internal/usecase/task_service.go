package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/St1cky1/taskboard/internal/repository"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/St1cky1/taskboard/internal/usecase"

// RabbitMQPublisher интерфейс для публикации в RabbitMQ
type RabbitMQPublisher interface {
	PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error
}

type TaskService struct {
	taskRepo  repository.ITaskRepository
	userRepo  repository.IUserRepository
	auditRepo repository.ITaskAuditRepository
	rabbitMQ  RabbitMQPublisher
	logger    log.FieldLogger
	now       func() time.Time
}

func NewTaskService(
	taskRepo repository.ITaskRepository,
	userRepo repository.IUserRepository,
	auditRepo repository.ITaskAuditRepository,
	rabbitMQ RabbitMQPublisher,
	logger log.FieldLogger,
) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		rabbitMQ:  rabbitMQ,
		logger:    logger,
		now:       time.Now,
	}
}

func startSpan(ctx context.Context, name, userID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attribute.String("user.id", userID)))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *TaskService) CreateTask(ctx context.Context, req *entity.CreateTaskRequest, userID string) (task *entity.Task, err error) {
	ctx, span := startSpan(ctx, "TaskService.CreateTask", userID)
	defer func() { endSpan(span, err) }()

	if userID == "" {
		return nil, entity.ErrUnauthorized
	}

	// 1. Валидация входных данных
	title, err := entity.NormalizeTitle(req.Title)
	if err != nil {
		return nil, fmt.Errorf("%w: title must be 1..%d characters", entity.ErrInvalidTaskData, entity.MaxTitleLength)
	}
	status := req.Status
	if status == "" {
		status = entity.StatusTodo
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", entity.ErrInvalidTaskData, status)
	}

	// 2. Проверяем что пользователь существует
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entity.ErrUserNotFound
	}

	// 3. Владелец всегда из контекста, не из тела запроса
	task, err = s.taskRepo.Create(ctx, &entity.CreateTaskRequest{
		Title:   title,
		Status:  status,
		OwnerID: userID,
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("task.id", task.ID))

	s.sendAuditMessage(entity.ActionCreate, userID, task.ID, nil, task)

	return task, nil
}

// GetTask - чужая задача неотличима от несуществующей
func (s *TaskService) GetTask(ctx context.Context, taskID string, userID string) (task *entity.Task, err error) {
	ctx, span := startSpan(ctx, "TaskService.GetTask", userID)
	defer func() { endSpan(span, err) }()

	return s.ownedTask(ctx, taskID, userID)
}

func (s *TaskService) ownedTask(ctx context.Context, taskID, userID string) (*entity.Task, error) {
	if userID == "" {
		return nil, entity.ErrUnauthorized
	}

	task, err := s.taskRepo.GetByTaskID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil || task.OwnerID != userID {
		return nil, entity.ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, taskID string, userID string, req *entity.UpdateTaskRequest) (task *entity.Task, err error) {
	ctx, span := startSpan(ctx, "TaskService.UpdateTask", userID)
	defer func() { endSpan(span, err) }()

	if userID == "" {
		return nil, entity.ErrUnauthorized
	}

	// 1. Подготавливаем обновления
	updates := make(map[string]interface{})

	if req.Title != nil {
		title, err := entity.NormalizeTitle(*req.Title)
		if err != nil {
			return nil, fmt.Errorf("%w: title must be 1..%d characters", entity.ErrInvalidTaskData, entity.MaxTitleLength)
		}
		updates["title"] = title
	}

	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", entity.ErrInvalidTaskData, *req.Status)
		}
		updates["status"] = string(*req.Status)
	}

	if len(updates) == 0 {
		return nil, entity.ErrNoFieldsToUpdate
	}

	// 2. Получаем текущую задачу и проверяем владельца
	oldTask, err := s.ownedTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	// 3. Обновляем задачу
	task, err = s.taskRepo.Update(ctx, taskID, updates)
	if err != nil {
		return nil, err
	}
	if task == nil {
		// удалили между чтением и записью
		return nil, entity.ErrTaskNotFound
	}

	s.sendAuditMessage(entity.ActionUpdate, userID, taskID, oldTask, task)

	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, taskID string, userID string) (err error) {
	ctx, span := startSpan(ctx, "TaskService.DeleteTask", userID)
	defer func() { endSpan(span, err) }()

	// 1. Получаем задачу (для аудита и проверки прав)
	task, err := s.ownedTask(ctx, taskID, userID)
	if err != nil {
		return err
	}

	// 2. Удаляем задачу
	if err := s.taskRepo.Delete(ctx, taskID, userID); err != nil {
		return err
	}

	s.sendAuditMessage(entity.ActionDelete, userID, taskID, task, nil)

	return nil
}

// ListTasks - страница задач пользователя
func (s *TaskService) ListTasks(ctx context.Context, userID string, q entity.ListTasksQuery) (page *entity.TaskPage, err error) {
	ctx, span := startSpan(ctx, "TaskService.ListTasks", userID)
	defer func() { endSpan(span, err) }()

	if userID == "" {
		return nil, entity.ErrUnauthorized
	}

	q, err = q.Normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: page must be >= 1 and limit 1..%d", entity.ErrInvalidTaskData, entity.MaxPageSize)
	}

	tasks, total, err := s.taskRepo.List(ctx, userID, q)
	if err != nil {
		return nil, err
	}

	return &entity.TaskPage{
		Tasks:      tasks,
		Pagination: entity.NewPagination(q, total),
	}, nil
}

// ListBoardTasks - все задачи пользователя для доски, новые первыми
func (s *TaskService) ListBoardTasks(ctx context.Context, userID string) (tasks []entity.Task, err error) {
	ctx, span := startSpan(ctx, "TaskService.ListBoardTasks", userID)
	defer func() { endSpan(span, err) }()

	if userID == "" {
		return nil, entity.ErrUnauthorized
	}

	tasks, err = s.taskRepo.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("tasks.count", len(tasks)))
	return tasks, nil
}

// TaskHistory - записи аудита по задаче
func (s *TaskService) TaskHistory(ctx context.Context, taskID string, userID string) (audits []entity.TaskAudit, err error) {
	ctx, span := startSpan(ctx, "TaskService.TaskHistory", userID)
	defer func() { endSpan(span, err) }()

	if _, err := s.ownedTask(ctx, taskID, userID); err != nil {
		return nil, err
	}
	return s.auditRepo.ListByTaskID(ctx, taskID)
}

func taskValues(task *entity.Task) map[string]any {
	return map[string]any{
		"title":    task.Title,
		"status":   task.Status,
		"owner_id": task.OwnerID,
	}
}

// Вспомогательный метод для отправки аудита
func (s *TaskService) sendAuditMessage(
	action entity.ActionType,
	userID string,
	taskID string,
	oldTask *entity.Task,
	newTask *entity.Task,
) {
	if s.rabbitMQ == nil {
		return
	}

	auditMsg := &entity.AuditMessage{
		Action:    action,
		UserID:    userID,
		EntityID:  taskID,
		Timestamp: s.now(),
	}

	if oldTask != nil {
		auditMsg.OldValues = taskValues(oldTask)
	}
	if newTask != nil {
		auditMsg.NewValues = taskValues(newTask)
	}

	// Вычисляем изменения
	if oldTask != nil && newTask != nil {
		changes := make(map[string]any)
		if oldTask.Title != newTask.Title {
			changes["title"] = map[string]any{"old": oldTask.Title, "new": newTask.Title}
		}
		if oldTask.Status != newTask.Status {
			changes["status"] = map[string]any{"old": oldTask.Status, "new": newTask.Status}
		}
		auditMsg.Changes = changes
	}

	// Асинхронная отправка в RabbitMQ
	go func() {
		logger := s.logger.WithFields(log.Fields{"action": action, "task_id": taskID})
		if err := s.rabbitMQ.PublishAuditMessage(context.Background(), auditMsg); err != nil {
			logger.WithError(err).Error("ошибка отправки аудита в RabbitMQ")
			return
		}
		logger.Debug("аудит отправлен в RabbitMQ")
	}()
}
