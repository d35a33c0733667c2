package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/St1cky1/taskboard/internal/infrastructure/auth"
	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

// TaskService - операции над задачами, нужные обработчикам
type TaskService interface {
	CreateTask(ctx context.Context, req *entity.CreateTaskRequest, userID string) (*entity.Task, error)
	GetTask(ctx context.Context, taskID string, userID string) (*entity.Task, error)
	UpdateTask(ctx context.Context, taskID string, userID string, req *entity.UpdateTaskRequest) (*entity.Task, error)
	DeleteTask(ctx context.Context, taskID string, userID string) error
	ListTasks(ctx context.Context, userID string, q entity.ListTasksQuery) (*entity.TaskPage, error)
	ListBoardTasks(ctx context.Context, userID string) ([]entity.Task, error)
	TaskHistory(ctx context.Context, taskID string, userID string) ([]entity.TaskAudit, error)
}

type TaskHandler struct {
	taskService TaskService
	logger      log.FieldLogger
}

func NewTaskHandler(taskService TaskService, logger log.FieldLogger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// создаем новую задачу
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req entity.CreateTaskRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, "create task", err)
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), &req, auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, "create task", err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.taskService.GetTask(r.Context(), chi.URLParam(r, "id"), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, "fetch task", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req entity.UpdateTaskRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, "update task", err)
		return
	}
	taskID := chi.URLParam(r, "id")
	req.ID = taskID

	task, err := h.taskService.UpdateTask(r.Context(), taskID, auth.UserIDFromContext(r.Context()), &req)
	if err != nil {
		writeError(w, r, h.logger, "update task", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	err := h.taskService.DeleteTask(r.Context(), chi.URLParam(r, "id"), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, "delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTasks - ?page=&limit=&search=
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		writeError(w, r, h.logger, "fetch tasks", err)
		return
	}

	page, err := h.taskService.ListTasks(r.Context(), auth.UserIDFromContext(r.Context()), q)
	if err != nil {
		writeError(w, r, h.logger, "fetch tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ListBoardTasks - все задачи для доски
func (h *TaskHandler) ListBoardTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.ListBoardTasks(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, "fetch tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) TaskHistory(w http.ResponseWriter, r *http.Request) {
	audits, err := h.taskService.TaskHistory(r.Context(), chi.URLParam(r, "id"), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, "fetch task history", err)
		return
	}
	if audits == nil {
		audits = []entity.TaskAudit{}
	}
	writeJSON(w, http.StatusOK, audits)
}

func parseListQuery(r *http.Request) (entity.ListTasksQuery, error) {
	values := r.URL.Query()
	q := entity.ListTasksQuery{Search: values.Get("search")}

	for name, dst := range map[string]*int{"page": &q.Page, "limit": &q.Limit} {
		raw := values.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, entity.ErrInvalidTaskData
		}
		*dst = n
	}
	return q, nil
}
