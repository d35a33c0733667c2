package handlers

import (
	"net/http"

	"github.com/St1cky1/taskboard/internal/board"
	"github.com/St1cky1/taskboard/internal/infrastructure/auth"
	log "github.com/sirupsen/logrus"
)

// PageHandler отдает страницы, которые охраняет RouteGuard
type PageHandler struct {
	taskService TaskService
	logger      log.FieldLogger
}

func NewPageHandler(taskService TaskService, logger log.FieldLogger) *PageHandler {
	return &PageHandler{
		taskService: taskService,
		logger:      logger,
	}
}

type pageResponse struct {
	Page        string `json:"page"`
	CallbackURL string `json:"callback_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Dashboard - снимок доски без сессии: только чтение
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.ListBoardTasks(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, "fetch tasks", err)
		return
	}

	engine := board.NewEngine(nil)
	engine.Sync(tasks)
	writeJSON(w, http.StatusOK, engine.Snapshot())
}

func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pageResponse{Page: "login", CallbackURL: r.URL.Query().Get("callbackUrl")})
}

func (h *PageHandler) Signup(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pageResponse{Page: "signup"})
}

func (h *PageHandler) AuthError(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pageResponse{Page: "auth-error", Error: r.URL.Query().Get("error")})
}
