package handlers

import (
	"net/http"

	"github.com/St1cky1/taskboard/internal/board"
	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/St1cky1/taskboard/internal/infrastructure/auth"
	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

// TaskAPIFactory строит TaskAPI от имени пользователя
type TaskAPIFactory func(userID string) board.TaskAPI

type BoardHandler struct {
	sessions *board.Sessions
	tasksFor TaskAPIFactory
	logger   log.FieldLogger
}

func NewBoardHandler(sessions *board.Sessions, tasksFor TaskAPIFactory, logger log.FieldLogger) *BoardHandler {
	return &BoardHandler{
		sessions: sessions,
		tasksFor: tasksFor,
		logger:   logger,
	}
}

type sessionResponse struct {
	ID            string               `json:"id"`
	Snapshot      board.Snapshot       `json:"snapshot"`
	Notifications []board.Notification `json:"notifications,omitempty"`
}

type itemRef struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

type dragRequest struct {
	Type   board.DragEventType `json:"type"`
	Active itemRef             `json:"active"`
	Over   *itemRef            `json:"over,omitempty"`
}

type dragResponse struct {
	Announcement string         `json:"announcement"`
	Snapshot     board.Snapshot `json:"snapshot"`
}

type boardTaskRequest struct {
	Title  *string          `json:"title,omitempty"`
	Column *entity.ColumnID `json:"column,omitempty"`
}

func (h *BoardHandler) session(w http.ResponseWriter, r *http.Request) (*board.Session, bool) {
	sess, err := h.sessions.Get(chi.URLParam(r, "sid"), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, "open board", err)
		return nil, false
	}
	return sess, true
}

// Open создает сессию доски и сразу загружает задачи
func (h *BoardHandler) Open(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	sess, err := h.sessions.Open(r.Context(), userID, h.tasksFor(userID))
	if err != nil {
		writeError(w, r, h.logger, "load tasks", err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.ID, Snapshot: sess.Engine.Snapshot()})
}

func (h *BoardHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		ID:            sess.ID,
		Snapshot:      sess.Engine.Snapshot(),
		Notifications: sess.Drain(),
	})
}

func (h *BoardHandler) Close(w http.ResponseWriter, r *http.Request) {
	err := h.sessions.Close(chi.URLParam(r, "sid"), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, "close board", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BoardHandler) Drag(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dragRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, "move item", err)
		return
	}

	active, err := board.ParseItem(req.Active.Kind, req.Active.ID)
	if err != nil {
		writeError(w, r, h.logger, "move item", err)
		return
	}
	var over board.Item
	if req.Over != nil {
		if over, err = board.ParseItem(req.Over.Kind, req.Over.ID); err != nil {
			writeError(w, r, h.logger, "move item", err)
			return
		}
	}

	announcement, err := sess.Drag(req.Type, active, over)
	if err != nil {
		writeError(w, r, h.logger, "move item", err)
		return
	}
	writeJSON(w, http.StatusOK, dragResponse{Announcement: announcement, Snapshot: sess.Engine.Snapshot()})
}

// CreateTask - мутация уходит асинхронно, клиент получает 202 и текущий снимок
func (h *BoardHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req boardTaskRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, "create task", err)
		return
	}

	var title string
	var column entity.ColumnID
	if req.Title != nil {
		title = *req.Title
	}
	if req.Column != nil {
		column = *req.Column
	}
	if err := sess.CreateTask(title, column); err != nil {
		writeError(w, r, h.logger, "create task", err)
		return
	}
	writeJSON(w, http.StatusAccepted, sessionResponse{ID: sess.ID, Snapshot: sess.Engine.Snapshot()})
}

func (h *BoardHandler) EditTask(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req boardTaskRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, "update task", err)
		return
	}

	if err := sess.EditTask(chi.URLParam(r, "id"), req.Title, req.Column); err != nil {
		writeError(w, r, h.logger, "update task", err)
		return
	}
	writeJSON(w, http.StatusAccepted, sessionResponse{ID: sess.ID, Snapshot: sess.Engine.Snapshot()})
}

func (h *BoardHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := sess.DeleteTask(chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, "delete task", err)
		return
	}
	writeJSON(w, http.StatusAccepted, sessionResponse{ID: sess.ID, Snapshot: sess.Engine.Snapshot()})
}
