package api

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/St1cky1/taskboard/internal/board"
	"github.com/St1cky1/taskboard/internal/entity"
)

// fakeTasks - задачи в памяти с семантикой владения как у TaskService
type fakeTasks struct {
	mu    sync.Mutex
	seq   int
	tasks []entity.Task
	err   error
}

func (f *fakeTasks) add(owner, title string, status entity.TaskStatus) entity.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t := entity.Task{
		ID:        strconv.Itoa(f.seq),
		Title:     title,
		Status:    status,
		OwnerID:   owner,
		CreatedAt: time.Unix(int64(f.seq), 0),
	}
	f.tasks = append([]entity.Task{t}, f.tasks...)
	return t
}

func (f *fakeTasks) find(taskID, userID string) int {
	for i, t := range f.tasks {
		if t.ID == taskID && t.OwnerID == userID {
			return i
		}
	}
	return -1
}

func (f *fakeTasks) CreateTask(_ context.Context, req *entity.CreateTaskRequest, userID string) (*entity.Task, error) {
	f.mu.Lock()
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	title, err := entity.NormalizeTitle(req.Title)
	if err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = entity.StatusTodo
	}
	t := f.add(userID, title, status)
	return &t, nil
}

func (f *fakeTasks) GetTask(_ context.Context, taskID, userID string) (*entity.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	i := f.find(taskID, userID)
	if i < 0 {
		return nil, entity.ErrTaskNotFound
	}
	t := f.tasks[i]
	return &t, nil
}

func (f *fakeTasks) UpdateTask(_ context.Context, taskID, userID string, req *entity.UpdateTaskRequest) (*entity.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if req.Title == nil && req.Status == nil {
		return nil, entity.ErrNoFieldsToUpdate
	}
	i := f.find(taskID, userID)
	if i < 0 {
		return nil, entity.ErrTaskNotFound
	}
	if req.Title != nil {
		f.tasks[i].Title = *req.Title
	}
	if req.Status != nil {
		f.tasks[i].Status = *req.Status
	}
	t := f.tasks[i]
	return &t, nil
}

func (f *fakeTasks) DeleteTask(_ context.Context, taskID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	i := f.find(taskID, userID)
	if i < 0 {
		return entity.ErrTaskNotFound
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	return nil
}

func (f *fakeTasks) ListTasks(ctx context.Context, userID string, q entity.ListTasksQuery) (*entity.TaskPage, error) {
	q, err := q.Normalize()
	if err != nil {
		return nil, err
	}
	all, err := f.ListBoardTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	matched := make([]entity.Task, 0, len(all))
	for _, t := range all {
		if strings.Contains(strings.ToLower(t.Title), strings.ToLower(q.Search)) {
			matched = append(matched, t)
		}
	}
	page := []entity.Task{}
	if off := q.Offset(); off < len(matched) {
		page = matched[off:min(off+q.Limit, len(matched))]
	}
	return &entity.TaskPage{Tasks: page, Pagination: entity.NewPagination(q, len(matched))}, nil
}

func (f *fakeTasks) ListBoardTasks(_ context.Context, userID string) ([]entity.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []entity.Task{}
	for _, t := range f.tasks {
		if t.OwnerID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTasks) TaskHistory(ctx context.Context, taskID, userID string) ([]entity.TaskAudit, error) {
	if _, err := f.GetTask(ctx, taskID, userID); err != nil {
		return nil, err
	}
	return nil, nil
}

// userAPI - board.TaskAPI поверх fakeTasks от имени пользователя
type userAPI struct {
	tasks  *fakeTasks
	userID string
}

func (u userAPI) List(ctx context.Context) ([]entity.Task, error) {
	return u.tasks.ListBoardTasks(ctx, u.userID)
}

func (u userAPI) Create(ctx context.Context, title string, status entity.TaskStatus) (*entity.Task, error) {
	return u.tasks.CreateTask(ctx, &entity.CreateTaskRequest{Title: title, Status: status}, u.userID)
}

func (u userAPI) Update(ctx context.Context, req entity.UpdateTaskRequest) (*entity.Task, error) {
	return u.tasks.UpdateTask(ctx, req.ID, u.userID, &req)
}

func (u userAPI) Delete(ctx context.Context, taskID string) error {
	return u.tasks.DeleteTask(ctx, taskID, u.userID)
}

var _ board.TaskAPI = userAPI{}

// fakeTokens принимает токены вида "token-<userID>"
type fakeTokens struct{}

func (fakeTokens) ValidateAccessToken(token string) (string, error) {
	userID, ok := strings.CutPrefix(token, "token-")
	if !ok || userID == "" {
		return "", entity.ErrInvalidToken
	}
	return userID, nil
}

type fakeAuth struct {
	loggedOut []string
}

func (f *fakeAuth) Register(_ context.Context, req *entity.RegisterRequest) (*entity.LoginResponse, error) {
	if req.Email == "taken@example.com" {
		return nil, entity.ErrEmailTaken
	}
	return f.issue(req.Email), nil
}

func (f *fakeAuth) Login(_ context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error) {
	if req.Password != "secret-pass" {
		return nil, entity.ErrInvalidCredentials
	}
	return f.issue(req.Email), nil
}

func (f *fakeAuth) issue(email string) *entity.LoginResponse {
	userID := strings.SplitN(email, "@", 2)[0]
	return &entity.LoginResponse{
		User:         &entity.User{ID: userID, Email: email, IsActive: true},
		AccessToken:  "token-" + userID,
		RefreshToken: "refresh-" + userID,
	}
}

func (f *fakeAuth) RefreshToken(_ context.Context, token string) (*entity.RefreshTokenResponse, error) {
	userID, ok := strings.CutPrefix(token, "refresh-")
	if !ok {
		return nil, entity.ErrInvalidToken
	}
	return &entity.RefreshTokenResponse{AccessToken: "token-" + userID, RefreshToken: "refresh-" + userID}, nil
}

func (f *fakeAuth) Logout(_ context.Context, userID string) error {
	f.loggedOut = append(f.loggedOut, userID)
	return nil
}

type fakeUsers struct{}

func (fakeUsers) GetUser(_ context.Context, userID string) (*entity.User, error) {
	return &entity.User{ID: userID, Name: "User " + userID, IsActive: true}, nil
}

func (fakeUsers) UpdateUser(_ context.Context, userID string, req *entity.UpdateUserRequest) (*entity.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, entity.ErrInvalidUserData
	}
	return &entity.User{ID: userID, Name: name, IsActive: true}, nil
}

type fakeHealth struct{ err error }

func (f fakeHealth) HealthCheck(context.Context) error { return f.err }

var errBoom = errors.New("connection reset")
