package grpc

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/St1cky1/taskboard/internal/board"
	"github.com/St1cky1/taskboard/internal/entity"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

var errDBDown = errors.New("db is down")

type memTasks struct {
	mu    sync.Mutex
	seq   int
	tasks []entity.Task
	err   error
}

func (m *memTasks) CreateTask(_ context.Context, req *entity.CreateTaskRequest, userID string) (*entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	title, err := entity.NormalizeTitle(req.Title)
	if err != nil {
		return nil, err
	}
	st := req.Status
	if st == "" {
		st = entity.StatusTodo
	}
	if !st.Valid() {
		return nil, entity.ErrInvalidTaskData
	}
	m.seq++
	task := entity.Task{
		ID:        strconv.Itoa(m.seq),
		Title:     title,
		Status:    st,
		OwnerID:   userID,
		CreatedAt: time.Date(2026, 1, m.seq, 0, 0, 0, 0, time.UTC),
	}
	m.tasks = append([]entity.Task{task}, m.tasks...)
	return &task, nil
}

func (m *memTasks) index(taskID, userID string) int {
	for i, t := range m.tasks {
		if t.ID == taskID && t.OwnerID == userID {
			return i
		}
	}
	return -1
}

func (m *memTasks) GetTask(_ context.Context, taskID, userID string) (*entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(taskID, userID)
	if i < 0 {
		return nil, entity.ErrTaskNotFound
	}
	task := m.tasks[i]
	return &task, nil
}

func (m *memTasks) UpdateTask(_ context.Context, taskID, userID string, req *entity.UpdateTaskRequest) (*entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.Title == nil && req.Status == nil {
		return nil, entity.ErrNoFieldsToUpdate
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, entity.ErrInvalidTaskData
	}
	i := m.index(taskID, userID)
	if i < 0 {
		return nil, entity.ErrTaskNotFound
	}
	if req.Title != nil {
		m.tasks[i].Title = *req.Title
	}
	if req.Status != nil {
		m.tasks[i].Status = *req.Status
	}
	task := m.tasks[i]
	return &task, nil
}

func (m *memTasks) DeleteTask(_ context.Context, taskID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(taskID, userID)
	if i < 0 {
		return entity.ErrTaskNotFound
	}
	m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	return nil
}

func (m *memTasks) ListTasks(ctx context.Context, userID string, q entity.ListTasksQuery) (*entity.TaskPage, error) {
	q, err := q.Normalize()
	if err != nil {
		return nil, err
	}
	all, err := m.ListBoardTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &entity.TaskPage{Tasks: all, Pagination: entity.NewPagination(q, len(all))}, nil
}

func (m *memTasks) ListBoardTasks(_ context.Context, userID string) ([]entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []entity.Task{}
	for _, t := range m.tasks {
		if t.OwnerID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

type staticTokens map[string]string

func (s staticTokens) ValidateAccessToken(token string) (string, error) {
	if userID, ok := s[token]; ok {
		return userID, nil
	}
	return "", entity.ErrInvalidToken
}

type harness struct {
	tasks *memTasks
	lis   *bufconn.Listener
	logs  *test.Hook
}

func startServer(t *testing.T) *harness {
	t.Helper()

	logger, hook := test.NewNullLogger()
	h := &harness{
		tasks: &memTasks{},
		lis:   bufconn.Listen(1 << 20),
		logs:  hook,
	}
	srv := NewGRPCServer(h.tasks, staticTokens{"alice-token": "alice", "bob-token": "bob"}, logger)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(h.lis) }()
	t.Cleanup(func() {
		srv.Stop()
		require.NoError(t, <-done)
	})
	return h
}

func (h *harness) dialer(ctx context.Context, _ string) (net.Conn, error) {
	return h.lis.DialContext(ctx)
}

func (h *harness) client(t *testing.T, token string) *Client {
	t.Helper()
	c, err := NewClient("passthrough:///bufnet", token, grpc.WithContextDialer(h.dialer))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCreateAndGetOverGRPC(t *testing.T) {
	h := startServer(t)
	c := h.client(t, "alice-token")
	ctx := context.Background()

	created, err := c.Create(ctx, "  Buy milk  ", "")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, entity.StatusTodo, created.Status)
	assert.Equal(t, "alice", created.OwnerID)

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *got)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), got.CreatedAt.UTC())
}

func TestUpdateDeleteAndListOverGRPC(t *testing.T) {
	h := startServer(t)
	c := h.client(t, "alice-token")
	ctx := context.Background()

	task, err := c.Create(ctx, "Write report", entity.StatusTodo)
	require.NoError(t, err)

	done := entity.StatusDone
	updated, err := c.Update(ctx, entity.UpdateTaskRequest{ID: task.ID, Status: &done})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDone, updated.Status)
	assert.Equal(t, "Write report", updated.Title)

	page, err := c.Page(ctx, entity.ListTasksQuery{})
	require.NoError(t, err)
	assert.Len(t, page.Tasks, 1)
	assert.Equal(t, 1, page.Pagination.TotalCount)

	require.NoError(t, c.Delete(ctx, task.ID))
	tasks, err := c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	assert.ErrorIs(t, c.Delete(ctx, task.ID), entity.ErrTaskNotFound)
}

func TestOtherUsersTasksAreNotFound(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()

	task, err := h.client(t, "alice-token").Create(ctx, "Private", "")
	require.NoError(t, err)

	_, err = h.client(t, "bob-token").Get(ctx, task.ID)
	assert.ErrorIs(t, err, entity.ErrTaskNotFound)
}

func TestUnauthenticatedCalls(t *testing.T) {
	h := startServer(t)

	_, err := h.client(t, "forged").List(context.Background())
	assert.ErrorIs(t, err, entity.ErrUnauthorized)

	// без метаданных вовсе
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(h.dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	var resp ListBoardTasksResponse
	err = conn.Invoke(context.Background(), methodListBoardTasks, &ListBoardTasksRequest{}, &resp,
		grpc.CallContentSubtype(CodecName))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestValidationCarriesFieldViolations(t *testing.T) {
	h := startServer(t)
	c := h.client(t, "alice-token")

	_, err := c.Create(context.Background(), "   ", "")
	assert.ErrorIs(t, err, entity.ErrInvalidTaskData)

	tests := []struct {
		name  string
		req   *CreateTaskRequest
		field string
	}{
		{"blank title", &CreateTaskRequest{Title: "   "}, "title"},
		{"unknown status", &CreateTaskRequest{Title: "ok", Status: "blocked"}, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer alice-token")
			var resp TaskResponse
			err := c.conn.Invoke(ctx, methodCreateTask, tt.req, &resp)

			st := status.Convert(err)
			require.Equal(t, codes.InvalidArgument, st.Code())
			require.Len(t, st.Details(), 1)
			br, ok := st.Details()[0].(*errdetails.BadRequest)
			require.True(t, ok)
			require.Len(t, br.GetFieldViolations(), 1)
			assert.Equal(t, tt.field, br.GetFieldViolations()[0].GetField())
		})
	}
}

func TestInternalErrorsAreMasked(t *testing.T) {
	h := startServer(t)
	h.tasks.err = errDBDown

	_, err := h.client(t, "alice-token").List(context.Background())
	st := status.Convert(err)
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, "failed to fetch tasks", st.Message())
	assert.False(t, strings.Contains(st.Message(), errDBDown.Error()))

	var logged bool
	for _, e := range h.logs.AllEntries() {
		if e.Level == log.ErrorLevel && e.Data[log.ErrorKey] == errDBDown {
			logged = true
		}
	}
	assert.True(t, logged)
}

func TestStoreOverGRPCClient(t *testing.T) {
	h := startServer(t)
	c := h.client(t, "alice-token")
	ctx := context.Background()

	one, err := c.Create(ctx, "One", entity.StatusTodo)
	require.NoError(t, err)
	two, err := c.Create(ctx, "Two", entity.StatusDone)
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	store := board.NewStore(c, logger)
	engine := board.NewEngine(store)
	store.Subscribe(engine.Sync)
	require.NoError(t, store.Load(ctx))

	_, err = engine.DragStart(board.TaskItem{ID: one.ID})
	require.NoError(t, err)
	_, err = engine.DragOver(board.TaskItem{ID: one.ID}, board.TaskItem{ID: two.ID})
	require.NoError(t, err)
	_, err = engine.DragEnd(board.TaskItem{ID: one.ID}, board.TaskItem{ID: two.ID})
	require.NoError(t, err)
	store.Wait()

	stored, err := c.Get(ctx, one.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDone, stored.Status)

	card, ok := engine.Card(one.ID)
	require.True(t, ok)
	assert.Equal(t, entity.ColumnDone, card.ColumnID)
}
