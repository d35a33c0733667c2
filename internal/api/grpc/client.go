package grpc

import (
	"context"
	"fmt"

	"github.com/St1cky1/taskboard/internal/entity"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Client - клиент taskboard.v1.TaskService от имени одного пользователя.
// Реализует board.TaskAPI.
type Client struct {
	conn  *grpc.ClientConn
	token string
}

// NewClient по умолчанию подключается без TLS; opts дополняют настройки
func NewClient(target, token string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}, opts...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", target, err)
	}
	return &Client{conn: conn, token: token}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
	if err := c.conn.Invoke(ctx, method, req, resp); err != nil {
		return fromStatus(err)
	}
	return nil
}

// fromStatus возвращает ошибкам сервера их доменный вид
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", entity.ErrInvalidTaskData, st.Message())
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", entity.ErrUnauthorized, st.Message())
	case codes.NotFound:
		return entity.ErrTaskNotFound
	default:
		return err
	}
}

func (c *Client) List(ctx context.Context) ([]entity.Task, error) {
	var resp ListBoardTasksResponse
	if err := c.invoke(ctx, methodListBoardTasks, &ListBoardTasksRequest{}, &resp); err != nil {
		return nil, err
	}
	tasks := make([]entity.Task, len(resp.Tasks))
	for i, t := range resp.Tasks {
		tasks[i] = t.toEntity()
	}
	return tasks, nil
}

func (c *Client) Create(ctx context.Context, title string, st entity.TaskStatus) (*entity.Task, error) {
	var resp TaskResponse
	if err := c.invoke(ctx, methodCreateTask, &CreateTaskRequest{Title: title, Status: string(st)}, &resp); err != nil {
		return nil, err
	}
	task := resp.toEntity()
	return &task, nil
}

func (c *Client) Get(ctx context.Context, taskID string) (*entity.Task, error) {
	var resp TaskResponse
	if err := c.invoke(ctx, methodGetTask, &GetTaskRequest{ID: taskID}, &resp); err != nil {
		return nil, err
	}
	task := resp.toEntity()
	return &task, nil
}

func (c *Client) Update(ctx context.Context, req entity.UpdateTaskRequest) (*entity.Task, error) {
	in := &UpdateTaskRequest{ID: req.ID, Title: req.Title}
	if req.Status != nil {
		st := string(*req.Status)
		in.Status = &st
	}

	var resp TaskResponse
	if err := c.invoke(ctx, methodUpdateTask, in, &resp); err != nil {
		return nil, err
	}
	task := resp.toEntity()
	return &task, nil
}

func (c *Client) Delete(ctx context.Context, taskID string) error {
	var resp DeleteTaskResponse
	return c.invoke(ctx, methodDeleteTask, &DeleteTaskRequest{ID: taskID}, &resp)
}

func (c *Client) Page(ctx context.Context, q entity.ListTasksQuery) (*entity.TaskPage, error) {
	var resp ListTasksResponse
	req := &ListTasksRequest{Page: q.Page, Limit: q.Limit, Search: q.Search}
	if err := c.invoke(ctx, methodListTasks, req, &resp); err != nil {
		return nil, err
	}
	page := &entity.TaskPage{
		Tasks:      make([]entity.Task, len(resp.Tasks)),
		Pagination: resp.Pagination,
	}
	for i, t := range resp.Tasks {
		page.Tasks[i] = t.toEntity()
	}
	return page, nil
}
