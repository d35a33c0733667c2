package grpc

import (
	"context"
	"time"

	"github.com/St1cky1/taskboard/internal/entity"
	"google.golang.org/grpc"
)

const serviceName = "taskboard.v1.TaskService"

const (
	methodCreateTask     = "/" + serviceName + "/CreateTask"
	methodGetTask        = "/" + serviceName + "/GetTask"
	methodUpdateTask     = "/" + serviceName + "/UpdateTask"
	methodDeleteTask     = "/" + serviceName + "/DeleteTask"
	methodListTasks      = "/" + serviceName + "/ListTasks"
	methodListBoardTasks = "/" + serviceName + "/ListBoardTasks"
)

type CreateTaskRequest struct {
	Title  string `json:"title"`
	Status string `json:"status,omitempty"`
}

type GetTaskRequest struct {
	ID string `json:"id"`
}

// UpdateTaskRequest - nil поля не меняются
type UpdateTaskRequest struct {
	ID     string  `json:"id"`
	Title  *string `json:"title,omitempty"`
	Status *string `json:"status,omitempty"`
}

type DeleteTaskRequest struct {
	ID string `json:"id"`
}

type DeleteTaskResponse struct {
	Success bool `json:"success"`
}

type ListTasksRequest struct {
	Page   int    `json:"page,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Search string `json:"search,omitempty"`
}

type ListTasksResponse struct {
	Tasks      []*TaskResponse   `json:"tasks"`
	Pagination entity.Pagination `json:"pagination"`
}

type ListBoardTasksRequest struct{}

type ListBoardTasksResponse struct {
	Tasks []*TaskResponse `json:"tasks"`
}

type TaskResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	OwnerID   string `json:"owner_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func taskToResponse(task *entity.Task) *TaskResponse {
	return &TaskResponse{
		ID:        task.ID,
		Title:     task.Title,
		Status:    string(task.Status),
		OwnerID:   task.OwnerID,
		CreatedAt: task.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: task.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func tasksToResponse(tasks []entity.Task) []*TaskResponse {
	out := make([]*TaskResponse, len(tasks))
	for i := range tasks {
		out[i] = taskToResponse(&tasks[i])
	}
	return out
}

func (r *TaskResponse) toEntity() entity.Task {
	task := entity.Task{
		ID:      r.ID,
		Title:   r.Title,
		Status:  entity.TaskStatus(r.Status),
		OwnerID: r.OwnerID,
	}
	task.CreatedAt, _ = time.Parse(time.RFC3339Nano, r.CreatedAt)
	task.UpdatedAt, _ = time.Parse(time.RFC3339Nano, r.UpdatedAt)
	return task
}

// TaskServiceServer - серверная сторона taskboard.v1.TaskService
type TaskServiceServer interface {
	CreateTask(context.Context, *CreateTaskRequest) (*TaskResponse, error)
	GetTask(context.Context, *GetTaskRequest) (*TaskResponse, error)
	UpdateTask(context.Context, *UpdateTaskRequest) (*TaskResponse, error)
	DeleteTask(context.Context, *DeleteTaskRequest) (*DeleteTaskResponse, error)
	ListTasks(context.Context, *ListTasksRequest) (*ListTasksResponse, error)
	ListBoardTasks(context.Context, *ListBoardTasksRequest) (*ListBoardTasksResponse, error)
}

// unaryHandler собирает grpc.MethodHandler для метода с запросом Req
func unaryHandler[Req any, Resp any](
	fullMethod string,
	call func(srv TaskServiceServer, ctx context.Context, req *Req) (Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TaskServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(TaskServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var TaskServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*TaskServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateTask",
			Handler:    unaryHandler(methodCreateTask, TaskServiceServer.CreateTask),
		},
		{
			MethodName: "GetTask",
			Handler:    unaryHandler(methodGetTask, TaskServiceServer.GetTask),
		},
		{
			MethodName: "UpdateTask",
			Handler:    unaryHandler(methodUpdateTask, TaskServiceServer.UpdateTask),
		},
		{
			MethodName: "DeleteTask",
			Handler:    unaryHandler(methodDeleteTask, TaskServiceServer.DeleteTask),
		},
		{
			MethodName: "ListTasks",
			Handler:    unaryHandler(methodListTasks, TaskServiceServer.ListTasks),
		},
		{
			MethodName: "ListBoardTasks",
			Handler:    unaryHandler(methodListBoardTasks, TaskServiceServer.ListBoardTasks),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "taskboard/v1/task_service.json",
}
