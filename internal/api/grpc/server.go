package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/St1cky1/taskboard/internal/infrastructure/auth"
	log "github.com/sirupsen/logrus"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// TaskService - операции над задачами, которые отдает gRPC
type TaskService interface {
	CreateTask(ctx context.Context, req *entity.CreateTaskRequest, userID string) (*entity.Task, error)
	GetTask(ctx context.Context, taskID string, userID string) (*entity.Task, error)
	UpdateTask(ctx context.Context, taskID string, userID string, req *entity.UpdateTaskRequest) (*entity.Task, error)
	DeleteTask(ctx context.Context, taskID string, userID string) error
	ListTasks(ctx context.Context, userID string, q entity.ListTasksQuery) (*entity.TaskPage, error)
	ListBoardTasks(ctx context.Context, userID string) ([]entity.Task, error)
}

type TokenValidator interface {
	ValidateAccessToken(token string) (string, error)
}

type GRPCServer struct {
	taskService TaskService
	tokens      TokenValidator
	logger      log.FieldLogger
	server      *grpc.Server
}

func NewGRPCServer(taskService TaskService, tokens TokenValidator, logger log.FieldLogger) *GRPCServer {
	s := &GRPCServer{
		taskService: taskService,
		tokens:      tokens,
		logger:      logger,
	}
	s.server = grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.authInterceptor),
	)
	s.server.RegisterService(&TaskServiceDesc, s)
	return s
}

// Start слушает addr и блокируется до Stop
func (s *GRPCServer) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(lis)
}

func (s *GRPCServer) Serve(lis net.Listener) error {
	s.logger.WithField("addr", lis.Addr().String()).Info("gRPC server listening")
	if err := s.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (s *GRPCServer) Stop() {
	s.server.GracefulStop()
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any,
	info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	entry := s.logger.WithFields(log.Fields{
		"method":      info.FullMethod,
		"code":        status.Code(err).String(),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if status.Code(err) == codes.Internal {
		entry.Warn("gRPC call failed")
	} else {
		entry.Info("gRPC call")
	}
	return resp, err
}

// authInterceptor требует "authorization: Bearer <token>" в метаданных
func (s *GRPCServer) authInterceptor(ctx context.Context, req any,
	info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing authorization token")
	}
	token, ok := strings.CutPrefix(values[0], "Bearer ")
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "malformed authorization header")
	}
	userID, err := s.tokens.ValidateAccessToken(strings.TrimSpace(token))
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, entity.ErrInvalidToken.Error())
	}
	return handler(auth.WithUserID(ctx, userID), req)
}

// badRequest - InvalidArgument с нарушением по полю field
func badRequest(field string, err error) error {
	st := status.New(codes.InvalidArgument, err.Error())
	detailed, derr := st.WithDetails(&errdetails.BadRequest{
		FieldViolations: []*errdetails.BadRequest_FieldViolation{
			{Field: field, Description: err.Error()},
		},
	})
	if derr != nil {
		return st.Err()
	}
	return detailed.Err()
}

// toStatus переводит ошибку сервиса в статус gRPC; field - поле для ошибок валидации
func (s *GRPCServer) toStatus(op, field string, err error) error {
	switch {
	case errors.Is(err, entity.ErrInvalidTaskData),
		errors.Is(err, entity.ErrNoFieldsToUpdate):
		return badRequest(field, err)
	case errors.Is(err, entity.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, entity.ErrTaskNotFound),
		errors.Is(err, entity.ErrUserNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		s.logger.WithError(err).WithField("op", op).Error("gRPC request failed")
		return status.Error(codes.Internal, "failed to "+op)
	}
}

// taskField угадывает поле, не прошедшее проверку
func taskField(raw string) string {
	if raw != "" && !entity.TaskStatus(raw).Valid() {
		return "status"
	}
	return "title"
}

func (s *GRPCServer) CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error) {
	task, err := s.taskService.CreateTask(ctx, &entity.CreateTaskRequest{
		Title:  req.Title,
		Status: entity.TaskStatus(req.Status),
	}, auth.UserIDFromContext(ctx))
	if err != nil {
		return nil, s.toStatus("create task", taskField(req.Status), err)
	}
	return taskToResponse(task), nil
}

func (s *GRPCServer) GetTask(ctx context.Context, req *GetTaskRequest) (*TaskResponse, error) {
	task, err := s.taskService.GetTask(ctx, req.ID, auth.UserIDFromContext(ctx))
	if err != nil {
		return nil, s.toStatus("fetch task", "id", err)
	}
	return taskToResponse(task), nil
}

func (s *GRPCServer) UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error) {
	update := &entity.UpdateTaskRequest{ID: req.ID, Title: req.Title}
	field := "title"
	if req.Status != nil {
		st := entity.TaskStatus(*req.Status)
		update.Status = &st
		field = taskField(*req.Status)
	}

	task, err := s.taskService.UpdateTask(ctx, req.ID, auth.UserIDFromContext(ctx), update)
	if err != nil {
		return nil, s.toStatus("update task", field, err)
	}
	return taskToResponse(task), nil
}

func (s *GRPCServer) DeleteTask(ctx context.Context, req *DeleteTaskRequest) (*DeleteTaskResponse, error) {
	if err := s.taskService.DeleteTask(ctx, req.ID, auth.UserIDFromContext(ctx)); err != nil {
		return nil, s.toStatus("delete task", "id", err)
	}
	return &DeleteTaskResponse{Success: true}, nil
}

func (s *GRPCServer) ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error) {
	page, err := s.taskService.ListTasks(ctx, auth.UserIDFromContext(ctx), entity.ListTasksQuery{
		Page:   req.Page,
		Limit:  req.Limit,
		Search: req.Search,
	})
	if err != nil {
		return nil, s.toStatus("fetch tasks", "limit", err)
	}
	return &ListTasksResponse{
		Tasks:      tasksToResponse(page.Tasks),
		Pagination: page.Pagination,
	}, nil
}

func (s *GRPCServer) ListBoardTasks(ctx context.Context, _ *ListBoardTasksRequest) (*ListBoardTasksResponse, error) {
	tasks, err := s.taskService.ListBoardTasks(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return nil, s.toStatus("fetch tasks", "", err)
	}
	return &ListBoardTasksResponse{Tasks: tasksToResponse(tasks)}, nil
}
