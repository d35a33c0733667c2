package usecase

import (
	"context"

	"github.com/St1cky1/taskboard/internal/entity"
)

// UserTasks - задачи одного пользователя через TaskService, для доски на сервере
type UserTasks struct {
	service *TaskService
	userID  string
}

func NewUserTasks(service *TaskService, userID string) *UserTasks {
	return &UserTasks{service: service, userID: userID}
}

func (u *UserTasks) List(ctx context.Context) ([]entity.Task, error) {
	return u.service.ListBoardTasks(ctx, u.userID)
}

func (u *UserTasks) Create(ctx context.Context, title string, status entity.TaskStatus) (*entity.Task, error) {
	return u.service.CreateTask(ctx, &entity.CreateTaskRequest{Title: title, Status: status}, u.userID)
}

func (u *UserTasks) Update(ctx context.Context, req entity.UpdateTaskRequest) (*entity.Task, error) {
	return u.service.UpdateTask(ctx, req.ID, u.userID, &req)
}

func (u *UserTasks) Delete(ctx context.Context, taskID string) error {
	return u.service.DeleteTask(ctx, taskID, u.userID)
}
