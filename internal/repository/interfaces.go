package repository

import (
	"context"
	"time"

	"github.com/St1cky1/taskboard/internal/entity"
)

// ITaskRepository - интерфейс для TaskRepository
type ITaskRepository interface {
	Create(ctx context.Context, task *entity.CreateTaskRequest) (*entity.Task, error)
	GetByTaskID(ctx context.Context, taskID string) (*entity.Task, error)
	Update(ctx context.Context, taskID string, updates map[string]interface{}) (*entity.Task, error)
	Delete(ctx context.Context, taskID, ownerID string) error
	List(ctx context.Context, ownerID string, q entity.ListTasksQuery) ([]entity.Task, int, error)
	ListAll(ctx context.Context, ownerID string) ([]entity.Task, error)
}

// IUserRepository - интерфейс для UserRepository
type IUserRepository interface {
	Create(ctx context.Context, name, email, passwordHash string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdateName(ctx context.Context, id, name string) (*entity.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// IRefreshTokenRepository - интерфейс для RefreshTokenRepository
type IRefreshTokenRepository interface {
	Save(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	Revoke(ctx context.Context, tokenHash string) error
	RevokeAll(ctx context.Context, userID string) error
	CleanupExpired(ctx context.Context) (int64, error)
}

// ITaskAuditRepository - интерфейс для TaskAuditRepository
type ITaskAuditRepository interface {
	Create(ctx context.Context, audit *entity.TaskAudit) error
	ListByTaskID(ctx context.Context, taskID string) ([]entity.TaskAudit, error)
}
