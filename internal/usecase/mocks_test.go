package usecase

import (
	"context"
	"time"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/St1cky1/taskboard/internal/repository"
)

// MockTaskRepository - мок для ITaskRepository
type MockTaskRepository struct {
	CreateFunc      func(ctx context.Context, task *entity.CreateTaskRequest) (*entity.Task, error)
	GetByTaskIDFunc func(ctx context.Context, taskID string) (*entity.Task, error)
	UpdateFunc      func(ctx context.Context, taskID string, updates map[string]interface{}) (*entity.Task, error)
	DeleteFunc      func(ctx context.Context, taskID, ownerID string) error
	ListFunc        func(ctx context.Context, ownerID string, q entity.ListTasksQuery) ([]entity.Task, int, error)
	ListAllFunc     func(ctx context.Context, ownerID string) ([]entity.Task, error)
}

var _ repository.ITaskRepository = (*MockTaskRepository)(nil)

func (m *MockTaskRepository) Create(ctx context.Context, task *entity.CreateTaskRequest) (*entity.Task, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, task)
	}
	return nil, nil
}

func (m *MockTaskRepository) GetByTaskID(ctx context.Context, taskID string) (*entity.Task, error) {
	if m.GetByTaskIDFunc != nil {
		return m.GetByTaskIDFunc(ctx, taskID)
	}
	return nil, nil
}

func (m *MockTaskRepository) Update(ctx context.Context, taskID string, updates map[string]interface{}) (*entity.Task, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, taskID, updates)
	}
	return nil, nil
}

func (m *MockTaskRepository) Delete(ctx context.Context, taskID, ownerID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, taskID, ownerID)
	}
	return nil
}

func (m *MockTaskRepository) List(ctx context.Context, ownerID string, q entity.ListTasksQuery) ([]entity.Task, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, ownerID, q)
	}
	return nil, 0, nil
}

func (m *MockTaskRepository) ListAll(ctx context.Context, ownerID string) ([]entity.Task, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx, ownerID)
	}
	return nil, nil
}

// MockUserRepository - мок для IUserRepository
type MockUserRepository struct {
	CreateFunc         func(ctx context.Context, name, email, passwordHash string) (*entity.User, error)
	GetByIDFunc        func(ctx context.Context, id string) (*entity.User, error)
	GetByEmailFunc     func(ctx context.Context, email string) (*entity.User, error)
	UpdateNameFunc     func(ctx context.Context, id, name string) (*entity.User, error)
	TouchLastLoginFunc func(ctx context.Context, id string, at time.Time) error
}

var _ repository.IUserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) Create(ctx context.Context, name, email, passwordHash string) (*entity.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, name, email, passwordHash)
	}
	return nil, nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockUserRepository) UpdateName(ctx context.Context, id, name string) (*entity.User, error) {
	if m.UpdateNameFunc != nil {
		return m.UpdateNameFunc(ctx, id, name)
	}
	return nil, nil
}

func (m *MockUserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	if m.TouchLastLoginFunc != nil {
		return m.TouchLastLoginFunc(ctx, id, at)
	}
	return nil
}

// MockTaskAuditRepository - мок для ITaskAuditRepository
type MockTaskAuditRepository struct {
	CreateFunc       func(ctx context.Context, audit *entity.TaskAudit) error
	ListByTaskIDFunc func(ctx context.Context, taskID string) ([]entity.TaskAudit, error)
}

var _ repository.ITaskAuditRepository = (*MockTaskAuditRepository)(nil)

func (m *MockTaskAuditRepository) Create(ctx context.Context, audit *entity.TaskAudit) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, audit)
	}
	return nil
}

func (m *MockTaskAuditRepository) ListByTaskID(ctx context.Context, taskID string) ([]entity.TaskAudit, error) {
	if m.ListByTaskIDFunc != nil {
		return m.ListByTaskIDFunc(ctx, taskID)
	}
	return nil, nil
}

// MockRefreshTokenRepository - мок для IRefreshTokenRepository
type MockRefreshTokenRepository struct {
	SaveFunc           func(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetByHashFunc      func(ctx context.Context, tokenHash string) (*repository.RefreshToken, error)
	RevokeFunc         func(ctx context.Context, tokenHash string) error
	RevokeAllFunc      func(ctx context.Context, userID string) error
	CleanupExpiredFunc func(ctx context.Context) (int64, error)
}

var _ repository.IRefreshTokenRepository = (*MockRefreshTokenRepository)(nil)

func (m *MockRefreshTokenRepository) Save(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, userID, tokenHash, expiresAt)
	}
	return nil
}

func (m *MockRefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*repository.RefreshToken, error) {
	if m.GetByHashFunc != nil {
		return m.GetByHashFunc(ctx, tokenHash)
	}
	return nil, nil
}

func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, tokenHash)
	}
	return nil
}

func (m *MockRefreshTokenRepository) RevokeAll(ctx context.Context, userID string) error {
	if m.RevokeAllFunc != nil {
		return m.RevokeAllFunc(ctx, userID)
	}
	return nil
}

func (m *MockRefreshTokenRepository) CleanupExpired(ctx context.Context) (int64, error) {
	if m.CleanupExpiredFunc != nil {
		return m.CleanupExpiredFunc(ctx)
	}
	return 0, nil
}

// MockRabbitMQPublisher - мок для RabbitMQPublisher
type MockRabbitMQPublisher struct {
	PublishAuditMessageFunc func(ctx context.Context, message *entity.AuditMessage) error
}

func (m *MockRabbitMQPublisher) PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error {
	if m.PublishAuditMessageFunc != nil {
		return m.PublishAuditMessageFunc(ctx, message)
	}
	return nil
}
