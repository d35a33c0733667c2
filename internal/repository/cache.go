package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const boardCachePrefix = "taskboard:board:"

// CachedTaskRepository - read-through кеш доски владельца поверх ITaskRepository.
// Ключ списка содержит поколение владельца; запись в базу увеличивает поколение,
// поэтому список, прочитанный до записи, попадает под старый ключ и больше не отдается.
// Ошибки Redis не ломают запрос, только пишутся в лог.
type CachedTaskRepository struct {
	ITaskRepository
	rdb    *redis.Client
	ttl    time.Duration
	logger log.FieldLogger
}

func NewCachedTaskRepository(next ITaskRepository, rdb *redis.Client, ttl time.Duration, logger log.FieldLogger) *CachedTaskRepository {
	return &CachedTaskRepository{
		ITaskRepository: next,
		rdb:             rdb,
		ttl:             ttl,
		logger:          logger,
	}
}

func boardGenerationKey(ownerID string) string {
	return boardCachePrefix + "gen:" + ownerID
}

func boardCacheKey(ownerID string, gen int64) string {
	return boardCachePrefix + ownerID + ":" + strconv.FormatInt(gen, 10)
}

// generation - текущее поколение доски владельца, 0 если записей еще не было
func (c *CachedTaskRepository) generation(ctx context.Context, ownerID string) (int64, error) {
	gen, err := c.rdb.Get(ctx, boardGenerationKey(ownerID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *CachedTaskRepository) ListAll(ctx context.Context, ownerID string) ([]entity.Task, error) {
	// поколение читаем до базы: если запись случится после чтения,
	// она сменит поколение и наш Set уйдет под устаревший ключ
	gen, err := c.generation(ctx, ownerID)
	if err != nil {
		c.logger.WithError(err).Warn("кеш доски недоступен")
		return c.ITaskRepository.ListAll(ctx, ownerID)
	}
	key := boardCacheKey(ownerID, gen)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var tasks []entity.Task
		if err := sonic.Unmarshal(raw, &tasks); err == nil {
			return tasks, nil
		}
		c.logger.WithField("key", key).Warn("битая запись кеша доски, читаем из базы")
	case !errors.Is(err, redis.Nil):
		c.logger.WithError(err).Warn("кеш доски недоступен")
	}

	tasks, err := c.ITaskRepository.ListAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if data, err := sonic.Marshal(tasks); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.WithError(err).Warn("не удалось записать кеш доски")
		}
	}
	return tasks, nil
}

func (c *CachedTaskRepository) Create(ctx context.Context, req *entity.CreateTaskRequest) (*entity.Task, error) {
	task, err := c.ITaskRepository.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, req.OwnerID)
	return task, nil
}

func (c *CachedTaskRepository) Update(ctx context.Context, taskID string, updates map[string]interface{}) (*entity.Task, error) {
	task, err := c.ITaskRepository.Update(ctx, taskID, updates)
	if err != nil || task == nil {
		return task, err
	}
	c.evict(ctx, task.OwnerID)
	return task, nil
}

func (c *CachedTaskRepository) Delete(ctx context.Context, taskID, ownerID string) error {
	if err := c.ITaskRepository.Delete(ctx, taskID, ownerID); err != nil {
		return err
	}
	c.evict(ctx, ownerID)
	return nil
}

// evict переводит доску владельца на новое поколение; старые ключи истекут по TTL
func (c *CachedTaskRepository) evict(ctx context.Context, ownerID string) {
	if err := c.rdb.Incr(ctx, boardGenerationKey(ownerID)).Err(); err != nil {
		c.logger.WithError(err).WithField("owner_id", ownerID).Warn("не удалось сбросить кеш доски")
	}
}
