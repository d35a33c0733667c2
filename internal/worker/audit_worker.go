package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/St1cky1/taskboard/internal/infrastructure/client"
	"github.com/St1cky1/taskboard/internal/repository"
	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

const consumerTag = "audit_worker"

var errDeliveriesClosed = errors.New("канал сообщений закрыт")

// AuditWorker читает сообщения аудита из RabbitMQ и сохраняет их в task_audit
type AuditWorker struct {
	url            string
	queue          string
	auditRepo      repository.ITaskAuditRepository
	logger         log.FieldLogger
	reconnectDelay time.Duration
}

func NewAuditWorker(url, queue string, auditRepo repository.ITaskAuditRepository, logger log.FieldLogger) *AuditWorker {
	return &AuditWorker{
		url:            url,
		queue:          queue,
		auditRepo:      auditRepo,
		logger:         logger,
		reconnectDelay: 5 * time.Second,
	}
}

// Run работает до отмены ctx, переподключаясь при обрыве соединения
func (w *AuditWorker) Run(ctx context.Context) error {
	for {
		err := w.consume(ctx)
		if ctx.Err() != nil {
			w.logger.Info("audit worker остановлен")
			return nil
		}
		w.logger.WithError(err).Warnf("audit worker: переподключение через %s", w.reconnectDelay)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(w.reconnectDelay):
		}
	}
}

func (w *AuditWorker) consume(ctx context.Context) error {
	// Отдельное соединение и канал для consumer'а
	conn, err := amqp.Dial(w.url)
	if err != nil {
		return fmt.Errorf("ошибка подключения: %w", err)
	}
	defer conn.Close()

	channel, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("ошибка создания канала: %w", err)
	}
	defer channel.Close()

	if err := client.DeclareAuditQueue(channel, w.queue); err != nil {
		return err
	}

	msgs, err := channel.Consume(
		w.queue,     // queue
		consumerTag, // consumer tag
		false,       // auto-ack (подтверждаем вручную)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("ошибка создания consumer: %w", err)
	}

	w.logger.WithField("queue", w.queue).Info("audit worker запущен, ожидаем сообщения")

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errDeliveriesClosed
			}
			w.processMessage(ctx, msg)
		}
	}
}

func (w *AuditWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	// 1. Парсим сообщение
	var auditMsg entity.AuditMessage
	if err := sonic.Unmarshal(msg.Body, &auditMsg); err != nil {
		w.logger.WithError(err).WithField("body", string(msg.Body)).Error("ошибка парсинга сообщения аудита")
		_ = msg.Nack(false, false) // битое сообщение не возвращаем в очередь
		return
	}

	// 2. Конвертируем в TaskAudit
	taskAudit, err := convertToTaskAudit(&auditMsg)
	if err != nil {
		w.logger.WithError(err).Error("ошибка конвертации аудита")
		_ = msg.Nack(false, false)
		return
	}

	// 3. Сохраняем в БД
	if err := w.auditRepo.Create(ctx, taskAudit); err != nil {
		w.logger.WithError(err).Error("ошибка сохранения аудита")
		_ = msg.Nack(false, true) // повторная обработка
		return
	}

	// 4. Подтверждаем обработку
	_ = msg.Ack(false)
	w.logger.WithFields(log.Fields{
		"action":  taskAudit.Action,
		"task_id": taskAudit.EntityID,
	}).Debug("аудит сохранен")
}

func jsonString(values map[string]any) (*string, error) {
	if values == nil {
		return nil, nil
	}
	s, err := sonic.MarshalString(values)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func convertToTaskAudit(msg *entity.AuditMessage) (*entity.TaskAudit, error) {
	if msg.EntityID == "" || msg.UserID == "" {
		return nil, fmt.Errorf("%w: audit message without ids", entity.ErrInvalidTaskData)
	}

	oldValues, err := jsonString(msg.OldValues)
	if err != nil {
		return nil, err
	}
	newValues, err := jsonString(msg.NewValues)
	if err != nil {
		return nil, err
	}
	changes, err := jsonString(msg.Changes)
	if err != nil {
		return nil, err
	}

	changedAt := msg.Timestamp
	if changedAt.IsZero() {
		changedAt = time.Now()
	}

	return &entity.TaskAudit{
		UserID:     msg.UserID,
		Action:     msg.Action,
		EntityType: "task",
		EntityID:   msg.EntityID,
		OldValues:  oldValues,
		NewValues:  newValues,
		Changes:    changes,
		ChangedAt:  changedAt,
	}, nil
}
