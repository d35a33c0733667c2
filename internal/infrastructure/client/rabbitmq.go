package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

type RabbitMQClient struct {
	url   string
	queue string
	log   log.FieldLogger

	mu      sync.Mutex // amqp.Channel не безопасен для конкурентной публикации
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbitMQClient(url, queue string, logger log.FieldLogger) (*RabbitMQClient, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Объявляем очередь для аудита
	if err := DeclareAuditQueue(channel, queue); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &RabbitMQClient{
		url:     url,
		queue:   queue,
		log:     logger,
		conn:    conn,
		channel: channel,
	}, nil
}

// DeclareAuditQueue объявляет durable очередь аудита; используется и
// публикатором, и воркером
func DeclareAuditQueue(channel *amqp.Channel, queue string) error {
	_, err := channel.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return nil
}

func (c *RabbitMQClient) URL() string { return c.url }

func (c *RabbitMQClient) QueueName() string { return c.queue }

func (c *RabbitMQClient) PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error {
	body, err := sonic.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode audit message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err = c.channel.PublishWithContext(
		ctx,
		"",      // exchange
		c.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // Сообщения сохраняются на диск
		},
	)
	if err != nil {
		return fmt.Errorf("publish audit message: %w", err)
	}

	c.log.WithFields(log.Fields{
		"action":  message.Action,
		"task_id": message.EntityID,
	}).Debug("audit message published")
	return nil
}

func (c *RabbitMQClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
