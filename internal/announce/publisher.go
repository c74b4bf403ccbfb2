// Package announce publishes birthday-of-the-day events to an AMQP broker so
// downstream bots and webhooks can phrase their own greetings. The topology
// is a durable direct exchange bound to a durable queue under the same
// routing key.
package announce

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/tartampluch/guild-birthday/internal/config"
	"github.com/tartampluch/guild-birthday/internal/engine"
)

// Publisher is the engine-facing side of the package.
type Publisher interface {
	PublishBirthday(ctx context.Context, guildID uint64, rec engine.BirthdayRecord) error
	Close() error
}

// Client owns one AMQP connection and channel for the process lifetime.
type Client struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	queue    string
	log      *slog.Logger
}

// NewClient dials the broker and declares the exchange, queue and binding.
func NewClient(url, exchange, queue string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrAMQPDial, err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrAMQPChannel, err)
	}

	c := &Client{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		queue:    queue,
		log:      slog.With(config.LogKeyComponent, config.CompAnnounce),
	}
	if err := c.declareTopology(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrAMQPDeclare, err)
	}
	return c, nil
}

func (c *Client) declareTopology() error {
	if err := c.channel.ExchangeDeclare(
		c.exchange,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	if _, err := c.channel.QueueDeclare(
		c.queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	// Routing key matches the queue name on a direct exchange.
	return c.channel.QueueBind(c.queue, c.queue, c.exchange, false, nil)
}

// PublishBirthday emits one persistent JSON message for the given member.
func (c *Client) PublishBirthday(ctx context.Context, guildID uint64, rec engine.BirthdayRecord) error {
	msg := &BirthdayMessage{
		GuildID:     guildID,
		UserID:      rec.UserID,
		DisplayName: rec.DisplayName,
		Month:       rec.Month,
		Day:         rec.Day,
		MonthDay:    engine.MonthDay(rec.Month, rec.Day),
		Timestamp:   time.Now().UTC(),
	}
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrAMQPPublish, err)
	}

	ctx, cancel := context.WithTimeout(ctx, config.PublishTimeout)
	defer cancel()

	if err := c.channel.PublishWithContext(
		ctx,
		c.exchange,
		c.queue,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  config.ContentTypeJSON,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    msg.Timestamp,
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("%s: %w", config.ErrAMQPPublish, err)
	}

	c.log.Info(config.MsgAnnouncePub,
		config.LogKeyGuild, guildID,
		config.LogKeyUser, rec.UserID,
		config.LogKeyExchange, c.exchange,
		config.LogKeyQueue, c.queue,
	)
	return nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// NopPublisher is used when no broker is configured. Every publish succeeds
// without side effects.
type NopPublisher struct{}

func (NopPublisher) PublishBirthday(context.Context, uint64, engine.BirthdayRecord) error {
	return nil
}

func (NopPublisher) Close() error { return nil }
