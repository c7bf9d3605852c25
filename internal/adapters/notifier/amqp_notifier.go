package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ashu2906-design/habit-flow/internal/core/domain"
)

const exchangeName = "habitflow.notifications"

// Routing keys per notification kind. Downstream delivery workers (email,
// push) bind their queues to these.
const (
	routingReminder  = "notify.reminder.daily"
	routingMilestone = "notify.milestone"
	routingSummary   = "notify.summary.weekly"
)

var _ domain.Notifier = (*AMQPNotifier)(nil)

// AMQPNotifier publishes notification events to a RabbitMQ topic exchange.
// It only emits; rendering and delivery are someone else's queue.
type AMQPNotifier struct {
	conn    *amqp.Connection
	channel *amqp.Channel

	mu sync.Mutex
}

func NewAMQPNotifier(url string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &AMQPNotifier{
		conn:    conn,
		channel: ch,
	}, nil
}

type reminderEvent struct {
	UserID   string   `json:"user_id"`
	Email    string   `json:"email"`
	Username string   `json:"username"`
	Habits   []string `json:"habits"`
}

type milestoneEvent struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	HabitName string `json:"habit_name"`
	Days      int    `json:"days"`
}

type summaryEvent struct {
	UserID   string            `json:"user_id"`
	Email    string            `json:"email"`
	Username string            `json:"username"`
	Insights []*domain.Insight `json:"insights"`
}

func (n *AMQPNotifier) SendDailyReminder(ctx context.Context, user *domain.User, pending []*domain.Habit) error {
	names := make([]string, 0, len(pending))
	for _, h := range pending {
		names = append(names, h.Name)
	}

	return n.publish(ctx, routingReminder, reminderEvent{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		Habits:   names,
	})
}

func (n *AMQPNotifier) NotifyMilestone(ctx context.Context, user *domain.User, habitName string, days int) error {
	return n.publish(ctx, routingMilestone, milestoneEvent{
		UserID:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
		HabitName: habitName,
		Days:      days,
	})
}

func (n *AMQPNotifier) SendWeeklySummary(ctx context.Context, user *domain.User, insights []*domain.Insight) error {
	return n.publish(ctx, routingSummary, summaryEvent{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		Insights: insights,
	})
}

func (n *AMQPNotifier) publish(ctx context.Context, routingKey string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	err = n.channel.PublishWithContext(ctx,
		exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         payload,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	return nil
}

func (n *AMQPNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.channel != nil {
		_ = n.channel.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
