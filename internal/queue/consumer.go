package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartOrderConsumer connects to RabbitMQ, declares the order.created
// queue, and consumes messages forever.  Each event is appended to
// logs/orders.log in a single-line format.  The function runs a
// reconnect loop with capped backoff; processing errors reject the
// offending message without requeueing so a poison payload cannot wedge
// the consumer.
func StartOrderConsumer() error {
	url := brokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("order-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("order-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("order-consumer: set QoS failed: %v", err)
	}

	_, err = ch.QueueDeclare(orderQueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(orderQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body); err != nil {
			log.Printf("order-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte) error {
	var ev OrderCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "orders.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	seats := make([]string, 0, len(ev.Tickets))
	for _, t := range ev.Tickets {
		seats = append(seats, fmt.Sprintf("trip=%d cargo=%d seat=%d", t.Trip, t.Cargo, t.Seat))
	}

	line := fmt.Sprintf("[%s] Order created | order_id=%d | user_id=%d | tickets=%d | %s\n",
		ev.CreatedAt, ev.OrderID, ev.UserID, len(ev.Tickets), strings.Join(seats, "; "))

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
