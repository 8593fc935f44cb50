package client

import (
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const VotesExchange = "votes"

type RabbitClient interface {
	PublishMessage(ctx context.Context, routingKey string, message []byte) error
	Close() error
}

type rabbitClient struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	exchangeName string
	channelMutex sync.RWMutex
	closed       chan struct{}
}

func NewRabbitMQClient(connectionStr string) (RabbitClient, error) {
	conn, ch, err := dialExchange(connectionStr, VotesExchange)
	if err != nil {
		return nil, err
	}

	client := &rabbitClient{
		conn:         conn,
		channel:      ch,
		exchangeName: VotesExchange,
		closed:       make(chan struct{}),
	}

	go client.monitorConnection(connectionStr)

	return client, nil
}

func dialExchange(connectionStr, exchangeName string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(connectionStr)
	if err != nil {
		return nil, nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	err = ch.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, err
	}

	return conn, ch, nil
}

func (c *rabbitClient) monitorConnection(connectionStr string) {
	c.channelMutex.RLock()
	connCloseChan := c.conn.NotifyClose(make(chan *amqp.Error, 1))
	c.channelMutex.RUnlock()

	select {
	case err := <-connCloseChan:
		logrus.Errorf("RabbitMQ connection closed: %v", err)
	case <-c.closed:
		return
	}

	for {
		select {
		case <-time.After(5 * time.Second):
		case <-c.closed:
			return
		}

		logrus.Info("Attempting to reconnect to RabbitMQ...")
		conn, ch, err := dialExchange(connectionStr, c.exchangeName)
		if err != nil {
			logrus.Errorf("Failed to reconnect to RabbitMQ: %v", err)
			continue
		}

		c.channelMutex.Lock()
		oldConn := c.conn
		oldChannel := c.channel
		c.conn = conn
		c.channel = ch
		c.channelMutex.Unlock()

		if oldChannel != nil {
			oldChannel.Close()
		}
		if oldConn != nil {
			oldConn.Close()
		}

		go c.monitorConnection(connectionStr)
		return
	}
}

func (c *rabbitClient) PublishMessage(ctx context.Context, routingKey string, message []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c.channelMutex.RLock()
	defer c.channelMutex.RUnlock()

	return c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         message,
		})
}

func (c *rabbitClient) Close() error {
	close(c.closed)

	c.channelMutex.Lock()
	defer c.channelMutex.Unlock()

	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
