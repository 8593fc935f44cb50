package client

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"github.com/krakosik/reputation/internal/dto"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// Clients holds the external collaborators. Each of them is optional: a nil
// value means the collaborator is not configured or not reachable.
type Clients interface {
	AuthClient() AuthClient
	RabbitMQClient() RabbitClient
	RedisClient() *redis.Client
	Close()
}

type clients struct {
	authClient   AuthClient
	rabbitClient RabbitClient
	redisClient  *redis.Client
}

func (c clients) AuthClient() AuthClient {
	return c.authClient
}

func (c clients) RabbitMQClient() RabbitClient {
	return c.rabbitClient
}

func (c clients) RedisClient() *redis.Client {
	return c.redisClient
}

func (c clients) Close() {
	if c.rabbitClient != nil {
		if err := c.rabbitClient.Close(); err != nil {
			logrus.Errorf("Error closing RabbitMQ client: %v", err)
		}
	}
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			logrus.Errorf("Error closing Redis client: %v", err)
		}
	}
}

func NewClients(cfg dto.Config) Clients {
	c := &clients{}

	if cfg.FirebaseKey != "" {
		decodedFirebaseKey, err := cfg.DecodeFirebaseKey()
		if err != nil {
			logrus.Panic(err)
		}
		app, err := firebase.NewApp(context.Background(), nil, option.WithCredentialsJSON(decodedFirebaseKey))
		if err != nil {
			logrus.Panic(err)
		}

		authClient, err := app.Auth(context.Background())
		if err != nil {
			logrus.Panic(err)
		}
		c.authClient = authClient
	} else {
		logrus.Warn("FIREBASE_KEY not set, trusting the X-Actor-ID header")
	}

	if cfg.RabbitMQURL != "" {
		rabbitClient, err := NewRabbitMQClient(cfg.RabbitMQURL)
		if err != nil {
			logrus.Errorf("Failed to connect to RabbitMQ: %v", err)
		} else {
			c.rabbitClient = rabbitClient
		}
	}

	if cfg.RedisURL != "" {
		redisClient, err := NewRedisClient(cfg.RedisURL)
		if err != nil {
			logrus.Errorf("Failed to connect to Redis: %v", err)
		} else {
			c.redisClient = redisClient
		}
	}

	return c
}
