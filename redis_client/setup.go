package redis_client

import (
	"context"
	"fmt"
	"time"

	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/zenterm/zenbus/env_mode"
	"github.com/zenterm/zenbus/errors"
	"github.com/zenterm/zenbus/logging"
)

const pingTimeout = 5 * time.Second

// NewRedis connects and pings. The client is closed again if the ping fails.
func NewRedis(ctx context.Context, cnf Config, logger logging.Logger) (*redis.Client, error) {
	if logger == nil {
		logger = logging.Named("redis")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cnf.Addr(),
		Password: cnf.Password,
		DB:       cnf.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	pong, err := client.Ping(pingCtx).Result()
	if err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "redis ping failed: "+redisConfigLogFields(cnf)).
			WithCode(errors.CodeInternalError)
	}
	if env_mode.IsDev() {
		logger.Info("redis connected", zap.String("pong", pong), zap.String("config", redisConfigLogFields(cnf)))
	}
	return client, nil
}

func redisConfigLogFields(cnf Config) string {
	return fmt.Sprintf("addr=%s db=%d password=%s", cnf.Addr(), cnf.DB, redactedPassword(cnf.Password))
}

func redactedPassword(password string) string {
	if password == "" {
		return "<empty>"
	}
	return "[REDACTED]"
}
