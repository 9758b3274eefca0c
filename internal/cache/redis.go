// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anreszii/matchup/internal/matchmaking"
)

// Rdb is the global Redis client. Connect it once at application startup.
var Rdb *redis.Client

// DefaultQueueName is the Redis list (queue) name for started-match records.
var DefaultQueueName = "matchup_matches"

// ConnectRedis initializes the global Redis client with environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() error {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// PublishMatchRecord serializes the record to JSON and pushes it onto the
// match history queue for the out-of-process consumer.
func PublishMatchRecord(ctx context.Context, record matchmaking.MatchRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal MatchRecord: %w", err)
	}

	queueName := getEnv("MATCH_QUEUE_NAME", DefaultQueueName)
	if err := Rdb.RPush(ctx, queueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", queueName, err)
	}
	return nil
}

// MirrorCounters writes the shared matchmaking tallies to Redis so
// dashboards can read them without hitting the service.
func MirrorCounters(ctx context.Context, c *matchmaking.Counters) error {
	pipe := Rdb.Pipeline()
	pipe.Set(ctx, "matchup:searching", c.Searching(), 0)
	pipe.Set(ctx, "matchup:playing", c.Playing(), 0)
	for _, t := range []matchmaking.LobbyType{matchmaking.Training, matchmaking.Arcade, matchmaking.Rating} {
		pipe.Set(ctx, "matchup:lobbies:"+string(t), c.ActiveLobbies(t), 0)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
