package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	client     *redis.Client
	clientOnce sync.Once
	clientErr  error
)

// Config holds Redis configuration
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

// LoadConfigFromEnv loads Redis configuration from environment variables
func LoadConfigFromEnv() *Config {
	port, _ := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	db, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	ttl, _ := time.ParseDuration(getEnv("STATUS_TTL", "10m"))

	return &Config{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     port,
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
		TTL:      ttl,
	}
}

// GetClient returns the global Redis client (singleton pattern)
func GetClient() (*redis.Client, error) {
	clientOnce.Do(func() {
		config := LoadConfigFromEnv()

		opts := &redis.Options{
			Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
			Password:     config.Password,
			DB:           config.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			MinIdleConns: 2,
		}

		if getEnv("REDIS_TLS_ENABLED", "false") == "true" {
			opts.TLSConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
		}

		client = redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			clientErr = fmt.Errorf("failed to connect to Redis: %w", err)
			return
		}
	})

	return client, clientErr
}

// Close closes the Redis client
func Close() {
	if client != nil {
		client.Close()
	}
}

// RunStatus is the live-run snapshot pushed to the status cache and read
// back by the status API.
type RunStatus struct {
	EvaluationID        string  `json:"evaluation_id"`
	IterationsCompleted int     `json:"iterations_completed"`
	Temperature         float64 `json:"temperature"`
	Good                int     `json:"good"`
	Accepted            int     `json:"accepted"`
	Rejected            int     `json:"rejected"`
}

// StatusKey generates the status cache key for a run.
func StatusKey(evaluationID string) string {
	return fmt.Sprintf("run:%s:status", evaluationID)
}

// SetRunStatus pushes the current run snapshot, expiring after the
// configured status TTL.
func SetRunStatus(ctx context.Context, evaluationID string, status RunStatus, ttl time.Duration) error {
	client, err := GetClient()
	if err != nil {
		return err
	}

	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal run status: %w", err)
	}

	return client.Set(ctx, StatusKey(evaluationID), data, ttl).Err()
}

// GetRunStatus reads the most recently pushed snapshot for a run, or
// (RunStatus{}, false, nil) if none is cached or it expired.
func GetRunStatus(ctx context.Context, evaluationID string) (RunStatus, bool, error) {
	client, err := GetClient()
	if err != nil {
		return RunStatus{}, false, err
	}

	data, err := client.Get(ctx, StatusKey(evaluationID)).Bytes()
	if err == redis.Nil {
		return RunStatus{}, false, nil
	}
	if err != nil {
		return RunStatus{}, false, err
	}

	var status RunStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return RunStatus{}, false, fmt.Errorf("failed to unmarshal run status: %w", err)
	}
	return status, true, nil
}

// HealthCheck performs a health check on the Redis connection
func HealthCheck(ctx context.Context) error {
	client, err := GetClient()
	if err != nil {
		return fmt.Errorf("Redis client not initialized: %w", err)
	}

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis ping failed: %w", err)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
