package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

const (
	keyLoggingEnabled    = "availsync:settings:logging_enabled"
	keyAutomationPattern = "availsync:resource:%s:automation"
)

// kvClient is the subset of the Redis client the store uses.
type kvClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Defaults are the values used when the store cannot be reached. Automation
// always defaults to off: a flag that cannot be read must not cause rule
// mutations.
type Defaults struct {
	LoggingEnabled bool
}

// RedisStore reads the operator-managed toggles from Redis. Reads go
// through a circuit breaker; when the breaker is open or Redis errors, the
// store answers from Defaults instead of failing the reconciliation run.
type RedisStore struct {
	kv       kvClient
	breaker  *gobreaker.CircuitBreaker[string]
	defaults Defaults
	timeout  time.Duration
	logger   *slog.Logger
}

// NewRedisStore creates a settings store reading through the given client.
func NewRedisStore(kv kvClient, defaults Defaults, timeout time.Duration, logger *slog.Logger) *RedisStore {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "settings-redis",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &RedisStore{
		kv:       kv,
		breaker:  breaker,
		defaults: defaults,
		timeout:  timeout,
		logger:   logger,
	}
}

// AutomationEnabled reports whether reconciliation may run for the
// resource. An unset flag reads as disabled.
func (s *RedisStore) AutomationEnabled(ctx context.Context, resourceID uuid.UUID) (bool, error) {
	key := fmt.Sprintf(keyAutomationPattern, resourceID)
	value, found, err := s.get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "automation flag unavailable, treating as disabled",
			"resource_id", resourceID,
			"error", err,
		)
		return false, nil
	}
	if !found {
		return false, nil
	}
	return truthy(value), nil
}

// LoggingEnabled reports whether the diagnostic sink should emit.
func (s *RedisStore) LoggingEnabled(ctx context.Context) (bool, error) {
	value, found, err := s.get(ctx, keyLoggingEnabled)
	if err != nil || !found {
		return s.defaults.LoggingEnabled, nil
	}
	return truthy(value), nil
}

// SetAutomation writes the automation flag for a resource. Writes bypass
// the breaker: an operator flipping a toggle should see the real error.
func (s *RedisStore) SetAutomation(ctx context.Context, resourceID uuid.UUID, enabled bool) error {
	return s.set(ctx, fmt.Sprintf(keyAutomationPattern, resourceID), enabled)
}

// SetLogging writes the diagnostic logging flag.
func (s *RedisStore) SetLogging(ctx context.Context, enabled bool) error {
	return s.set(ctx, keyLoggingEnabled, enabled)
}

func (s *RedisStore) set(ctx context.Context, key string, enabled bool) error {
	value := "no"
	if enabled {
		value = "yes"
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.kv.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("write setting %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) get(ctx context.Context, key string) (value string, found bool, err error) {
	value, err = s.breaker.Execute(func() (string, error) {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return s.kv.Get(ctx, key).Result()
	})
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// truthy interprets a stored flag value. The originating settings screen
// wrote yes/no strings; newer writers use 1/0 or true/false.
func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "on", "true", "1", "enabled":
		return true
	default:
		return false
	}
}
