package auth

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/store-admin/internal/domain"
	apperrors "github.com/spec-kit/store-admin/pkg/util/errorutil"
)

// LoginLimiter caps login attempts per client IP and email in a fixed window
// shared by every instance through Redis. It fails open when Redis is down.
type LoginLimiter struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
	logger      *zap.Logger
}

// NewLoginLimiter constructs the limiter. A nil client disables limiting.
func NewLoginLimiter(client *redis.Client, maxAttempts int, window time.Duration, logger *zap.Logger) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &LoginLimiter{client: client, maxAttempts: maxAttempts, window: window, logger: logger}
}

// Handle is the fiber middleware placed in front of the login handler.
func (l *LoginLimiter) Handle(c *fiber.Ctx) error {
	if l == nil || l.client == nil {
		return c.Next()
	}

	var body struct {
		Email string `json:"email"`
	}
	_ = json.Unmarshal(c.Body(), &body)

	key := fmt.Sprintf("login_attempts:%s:%s", c.IP(), domain.NormalizeEmail(body.Email))
	ctx := c.UserContext()

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("login limiter unavailable", zap.Error(err))
		return c.Next()
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			l.logger.Warn("login limiter expire failed", zap.Error(err))
		}
	}

	if count > int64(l.maxAttempts) {
		retryAfter := 1
		if ttl, err := l.client.TTL(ctx, key).Result(); err == nil && ttl > time.Second {
			retryAfter = int(ttl.Seconds())
		}
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
		return apperrors.NewTooManyAttempts(retryAfter)
	}
	return c.Next()
}
