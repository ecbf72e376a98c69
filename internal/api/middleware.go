package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	HeaderRequestID = "X-Request-ID"

	ctxKeyRequestID = "request_id"
	ctxKeyUserID    = "user_id"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Set(ctxKeyRequestID, rid)
		c.Writer.Header().Set(HeaderRequestID, rid)

		c.Next()
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(ctxKeyRequestID)
}

func Logger(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path = path + "?" + q
		}

		c.Next()

		status := c.Writer.Status()

		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		} else if status >= 400 {
			level = slog.LevelWarn
		}

		attrs := []slog.Attr{
			slog.String("request_id", GetRequestID(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes", c.Writer.Size()),
			slog.String("client_ip", c.ClientIP()),
		}

		if id, ok := currentUser(c); ok {
			attrs = append(attrs, slog.String("user_id", id.String()))
		}

		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		l.LogAttrs(c.Request.Context(), level, "http_request", attrs...)
	}
}

func Recovery(l *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		l.LogAttrs(c.Request.Context(), slog.LevelError, "panic_recovered",
			slog.String("request_id", GetRequestID(c)),
			slog.Any("panic", recovered),
			slog.String("stack", string(debug.Stack())),
		)

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":      "internal server error",
			"request_id": GetRequestID(c),
		})
	})
}

// BodyLimit caps request bodies, mostly to bound multipart uploads.
func BodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortJSON(c, http.StatusUnauthorized, "authorization header required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortJSON(c, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		claims, err := verifier.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		c.Set(ctxKeyUserID, userID)
		c.Next()
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin(profiles ProfileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "authentication required")
			return
		}

		isAdmin, err := profiles.IsAdmin(c.Request.Context(), userID)
		if err != nil {
			respondError(c, fmt.Errorf("check admin: %w", err))
			return
		}
		if !isAdmin {
			abortJSON(c, http.StatusForbidden, "admin access required")
			return
		}

		c.Next()
	}
}

// RateLimitMiddleware counts requests per user and path in fixed windows.
// Redis errors are logged and the request is let through.
func RateLimitMiddleware(redisClient *redis.Client, limit int, window time.Duration, l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.ClientIP()
		if id, ok := currentUser(c); ok {
			subject = id.String()
		}

		key := fmt.Sprintf("rate_limit:%s:%s", c.FullPath(), subject)

		// INCR and EXPIRE NX run in one MULTI so a counter never outlives its
		// window.
		ctx := c.Request.Context()
		pipe := redisClient.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		if _, err := pipe.Exec(ctx); err != nil {
			l.WarnContext(ctx, "rate limit check failed", slog.String("key", key), slog.Any("error", err))
			c.Next()
			return
		}

		if incr.Val() > int64(limit) {
			abortJSON(c, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		c.Next()
	}
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxKeyUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
