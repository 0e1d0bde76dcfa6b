package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/service"
	"alcyxob/coachhub/internal/session"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Constants for context keys
const (
	ContextSessionKey = "session"
)

// AuthMiddleware resolves the bearer token into the caller's session.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		sess, err := authService.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			abortWithServiceError(c, err)
			return
		}

		c.Set(ContextSessionKey, sess)
		c.Next()
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// RoleMiddleware creates middleware to check if user has the required role(s).
// Must run AFTER AuthMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := getSession(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if sess.NeedsOnboarding() {
			abortWithServiceError(c, service.ErrNeedsOnboarding)
			return
		}

		userRole := sess.Role()
		for _, allowedRole := range allowedRoles {
			if userRole == allowedRole {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, fmt.Sprintf("Access denied: Role '%s' does not have permission", userRole))
	}
}

// SendLimiter throttles message sends per user with a token bucket.
type SendLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
	limiters map[string]*userLimiter
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewSendLimiter allows perSecond sends per user with the given burst.
func NewSendLimiter(perSecond float64, burst int) *SendLimiter {
	return &SendLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idle:     10 * time.Minute,
		now:      time.Now,
		limiters: map[string]*userLimiter{},
	}
}

func (l *SendLimiter) allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for id, ul := range l.limiters {
		if now.Sub(ul.lastSeen) > l.idle {
			delete(l.limiters, id)
		}
	}
	ul, ok := l.limiters[userID]
	if !ok {
		ul = &userLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[userID] = ul
	}
	ul.lastSeen = now
	return ul.limiter.AllowN(now, 1)
}

// Middleware rejects a user's request with 429 once their bucket is empty.
// Must run AFTER AuthMiddleware.
func (l *SendLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := getSession(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if !l.allow(sess.UserID()) {
			c.Header("Retry-After", "1")
			abortWithError(c, http.StatusTooManyRequests, "Too many messages, slow down")
			return
		}
		c.Next()
	}
}

// Helper function to get the session from context (used by handlers)
func getSession(c *gin.Context) (*session.Session, error) {
	raw, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil, errors.New("session not found in context")
	}
	sess, ok := raw.(*session.Session)
	if !ok || sess == nil {
		return nil, errors.New("invalid session type in context")
	}
	return sess, nil
}

// mustSession aborts with 401 when no session was attached.
func mustSession(c *gin.Context) (*session.Session, bool) {
	sess, err := getSession(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return nil, false
	}
	return sess, true
}
