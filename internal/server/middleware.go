package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	userdomain "github.com/vendepy/vendepy/internal/user/domain"
	"go.uber.org/zap"
)

const (
	// HeaderUser identifies the acting operator. Session handling sits
	// in front of this service; the header carries the resolved user id.
	HeaderUser = "X-User-ID"

	contextActorKey = "actor"
)

// ActorRequired resolves the acting user from the request header and
// rejects requests from unknown or deactivated accounts.
func (s *Server) ActorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderUser))
		if id == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.userSvc.GetByID(c.Request.Context(), id)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if !user.IsActive {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextActorKey, user)
		c.Next()
	}
}

// AdminRequired gates admin-only routes. Runs after ActorRequired.
func (s *Server) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.actor(c).Unlimited() {
			AbortWithError(c, userdomain.ErrForbidden)
			return
		}
		c.Next()
	}
}

func (s *Server) actor(c *gin.Context) userdomain.User {
	value, ok := c.Get(contextActorKey)
	if !ok {
		return userdomain.User{}
	}
	user, _ := value.(userdomain.User)
	return user
}

func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		}
		if last := c.Errors.Last(); last != nil {
			fields = append(fields, zap.Error(last.Err))
		}

		if c.Writer.Status() >= 500 {
			log.Error("request", fields...)
			return
		}
		log.Info("request", fields...)
	}
}
