package rest

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andrescamacho/shopfloor-go/internal/application/common"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
	"github.com/andrescamacho/shopfloor-go/internal/infrastructure/config"
)

const (
	ctxRequestID   = "request_id"
	ctxActor       = "actor"
	ctxPermissions = "permissions"

	// PermissionProductionWrite is required by every mutating route
	PermissionProductionWrite = "production:write"

	wildcardPermission = "*"
)

// Claims is the bearer token payload
type Claims struct {
	Name        string   `json:"name,omitempty"`
	Permissions []string `json:"perms"`
	jwt.RegisteredClaims
}

// RequestID tags every request with an id, reusing X-Request-ID when the caller sends one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(ctxRequestID, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// AccessLog writes one line per request and attaches a request-scoped logger to the context
func AccessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqLogger := logger.With(zap.String("request_id", c.GetString(ctxRequestID)))
		c.Request = c.Request.WithContext(common.WithLogger(c.Request.Context(), reqLogger))

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if actor, ok := c.Get(ctxActor); ok {
			fields = append(fields, zap.String("actor", actor.(string)))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			reqLogger.Error("server error", fields...)
		case status >= 400:
			reqLogger.Warn("client error", fields...)
		default:
			reqLogger.Info("request", fields...)
		}
	}
}

// Recovery turns a panic into a 500 without leaking the panic value
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in handler",
					zap.Any("panic", r),
					zap.String("request_id", c.GetString(ctxRequestID)),
					zap.ByteString("stack", debug.Stack()))
				abort(c, http.StatusInternalServerError, "internal_error", "internal server error")
			}
		}()
		c.Next()
	}
}

// JWTAuth verifies the bearer token and attaches the actor to the request context
func JWTAuth(cfg config.AuthConfig) gin.HandlerFunc {
	if cfg.Disabled {
		return func(c *gin.Context) {
			setIdentity(c, shared.SystemActor, []string{wildcardPermission})
			c.Next()
		}
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	secret := []byte(cfg.JWTSecret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, tokenString, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", "authorization is required")
			return
		}

		claims := &Claims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil || !token.Valid {
			abort(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}

		actor, err := shared.NewActorID(claims.Subject)
		if err != nil {
			abort(c, http.StatusUnauthorized, "unauthorized", "token has no subject")
			return
		}
		setIdentity(c, actor, claims.Permissions)
		c.Next()
	}
}

// RequirePermission rejects requests whose token lacks permission
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		perms, _ := c.Get(ctxPermissions)
		granted, _ := perms.([]string)
		for _, p := range granted {
			if p == permission || p == wildcardPermission {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "forbidden", "permission denied: "+permission)
	}
}

func setIdentity(c *gin.Context, actor shared.ActorID, permissions []string) {
	c.Set(ctxActor, actor.Value())
	c.Set(ctxPermissions, permissions)
	c.Request = c.Request.WithContext(common.WithActor(c.Request.Context(), actor))
}
