package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// AnyOrigin in AllowOrigins allows every origin.
const AnyOrigin = "*"

// CORSConfig contains the configuration for CORS middleware.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig returns the policy used by the product routes: reads from a
// local storefront only.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"http://localhost:3000"},
		AllowMethods: []string{
			http.MethodGet,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			"Content-Type",
			"Authorization",
		},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			RequestIDHeader,
		},
		MaxAge: 86400, // 24 hours
	}
}

// NewCORSConfig returns the default policy restricted to the given origins.
func NewCORSConfig(origins []string, allowCredentials bool) CORSConfig {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = allowCredentials
	return cfg
}

// Enabled reports whether any origin is allowed.
func (c CORSConfig) Enabled() bool {
	return len(c.AllowOrigins) > 0
}

// allowedOrigin returns the value for Access-Control-Allow-Origin, or "" when the
// origin is not allowed.
func (c CORSConfig) allowedOrigin(origin string) string {
	for _, o := range c.AllowOrigins {
		if o == AnyOrigin {
			// Credentials cannot be combined with a wildcard.
			if c.AllowCredentials && origin != "" {
				return origin
			}
			return AnyOrigin
		}
		if origin != "" && o == origin {
			return origin
		}
	}
	return ""
}

// NewCORSMiddleware creates a new CORS middleware with the given configuration.
func NewCORSMiddleware(cfg CORSConfig) gin.HandlerFunc {
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(c *gin.Context) {
		allowed := cfg.allowedOrigin(c.Request.Header.Get("Origin"))

		if allowed != "" {
			c.Header("Access-Control-Allow-Origin", allowed)
			if cfg.AllowCredentials {
				c.Header("Access-Control-Allow-Credentials", "true")
			}
			c.Header("Access-Control-Allow-Headers", strings.Join(cfg.AllowHeaders, ", "))
			c.Header("Access-Control-Allow-Methods", strings.Join(cfg.AllowMethods, ", "))
			c.Header("Access-Control-Expose-Headers", strings.Join(cfg.ExposeHeaders, ", "))
			if cfg.MaxAge > 0 {
				c.Header("Access-Control-Max-Age", maxAge)
			}
			if allowed != AnyOrigin {
				c.Header("Vary", "Origin")
			}
		}

		// Preflight never reaches a route handler. Unmatched paths still pass through
		// here because gin runs global middleware on its 404 and 405 chains.
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
