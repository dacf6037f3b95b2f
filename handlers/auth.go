package handlers

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
)

// SecretHeader is the request header that may carry the shared trigger secret.
const SecretHeader = "x-cron-secret"

// presentedSecret returns the secret presented by the caller, preferring the query parameter.
func presentedSecret(c *gin.Context) string {
	if secret := c.Query("secret"); secret != "" {
		return secret
	}
	return c.GetHeader(SecretHeader)
}

// checkSecret returns an AuthorizationError unless the presented secret matches the configured secret.
// An empty configured secret never matches.
func checkSecret(configured, presented string) error {
	if configured == "" {
		return NewAuthorizationError("unauthorized: no trigger secret is configured")
	}
	if subtle.ConstantTimeCompare([]byte(configured), []byte(presented)) != 1 {
		return NewAuthorizationError("unauthorized")
	}
	return nil
}

// RequireSecret returns middleware that rejects requests that don't present the shared trigger secret
// before any other handler runs.
func RequireSecret(configured string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := checkSecret(configured, presentedSecret(c)); err != nil {
			log.WithField("path", c.FullPath()).Warn("rejected a request without a valid trigger secret")
			respondError(c, err)
			return
		}
		c.Next()
	}
}
