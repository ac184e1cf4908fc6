package auth

import (
	"net/http"

	"statesapi/internal/config"
)

// WriteGuard picks the middleware in front of the fun fact write routes:
// JWT when an issuer is configured, else a shared admin token, else none.
func WriteGuard(cfg config.Auth) func(http.Handler) http.Handler {
	switch {
	case cfg.Unprotected:
		logger.Warningf("write routes are unprotected")
		return passThrough
	case cfg.JWTIssuer != "":
		logger.Infof("write routes require a JWT from %s", cfg.JWTIssuer)
		return JWTAuthMiddleware(NewJWTValidator(cfg.JWTIssuer, cfg.JWTAudience))
	case cfg.AdminToken != "":
		logger.Infof("write routes require the admin token")
		return AdminTokenMiddleware(cfg.AdminToken)
	default:
		return passThrough
	}
}

func passThrough(next http.Handler) http.Handler { return next }
