package auth

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	keyfunc "github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	"github.com/juju/errors"
)

// JWTValidator checks bearer tokens against a single issuer's JWKS.
type JWTValidator struct {
	issuer   string
	audience string

	mu      sync.Mutex
	keyfunc jwt.Keyfunc
}

func NewJWTValidator(issuer, audience string) *JWTValidator {
	return &JWTValidator{issuer: issuer, audience: audience}
}

// getKeyfunc fetches the issuer JWKS on first use and keeps it refreshed.
// We assume the issuer serves its keys at /.well-known/jwks.json. The lock
// is not held during the fetch.
func (v *JWTValidator) getKeyfunc() (jwt.Keyfunc, error) {
	v.mu.Lock()
	kf := v.keyfunc
	v.mu.Unlock()
	if kf != nil {
		return kf, nil
	}

	jwksURI := fmt.Sprintf("%s/.well-known/jwks.json", strings.TrimSuffix(v.issuer, "/"))
	jwks, err := keyfunc.Get(jwksURI, keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			logger.Warningf("refreshing %s: %v", jwksURI, err)
		},
		RefreshInterval: time.Minute * 5,
		RefreshTimeout:  time.Second * 10,
	})
	if err != nil {
		return nil, errors.Annotatef(err, "fetching %s", jwksURI)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.keyfunc != nil {
		// Another request won the race.
		jwks.EndBackground()
		return v.keyfunc, nil
	}
	v.keyfunc = jwks.Keyfunc
	return v.keyfunc, nil
}

// Validate parses tokenString and checks its signature, issuer and audience.
// Rejected tokens are Unauthorized errors; failing to fetch the issuer keys
// is not.
func (v *JWTValidator) Validate(tokenString string) (jwt.MapClaims, error) {
	kf, err := v.getKeyfunc()
	if err != nil {
		return nil, errors.Trace(err)
	}
	token, err := jwt.ParseWithClaims(tokenString, jwt.MapClaims{}, kf)
	if err != nil {
		return nil, errors.NewUnauthorized(err, "invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.Unauthorizedf("invalid token")
	}
	if !claims.VerifyIssuer(v.issuer, true) {
		return nil, errors.Unauthorizedf("unexpected issuer %v", claims["iss"])
	}
	if v.audience != "" && !claims.VerifyAudience(v.audience, true) {
		return nil, errors.Unauthorizedf("unexpected audience %v", claims["aud"])
	}
	return claims, nil
}

func JWTAuthMiddleware(validator *JWTValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorizedWithWWWAuthenticate(w)
				return
			}
			claims, err := validator.Validate(token)
			if errors.Is(err, errors.Unauthorized) {
				logger.Debugf("rejecting token: %v", err)
				unauthorizedWithWWWAuthenticate(w)
				return
			}
			if err != nil {
				logger.Errorf("validating token: %v", err)
				writeMessage(w, http.StatusServiceUnavailable, "token issuer unavailable")
				return
			}

			// Attach claims to context for handlers
			ctx := WithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorizedWithWWWAuthenticate(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer realm=\"States API\", error=\"invalid_token\"")
	writeMessage(w, http.StatusUnauthorized, "unauthorized")
}
