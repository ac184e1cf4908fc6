package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/golang-jwt/jwt/v4"

	"statesapi/internal/statedata"
)

type contextKey string

const (
	claimsKey contextKey = "jwtClaims"
	stateKey  contextKey = "stateData"
)

func WithClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ClaimsFromContext(ctx context.Context) (jwt.MapClaims, bool) {
	v := ctx.Value(claimsKey)
	c, ok := v.(jwt.MapClaims)
	return c, ok
}

// WithState attaches the resolved state view to ctx.
func WithState(ctx context.Context, state statedata.Record) context.Context {
	return context.WithValue(ctx, stateKey, state)
}

// StateFromContext returns the state view attached by StateDataMiddleware.
func StateFromContext(ctx context.Context) (statedata.Record, bool) {
	v := ctx.Value(stateKey)
	s, ok := v.(statedata.Record)
	return s, ok
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
