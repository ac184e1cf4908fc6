package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"

	"statesapi/internal/config"
	"statesapi/internal/statedata"
	"statesapi/internal/store"
)

func resolverRouter(c *qt.C, s store.Store) http.Handler {
	table, err := statedata.Load()
	c.Assert(err, qt.IsNil)
	r := chi.NewRouter()
	r.With(StateDataMiddleware(table, s)).Get("/states/{state}", func(w http.ResponseWriter, r *http.Request) {
		state, ok := StateFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_ = json.NewEncoder(w).Encode(state)
	})
	return r
}

func decodeBody(c *qt.C, rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &out), qt.IsNil, qt.Commentf("body: %s", rec.Body.String()))
	return out
}

func TestStateDataMiddlewareResolvesAndMerges(t *testing.T) {
	c := qt.New(t)
	s := store.NewMemoryStore()
	_, err := s.SetFunFacts(context.Background(), "GA", []string{"peaches"})
	c.Assert(err, qt.IsNil)
	h := resolverRouter(c, s)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/states/ga", nil))
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	body := decodeBody(c, rec)
	c.Check(body["code"], qt.Equals, "GA")
	c.Check(body["state"], qt.Equals, "Georgia")
	c.Check(body["funfacts"], qt.DeepEquals, []any{"peaches"})
	_, hasStoreKey := body["stateCode"]
	c.Check(hasStoreKey, qt.IsFalse)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/states/TX", nil))
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	_, hasFacts := decodeBody(c, rec)["funfacts"]
	c.Check(hasFacts, qt.IsFalse)
}

func TestStateDataMiddlewareUnknownCode(t *testing.T) {
	c := qt.New(t)
	h := resolverRouter(c, store.NewMemoryStore())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/states/ZZ", nil))
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)
	c.Assert(decodeBody(c, rec), qt.DeepEquals, map[string]any{"message": "Invalid state abbreviation parameter"})
}

func okHandler(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }

func TestAdminTokenMiddleware(t *testing.T) {
	h := AdminTokenMiddleware("s3cret")(http.HandlerFunc(okHandler))
	tests := []struct {
		name   string
		header map[string]string
		want   int
	}{
		{"missing", nil, http.StatusForbidden},
		{"wrong", map[string]string{"X-Admin-Token": "nope"}, http.StatusForbidden},
		{"header", map[string]string{"X-Admin-Token": "s3cret"}, http.StatusNoContent},
		{"bearer", map[string]string{"Authorization": "Bearer s3cret"}, http.StatusNoContent},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := qt.New(t)
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			for k, v := range test.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			c.Assert(rec.Code, qt.Equals, test.want)
		})
	}
}

var hmacKey = []byte("test-signing-key")

func testValidator() *JWTValidator {
	v := NewJWTValidator("https://issuer.example.com", "statesapi")
	v.keyfunc = func(*jwt.Token) (any, error) { return hmacKey, nil }
	return v
}

func sign(c *qt.C, claims jwt.MapClaims) string {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(hmacKey)
	c.Assert(err, qt.IsNil)
	return s
}

func TestJWTValidator(t *testing.T) {
	c := qt.New(t)
	v := testValidator()
	exp := time.Now().Add(time.Hour).Unix()

	claims, err := v.Validate(sign(c, jwt.MapClaims{"iss": "https://issuer.example.com", "aud": "statesapi", "sub": "u1", "exp": exp}))
	c.Assert(err, qt.IsNil)
	c.Assert(claims["sub"], qt.Equals, "u1")

	_, err = v.Validate(sign(c, jwt.MapClaims{"iss": "https://other.example.com", "aud": "statesapi", "exp": exp}))
	c.Assert(err, qt.ErrorMatches, "unexpected issuer .*")

	_, err = v.Validate(sign(c, jwt.MapClaims{"iss": "https://issuer.example.com", "aud": "elsewhere", "exp": exp}))
	c.Assert(err, qt.ErrorMatches, "unexpected audience .*")

	_, err = v.Validate(sign(c, jwt.MapClaims{"iss": "https://issuer.example.com", "aud": "statesapi", "exp": time.Now().Add(-time.Hour).Unix()}))
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestJWTValidatorIssuerWithTrailingSlash(t *testing.T) {
	c := qt.New(t)
	v := NewJWTValidator("https://tenant.example.com/", "")
	v.keyfunc = func(*jwt.Token) (any, error) { return hmacKey, nil }

	claims, err := v.Validate(sign(c, jwt.MapClaims{"iss": "https://tenant.example.com/", "sub": "u1"}))
	c.Assert(err, qt.IsNil)
	c.Assert(claims["sub"], qt.Equals, "u1")

	_, err = v.Validate(sign(c, jwt.MapClaims{"iss": "https://tenant.example.com", "sub": "u1"}))
	c.Assert(err, qt.ErrorMatches, "unexpected issuer .*")
}

func TestJWTAuthMiddlewareIssuerUnreachable(t *testing.T) {
	c := qt.New(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	issuer := srv.URL
	srv.Close()

	h := JWTAuthMiddleware(NewJWTValidator(issuer, ""))(http.HandlerFunc(okHandler))
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+sign(c, jwt.MapClaims{"iss": issuer}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	c.Assert(rec.Code, qt.Equals, http.StatusServiceUnavailable)
	c.Assert(rec.Header().Get("WWW-Authenticate"), qt.Equals, "")
}

func TestJWTAuthMiddleware(t *testing.T) {
	c := qt.New(t)
	var gotSub any
	h := JWTAuthMiddleware(testValidator())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFromContext(r.Context())
		gotSub = claims["sub"]
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	c.Assert(rec.Code, qt.Equals, http.StatusUnauthorized)
	c.Assert(rec.Header().Get("WWW-Authenticate"), qt.Contains, "invalid_token")

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+sign(c, jwt.MapClaims{"iss": "https://issuer.example.com", "aud": "statesapi", "sub": "u2"}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	c.Assert(rec.Code, qt.Equals, http.StatusNoContent)
	c.Assert(gotSub, qt.Equals, "u2")
}

func TestWriteGuard(t *testing.T) {
	c := qt.New(t)
	serve := func(cfg config.Auth) int {
		rec := httptest.NewRecorder()
		WriteGuard(cfg)(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		return rec.Code
	}
	c.Check(serve(config.Auth{}), qt.Equals, http.StatusNoContent)
	c.Check(serve(config.Auth{AdminToken: "t"}), qt.Equals, http.StatusForbidden)
	c.Check(serve(config.Auth{AdminToken: "t", Unprotected: true}), qt.Equals, http.StatusNoContent)
	c.Check(serve(config.Auth{JWTIssuer: "https://issuer.example.com"}), qt.Equals, http.StatusUnauthorized)
}
