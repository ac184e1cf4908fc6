package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"statesapi/internal/statedata"
	"statesapi/internal/store"
)

var logger = loggo.GetLogger("statesapi.auth")

// StateDataMiddleware resolves the {state} path parameter to a merged state
// view and attaches it to the request context. Unknown codes stop here
// with a 404.
func StateDataMiddleware(table *statedata.Table, s store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			static, ok := table.Lookup(chi.URLParam(r, "state"))
			if !ok {
				writeMessage(w, http.StatusNotFound, "Invalid state abbreviation parameter")
				return
			}

			var overlay statedata.Record
			rec, err := s.FindOne(r.Context(), static.Code())
			switch {
			case err == nil:
				overlay = rec.Fields()
			case errors.Is(err, errors.NotFound):
			default:
				logger.Errorf("resolving state %s: %s", static.Code(), errors.Details(err))
				writeMessage(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
				return
			}

			ctx := WithState(r.Context(), statedata.MergeOne(static, overlay))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
