package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/juju/errors"

	"statesapi/internal/auth"
	"statesapi/internal/statedata"
	"statesapi/internal/store"
)

// ListStatesHandler returns every state merged with its persisted fields,
// optionally filtered by ?contig=true|false.
func ListStatesHandler(table *statedata.Table, s store.Store) http.HandlerFunc {
	return handle(func(w http.ResponseWriter, r *http.Request) error {
		persisted, err := s.FindAll(r.Context())
		if err != nil {
			return errors.Annotate(err, "listing states")
		}
		overlays := make([]statedata.Record, 0, len(persisted))
		for _, p := range persisted {
			overlays = append(overlays, p.Fields())
		}
		states := statedata.Merge(table.All(), overlays)

		// Anything other than true/false leaves the list unfiltered.
		switch strings.ToLower(r.URL.Query().Get("contig")) {
		case "true":
			states = statedata.FilterContiguous(states, true)
		case "false":
			states = statedata.FilterContiguous(states, false)
		}
		writeJSON(w, http.StatusOK, states)
		return nil
	})
}

// GetStateHandler returns the resolved, merged state record.
func GetStateHandler() http.HandlerFunc {
	return handle(func(w http.ResponseWriter, r *http.Request) error {
		state, err := resolvedState(r)
		if err != nil {
			return errors.Trace(err)
		}
		writeJSON(w, http.StatusOK, state)
		return nil
	})
}

// GetStatePropertyHandler returns a single field of the resolved state as
// {state: <name>, <label>: <value>}.
func GetStatePropertyHandler() http.HandlerFunc {
	return handle(func(w http.ResponseWriter, r *http.Request) error {
		property := chi.URLParam(r, "property")
		if property == "" {
			return badRequest("State property is required")
		}
		state, err := resolvedState(r)
		if err != nil {
			return errors.Trace(err)
		}
		field := normalizeProperty(property)
		value, ok := state[field]
		if !ok || !hasValue(value) {
			return notFound("Invalid state property")
		}
		writeJSON(w, http.StatusOK, map[string]any{
			statedata.NameKey:    state.Name(),
			propertyLabel(field): formatProperty(field, value),
		})
		return nil
	})
}

// resolvedState fetches the view attached by auth.StateDataMiddleware. Its
// absence is a wiring mistake, not a client error.
func resolvedState(r *http.Request) (statedata.Record, error) {
	state, ok := auth.StateFromContext(r.Context())
	if !ok {
		return nil, errors.New("no state resolved for request")
	}
	return state, nil
}
