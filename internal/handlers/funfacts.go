package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"

	"github.com/juju/errors"

	"statesapi/internal/auth"
	"statesapi/internal/statedata"
	"statesapi/internal/store"
)

// GetFunFactHandler returns one of the state's fun facts, picked at random.
func GetFunFactHandler() http.HandlerFunc {
	return handle(func(w http.ResponseWriter, r *http.Request) error {
		state, err := resolvedState(r)
		if err != nil {
			return errors.Trace(err)
		}
		facts, ok := state.FunFacts()
		if !ok || len(facts) == 0 {
			return noFunFacts(state)
		}
		writeJSON(w, http.StatusOK, map[string]string{"funfact": facts[rand.IntN(len(facts))]})
		return nil
	})
}

// AddFunFactsHandler appends the body's funfacts array to the state's list.
func AddFunFactsHandler(s store.Store) http.HandlerFunc {
	return handle(func(w http.ResponseWriter, r *http.Request) error {
		body := readBody(r)
		raw, ok := body.get("funfacts")
		if !ok {
			return badRequest("State fun facts value required")
		}
		var added []string
		if err := json.Unmarshal(raw, &added); err != nil {
			return badRequest("State fun facts value must be an array")
		}
		state, err := resolvedState(r)
		if err != nil {
			return errors.Trace(err)
		}

		existing, _ := state.FunFacts()
		updated := make([]string, 0, len(existing)+len(added))
		updated = append(updated, existing...)
		updated = append(updated, added...)

		rec, err := s.SetFunFacts(r.Context(), state.Code(), updated)
		if err != nil {
			return errors.Annotatef(err, "adding fun facts for %s", state.Code())
		}
		logger.Debugf("%s added %d fun facts to %s", actor(r), len(added), state.Code())
		rec.FunFacts = updated
		writeJSON(w, http.StatusOK, rec)
		return nil
	})
}

// ReplaceFunFactHandler overwrites the fact at the 1-based body index.
func ReplaceFunFactHandler(s store.Store) http.HandlerFunc {
	return handle(func(w http.ResponseWriter, r *http.Request) error {
		body := readBody(r)
		index, err := body.index()
		if err != nil {
			return errors.Trace(err)
		}
		raw, ok := body.get("funfact")
		if !ok {
			return badRequest("State fun fact value required")
		}
		var fact string
		if err := json.Unmarshal(raw, &fact); err != nil {
			return badRequest("State fun fact value required")
		}
		state, err := resolvedState(r)
		if err != nil {
			return errors.Trace(err)
		}
		facts, pos, err := locateFunFact(state, index)
		if err != nil {
			return errors.Trace(err)
		}

		updated := append([]string(nil), facts...)
		updated[pos] = fact
		rec, err := s.SetFunFacts(r.Context(), state.Code(), updated)
		if err != nil {
			return errors.Annotatef(err, "replacing fun fact for %s", state.Code())
		}
		logger.Debugf("%s replaced fun fact %d of %s", actor(r), index, state.Code())
		rec.FunFacts = updated
		writeJSON(w, http.StatusOK, rec)
		return nil
	})
}

// DeleteFunFactHandler removes the fact at the 1-based body index. Removing
// the last fact unsets the stored field.
func DeleteFunFactHandler(s store.Store) http.HandlerFunc {
	return handle(func(w http.ResponseWriter, r *http.Request) error {
		index, err := readBody(r).index()
		if err != nil {
			return errors.Trace(err)
		}
		state, err := resolvedState(r)
		if err != nil {
			return errors.Trace(err)
		}
		facts, pos, err := locateFunFact(state, index)
		if err != nil {
			return errors.Trace(err)
		}

		updated := make([]string, 0, len(facts)-1)
		updated = append(updated, facts[:pos]...)
		updated = append(updated, facts[pos+1:]...)

		var rec store.StateRecord
		if len(updated) > 0 {
			rec, err = s.SetFunFacts(r.Context(), state.Code(), updated)
		} else {
			rec, err = s.UnsetFunFacts(r.Context(), state.Code())
		}
		if err != nil {
			return errors.Annotatef(err, "deleting fun fact for %s", state.Code())
		}
		logger.Debugf("%s deleted fun fact %d of %s", actor(r), index, state.Code())
		rec.FunFacts = updated
		writeJSON(w, http.StatusOK, rec)
		return nil
	})
}

// locateFunFact checks that the state has facts and that the 1-based index
// points at one of them.
func locateFunFact(state statedata.Record, index int) ([]string, int, error) {
	facts, ok := state.FunFacts()
	if !ok || len(facts) == 0 {
		return nil, 0, noFunFacts(state)
	}
	pos := index - 1
	if pos < 0 || pos >= len(facts) {
		return nil, 0, notFound(fmt.Sprintf("No Fun Fact found at that index for %s", state.Name()))
	}
	return facts, pos, nil
}

func noFunFacts(state statedata.Record) error {
	return notFound(fmt.Sprintf("No Fun Facts found for %s", state.Name()))
}

// requestBody holds the top-level fields of a JSON request body. An empty or
// malformed body has no fields.
type requestBody map[string]json.RawMessage

func readBody(r *http.Request) requestBody {
	var body requestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body == nil {
		return requestBody{}
	}
	return body
}

// get returns the raw value of key; null counts as absent.
func (b requestBody) get(key string) (json.RawMessage, bool) {
	raw, ok := b[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}

// index reads the 1-based "index" field. Falsy values (missing, null, 0,
// "", false) are rejected the same as a missing index, so 0 is never a
// valid index. Numeric strings are accepted.
func (b requestBody) index() (int, error) {
	missing := badRequest("State fun fact index value required")
	raw, ok := b.get("index")
	if !ok {
		return 0, missing
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, missing
	}
	var f float64
	switch t := v.(type) {
	case float64:
		if t == 0 {
			return 0, missing
		}
		f = t
	case string:
		if t == "" {
			return 0, missing
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, missing
		}
		f = parsed
	default:
		return 0, missing
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, missing
	}
	// Out of range values saturate so they fail the bounds check instead.
	return int(max(min(f, math.MaxInt32), math.MinInt32)), nil
}

func actor(r *http.Request) string {
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		if sub, ok := claims["sub"].(string); ok && sub != "" {
			return sub
		}
	}
	return "anonymous"
}
