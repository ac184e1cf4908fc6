package store

import (
	"strings"

	"github.com/juju/errors"
)

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// copyFacts always returns a non-nil slice so "set to empty" stays distinct
// from "unset".
func copyFacts(facts []string) []string {
	out := make([]string, len(facts))
	copy(out, facts)
	return out
}

func notFound(code string) error {
	return errors.NotFoundf("state record %q", code)
}
