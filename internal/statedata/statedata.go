// Package statedata holds the static US state reference table and the
// overlay logic that folds persisted fields on top of it.
package statedata

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/juju/errors"
)

//go:embed states.json
var statesJSON []byte

const (
	// CodeKey is the static identifier of a state.
	CodeKey = "code"
	// NameKey holds the full state name.
	NameKey = "state"
	// StoreKey is the identifier used by persisted records. It never
	// survives a merge.
	StoreKey = "stateCode"
	// FunFactsKey holds the persisted list of fun facts.
	FunFactsKey = "funfacts"
)

// Record is one state as a set of named fields.
type Record map[string]any

// Code returns the two-letter state code, or "" if the record has none.
func (r Record) Code() string {
	s, _ := r[CodeKey].(string)
	return s
}

// Name returns the full state name.
func (r Record) Name() string {
	s, _ := r[NameKey].(string)
	return s
}

// FunFacts returns the record's fun facts. ok is false when the field is
// absent or does not hold a list of strings.
func (r Record) FunFacts() (facts []string, ok bool) {
	switch v := r[FunFactsKey].(type) {
	case []string:
		return v, true
	case []any:
		facts = make([]string, 0, len(v))
		for _, item := range v {
			s, isString := item.(string)
			if !isString {
				return nil, false
			}
			facts = append(facts, s)
		}
		return facts, true
	}
	return nil, false
}

// Clone returns a copy that can be modified without touching r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		if list, ok := v.([]string); ok {
			v = append(make([]string, 0, len(list)), list...)
		}
		out[k] = v
	}
	return out
}

// Table is the immutable set of static state records.
type Table struct {
	records []Record
	byCode  map[string]int
}

// Load decodes the embedded state table.
func Load() (*Table, error) {
	return decode(statesJSON)
}

func decode(data []byte) (*Table, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var records []Record
	if err := dec.Decode(&records); err != nil {
		return nil, errors.Annotate(err, "decoding static state table")
	}
	t := &Table{records: records, byCode: make(map[string]int, len(records))}
	for i, r := range records {
		code := r.Code()
		if code == "" {
			return nil, errors.NotValidf("state record %d without code", i)
		}
		if _, dup := t.byCode[code]; dup {
			return nil, errors.AlreadyExistsf("state code %q", code)
		}
		t.byCode[code] = i
	}
	return t, nil
}

// All returns fresh copies of every static record in table order.
func (t *Table) All() []Record {
	out := make([]Record, len(t.records))
	for i, r := range t.records {
		out[i] = r.Clone()
	}
	return out
}

// Lookup finds a static record by code, ignoring case.
func (t *Table) Lookup(code string) (Record, bool) {
	i, ok := t.byCode[strings.ToUpper(code)]
	if !ok {
		return nil, false
	}
	return t.records[i].Clone(), true
}

// Len reports the number of static records.
func (t *Table) Len() int { return len(t.records) }
