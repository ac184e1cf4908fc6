package store

import (
	"context"

	"statesapi/internal/statedata"
)

// StateRecord is the mutable part of a state, keyed by its code. A nil
// FunFacts means the field is not set on the stored document.
type StateRecord struct {
	StateCode string   `json:"stateCode" bson:"stateCode"`
	FunFacts  []string `json:"funfacts" bson:"funfacts,omitempty"`
}

// Fields returns the record as an overlay for statedata.Merge.
func (r StateRecord) Fields() statedata.Record {
	out := statedata.Record{statedata.StoreKey: r.StateCode}
	if r.FunFacts != nil {
		out[statedata.FunFactsKey] = copyFacts(r.FunFacts)
	}
	return out
}

// Store defines the document operations used by handlers so we can plug
// different backends (memory, mongo, postgres, sqlite).
type Store interface {
	// FindAll returns every persisted record.
	FindAll(ctx context.Context) ([]StateRecord, error)
	// FindOne returns the record for code, or a NotFound error.
	FindOne(ctx context.Context, code string) (StateRecord, error)
	// SetFunFacts replaces the fun facts for code, creating the record if
	// needed, and returns the stored record.
	SetFunFacts(ctx context.Context, code string, facts []string) (StateRecord, error)
	// UnsetFunFacts removes the fun facts field for code, creating the
	// record if needed, and returns the stored record.
	UnsetFunFacts(ctx context.Context, code string) (StateRecord, error)
	Close() error
}
