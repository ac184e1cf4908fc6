package statedata

import (
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/juju/errors"
)

func TestLoadEmbeddedTable(t *testing.T) {
	c := qt.New(t)
	table, err := Load()
	c.Assert(err, qt.IsNil)
	c.Assert(table.Len(), qt.Equals, 50)

	ga, ok := table.Lookup("ga")
	c.Assert(ok, qt.IsTrue)
	c.Check(ga.Name(), qt.Equals, "Georgia")
	c.Check(ga["capital_city"], qt.Equals, "Atlanta")
	c.Check(ga["population"], qt.Equals, json.Number("10711908"))

	_, ok = table.Lookup("ZZ")
	c.Assert(ok, qt.IsFalse)
}

func TestTableReturnsCopies(t *testing.T) {
	c := qt.New(t)
	table, err := Load()
	c.Assert(err, qt.IsNil)

	all := table.All()
	all[0][NameKey] = "changed"
	all[0][FunFactsKey] = []string{"x"}

	again := table.All()
	c.Assert(again[0].Name(), qt.Not(qt.Equals), "changed")
	_, ok := again[0].FunFacts()
	c.Assert(ok, qt.IsFalse)
}

func TestDecodeRejectsDuplicateCodes(t *testing.T) {
	c := qt.New(t)
	_, err := decode([]byte(`[{"code":"AA"},{"code":"AA"}]`))
	c.Assert(errors.Is(err, errors.AlreadyExists), qt.IsTrue)

	_, err = decode([]byte(`[{"state":"Nowhere"}]`))
	c.Assert(errors.Is(err, errors.NotValid), qt.IsTrue)
}

func TestRecordFunFacts(t *testing.T) {
	c := qt.New(t)

	facts, ok := Record{FunFactsKey: []any{"a", "b"}}.FunFacts()
	c.Assert(ok, qt.IsTrue)
	c.Assert(facts, qt.DeepEquals, []string{"a", "b"})

	_, ok = Record{FunFactsKey: []any{"a", 1}}.FunFacts()
	c.Assert(ok, qt.IsFalse)

	_, ok = Record{FunFactsKey: "a"}.FunFacts()
	c.Assert(ok, qt.IsFalse)

	_, ok = Record{}.FunFacts()
	c.Assert(ok, qt.IsFalse)
}
