package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

// These tests need a live server and only run when pointed at one.

func TestMongoStoreContract(t *testing.T) {
	url := os.Getenv("STATESAPI_TEST_MONGO_URL")
	if url == "" {
		t.Skip("STATESAPI_TEST_MONGO_URL not set")
	}
	c := qt.New(t)
	dbName := fmt.Sprintf("statesapi_test_%d", time.Now().UnixNano())
	s, err := NewMongoStore(url, dbName)
	c.Assert(err, qt.IsNil)
	defer func() {
		c.Check(s.session.DB(dbName).DropDatabase(), qt.IsNil)
		c.Check(s.Close(), qt.IsNil)
	}()
	checkStoreContract(c, s)
}

func TestPostgresStoreContract(t *testing.T) {
	dsn := os.Getenv("STATESAPI_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("STATESAPI_TEST_DATABASE_URL not set")
	}
	c := qt.New(t)
	ctx := context.Background()
	s, err := OpenPostgresStore(ctx, dsn)
	c.Assert(err, qt.IsNil)
	defer func() { c.Check(s.Close(), qt.IsNil) }()
	_, err = s.db.ExecContext(ctx, `delete from states`)
	c.Assert(err, qt.IsNil)
	checkStoreContract(c, s)
}
