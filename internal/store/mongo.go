package store

import (
	"context"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/mgo/v3"
	"github.com/juju/mgo/v3/bson"
)

var mongoLogger = loggo.GetLogger("statesapi.store.mongo")

const (
	statesCollection = "states"
	dialTimeout      = 10 * time.Second
)

// MongoStore keeps one document per state in the "states" collection.
type MongoStore struct {
	session *mgo.Session
	dbName  string
}

// NewMongoStore dials url and makes sure stateCode is uniquely indexed.
func NewMongoStore(url, dbName string) (*MongoStore, error) {
	session, err := mgo.DialWithTimeout(url, dialTimeout)
	if err != nil {
		return nil, errors.Annotate(err, "dialing mongo")
	}
	session.SetMode(mgo.Monotonic, true)
	s := &MongoStore{session: session, dbName: dbName}
	if err := s.ensureIndexes(); err != nil {
		session.Close()
		return nil, errors.Trace(err)
	}
	mongoLogger.Infof("using mongo database %q", dbName)
	return s, nil
}

var _ Store = (*MongoStore)(nil)

// collection returns the states collection on a copied session along with
// the func that releases it.
func (s *MongoStore) collection() (*mgo.Collection, func()) {
	session := s.session.Copy()
	return session.DB(s.dbName).C(statesCollection), session.Close
}

func (s *MongoStore) ensureIndexes() error {
	coll, closer := s.collection()
	defer closer()
	err := coll.EnsureIndex(mgo.Index{
		Key:    []string{"stateCode"},
		Unique: true,
	})
	if err != nil {
		return errors.Annotate(err, "ensuring stateCode index")
	}
	mongoLogger.Debugf("stateCode index ensured")
	return nil
}

func (s *MongoStore) FindAll(ctx context.Context) ([]StateRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	coll, closer := s.collection()
	defer closer()
	var out []StateRecord
	if err := coll.Find(nil).Sort("stateCode").All(&out); err != nil {
		return nil, errors.Annotate(err, "reading state records")
	}
	return out, nil
}

func (s *MongoStore) FindOne(ctx context.Context, code string) (StateRecord, error) {
	if err := ctx.Err(); err != nil {
		return StateRecord{}, errors.Trace(err)
	}
	code = normalizeCode(code)
	coll, closer := s.collection()
	defer closer()
	var r StateRecord
	err := coll.Find(bson.D{{Name: "stateCode", Value: code}}).One(&r)
	if err == mgo.ErrNotFound {
		return StateRecord{}, notFound(code)
	} else if err != nil {
		return StateRecord{}, errors.Annotatef(err, "reading state record %q", code)
	}
	return r, nil
}

func (s *MongoStore) SetFunFacts(ctx context.Context, code string, facts []string) (StateRecord, error) {
	mongoLogger.Debugf("setting %d fun facts for %s", len(facts), code)
	return s.upsert(ctx, code, bson.D{{Name: "$set", Value: bson.D{{Name: "funfacts", Value: copyFacts(facts)}}}})
}

func (s *MongoStore) UnsetFunFacts(ctx context.Context, code string) (StateRecord, error) {
	mongoLogger.Debugf("unsetting fun facts for %s", code)
	return s.upsert(ctx, code, bson.D{{Name: "$unset", Value: bson.D{{Name: "funfacts", Value: ""}}}})
}

// upsert applies update to the document for code, inserting it when absent,
// and returns the document as stored afterwards.
func (s *MongoStore) upsert(ctx context.Context, code string, update bson.D) (StateRecord, error) {
	if err := ctx.Err(); err != nil {
		return StateRecord{}, errors.Trace(err)
	}
	code = normalizeCode(code)
	coll, closer := s.collection()
	defer closer()
	change := mgo.Change{
		Update:    update,
		Upsert:    true,
		ReturnNew: true,
	}
	var r StateRecord
	if _, err := coll.Find(bson.D{{Name: "stateCode", Value: code}}).Apply(change, &r); err != nil {
		return StateRecord{}, errors.Annotatef(err, "updating state record %q", code)
	}
	return r, nil
}

func (s *MongoStore) Close() error {
	s.session.Close()
	return nil
}
