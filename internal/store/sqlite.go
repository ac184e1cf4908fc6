package store

import (
	"context"

	"github.com/glebarez/sqlite"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

var sqliteLogger = loggo.GetLogger("statesapi.store.sqlite")

// stateRow is the gorm model behind SQLiteStore. FunFacts is NULL when unset.
type stateRow struct {
	StateCode string   `gorm:"primaryKey"`
	FunFacts  []string `gorm:"serializer:json;type:text"`
}

func (stateRow) TableName() string { return "states" }

func (r stateRow) record() StateRecord {
	return StateRecord{StateCode: r.StateCode, FunFacts: r.FunFacts}
}

// SQLiteStore is a single-file backend for local runs.
type SQLiteStore struct {
	db *gorm.DB
}

func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Annotatef(err, "opening sqlite %q", path)
	}
	if err := db.AutoMigrate(&stateRow{}); err != nil {
		return nil, errors.Annotate(err, "migrating states table")
	}
	sqliteLogger.Infof("using sqlite database %q", path)
	return &SQLiteStore{db: db}, nil
}

var _ Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) FindAll(ctx context.Context) ([]StateRecord, error) {
	var rows []stateRow
	if err := s.db.WithContext(ctx).Order("state_code").Find(&rows).Error; err != nil {
		return nil, errors.Annotate(err, "reading state records")
	}
	out := make([]StateRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, nil
}

func (s *SQLiteStore) FindOne(ctx context.Context, code string) (StateRecord, error) {
	code = normalizeCode(code)
	var row stateRow
	err := s.db.WithContext(ctx).First(&row, "state_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return StateRecord{}, notFound(code)
	} else if err != nil {
		return StateRecord{}, errors.Annotatef(err, "reading state record %q", code)
	}
	return row.record(), nil
}

func (s *SQLiteStore) SetFunFacts(ctx context.Context, code string, facts []string) (StateRecord, error) {
	sqliteLogger.Debugf("setting %d fun facts for %s", len(facts), code)
	return s.upsert(ctx, stateRow{StateCode: normalizeCode(code), FunFacts: copyFacts(facts)})
}

func (s *SQLiteStore) UnsetFunFacts(ctx context.Context, code string) (StateRecord, error) {
	sqliteLogger.Debugf("unsetting fun facts for %s", code)
	return s.upsert(ctx, stateRow{StateCode: normalizeCode(code)})
}

func (s *SQLiteStore) upsert(ctx context.Context, row stateRow) (StateRecord, error) {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "state_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"fun_facts"}),
	}).Create(&row).Error
	if err != nil {
		return StateRecord{}, errors.Annotatef(err, "updating state record %q", row.StateCode)
	}
	return row.record(), nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Trace(err)
	}
	return sqlDB.Close()
}
