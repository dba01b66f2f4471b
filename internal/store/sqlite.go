package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rshade/ghgledger/internal/emissions"
)

const insertBatchSize = 100

// recordRow is the persisted form of an ActivityRecord. Method, category,
// company and date are broken out for filtering; Fields holds the record.
type recordRow struct {
	ID        string         `gorm:"column:id;primaryKey;size:64"`
	Method    string         `gorm:"column:method;index;not null"`
	Category  string         `gorm:"column:category;index"`
	Company   string         `gorm:"column:company;index"`
	Date      *time.Time     `gorm:"column:date;index"`
	Fields    datatypes.JSON `gorm:"column:fields;not null"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (recordRow) TableName() string {
	return "activity_records"
}

// SQLStore keeps records in SQLite through gorm.
type SQLStore struct {
	db *gorm.DB
}

// OpenSQLite opens or creates the database at path and migrates it.
func OpenSQLite(path string, logger zerolog.Logger) (*SQLStore, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err = migrate(db, logger); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	logger.Debug().Str("component", "store").Str("path", path).Msg("database initialized")
	return &SQLStore{db: db}, nil
}

func migrate(db *gorm.DB, logger zerolog.Logger) error {
	if err := db.AutoMigrate(&recordRow{}, &migrationRecord{}); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return applyMigrations(db, logger)
}

// List returns matching records, newest first.
func (s *SQLStore) List(ctx context.Context, q Query) ([]emissions.ActivityRecord, error) {
	tx := s.db.WithContext(ctx).Model(&recordRow{})
	if q.Method != emissions.MethodUnknown {
		tx = tx.Where("method = ?", q.Method.String())
	}
	if q.Category != "" {
		tx = tx.Where("category = ?", string(q.Category))
	}
	if q.Company != "" {
		tx = tx.Where("LOWER(company) = LOWER(?)", q.Company)
	}

	var rows []recordRow
	if err := tx.Order("date IS NULL, date DESC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	out := make([]emissions.ActivityRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	SortRecords(out)
	return out, nil
}

// Get returns the record with id.
func (s *SQLStore) Get(ctx context.Context, id string) (emissions.ActivityRecord, error) {
	var row recordRow
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return emissions.ActivityRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return emissions.ActivityRecord{}, fmt.Errorf("loading record %s: %w", id, err)
	}
	return row.record()
}

// Add inserts records in one transaction.
func (s *SQLStore) Add(ctx context.Context, records ...emissions.ActivityRecord) ([]emissions.ActivityRecord, error) {
	prepared, err := prepare(records)
	if err != nil {
		return nil, err
	}
	rows := make([]recordRow, 0, len(prepared))
	for _, r := range prepared {
		row, rowErr := newRow(r)
		if rowErr != nil {
			return nil, rowErr
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return prepared, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(rows, insertBatchSize).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("%w: %w", ErrDuplicateID, err)
	}
	if err != nil {
		return nil, fmt.Errorf("inserting records: %w", err)
	}
	return prepared, nil
}

// Delete removes the record with id.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&recordRow{})
	if res.Error != nil {
		return fmt.Errorf("deleting record %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newRow(r emissions.ActivityRecord) (recordRow, error) {
	fields, err := emissions.EncodeRecord(r)
	if err != nil {
		return recordRow{}, err
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return recordRow{}, fmt.Errorf("encoding record %s: %w", r.ID, err)
	}
	row := recordRow{
		ID:       r.ID,
		Method:   r.Method.String(),
		Category: string(r.Method.Category()),
		Company:  r.Company,
		Fields:   datatypes.JSON(data),
	}
	if r.HasDate() {
		d := r.Date.UTC()
		row.Date = &d
	}
	return row, nil
}

func (row recordRow) record() (emissions.ActivityRecord, error) {
	var fields emissions.Fields
	if err := json.Unmarshal(row.Fields, &fields); err != nil {
		return emissions.ActivityRecord{}, fmt.Errorf("decoding record %s: %w", row.ID, err)
	}
	method, err := emissions.ParseMethod(row.Method)
	if err != nil {
		return emissions.ActivityRecord{}, fmt.Errorf("record %s: %w", row.ID, err)
	}
	fields[emissions.FieldID] = row.ID
	rec, err := emissions.DecodeRecord(method, fields)
	if err != nil {
		return emissions.ActivityRecord{}, fmt.Errorf("record %s: %w", row.ID, err)
	}
	return rec, nil
}
