package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Document is the single table every collection maps onto: JSON payloads
// keyed by (collection, doc_id) with a version column for optimistic
// concurrency control.
type Document struct {
	ID         uint   `gorm:"primary_key"`
	Collection string `gorm:"not null;unique_index:uix_collection_doc"`
	DocID      string `gorm:"not null;unique_index:uix_collection_doc"`
	Data       string `gorm:"type:text"`
	Version    int64  `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName sets the table name for Document
func (Document) TableName() string {
	return "documents"
}

// GormStore is the sqlite-backed document store
type GormStore struct {
	db       *gorm.DB
	attempts int
	backoff  time.Duration

	// OnConflict is invoked once per retried transaction attempt. Wired to
	// the metrics collector by the caller; may be nil.
	OnConflict func()
}

// Open initializes the database connection and migrates the schema
func Open(dbPath string) (*GormStore, error) {
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Document{}).Error; err != nil {
		db.Close()
		return nil, err
	}
	return &GormStore{
		db:       db,
		attempts: defaultTxAttempts,
		backoff:  defaultTxBackoffMS * time.Millisecond,
	}, nil
}

// Close closes the database connection
func (s *GormStore) Close() error {
	return s.db.Close()
}

// ConfigureRetries overrides the transaction retry policy
func (s *GormStore) ConfigureRetries(attempts int, backoff time.Duration) {
	if attempts > 0 {
		s.attempts = attempts
	}
	if backoff > 0 {
		s.backoff = backoff
	}
}

// Verify interface compliance
var _ Store = (*GormStore)(nil)

func (s *GormStore) Get(ctx context.Context, collection, id string, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var doc Document
	err := s.db.Where("collection = ? AND doc_id = ?", collection, id).First(&doc).Error
	if gorm.IsRecordNotFoundError(err) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(doc.Data), out)
}

func (s *GormStore) Set(ctx context.Context, collection, id string, doc interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res := s.db.Model(&Document{}).
		Where("collection = ? AND doc_id = ?", collection, id).
		Updates(map[string]interface{}{"data": string(data), "version": gorm.Expr("version + 1")})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return s.db.Create(&Document{
			Collection: collection,
			DocID:      id,
			Data:       string(data),
			Version:    1,
		}).Error
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res := s.db.Where("collection = ? AND doc_id = ?", collection, id).Delete(&Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) List(ctx context.Context, collection string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var docs []Document
	if err := s.db.Where("collection = ?", collection).Find(&docs).Error; err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(docs))
	for _, doc := range docs {
		out[doc.DocID] = []byte(doc.Data)
	}
	return out, nil
}

// RunTransaction runs fn optimistically: reads record the version they saw,
// writes are buffered, and the commit applies them under a database
// transaction guarded by version checks. A lost race re-executes fn from
// scratch with fresh reads, up to the configured attempt limit.
func (s *GormStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	backoff := s.backoff
	for attempt := 0; attempt < s.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		tx := &gormTx{
			store: s,
			reads: make(map[docKey]int64),
			data:  make(map[docKey]string),
		}
		if err := fn(tx); err != nil {
			return err
		}
		committed, err := s.commit(tx)
		if err != nil {
			return err
		}
		if committed {
			return nil
		}
		if s.OnConflict != nil {
			s.OnConflict()
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	return ErrConflict
}

func (s *GormStore) commit(t *gormTx) (bool, error) {
	gtx := s.db.Begin()
	if gtx.Error != nil {
		return false, gtx.Error
	}
	for _, key := range t.writeOrder {
		version, read := t.reads[key]
		if read && version > 0 {
			res := gtx.Model(&Document{}).
				Where("collection = ? AND doc_id = ? AND version = ?", key.collection, key.id, version).
				Updates(map[string]interface{}{"data": t.data[key], "version": version + 1})
			if res.Error != nil {
				gtx.Rollback()
				return false, res.Error
			}
			if res.RowsAffected == 0 {
				gtx.Rollback()
				return false, nil
			}
		} else {
			doc := Document{
				Collection: key.collection,
				DocID:      key.id,
				Data:       t.data[key],
				Version:    1,
			}
			// A concurrent insert trips the unique index; treat it as a
			// conflict, not a hard failure.
			if err := gtx.Create(&doc).Error; err != nil {
				gtx.Rollback()
				return false, nil
			}
		}
	}
	// Documents read but not written must still be at the observed version
	// for the commit to count as atomic over the whole read set.
	for key, version := range t.reads {
		if _, wrote := t.writes(key); wrote {
			continue
		}
		var count int
		if err := gtx.Model(&Document{}).
			Where("collection = ? AND doc_id = ?", key.collection, key.id).
			Count(&count).Error; err != nil {
			gtx.Rollback()
			return false, err
		}
		if version == 0 {
			if count != 0 {
				gtx.Rollback()
				return false, nil
			}
			continue
		}
		var current int
		if err := gtx.Model(&Document{}).
			Where("collection = ? AND doc_id = ? AND version = ?", key.collection, key.id, version).
			Count(&current).Error; err != nil {
			gtx.Rollback()
			return false, err
		}
		if current == 0 {
			gtx.Rollback()
			return false, nil
		}
	}
	if err := gtx.Commit().Error; err != nil {
		gtx.Rollback()
		return false, nil
	}
	return true, nil
}

type docKey struct {
	collection string
	id         string
}

// gormTx buffers reads and writes for one optimistic attempt
type gormTx struct {
	store      *GormStore
	reads      map[docKey]int64
	data       map[docKey]string
	writeOrder []docKey
}

func (t *gormTx) writes(key docKey) (string, bool) {
	data, ok := t.data[key]
	return data, ok
}

func (t *gormTx) Get(collection, id string, out interface{}) error {
	key := docKey{collection, id}
	if data, ok := t.writes(key); ok {
		return json.Unmarshal([]byte(data), out)
	}
	var doc Document
	err := t.store.db.Where("collection = ? AND doc_id = ?", collection, id).First(&doc).Error
	if gorm.IsRecordNotFoundError(err) {
		t.reads[key] = 0
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	t.reads[key] = doc.Version
	return json.Unmarshal([]byte(doc.Data), out)
}

func (t *gormTx) Set(collection, id string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	key := docKey{collection, id}
	if _, ok := t.data[key]; !ok {
		t.writeOrder = append(t.writeOrder, key)
	}
	t.data[key] = string(data)
	return nil
}
