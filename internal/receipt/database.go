package receipt

import (
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	stateBucketName  = "state"
	receiptsKey      = "receipts"
	schemaVersionKey = "schema_version"
	unreadablePrefix = "receipts.unreadable."

	// schemaVersion tags the layout of the receipts blob. Blobs written by a
	// newer build are refused rather than half-decoded.
	schemaVersion = "1"
)

// ErrUnsupportedSchema is returned when the stored blob has an unknown schema version.
var ErrUnsupportedSchema = errors.New("unsupported schema version")

// Medium is the durable byte store behind a Store. The whole collection is
// read and written in one piece.
type Medium interface {
	// ReadState returns the stored collection, or nil if nothing was stored yet
	ReadState() ([]byte, error)

	// WriteState replaces the stored collection
	WriteState(data []byte) error

	// SetAside moves the stored collection to a backup location so that the
	// next WriteState does not replace it. It returns where the data went, or
	// "" if nothing was stored.
	SetAside() (string, error)

	// Close releases the underlying resources
	Close() error
}

// BoltDB implements the Medium interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB opens (or creates) the database file at path
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(stateBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// ReadState returns a copy of the stored receipts blob
func (b *BoltDB) ReadState() ([]byte, error) {
	var data []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(stateBucketName))
		if v := bucket.Get([]byte(schemaVersionKey)); v != nil && string(v) != schemaVersion {
			return fmt.Errorf("%w: %q", ErrUnsupportedSchema, v)
		}
		// bbolt values are only valid for the life of the transaction
		if v := bucket.Get([]byte(receiptsKey)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// WriteState stores the receipts blob together with the schema version
func (b *BoltDB) WriteState(data []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(stateBucketName))
		if err := bucket.Put([]byte(schemaVersionKey), []byte(schemaVersion)); err != nil {
			return fmt.Errorf("writing schema version: %w", err)
		}
		if err := bucket.Put([]byte(receiptsKey), data); err != nil {
			return fmt.Errorf("writing receipts: %w", err)
		}
		return nil
	})
}

// SetAside moves the receipts blob and its schema version under
// receipts.unreadable.<unix nanos>
func (b *BoltDB) SetAside() (string, error) {
	var key string
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(stateBucketName))
		data := bucket.Get([]byte(receiptsKey))
		version := bucket.Get([]byte(schemaVersionKey))
		if data == nil && version == nil {
			return nil
		}

		key = fmt.Sprintf("%s%d", unreadablePrefix, time.Now().UnixNano())
		if data != nil {
			if err := bucket.Put([]byte(key), append([]byte(nil), data...)); err != nil {
				return fmt.Errorf("backing up receipts: %w", err)
			}
		}
		if version != nil {
			if err := bucket.Put([]byte(key+"."+schemaVersionKey), append([]byte(nil), version...)); err != nil {
				return fmt.Errorf("backing up schema version: %w", err)
			}
		}
		if err := bucket.Delete([]byte(receiptsKey)); err != nil {
			return fmt.Errorf("clearing receipts: %w", err)
		}
		return bucket.Delete([]byte(schemaVersionKey))
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
