package database

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	emissionsBucket = []byte("emissions")
	reseedsBucket   = []byte("reseeds")
	countersBucket  = []byte("counters")
)

// BoltAuditLog implements AuditLog on top of BoltDB.
type BoltAuditLog struct {
	db *bolt.DB
}

// NewBoltAuditLog opens (creating if necessary) a BoltDB audit log at
// dbPath. If dbPath names an existing directory, a default filename is
// appended within it.
func NewBoltAuditLog(dbPath string) (*BoltAuditLog, error) {
	if fi, err := os.Stat(dbPath); err == nil && fi.IsDir() {
		dbPath = filepath.Join(dbPath, "fortuna-audit.db")
		log.Printf("audit log path is a directory, using file: %s", dbPath)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create audit log directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt audit log: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{emissionsBucket, reseedsBucket, countersBucket} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize audit log: %w", err)
	}

	return &BoltAuditLog{db: db}, nil
}

func (a *BoltAuditLog) Close() error {
	return a.db.Close()
}

func (a *BoltAuditLog) nextID(tx *bolt.Tx, key []byte) (uint64, error) {
	b := tx.Bucket(countersBucket)
	var id uint64
	if v := b.Get(key); v != nil {
		id = binary.BigEndian.Uint64(v)
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id+1)
	if err := b.Put(key, buf[:]); err != nil {
		return 0, err
	}
	return id, nil
}

// RecordEmission appends a record of a RandomData call that produced size
// bytes.
func (a *BoltAuditLog) RecordEmission(size int) error {
	return a.db.Update(func(tx *bolt.Tx) error {
		id, err := a.nextID(tx, []byte("emission_next_id"))
		if err != nil {
			return err
		}
		rec := EmissionRecord{ID: id, Size: size, Timestamp: time.Now()}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal emission record: %w", err)
		}
		var key [8]byte
		binary.BigEndian.PutUint64(key[:], id)
		return tx.Bucket(emissionsBucket).Put(key[:], data)
	})
}

// RecordReseed appends a record of a reseed at reseedCounter.
func (a *BoltAuditLog) RecordReseed(reseedCounter uint32) error {
	return a.db.Update(func(tx *bolt.Tx) error {
		id, err := a.nextID(tx, []byte("reseed_next_id"))
		if err != nil {
			return err
		}
		rec := ReseedRecord{ID: id, ReseedCounter: reseedCounter, Timestamp: time.Now()}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal reseed record: %w", err)
		}
		var key [8]byte
		binary.BigEndian.PutUint64(key[:], id)
		return tx.Bucket(reseedsBucket).Put(key[:], data)
	})
}

// RecentEmissions returns up to limit of the most recently recorded
// emissions, newest first.
func (a *BoltAuditLog) RecentEmissions(limit int) ([]EmissionRecord, error) {
	var records []EmissionRecord
	err := a.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(emissionsBucket).Cursor()
		for k, v := c.Last(); k != nil && len(records) < limit; k, v = c.Prev() {
			var rec EmissionRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("unmarshal emission record: %w", err)
			}
			records = append(records, rec)
		}
		return nil
	})
	return records, err
}

// RecentReseeds returns up to limit of the most recently recorded reseeds,
// newest first.
func (a *BoltAuditLog) RecentReseeds(limit int) ([]ReseedRecord, error) {
	var records []ReseedRecord
	err := a.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(reseedsBucket).Cursor()
		for k, v := c.Last(); k != nil && len(records) < limit; k, v = c.Prev() {
			var rec ReseedRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("unmarshal reseed record: %w", err)
			}
			records = append(records, rec)
		}
		return nil
	})
	return records, err
}
