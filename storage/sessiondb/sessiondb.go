// Package sessiondb persists browser session records in a bbolt file.
package sessiondb

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/trezcool/assignflow/core/session"
)

var bucket = []byte("sessions")

type Store struct {
	db *bbolt.DB
}

var _ session.Persister = (*Store)(nil)

// Open opens (or creates) the database file at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating session db dir")
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening session db %s", path)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating sessions bucket")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(rec session.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "encoding session record")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(rec.ID), data)
	})
}

func (s *Store) Load(id string) (session.Record, error) {
	var rec session.Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucket).Get([]byte(id))
		if data == nil {
			return session.ErrNoRecord
		}
		return json.Unmarshal(data, &rec)
	})
	return rec, err
}

func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Delete([]byte(id))
	})
}

// Expire deletes the records last updated before t. Undecodable records go too.
func (s *Store) Expire(t time.Time) (int, error) {
	var n int
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		stale := make([][]byte, 0)
		err := b.ForEach(func(k, v []byte) error {
			var rec session.Record
			if err := json.Unmarshal(v, &rec); err != nil || rec.UpdatedAt.Before(t) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		// keys cannot be deleted while iterating with ForEach
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		n = len(stale)
		return nil
	})
	return n, errors.Wrap(err, "expiring session records")
}
