// Package debounce implements a small bbolt-backed window store used to
// suppress repeated product-view events from the same visitor. View
// tracking itself stays append-only; the debounce decision belongs to
// the HTTP caller.
package debounce

import (
	"encoding/binary"
	"fmt"
	"path"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketViews = []byte("views")

type Store struct {
	db     *bolt.DB
	window time.Duration
}

// Open opens (or creates) the debounce database under workdir/data
func Open(workdir string, window time.Duration) (*Store, error) {
	db, err := bolt.Open(path.Join(workdir, "data", "debounce.db"), 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketViews)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if window <= 0 {
		window = 30 * time.Minute
	}
	return &Store{db: db, window: window}, nil
}

// Allow reports whether a view by (sessionID, productID) falls outside the
// debounce window, and stamps the current time when it does.
func (s *Store) Allow(sessionID string, productID int64) bool {
	if sessionID == "" {
		// anonymous callers without a session are never debounced
		return true
	}
	key := []byte(fmt.Sprintf("%s:%d", sessionID, productID))
	now := time.Now()
	allowed := true
	_ = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketViews)
		if v := b.Get(key); len(v) == 8 {
			last := time.Unix(int64(binary.BigEndian.Uint64(v)), 0)
			if now.Sub(last) < s.window {
				allowed = false
				return nil
			}
		}
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(now.Unix()))
		return b.Put(key, buf[:])
	})
	return allowed
}

// Prune drops entries older than the window; called from the cron jobs.
func (s *Store) Prune() error {
	cutoff := time.Now().Add(-s.window).Unix()
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketViews)
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if len(v) == 8 && int64(binary.BigEndian.Uint64(v)) < cutoff {
				if err := c.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}
