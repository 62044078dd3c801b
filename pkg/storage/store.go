package storage

import (
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

// Bucket names, one per logical table.
var (
	bucketEvents               = []byte("events")
	bucketEventsByAuthorTime   = []byte("events_by_author_time")
	bucketHeads                = []byte("heads")
	bucketEventsMissing        = []byte("events_missing")
	bucketEventsContentMissing = []byte("events_content_missing")
	bucketEventsContentState   = []byte("events_content_state")
	bucketContentStore         = []byte("content_store")
	bucketContentRC            = []byte("content_rc")
	bucketFollowState          = []byte("follow_state")
	bucketNotifications        = []byte("notifications")
	bucketTimelineNetwork      = []byte("timeline_network")

	// Supplements not named as their own durable table but required to
	// implement side effects: a reply's parent reply_count and the
	// profile-update snapshot.
	bucketReplyCounts = []byte("reply_counts")
	bucketProfiles    = []byte("profiles")
)

var allBuckets = [][]byte{
	bucketEvents,
	bucketEventsByAuthorTime,
	bucketHeads,
	bucketEventsMissing,
	bucketEventsContentMissing,
	bucketEventsContentState,
	bucketContentStore,
	bucketContentRC,
	bucketFollowState,
	bucketNotifications,
	bucketTimelineNetwork,
	bucketReplyCounts,
	bucketProfiles,
}

// Store is the bbolt-backed durable store: multi-reader/single-writer
// transactions, atomic multi-table commit, crash recovery via bbolt's WAL-less
// copy-on-write B+tree.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if absent) the store's backing file under dataDir.
func Open(dataDir string) (*Store, error) {
	dbPath := filepath.Join(dataDir, "rostra.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Update runs fn inside a single read-write transaction spanning every
// table. A full ingestion call's mutations commit atomically; callers
// compose all their table writes through the *Tx passed to fn rather than
// opening further transactions.
func (s *Store) Update(fn func(*Tx) error) error {
	return s.db.Update(func(btx *bolt.Tx) error {
		return fn(&Tx{btx: btx})
	})
}

// View runs fn inside a read-only, snapshot-isolated transaction.
func (s *Store) View(fn func(*Tx) error) error {
	return s.db.View(func(btx *bolt.Tx) error {
		return fn(&Tx{btx: btx})
	})
}

// Tx is a handle scoped to one bbolt transaction, exposing typed operations
// over the logical tables. The same type is used for both read-write
// (Update) and read-only (View) transactions; calling a write method inside
// a View transaction returns bbolt's ErrTxNotWritable.
type Tx struct {
	btx *bolt.Tx
}

func (tx *Tx) bucket(name []byte) *bolt.Bucket {
	return tx.btx.Bucket(name)
}
