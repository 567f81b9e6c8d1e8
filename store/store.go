// Package store persists accounts and instances in bbolt. All inventory
// writes happen inside single bbolt transactions; the watched flag only
// changes via SyncWatch and reconcile plans only apply via ApplyPlan.
package store

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/btree"
	"go.etcd.io/bbolt"

	"github.com/yairfalse/lookout/types"
)

// Bucket names in bbolt
var (
	bucketAccounts    = []byte("accounts")
	bucketAccessKeys  = []byte("access_keys")
	bucketInstances   = []byte("instances")
	bucketInstanceIDs = []byte("instance_ids")
)

// Store is the bbolt-backed persistence layer.
type Store struct {
	mu sync.RWMutex

	// In-memory index over instances for fast per-account scans
	index *btree.BTreeG[*indexEntry]

	// On-disk storage
	db *bbolt.DB

	// Per-account advisory locks; two refreshes for the same account
	// must not interleave their delete/upsert phases
	accountMu sync.Mutex
	accounts  map[string]*sync.Mutex

	// mockable for testing
	now func() time.Time
}

// indexEntry orders instances by (accountID, storage key) in the btree.
type indexEntry struct {
	AccountID string
	Key       string
	Instance  types.Instance
}

func entryLess(a, b *indexEntry) bool {
	if a.AccountID != b.AccountID {
		return a.AccountID < b.AccountID
	}
	return a.Key < b.Key
}

// Open opens (or creates) the store in dir.
func Open(dir string) (*Store, error) {
	dbPath := filepath.Join(dir, "lookout.db")

	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{bucketAccounts, bucketAccessKeys, bucketInstances, bucketInstanceIDs} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init buckets: %w", err)
	}

	s := &Store{
		index:    btree.NewG(32, entryLess),
		db:       db,
		accounts: make(map[string]*sync.Mutex),
		now:      time.Now,
	}

	if err := s.rebuildIndex(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// LockAccount takes the advisory lock for one account and returns the
// unlock func. Reconciliation holds this across its fetch and write phases.
func (s *Store) LockAccount(accountID string) func() {
	s.accountMu.Lock()
	mu, ok := s.accounts[accountID]
	if !ok {
		mu = &sync.Mutex{}
		s.accounts[accountID] = mu
	}
	s.accountMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// instanceKey builds the instances bucket key.
func instanceKey(accountID string, key types.InstanceKey) []byte {
	return []byte(strings.Join([]string{accountID, string(key.Kind), string(key.Region), key.RemoteID}, "/"))
}

// rebuildIndex loads every instance into the in-memory btree.
func (s *Store) rebuildIndex() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketInstances).ForEach(func(k, v []byte) error {
			inst, err := decodeInstance(v)
			if err != nil {
				return fmt.Errorf("corrupt instance record %q: %w", k, err)
			}
			s.index.ReplaceOrInsert(&indexEntry{
				AccountID: inst.AccountID,
				Key:       string(k),
				Instance:  inst,
			})
			return nil
		})
	})
}

// indexPut refreshes one instance in the btree.
func (s *Store) indexPut(key string, inst types.Instance) {
	s.index.ReplaceOrInsert(&indexEntry{AccountID: inst.AccountID, Key: key, Instance: inst})
}

// indexDelete drops one instance from the btree.
func (s *Store) indexDelete(accountID, key string) {
	s.index.Delete(&indexEntry{AccountID: accountID, Key: key})
}

// scanAccount visits every indexed instance of one account in key order.
func (s *Store) scanAccount(accountID string, visit func(types.Instance)) {
	s.index.AscendGreaterOrEqual(&indexEntry{AccountID: accountID}, func(e *indexEntry) bool {
		if e.AccountID != accountID {
			return false
		}
		visit(e.Instance)
		return true
	})
}
